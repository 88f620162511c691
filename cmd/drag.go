package cmd

import (
	"context"
	"fmt"

	"github.com/mj1618/simu-bridge/internal/bridge"
	"github.com/mj1618/simu-bridge/internal/client"
	"github.com/spf13/cobra"
)

var dragCmd = &cobra.Command{
	Use:   "drag",
	Short: "Press at one point and drag to another",
	Long: `Press at --from-x/--from-y and drag to --to-x/--to-y. Points are app points
measured from the app's top-left corner.

Example:
  simu-bridge drag --from-x 50 --from-y 600 --to-x 50 --to-y 100`,
	RunE: runDrag,
}

var pinchCmd = &cobra.Command{
	Use:   "pinch",
	Short: "Pinch an element, or the whole app",
	Long: `Pinch with --scale (> 1 zooms in, < 1 zooms out) at --velocity. Without
--id or --label the pinch is performed on the attached application.`,
	RunE: runPinch,
}

func init() {
	rootCmd.AddCommand(dragCmd)
	addBridgeFlags(dragCmd)
	dragCmd.Flags().Float64("from-x", 0, "Start X")
	dragCmd.Flags().Float64("from-y", 0, "Start Y")
	dragCmd.Flags().Float64("to-x", 0, "End X")
	dragCmd.Flags().Float64("to-y", 0, "End Y")

	rootCmd.AddCommand(pinchCmd)
	addBridgeFlags(pinchCmd)
	addTargetFlags(pinchCmd, false)
	pinchCmd.Flags().Float64("scale", bridge.DefaultPinchScale, "Pinch scale")
	pinchCmd.Flags().Float64("velocity", bridge.DefaultPinchSpeed, "Pinch velocity (scale factor per second)")
}

func runDrag(cmd *cobra.Command, args []string) error {
	for _, name := range []string{"from-x", "from-y", "to-x", "to-y"} {
		if !cmd.Flags().Changed(name) {
			return fmt.Errorf("--%s is required", name)
		}
	}
	fromX, _ := cmd.Flags().GetFloat64("from-x")
	fromY, _ := cmd.Flags().GetFloat64("from-y")
	toX, _ := cmd.Flags().GetFloat64("to-x")
	toY, _ := cmd.Flags().GetFloat64("to-y")
	return runGesture(cmd, func(ctx context.Context, c *client.Client) (bridge.Result, error) {
		return c.Drag(ctx, fromX, fromY, toX, toY)
	})
}

func runPinch(cmd *cobra.Command, args []string) error {
	t := targetFromFlags(cmd)
	scale, _ := cmd.Flags().GetFloat64("scale")
	velocity, _ := cmd.Flags().GetFloat64("velocity")
	return runGesture(cmd, func(ctx context.Context, c *client.Client) (bridge.Result, error) {
		return c.Pinch(ctx, t, scale, velocity)
	})
}
