package cmd

import (
	"context"

	"github.com/mj1618/simu-bridge/internal/bridge"
	"github.com/mj1618/simu-bridge/internal/client"
	"github.com/spf13/cobra"
)

var tapCmd = &cobra.Command{
	Use:   "tap",
	Short: "Tap an element or a point",
	Long: `Tap an element by --id or --label, or a point with --x/--y (app points,
measured from the app's top-left corner). A point takes precedence.

Examples:
  simu-bridge tap --id login
  simu-bridge tap --label "Log In"
  simu-bridge tap --x 195 --y 420`,
	RunE: runTap,
}

var longPressCmd = &cobra.Command{
	Use:   "longpress",
	Short: "Press and hold an element",
	RunE:  runLongPress,
}

func init() {
	rootCmd.AddCommand(tapCmd)
	addBridgeFlags(tapCmd)
	addTargetFlags(tapCmd, true)

	rootCmd.AddCommand(longPressCmd)
	addBridgeFlags(longPressCmd)
	addTargetFlags(longPressCmd, false)
	longPressCmd.Flags().Float64("duration", bridge.DefaultLongPress, "Hold time in seconds")
}

func runTap(cmd *cobra.Command, args []string) error {
	t := targetFromFlags(cmd)
	return runGesture(cmd, func(ctx context.Context, c *client.Client) (bridge.Result, error) {
		return c.Tap(ctx, t)
	})
}

func runLongPress(cmd *cobra.Command, args []string) error {
	t := targetFromFlags(cmd)
	duration, _ := cmd.Flags().GetFloat64("duration")
	return runGesture(cmd, func(ctx context.Context, c *client.Client) (bridge.Result, error) {
		return c.LongPress(ctx, t, duration)
	})
}
