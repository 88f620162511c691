package cmd

import (
	"context"

	"github.com/mj1618/simu-bridge/internal/bridge"
	"github.com/mj1618/simu-bridge/internal/client"
	"github.com/spf13/cobra"
)

var swipeCmd = &cobra.Command{
	Use:   "swipe <up|down|left|right>",
	Short: "Swipe an element, or the whole app",
	Long: `Swipe in a direction. Without --id or --label the swipe is performed on
the attached application itself.`,
	Args: cobra.ExactArgs(1),
	RunE: runSwipe,
}

var scrollCmd = &cobra.Command{
	Use:   "scroll <up|down|left|right>",
	Short: "Scroll in a direction (same gesture as swipe)",
	Args:  cobra.ExactArgs(1),
	RunE:  runScroll,
}

func init() {
	rootCmd.AddCommand(swipeCmd)
	addBridgeFlags(swipeCmd)
	addTargetFlags(swipeCmd, false)

	rootCmd.AddCommand(scrollCmd)
	addBridgeFlags(scrollCmd)
	addTargetFlags(scrollCmd, false)
}

func runSwipe(cmd *cobra.Command, args []string) error {
	t := targetFromFlags(cmd)
	return runGesture(cmd, func(ctx context.Context, c *client.Client) (bridge.Result, error) {
		return c.Swipe(ctx, t, args[0])
	})
}

func runScroll(cmd *cobra.Command, args []string) error {
	t := targetFromFlags(cmd)
	return runGesture(cmd, func(ctx context.Context, c *client.Client) (bridge.Result, error) {
		return c.Scroll(ctx, t, args[0])
	})
}
