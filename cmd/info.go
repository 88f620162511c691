package cmd

import (
	"context"

	"github.com/mj1618/simu-bridge/internal/bridge"
	"github.com/mj1618/simu-bridge/internal/client"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the details of one element",
	RunE:  runInfo,
}

var existsCmd = &cobra.Command{
	Use:   "exists",
	Short: "Report whether an element exists",
	RunE:  runExists,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	addBridgeFlags(infoCmd)
	addTargetFlags(infoCmd, false)

	rootCmd.AddCommand(existsCmd)
	addBridgeFlags(existsCmd)
	addTargetFlags(existsCmd, false)
}

func runInfo(cmd *cobra.Command, args []string) error {
	t := targetFromFlags(cmd)
	return runGesture(cmd, func(ctx context.Context, c *client.Client) (bridge.Info, error) {
		return c.Info(ctx, t)
	})
}

func runExists(cmd *cobra.Command, args []string) error {
	t := targetFromFlags(cmd)
	return runGesture(cmd, func(ctx context.Context, c *client.Client) (bridge.ExistsResult, error) {
		exists, err := c.Exists(ctx, t)
		return bridge.ExistsResult{Exists: exists}, err
	})
}
