package cmd

import (
	"context"

	"github.com/mj1618/simu-bridge/internal/client"
	"github.com/spf13/cobra"
)

type statusResult struct {
	Status   string `yaml:"status"             json:"status"`
	BundleID string `yaml:"bundleId,omitempty" json:"bundleId,omitempty"`
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that a bridge is listening",
	Long: `Check that a bridge is listening. With --wait, retry with exponential
backoff until the bridge answers or the wait elapses.`,
	RunE: runHealth,
}

var attachCmd = &cobra.Command{
	Use:   "attach <bundle-id>",
	Short: "Attach the bridge to a running application",
	Long: `Attach the bridge to a running application by bundle identifier. Every
subsequent UI command targets that application until the next attach.`,
	Args: cobra.ExactArgs(1),
	RunE: runAttach,
}

func init() {
	rootCmd.AddCommand(healthCmd)
	addBridgeFlags(healthCmd)
	healthCmd.Flags().Duration("wait", 0, "Keep retrying for this long (e.g. 10s)")

	rootCmd.AddCommand(attachCmd)
	addBridgeFlags(attachCmd)
}

func runHealth(cmd *cobra.Command, args []string) error {
	wait, _ := cmd.Flags().GetDuration("wait")
	return runGesture(cmd, func(ctx context.Context, c *client.Client) (statusResult, error) {
		var err error
		if wait > 0 {
			err = client.WaitHealthy(ctx, c, wait)
		} else {
			err = c.Health(ctx)
		}
		if err != nil {
			return statusResult{}, err
		}
		return statusResult{Status: "ok"}, nil
	})
}

func runAttach(cmd *cobra.Command, args []string) error {
	return runGesture(cmd, func(ctx context.Context, c *client.Client) (statusResult, error) {
		if err := c.Attach(ctx, args[0]); err != nil {
			return statusResult{}, err
		}
		return statusResult{Status: "attached", BundleID: args[0]}, nil
	})
}
