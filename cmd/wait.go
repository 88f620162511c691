package cmd

import (
	"context"
	"fmt"

	"github.com/mj1618/simu-bridge/internal/bridge"
	"github.com/mj1618/simu-bridge/internal/client"
	"github.com/spf13/cobra"
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for an element to appear or disappear",
	Long: `Poll the attached application until the element with --id exists (or, with
--gone, no longer exists). The result reports timedOut: true when the
condition was not met in time; that is not an error.

The bridge clamps --timeout to its configured maximum wait.

Examples:
  simu-bridge wait --id welcome --timeout 10
  simu-bridge wait --id spinner --gone`,
	RunE: runWait,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	addBridgeFlags(waitCmd)
	waitCmd.Flags().String("id", "", "Element accessibility identifier")
	waitCmd.Flags().Float64("timeout", bridge.DefaultWaitTimeout, "Max seconds to wait")
	waitCmd.Flags().Bool("gone", false, "Wait until the element no longer exists")
}

func runWait(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("id")
	if id == "" {
		return fmt.Errorf("--id is required")
	}
	timeout, _ := cmd.Flags().GetFloat64("timeout")
	gone, _ := cmd.Flags().GetBool("gone")
	return runGesture(cmd, func(ctx context.Context, c *client.Client) (bridge.Result, error) {
		return c.Wait(ctx, id, timeout, !gone)
	})
}
