package cmd

import (
	"context"

	"github.com/mj1618/simu-bridge/internal/bridge"
	"github.com/mj1618/simu-bridge/internal/client"
	"github.com/spf13/cobra"
)

var typeCmd = &cobra.Command{
	Use:   "type <text>",
	Short: "Type text into an element or the focused field",
	Long: `Type text. With --id or --label the element is tapped first to focus it,
then the text is typed into it. Without a target the text goes to whatever
field currently has focus.

Examples:
  simu-bridge type --id username "bob"
  simu-bridge type "hunter2"`,
	Args: cobra.ExactArgs(1),
	RunE: runType,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete the contents of a text field",
	RunE:  runClear,
}

func init() {
	rootCmd.AddCommand(typeCmd)
	addBridgeFlags(typeCmd)
	addTargetFlags(typeCmd, false)

	rootCmd.AddCommand(clearCmd)
	addBridgeFlags(clearCmd)
	addTargetFlags(clearCmd, false)
}

func runType(cmd *cobra.Command, args []string) error {
	t := targetFromFlags(cmd)
	return runGesture(cmd, func(ctx context.Context, c *client.Client) (bridge.Result, error) {
		return c.Type(ctx, t, args[0])
	})
}

func runClear(cmd *cobra.Command, args []string) error {
	t := targetFromFlags(cmd)
	return runGesture(cmd, func(ctx context.Context, c *client.Client) (bridge.Result, error) {
		return c.Clear(ctx, t)
	})
}
