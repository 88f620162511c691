package cmd

import (
	"fmt"
	"os"

	"github.com/mj1618/simu-bridge/internal/output"
	"github.com/mj1618/simu-bridge/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "simu-bridge",
	Short: "Drive mobile apps in an emulated device through an in-process automation bridge",
	Long: `simu-bridge serves a running app's accessibility hierarchy and accepts
gestures over a local HTTP port. The same binary is the bridge ("serve") and
its client (tree, find, tap, swipe, type, ...).`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().String("format", "yaml", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		format, _ := rootCmd.PersistentFlags().GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = rootCmd.PersistentFlags().GetBool("pretty")
		return nil
	}
}
