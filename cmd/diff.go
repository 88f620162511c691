package cmd

import (
	"fmt"

	"github.com/mj1618/simu-bridge/internal/imgdiff"
	"github.com/mj1618/simu-bridge/internal/output"
	"github.com/spf13/cobra"
)

var diffCmd = &cobra.Command{
	Use:   "diff <baseline.png> <actual.png>",
	Short: "Compare two screenshots pixel by pixel",
	Long: `Compare two screenshots. Pixels whose color distance exceeds
--pixel-threshold count as different; the screenshots match when the
percentage of different pixels is at most --threshold. Screenshots of
different sizes never match.

The command exits non-zero when the screenshots do not match.

Examples:
  simu-bridge diff baseline.png actual.png
  simu-bridge diff baseline.png actual.png --out diff.png --threshold 0.5`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
	defaults := imgdiff.DefaultOptions()
	diffCmd.Flags().Float64("threshold", defaults.Threshold, "Max differing pixels (percent) still counted as a match")
	diffCmd.Flags().Float64("pixel-threshold", defaults.PixelThreshold, "Per-pixel color distance (0-1) above which pixels differ")
	diffCmd.Flags().String("out", "", "Write a PNG highlighting the differences to this path")
}

func runDiff(cmd *cobra.Command, args []string) error {
	opts := imgdiff.DefaultOptions()
	opts.Threshold, _ = cmd.Flags().GetFloat64("threshold")
	opts.PixelThreshold, _ = cmd.Flags().GetFloat64("pixel-threshold")
	opts.DiffPath, _ = cmd.Flags().GetString("out")

	res, err := imgdiff.CompareFiles(args[0], args[1], opts)
	if err != nil {
		return err
	}
	if err := output.Print(res); err != nil {
		return err
	}
	if !res.Match {
		return fmt.Errorf("screenshots differ by %d%%", res.DiffPercentage)
	}
	return nil
}
