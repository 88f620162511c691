package cmd

import (
	"context"
	"fmt"

	"github.com/mj1618/simu-bridge/internal/client"
	"github.com/mj1618/simu-bridge/internal/model"
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Find elements by identifier, label, or type",
	Long: `Find elements in the attached application. Filters are combined with AND
and match exactly. Results are single-level nodes; when more than the bridge's
upper bound match, a single "_tooManyResults" entry is returned instead.

Examples:
  simu-bridge find --type button
  simu-bridge find --label "Log In"
  simu-bridge find --type cell --id row-3`,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	addBridgeFlags(findCmd)
	addTargetFlags(findCmd, false)
	findCmd.Flags().String("type", "", "Element type (e.g. button, staticText, unknown(99))")
}

func runFind(cmd *cobra.Command, args []string) error {
	t := targetFromFlags(cmd)
	t.ElementType, _ = cmd.Flags().GetString("type")
	if t.Identifier == "" && t.Label == "" && t.ElementType == "" {
		return fmt.Errorf("specify at least one of --id, --label, --type")
	}
	return runGesture(cmd, func(ctx context.Context, c *client.Client) ([]model.Node, error) {
		nodes, err := c.Find(ctx, t)
		if err != nil {
			return nil, err
		}
		if count, ok := tooManyMatches(nodes); ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "%d elements match; add filters to narrow the search\n", count)
		}
		return nodes, nil
	})
}

// tooManyMatches reports the match count when nodes is the bridge's
// too-many-results marker.
func tooManyMatches(nodes []model.Node) (int, bool) {
	if len(nodes) == 1 && nodes[0].IsMarker() {
		return nodes[0].TooManyResults, true
	}
	return 0, false
}
