package cmd

import (
	"context"

	"github.com/mj1618/simu-bridge/internal/client"
	"github.com/mj1618/simu-bridge/internal/model"
	"github.com/spf13/cobra"
)

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the attached application's UI hierarchy",
	Long: `Print the attached application's UI hierarchy. The bridge limits the
depth and the number of children per element; capped child lists end with a
"_truncated" entry counting the omitted children.`,
	RunE: runTree,
}

func init() {
	rootCmd.AddCommand(treeCmd)
	addBridgeFlags(treeCmd)
}

func runTree(cmd *cobra.Command, args []string) error {
	return runGesture(cmd, func(ctx context.Context, c *client.Client) ([]model.Node, error) {
		return c.Tree(ctx)
	})
}
