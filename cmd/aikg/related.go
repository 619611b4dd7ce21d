package main

import (
	"github.com/spf13/cobra"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
)

var relatedCmd = &cobra.Command{
	Use:   "related NAME",
	Short: "Show the knowledge neighborhood of a node",
	Long: `Expand the knowledge graph around a named node and show everything
reachable within the given depth, together with the relationships
connecting those nodes.

Examples:
  # Direct neighbors of a technique
  aikg related "SQL注入" --depth 1

  # Wider neighborhood
  aikg related XSS --depth 3

  # Full subgraph as JSON
  aikg related "SQL注入" --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runRelated,
}

var relatedDepth int

func init() {
	relatedCmd.Flags().IntVar(&relatedDepth, "depth", 2, "Traversal depth (1-5)")
}

func runRelated(cmd *cobra.Command, args []string) error {
	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	sub, err := svc.Related(cmd.Context(), args[0], relatedDepth)
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(sub)
	}

	if sub.IsEmpty() {
		cmd.Printf("No knowledge found for: %s\n", args[0])
		return nil
	}

	cmd.Printf("Knowledge related to %s (depth %d): %d nodes, %d relationships\n\n",
		args[0], relatedDepth, len(sub.Nodes), len(sub.Relationships))
	return printNodeTable(cmd, sub.Nodes)
}
