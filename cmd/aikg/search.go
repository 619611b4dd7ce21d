package main

import (
	"github.com/spf13/cobra"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
	"github.com/LeonFTWANG/AIKG/internal/knowledge"
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY",
	Short: "Search knowledge nodes by name or description",
	Long: `Search the knowledge graph for nodes whose name or description
contains the query term. Matching is case-insensitive and results
sharing a name are collapsed to the first hit.

Examples:
  # Find everything about SQL injection
  aikg search "SQL注入"

  # Limit the result count
  aikg search XSS --limit 5

  # JSON output for scripting
  aikg search log4j --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum number of results to return")
}

func runSearch(cmd *cobra.Command, args []string) error {
	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	nodes, err := svc.Search(cmd.Context(), args[0], searchLimit)
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(map[string]any{
			"query":   args[0],
			"results": nodes,
			"count":   len(nodes),
		})
	}

	if len(nodes) == 0 {
		cmd.Printf("No knowledge found for: %s\n", args[0])
		return nil
	}

	cmd.Printf("Found %d results for: %s\n\n", len(nodes), args[0])
	return printNodeTable(cmd, nodes)
}

// printNodeTable renders nodes as an aligned table. Shared by the search
// and filter commands.
func printNodeTable(cmd *cobra.Command, nodes []knowledge.Node) error {
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{
			n.DisplayName(),
			string(n.Type),
			internal.FormatSeverity(n.Severity),
			n.Category,
			internal.Truncate(n.Description, 60),
		})
	}

	return internal.NewTextFormatter(cmd.OutOrStdout()).PrintTable(
		[]string{"Name", "Type", "Severity", "Category", "Description"}, rows)
}
