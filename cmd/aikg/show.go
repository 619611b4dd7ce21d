package main

import (
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
	"github.com/LeonFTWANG/AIKG/internal/knowledge"
)

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show a single knowledge node by its graph id",
	Long: `Show the full detail of one knowledge node, addressed by the graph
element id returned in search results and snapshots.

Examples:
  aikg show "4:d7a2f3:42"
  aikg show "4:d7a2f3:42" --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	node, err := svc.ByID(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(node)
	}

	displayNode(cmd, node)
	return nil
}

// displayNode prints one node in a labelled detail layout.
func displayNode(cmd *cobra.Command, n knowledge.Node) {
	cmd.Printf("Name:     %s\n", n.DisplayName())
	cmd.Printf("Type:     %s\n", n.Type)
	cmd.Printf("ID:       %s\n", n.ID)

	if n.Severity != "" {
		cmd.Printf("Severity: %s\n", internal.FormatSeverity(n.Severity))
	}
	if n.Category != "" {
		cmd.Printf("Category: %s\n", n.Category)
	}
	if len(n.Tags) > 0 {
		cmd.Printf("Tags:     %s\n", strings.Join(n.Tags, ", "))
	}
	if n.URL != "" {
		cmd.Printf("URL:      %s\n", n.URL)
	}

	if n.Description != "" {
		cmd.Println("\nDescription:")
		cmd.Printf("  %s\n", n.Description)
	}

	if len(n.Extra) > 0 {
		keys := make([]string, 0, len(n.Extra))
		for k := range n.Extra {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		cmd.Println("\nProperties:")
		for _, k := range keys {
			cmd.Printf("  %s: %v\n", k, n.Extra[k])
		}
	}
}
