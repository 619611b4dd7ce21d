package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show knowledge graph statistics",
	Long: `Display node counts per knowledge type and the total relationship
count of the graph.

Examples:
  aikg stats
  aikg stats --output json`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	stats, err := svc.Statistics(cmd.Context())
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(stats)
	}

	totalNodes := stats.CVECount + stats.TechniqueCount + stats.LabCount +
		stats.DefenseCount + stats.ToolCount

	cmd.Println("Knowledge Graph Statistics")
	cmd.Println("==========================")

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CVEs:\t%d\n", stats.CVECount)
	fmt.Fprintf(w, "Techniques:\t%d\n", stats.TechniqueCount)
	fmt.Fprintf(w, "Labs:\t%d\n", stats.LabCount)
	fmt.Fprintf(w, "Defenses:\t%d\n", stats.DefenseCount)
	fmt.Fprintf(w, "Tools:\t%d\n", stats.ToolCount)
	fmt.Fprintf(w, "Relationships:\t%d\n", stats.RelationshipCount)
	fmt.Fprintf(w, "Total nodes:\t%d\n", totalNodes)
	w.Flush()

	return nil
}
