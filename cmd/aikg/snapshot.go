package main

import (
	"github.com/spf13/cobra"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Export a bounded snapshot of the graph",
	Long: `Export a bounded node/edge view of the knowledge graph, suitable for
feeding into visualization tools.

Examples:
  # Summary of what a snapshot would contain
  aikg snapshot --limit 200

  # Full snapshot as JSON
  aikg snapshot --limit 200 --output json > graph.json`,
	RunE: runSnapshot,
}

var snapshotLimit int

func init() {
	snapshotCmd.Flags().IntVar(&snapshotLimit, "limit", 100, "Maximum number of nodes to include")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	snap, err := svc.Visualization(cmd.Context(), snapshotLimit)
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(snap)
	}

	cmd.Printf("Snapshot: %d nodes, %d edges\n", len(snap.Nodes), len(snap.Edges))
	cmd.Println("Use --output json for the full graph data.")
	return nil
}
