package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
	"github.com/LeonFTWANG/AIKG/internal/util"
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import seed knowledge into the graph",
	Long: `Import knowledge records from a YAML or JSON seed file. Uniqueness
constraints are ensured first, then records are merged by name so
re-importing the same file is safe.

Examples:
  # Import a seed file
  aikg import --file seeds/security.yaml

  # Import and link records listed in each other's related fields
  aikg import --file seeds/security.yaml --link`,
	RunE: runImport,
}

var (
	importFile string
	importLink bool
)

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "Path to the seed file (.yaml or .json)")
	importCmd.Flags().BoolVar(&importLink, "link", false, "Create RELATED_TO links between imported records")
	_ = importCmd.MarkFlagRequired("file")
}

func runImport(cmd *cobra.Command, args []string) error {
	seedPath, err := util.ExpandPath(importFile)
	if err != nil {
		return err
	}

	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	stats, err := svc.ImportSeed(cmd.Context(), seedPath, importLink)
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(stats)
	}

	formatter := internal.NewTextFormatter(cmd.OutOrStdout())
	if err := formatter.PrintSuccess(fmt.Sprintf("Imported %d records from %s", stats.Total(), importFile)); err != nil {
		return err
	}
	cmd.Println()

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "CVEs:\t%d\n", stats.CVE)
	fmt.Fprintf(w, "Techniques:\t%d\n", stats.Technique)
	fmt.Fprintf(w, "Labs:\t%d\n", stats.Lab)
	fmt.Fprintf(w, "Other:\t%d\n", stats.Other)
	fmt.Fprintf(w, "Failed:\t%d\n", stats.Failed)
	w.Flush()

	if stats.Failed > 0 {
		cmd.Println("\nSome records failed to import. Run with --verbose for details.")
	}

	return nil
}
