package main

import (
	"github.com/spf13/cobra"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize NAME",
	Short: "Summarize a knowledge node in a few sentences",
	Long: `Produce a short summary of one knowledge node using the configured
LLM provider. Without a provider the node's stored description is
returned instead.

Examples:
  aikg summarize "SQL注入"
  aikg summarize Log4Shell --output json`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	summary, err := svc.Summarize(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(map[string]any{
			"name":    args[0],
			"summary": summary,
		})
	}

	cmd.Println(summary)
	return nil
}
