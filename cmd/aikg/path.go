package main

import (
	"github.com/spf13/cobra"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
)

var pathCmd = &cobra.Command{
	Use:   "path FROM TO",
	Short: "Find the shortest learning path between two knowledge nodes",
	Long: `Find the fewest-hop path between two named nodes, ignoring edge
direction. The path is rendered as an ordered list of learning steps
with the relationship that leads to each next step.

Examples:
  # How to get from a technique to its mitigation
  aikg path "SQL注入" "参数化查询"

  # Steps as JSON
  aikg path XSS CSP --output json`,
	Args: cobra.ExactArgs(2),
	RunE: runPath,
}

func runPath(cmd *cobra.Command, args []string) error {
	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	steps, err := svc.ShortestPath(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(map[string]any{
			"from":  args[0],
			"to":    args[1],
			"steps": steps,
		})
	}

	if len(steps) == 0 {
		cmd.Printf("No path found between %s and %s\n", args[0], args[1])
		return nil
	}

	cmd.Printf("Learning path from %s to %s (%d steps):\n\n", args[0], args[1], len(steps))
	for i, step := range steps {
		cmd.Printf("  %d. %s (%s)\n", i+1, step.Name, step.Type)
		if globalFlags.IsVerbose() && step.Description != "" {
			cmd.Printf("     %s\n", internal.Truncate(step.Description, 100))
		}
		if step.Relation != "" {
			cmd.Printf("     --[%s]-->\n", step.Relation)
		}
	}

	return nil
}
