package main

import (
	"github.com/spf13/cobra"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
	"github.com/LeonFTWANG/AIKG/internal/knowledge"
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "List knowledge nodes of a type matching a filter",
	Long: `List nodes of one type, filtered either by an exact property value or
by a relationship to a named node. Exactly one filter mode must be given.

Examples:
  # All critical CVEs
  aikg filter --type CVE --property severity --value CRITICAL

  # Techniques in a category
  aikg filter --type Technique --property category --value 注入攻击

  # Labs that practice a technique
  aikg filter --type Lab --via PRACTICED_IN --to "SQL注入"`,
	RunE: runFilter,
}

var (
	filterType     string
	filterProperty string
	filterValue    string
	filterVia      string
	filterTo       string
)

func init() {
	filterCmd.Flags().StringVar(&filterType, "type", "", "Node type (CVE, Technique, Lab, Defense, Tool)")
	filterCmd.Flags().StringVar(&filterProperty, "property", "", "Property name for equality matching")
	filterCmd.Flags().StringVar(&filterValue, "value", "", "Property value to match")
	filterCmd.Flags().StringVar(&filterVia, "via", "", "Relationship type for relationship matching")
	filterCmd.Flags().StringVar(&filterTo, "to", "", "Target node name for relationship matching")
	_ = filterCmd.MarkFlagRequired("type")
}

func runFilter(cmd *cobra.Command, args []string) error {
	propertyMode := filterProperty != "" || filterValue != ""
	relationMode := filterVia != "" || filterTo != ""

	if propertyMode == relationMode {
		return internal.NewCLIError(internal.ExitConfigError,
			"specify exactly one filter mode: --property/--value or --via/--to")
	}

	svc, shutdown, err := initService(cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	filter := knowledge.NodeFilter{
		Type:       knowledge.NodeType(filterType),
		Property:   filterProperty,
		Value:      filterValue,
		RelatedVia: knowledge.RelType(filterVia),
		RelatedTo:  filterTo,
	}

	nodes, err := svc.ByFilter(cmd.Context(), filter)
	if err != nil {
		return err
	}

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(map[string]any{
			"type":    filterType,
			"results": nodes,
			"count":   len(nodes),
		})
	}

	if len(nodes) == 0 {
		cmd.Println("No matching knowledge found.")
		return nil
	}

	cmd.Printf("Found %d matching nodes:\n\n", len(nodes))
	return printNodeTable(cmd, nodes)
}
