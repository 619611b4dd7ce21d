package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/LeonFTWANG/AIKG/cmd/aikg/internal"
	"github.com/LeonFTWANG/AIKG/internal/observability"
	"github.com/LeonFTWANG/AIKG/internal/service"
	"github.com/LeonFTWANG/AIKG/internal/types"
	"github.com/LeonFTWANG/AIKG/pkg/version"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check graph and generator health",
	Long: `Probe the graph store and the answer generator and report the overall
service health. Exits non-zero when the graph is unreachable.

Examples:
  aikg status
  aikg status --output json`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	provider, err := observability.InitTracing(ctx, cfg.Tracing.TracerConfig())
	if err != nil {
		return err
	}
	defer shutdownTracing(provider)

	svc, err := service.New(cfg, nil, logger)
	if err != nil {
		return err
	}

	// An unreachable graph should produce a status report, not an abort,
	// so the connect error only shows up in the health probe below.
	openCtx, cancel := context.WithTimeout(ctx, cfg.Graph.ConnectionTimeout)
	if openErr := svc.Open(openCtx); openErr == nil {
		defer func() {
			closeCtx, cancelClose := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancelClose()
			_ = svc.Close(closeCtx)
		}()
	}
	cancel()

	status := svc.Health(ctx)

	if globalFlags.GetOutputFormat() == FormatJSON {
		return internal.NewJSONFormatter(cmd.OutOrStdout()).PrintJSON(map[string]any{
			"version":    version.Version,
			"graph_uri":  cfg.Graph.URI,
			"state":      status.State,
			"message":    status.Message,
			"checked_at": status.CheckedAt,
		})
	}

	cmd.Println("AIKG Status")
	cmd.Println("===========")

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Version:\t%s\n", version.Version)
	fmt.Fprintf(w, "Graph:\t%s\n", cfg.Graph.URI)
	fmt.Fprintf(w, "State:\t%s\n", formatHealthState(status.State))
	fmt.Fprintf(w, "Message:\t%s\n", status.Message)
	w.Flush()

	if status.IsUnhealthy() {
		return internal.NewCLIError(internal.ExitGraphError, "service is unhealthy")
	}

	return nil
}

// formatHealthState returns a color-coded health state for terminal output
func formatHealthState(state types.HealthState) string {
	switch state {
	case types.HealthStateHealthy:
		return color.New(color.FgGreen).Sprint(state)
	case types.HealthStateDegraded:
		return color.New(color.FgYellow).Sprint(state)
	case types.HealthStateUnhealthy:
		return color.New(color.FgRed).Sprint(state)
	default:
		return state.String()
	}
}
