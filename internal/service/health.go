package service

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/LeonFTWANG/AIKG/internal/types"
)

// healthTimeout bounds the combined collaborator probes.
const healthTimeout = 10 * time.Second

// Health probes the graph store and the generator in parallel and
// aggregates the outcome. An unreachable graph makes the service
// unhealthy; a missing or failing generator only degrades it, since
// answers fall back to graph summaries.
func (s *Service) Health(ctx context.Context) types.HealthStatus {
	probeCtx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	var graphStatus, generatorStatus types.HealthStatus
	g, gCtx := errgroup.WithContext(probeCtx)
	g.Go(func() error {
		graphStatus = s.engine.Health(gCtx)
		return nil
	})
	g.Go(func() error {
		if s.generator == nil {
			generatorStatus = types.Degraded("answer generation disabled")
			return nil
		}
		generatorStatus = s.generator.Health(gCtx)
		return nil
	})
	_ = g.Wait()

	switch {
	case graphStatus.IsUnhealthy():
		return types.Unhealthy(fmt.Sprintf("graph: %s", graphStatus.Message))
	case graphStatus.IsDegraded():
		return types.Degraded(fmt.Sprintf("graph: %s", graphStatus.Message))
	case !generatorStatus.IsHealthy():
		return types.Degraded(fmt.Sprintf("generator: %s", generatorStatus.Message))
	default:
		return types.Healthy("all collaborators reachable")
	}
}
