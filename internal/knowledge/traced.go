package knowledge

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/LeonFTWANG/AIKG/internal/observability"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

// Span names used by TracedQueryEngine.
const (
	spanSearch        = "aikg.knowledge.search"
	spanRelated       = "aikg.knowledge.related"
	spanShortestPath  = "aikg.knowledge.shortest_path"
	spanByFilter      = "aikg.knowledge.by_filter"
	spanByID          = "aikg.knowledge.by_id"
	spanStatistics    = "aikg.knowledge.statistics"
	spanVisualization = "aikg.knowledge.visualization"
	spanHealth        = "aikg.knowledge.health"
)

// TracedQueryEngine wraps a QueryEngine with OpenTelemetry spans. With no
// tracer provider installed the spans are no-ops, so the wrapper can stay in
// the wiring unconditionally.
type TracedQueryEngine struct {
	inner  QueryEngine
	tracer trace.Tracer
}

var _ QueryEngine = (*TracedQueryEngine)(nil)

// NewTracedQueryEngine wraps inner with tracing. A nil tracer falls back to
// the module tracer.
func NewTracedQueryEngine(inner QueryEngine, tracer trace.Tracer) *TracedQueryEngine {
	if tracer == nil {
		tracer = observability.Tracer()
	}
	return &TracedQueryEngine{
		inner:  inner,
		tracer: tracer,
	}
}

// Search delegates to the inner engine under a span recording the term,
// limit, and result count.
func (t *TracedQueryEngine) Search(ctx context.Context, term string, limit int) ([]Node, error) {
	ctx, span := t.tracer.Start(ctx, spanSearch)
	defer span.End()

	span.SetAttributes(
		attribute.String("aikg.knowledge.term", term),
		attribute.Int("aikg.knowledge.limit", limit),
	)

	start := time.Now()
	nodes, err := t.inner.Search(ctx, term, limit)
	if recordSpanResult(span, start, err) != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("aikg.knowledge.result_count", len(nodes)))
	return nodes, nil
}

// Related delegates to the inner engine under a span recording the seed
// name, depth, and subgraph size.
func (t *TracedQueryEngine) Related(ctx context.Context, name string, depth int) (Subgraph, error) {
	ctx, span := t.tracer.Start(ctx, spanRelated)
	defer span.End()

	span.SetAttributes(
		attribute.String("aikg.knowledge.seed", name),
		attribute.Int("aikg.knowledge.depth", depth),
	)

	start := time.Now()
	sub, err := t.inner.Related(ctx, name, depth)
	if recordSpanResult(span, start, err) != nil {
		return Subgraph{}, err
	}

	span.SetAttributes(
		attribute.Int("aikg.knowledge.node_count", len(sub.Nodes)),
		attribute.Int("aikg.knowledge.relationship_count", len(sub.Relationships)),
	)
	return sub, nil
}

// ShortestPath delegates to the inner engine under a span recording both
// endpoints and the path length.
func (t *TracedQueryEngine) ShortestPath(ctx context.Context, startName, endName string) ([]PathStep, error) {
	ctx, span := t.tracer.Start(ctx, spanShortestPath)
	defer span.End()

	span.SetAttributes(
		attribute.String("aikg.knowledge.start", startName),
		attribute.String("aikg.knowledge.end", endName),
	)

	start := time.Now()
	steps, err := t.inner.ShortestPath(ctx, startName, endName)
	if recordSpanResult(span, start, err) != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("aikg.knowledge.path_length", len(steps)))
	return steps, nil
}

// ByFilter delegates to the inner engine under a span recording the filter
// shape and result count.
func (t *TracedQueryEngine) ByFilter(ctx context.Context, filter NodeFilter) ([]Node, error) {
	ctx, span := t.tracer.Start(ctx, spanByFilter)
	defer span.End()

	span.SetAttributes(attribute.String("aikg.knowledge.node_type", filter.Type.String()))
	if filter.Property != "" {
		span.SetAttributes(attribute.String("aikg.knowledge.property", filter.Property))
	}
	if filter.RelatedVia != "" {
		span.SetAttributes(attribute.String("aikg.knowledge.related_via", string(filter.RelatedVia)))
	}

	start := time.Now()
	nodes, err := t.inner.ByFilter(ctx, filter)
	if recordSpanResult(span, start, err) != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("aikg.knowledge.result_count", len(nodes)))
	return nodes, nil
}

// ByID delegates to the inner engine under a span recording the id.
func (t *TracedQueryEngine) ByID(ctx context.Context, id string) (Node, error) {
	ctx, span := t.tracer.Start(ctx, spanByID)
	defer span.End()

	span.SetAttributes(attribute.String("aikg.knowledge.id", id))

	start := time.Now()
	node, err := t.inner.ByID(ctx, id)
	if recordSpanResult(span, start, err) != nil {
		return Node{}, err
	}
	return node, nil
}

// Statistics delegates to the inner engine under a span.
func (t *TracedQueryEngine) Statistics(ctx context.Context) (Statistics, error) {
	ctx, span := t.tracer.Start(ctx, spanStatistics)
	defer span.End()

	start := time.Now()
	stats, err := t.inner.Statistics(ctx)
	if recordSpanResult(span, start, err) != nil {
		return Statistics{}, err
	}

	span.SetAttributes(attribute.Int64("aikg.knowledge.relationship_count", stats.RelationshipCount))
	return stats, nil
}

// Visualization delegates to the inner engine under a span recording the
// snapshot size.
func (t *TracedQueryEngine) Visualization(ctx context.Context, limit int) (GraphSnapshot, error) {
	ctx, span := t.tracer.Start(ctx, spanVisualization)
	defer span.End()

	span.SetAttributes(attribute.Int("aikg.knowledge.limit", limit))

	start := time.Now()
	snap, err := t.inner.Visualization(ctx, limit)
	if recordSpanResult(span, start, err) != nil {
		return GraphSnapshot{}, err
	}

	span.SetAttributes(
		attribute.Int("aikg.knowledge.node_count", len(snap.Nodes)),
		attribute.Int("aikg.knowledge.edge_count", len(snap.Edges)),
	)
	return snap, nil
}

// Health delegates to the inner engine under a span recording the reported
// state.
func (t *TracedQueryEngine) Health(ctx context.Context) types.HealthStatus {
	ctx, span := t.tracer.Start(ctx, spanHealth)
	defer span.End()

	status := t.inner.Health(ctx)
	span.SetAttributes(attribute.String("aikg.knowledge.health_state", status.State.String()))
	return status
}

// recordSpanResult stamps the call duration on span and records err when the
// call failed. It returns err so callers can branch on it directly.
func recordSpanResult(span trace.Span, start time.Time, err error) error {
	span.SetAttributes(attribute.Float64("aikg.knowledge.duration_ms",
		float64(time.Since(start).Microseconds())/1000.0))

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}
