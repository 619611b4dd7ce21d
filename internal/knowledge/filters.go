package knowledge

import (
	"context"
	"fmt"

	"github.com/LeonFTWANG/AIKG/internal/types"
)

// ByFilter returns nodes of one type selected either by an exact property
// value or by a relationship to a named node.
//
// Ordering is stable: labs order by difficulty then name, everything else by
// name. Label, property, and relationship identifiers are validated closed
// sets before being formatted into the statement; user-supplied values stay
// parameterized.
func (e *GraphQueryEngine) ByFilter(ctx context.Context, filter NodeFilter) ([]Node, error) {
	if err := filter.Validate(); err != nil {
		return nil, types.WrapError(types.INVALID_ARGUMENT, "invalid filter", err)
	}

	orderBy := "n.name"
	if filter.Type == NodeTypeLab {
		orderBy = "n.difficulty, n.name"
	}

	var cypher string
	params := map[string]any{}

	if filter.Property != "" {
		cypher = fmt.Sprintf(`
			MATCH (n:%s {%s: $value})
			RETURN elementId(n) AS id, labels(n) AS labels, properties(n) AS props
			ORDER BY %s
		`, filter.Type, filter.Property, orderBy)
		params["value"] = filter.Value
	} else {
		cypher = fmt.Sprintf(`
			MATCH (n:%s)-[:%s]->(target {name: $target})
			RETURN elementId(n) AS id, labels(n) AS labels, properties(n) AS props
			ORDER BY %s
		`, filter.Type, filter.RelatedVia, orderBy)
		params["target"] = filter.RelatedTo
	}

	result, err := e.client.Query(ctx, cypher, params)
	if err != nil {
		return nil, types.WrapError(types.GRAPH_UNAVAILABLE, "filter query failed", err)
	}

	nodes := make([]Node, 0, len(result.Records))
	for _, record := range result.Records {
		node, err := nodeFromRecord(record)
		if err != nil {
			e.logger.Warn("skipping malformed filter record", "error", err)
			continue
		}
		nodes = append(nodes, node)
	}

	return nodes, nil
}

const statisticsCypher = `
	RETURN
		count{ (:CVE) } AS cve_count,
		count{ (:Technique) } AS technique_count,
		count{ (:Lab) } AS lab_count,
		count{ (:Defense) } AS defense_count,
		count{ (:Tool) } AS tool_count,
		count{ ()-[]->() } AS relationship_count
`

// Statistics aggregates node counts per domain type plus the total
// relationship count. Zero counts are valid; only store unavailability is
// an error.
func (e *GraphQueryEngine) Statistics(ctx context.Context) (Statistics, error) {
	result, err := e.client.Query(ctx, statisticsCypher, nil)
	if err != nil {
		return Statistics{}, types.WrapError(types.GRAPH_UNAVAILABLE, "statistics query failed", err)
	}

	if len(result.Records) == 0 {
		return Statistics{}, nil
	}

	record := result.Records[0]
	stats := Statistics{}
	if n, ok := toInt64(record["cve_count"]); ok {
		stats.CVECount = n
	}
	if n, ok := toInt64(record["technique_count"]); ok {
		stats.TechniqueCount = n
	}
	if n, ok := toInt64(record["lab_count"]); ok {
		stats.LabCount = n
	}
	if n, ok := toInt64(record["defense_count"]); ok {
		stats.DefenseCount = n
	}
	if n, ok := toInt64(record["tool_count"]); ok {
		stats.ToolCount = n
	}
	if n, ok := toInt64(record["relationship_count"]); ok {
		stats.RelationshipCount = n
	}

	return stats, nil
}

const defaultSnapshotLimit = 100

const visualizationCypher = `
	MATCH (a)-[r]->(b)
	WHERE %s AND %s
	RETURN elementId(a) AS from_id, labels(a) AS from_labels, a.name AS from_name,
		elementId(b) AS to_id, labels(b) AS to_labels, b.name AS to_name,
		type(r) AS rel_type
	LIMIT $limit
`

// Visualization returns up to limit relationship triples as a deduplicated
// node/edge snapshot. Non-positive limits fall back to a default.
func (e *GraphQueryEngine) Visualization(ctx context.Context, limit int) (GraphSnapshot, error) {
	if limit <= 0 {
		limit = defaultSnapshotLimit
	}

	cypher := fmt.Sprintf(visualizationCypher, domainPredicate("a"), domainPredicate("b"))

	result, err := e.client.Query(ctx, cypher, map[string]any{"limit": limit})
	if err != nil {
		return GraphSnapshot{}, types.WrapError(types.GRAPH_UNAVAILABLE, "visualization query failed", err)
	}

	snapshot := GraphSnapshot{
		Nodes: []SnapshotNode{},
		Edges: []SnapshotEdge{},
	}
	seenNodes := make(map[string]bool)

	addNode := func(id, name string, labels []string) {
		if id == "" || seenNodes[id] {
			return
		}
		seenNodes[id] = true
		node := SnapshotNode{ID: id, Name: name}
		if nodeType, ok := primaryType(labels); ok {
			node.Type = nodeType.String()
		}
		snapshot.Nodes = append(snapshot.Nodes, node)
	}

	for _, record := range result.Records {
		fromID := stringProp(record, "from_id")
		toID := stringProp(record, "to_id")

		addNode(fromID, stringProp(record, "from_name"), toStringSlice(record["from_labels"]))
		addNode(toID, stringProp(record, "to_name"), toStringSlice(record["to_labels"]))

		snapshot.Edges = append(snapshot.Edges, SnapshotEdge{
			From: fromID,
			To:   toID,
			Type: stringProp(record, "rel_type"),
		})
	}

	return snapshot, nil
}
