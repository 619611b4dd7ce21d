package knowledge

import (
	"context"
	"fmt"

	"github.com/LeonFTWANG/AIKG/internal/types"
)

// Related expands the subgraph around the named node.
//
// The expansion runs in two statements: first the node set reachable within
// depth hops, then every relationship whose endpoints both lie in that set.
// Collecting relationships off traversal paths alone would miss edges that
// connect two reachable nodes without lying on a path from the seed.
func (e *GraphQueryEngine) Related(ctx context.Context, name string, depth int) (Subgraph, error) {
	if name == "" {
		return Subgraph{}, types.NewError(types.INVALID_ARGUMENT, "name cannot be empty")
	}
	if depth < MinDepth || depth > MaxDepth {
		return Subgraph{}, types.NewError(types.INVALID_ARGUMENT,
			fmt.Sprintf("depth must be between %d and %d, got %d", MinDepth, MaxDepth, depth))
	}

	// Variable-length pattern bounds cannot be parameterized, so the
	// validated depth is formatted into the statement text.
	nodesCypher := fmt.Sprintf(`
		MATCH (start {name: $name})
		WHERE %s
		OPTIONAL MATCH (start)-[*1..%d]-(related)
		WITH start, collect(DISTINCT related) AS relatedNodes
		UNWIND [start] + relatedNodes AS node
		RETURN DISTINCT elementId(node) AS id, labels(node) AS labels, properties(node) AS props
	`, domainPredicate("start"), depth)

	result, err := e.client.Query(ctx, nodesCypher, map[string]any{"name": name})
	if err != nil {
		return Subgraph{}, types.WrapError(types.GRAPH_UNAVAILABLE, "related-knowledge expansion failed", err)
	}

	// A missing seed is an empty subgraph, not an error.
	if len(result.Records) == 0 {
		return Subgraph{Nodes: []Node{}, Relationships: []Relationship{}}, nil
	}

	nodes := make([]Node, 0, len(result.Records))
	ids := make([]string, 0, len(result.Records))
	seen := make(map[string]bool, len(result.Records))
	for _, record := range result.Records {
		node, err := nodeFromRecord(record)
		if err != nil {
			e.logger.Warn("skipping malformed subgraph record", "error", err)
			continue
		}
		if seen[node.ID] {
			continue
		}
		seen[node.ID] = true
		nodes = append(nodes, node)
		ids = append(ids, node.ID)
	}

	relationships, err := e.inducedRelationships(ctx, ids)
	if err != nil {
		return Subgraph{}, err
	}

	return Subgraph{Nodes: nodes, Relationships: relationships}, nil
}

const inducedRelsCypher = `
	MATCH (a)-[r]->(b)
	WHERE elementId(a) IN $ids AND elementId(b) IN $ids
	RETURN DISTINCT elementId(r) AS id, type(r) AS type,
		elementId(a) AS from_id, elementId(b) AS to_id
`

// inducedRelationships fetches every relationship between nodes of the set.
func (e *GraphQueryEngine) inducedRelationships(ctx context.Context, ids []string) ([]Relationship, error) {
	if len(ids) == 0 {
		return []Relationship{}, nil
	}

	result, err := e.client.Query(ctx, inducedRelsCypher, map[string]any{"ids": ids})
	if err != nil {
		return nil, types.WrapError(types.GRAPH_UNAVAILABLE, "relationship expansion failed", err)
	}

	relationships := make([]Relationship, 0, len(result.Records))
	seen := make(map[string]bool, len(result.Records))
	for _, record := range result.Records {
		rel := Relationship{
			ID:     stringProp(record, "id"),
			Type:   stringProp(record, "type"),
			FromID: stringProp(record, "from_id"),
			ToID:   stringProp(record, "to_id"),
		}
		if rel.ID == "" || seen[rel.ID] {
			continue
		}
		seen[rel.ID] = true
		relationships = append(relationships, rel)
	}

	return relationships, nil
}

const shortestPathCypher = `
	MATCH (start {name: $start}), (end {name: $end}),
		path = shortestPath((start)-[*]-(end))
	RETURN [node IN nodes(path) | {name: node.name, labels: labels(node), description: node.description}] AS nodes,
		[rel IN relationships(path) | type(rel)] AS rels
	LIMIT 1
`

const singleNodePathCypher = `
	MATCH (n {name: $name})
	WHERE %s
	RETURN n.name AS name, labels(n) AS labels, n.description AS description
	LIMIT 1
`

// ShortestPath finds one fewest-hop undirected path between two named nodes.
// Among equally short paths any one is acceptable; only the length is part
// of the contract.
func (e *GraphQueryEngine) ShortestPath(ctx context.Context, startName, endName string) ([]PathStep, error) {
	if startName == "" || endName == "" {
		return nil, types.NewError(types.INVALID_ARGUMENT, "start and end names cannot be empty")
	}

	// The store's shortest-path primitive rejects identical endpoints, so a
	// zero-length path is resolved as a direct lookup.
	if startName == endName {
		return e.singleNodePath(ctx, startName)
	}

	params := map[string]any{
		"start": startName,
		"end":   endName,
	}

	result, err := e.client.Query(ctx, shortestPathCypher, params)
	if err != nil {
		return nil, types.WrapError(types.GRAPH_UNAVAILABLE, "shortest-path search failed", err)
	}

	// Unreachable pair or absent endpoint: empty path, not an error.
	if len(result.Records) == 0 {
		return []PathStep{}, nil
	}

	record := result.Records[0]
	nodeMaps, ok := record["nodes"].([]any)
	if !ok {
		return nil, types.NewError(types.GRAPH_UNAVAILABLE, "malformed path record")
	}
	relTypes := toStringSlice(record["rels"])

	steps := make([]PathStep, 0, len(nodeMaps))
	for i, raw := range nodeMaps {
		nodeMap, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		step := PathStep{
			Name:        stringProp(nodeMap, "name"),
			Description: stringProp(nodeMap, "description"),
		}
		if nodeType, ok := primaryType(toStringSlice(nodeMap["labels"])); ok {
			step.Type = nodeType.String()
		}
		// Relation names the edge toward the next step; the last step has none.
		if i < len(relTypes) {
			step.Relation = relTypes[i]
		}
		steps = append(steps, step)
	}

	return steps, nil
}

// singleNodePath resolves the degenerate start == end case.
func (e *GraphQueryEngine) singleNodePath(ctx context.Context, name string) ([]PathStep, error) {
	cypher := fmt.Sprintf(singleNodePathCypher, domainPredicate("n"))

	result, err := e.client.Query(ctx, cypher, map[string]any{"name": name})
	if err != nil {
		return nil, types.WrapError(types.GRAPH_UNAVAILABLE, "node lookup failed", err)
	}

	if len(result.Records) == 0 {
		return []PathStep{}, nil
	}

	record := result.Records[0]
	step := PathStep{
		Name:        stringProp(record, "name"),
		Description: stringProp(record, "description"),
	}
	if nodeType, ok := primaryType(toStringSlice(record["labels"])); ok {
		step.Type = nodeType.String()
	}

	return []PathStep{step}, nil
}
