package knowledge

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/LeonFTWANG/AIKG/internal/graph"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

// Depth bounds for related-knowledge expansion. Unbounded traversal over a
// dense security graph is combinatorially expensive, so 5 is a hard ceiling.
const (
	MinDepth = 1
	MaxDepth = 5
)

// QueryEngine is the read-side contract over the knowledge graph.
type QueryEngine interface {
	// Search returns domain nodes whose name, description, or any tag
	// case-insensitively contains term, deduplicated by display name
	// (first occurrence wins) and truncated to limit. An empty term
	// matches every domain node.
	Search(ctx context.Context, term string, limit int) ([]Node, error)

	// Related returns the subgraph reachable from the named node within
	// depth hops in either direction, plus every relationship between two
	// nodes of that set. A missing seed yields an empty subgraph, not an
	// error. Depth must lie within [MinDepth, MaxDepth].
	Related(ctx context.Context, name string, depth int) (Subgraph, error)

	// ShortestPath returns the steps of one fewest-hop undirected path
	// between the two named nodes. Unreachable pairs and absent endpoints
	// yield an empty path, not an error.
	ShortestPath(ctx context.Context, startName, endName string) ([]PathStep, error)

	// ByFilter returns nodes of one type matching an exact property value
	// or holding a relationship to a named node, in a stable order.
	ByFilter(ctx context.Context, filter NodeFilter) ([]Node, error)

	// ByID returns the node with the given store-assigned id.
	ByID(ctx context.Context, id string) (Node, error)

	// Statistics returns node counts per domain type plus the total
	// relationship count.
	Statistics(ctx context.Context) (Statistics, error)

	// Visualization returns a bounded snapshot of nodes and edges for
	// rendering the graph.
	Visualization(ctx context.Context, limit int) (GraphSnapshot, error)

	// Health reports reachability of the underlying store.
	Health(ctx context.Context) types.HealthStatus
}

// GraphQueryEngine implements QueryEngine over a graph.GraphClient.
// It is stateless; every operation runs in its own transactional scope.
type GraphQueryEngine struct {
	client graph.GraphClient
	logger *slog.Logger
}

var _ QueryEngine = (*GraphQueryEngine)(nil)

// NewGraphQueryEngine creates a query engine bound to the given client.
func NewGraphQueryEngine(client graph.GraphClient, logger *slog.Logger) *GraphQueryEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &GraphQueryEngine{
		client: client,
		logger: logger,
	}
}

// domainPredicate restricts a pattern variable to domain labels.
func domainPredicate(variable string) string {
	return fmt.Sprintf("(%[1]s:CVE OR %[1]s:Technique OR %[1]s:Lab OR %[1]s:Defense OR %[1]s:Tool OR %[1]s:Vulnerability)", variable)
}

const searchCypher = `
	MATCH (n)
	WHERE (n:CVE OR n:Technique OR n:Lab OR n:Defense OR n:Tool OR n:Vulnerability)
	AND ($term = ''
		OR toLower(n.name) CONTAINS toLower($term)
		OR toLower(coalesce(n.description, '')) CONTAINS toLower($term)
		OR any(tag IN coalesce(n.tags, []) WHERE toLower(tag) CONTAINS toLower($term)))
	RETURN elementId(n) AS id, labels(n) AS labels, properties(n) AS props
	ORDER BY n.name
	LIMIT $limit
`

// Search implements substring search over names, descriptions, and tags.
func (e *GraphQueryEngine) Search(ctx context.Context, term string, limit int) ([]Node, error) {
	if limit <= 0 {
		return nil, types.NewError(types.INVALID_ARGUMENT, "limit must be positive")
	}

	params := map[string]any{
		"term":  term,
		"limit": limit,
	}

	result, err := e.client.Query(ctx, searchCypher, params)
	if err != nil {
		return nil, types.WrapError(types.GRAPH_UNAVAILABLE, "search failed", err)
	}

	nodes := make([]Node, 0, len(result.Records))
	seen := make(map[string]bool, len(result.Records))
	for _, record := range result.Records {
		node, err := nodeFromRecord(record)
		if err != nil {
			e.logger.Warn("skipping malformed search record", "error", err)
			continue
		}
		// Dedup by display name, first occurrence wins.
		if seen[node.DisplayName()] {
			continue
		}
		seen[node.DisplayName()] = true
		nodes = append(nodes, node)
		if len(nodes) >= limit {
			break
		}
	}

	return nodes, nil
}

const byIDCypher = `
	MATCH (n)
	WHERE elementId(n) = $id
	RETURN elementId(n) AS id, labels(n) AS labels, properties(n) AS props
`

// ByID looks up a single node by its store-assigned element id.
func (e *GraphQueryEngine) ByID(ctx context.Context, id string) (Node, error) {
	if id == "" {
		return Node{}, types.NewError(types.INVALID_ARGUMENT, "id cannot be empty")
	}

	result, err := e.client.Query(ctx, byIDCypher, map[string]any{"id": id})
	if err != nil {
		return Node{}, types.WrapError(types.GRAPH_UNAVAILABLE, "lookup failed", err)
	}

	if len(result.Records) == 0 {
		return Node{}, types.NewError(types.KNOWLEDGE_NOT_FOUND,
			fmt.Sprintf("no node with id %s", id))
	}

	node, err := nodeFromRecord(result.Records[0])
	if err != nil {
		return Node{}, types.WrapError(types.GRAPH_UNAVAILABLE, "malformed node record", err)
	}

	return node, nil
}

// Health reports the health of the underlying graph client.
func (e *GraphQueryEngine) Health(ctx context.Context) types.HealthStatus {
	return e.client.Health(ctx)
}

// nodeFromRecord maps an (id, labels, props) record onto a Node.
// Optional properties are tolerated; identity fields are required.
func nodeFromRecord(record map[string]any) (Node, error) {
	id, ok := record["id"].(string)
	if !ok {
		return Node{}, fmt.Errorf("record id missing or not a string: %T", record["id"])
	}

	labels := toStringSlice(record["labels"])
	nodeType, ok := primaryType(labels)
	if !ok {
		return Node{}, fmt.Errorf("record %s carries no domain label: %v", id, labels)
	}

	props, ok := record["props"].(map[string]any)
	if !ok {
		return Node{}, fmt.Errorf("record %s props missing or not a map: %T", id, record["props"])
	}

	node := Node{
		ID:          id,
		Type:        nodeType,
		Name:        stringProp(props, "name"),
		Description: stringProp(props, "description"),
		Severity:    ParseSeverity(stringProp(props, "severity")),
		Tags:        toStringSlice(props["tags"]),
		URL:         stringProp(props, "url"),
		Category:    stringProp(props, "category"),
	}

	consumed := map[string]bool{
		"name": true, "description": true, "severity": true,
		"tags": true, "url": true, "category": true,
	}
	for key, value := range props {
		if consumed[key] {
			continue
		}
		if node.Extra == nil {
			node.Extra = make(map[string]any)
		}
		node.Extra[key] = value
	}

	return node, nil
}

// primaryType resolves a node's primary domain type from its label set.
func primaryType(labels []string) (NodeType, bool) {
	for _, domain := range domainLabels {
		for _, label := range labels {
			if label == string(domain) {
				return domain, true
			}
		}
	}
	return "", false
}

func stringProp(props map[string]any, key string) string {
	if s, ok := props[key].(string); ok {
		return s
	}
	return ""
}
