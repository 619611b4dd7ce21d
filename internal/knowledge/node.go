package knowledge

import (
	"fmt"
	"strings"
)

// NodeType identifies the primary label of a domain node.
type NodeType string

const (
	NodeTypeCVE       NodeType = "CVE"
	NodeTypeTechnique NodeType = "Technique"
	NodeTypeLab       NodeType = "Lab"
	NodeTypeDefense   NodeType = "Defense"
	NodeTypeTool      NodeType = "Tool"

	// NodeTypeVulnerability is a legacy label carried by early imports.
	// Search treats it as a domain label; new writes never produce it.
	NodeTypeVulnerability NodeType = "Vulnerability"
)

// domainLabels lists every label that counts as security knowledge, in the
// order used to resolve a node's primary type from its label set.
var domainLabels = []NodeType{
	NodeTypeCVE,
	NodeTypeTechnique,
	NodeTypeLab,
	NodeTypeDefense,
	NodeTypeTool,
	NodeTypeVulnerability,
}

// String returns the string representation of the node type.
func (t NodeType) String() string {
	return string(t)
}

// IsValid checks if the NodeType is one of the domain labels.
func (t NodeType) IsValid() bool {
	for _, label := range domainLabels {
		if t == label {
			return true
		}
	}
	return false
}

// ParseNodeType maps a string to a NodeType, case-insensitively.
func ParseNodeType(s string) (NodeType, error) {
	for _, label := range domainLabels {
		if strings.EqualFold(s, string(label)) {
			return label, nil
		}
	}
	return "", fmt.Errorf("unknown node type: %q", s)
}

// Severity classifies the impact of a CVE or technique.
type Severity string

const (
	SeverityUnknown  Severity = ""
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// ParseSeverity maps a string onto the severity scale, case-insensitively.
// Unrecognized values map to SeverityUnknown.
func ParseSeverity(s string) Severity {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LOW":
		return SeverityLow
	case "MEDIUM":
		return SeverityMedium
	case "HIGH":
		return SeverityHigh
	case "CRITICAL":
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// RelType identifies a relationship type between knowledge nodes.
type RelType string

const (
	RelMitigates RelType = "MITIGATES"  // Defense -> Technique
	RelUsedFor   RelType = "USED_FOR"   // Tool -> Technique
	RelPractices RelType = "PRACTICES"  // Lab -> Technique
	RelRelatedTo RelType = "RELATED_TO" // CVE -> Technique
	RelSimilarTo RelType = "SIMILAR_TO" // Technique -> Technique
)

// IsValid checks if the RelType is one of the knowledge relationship types.
func (r RelType) IsValid() bool {
	switch r {
	case RelMitigates, RelUsedFor, RelPractices, RelRelatedTo, RelSimilarTo:
		return true
	default:
		return false
	}
}

// Node is the common shape of every domain node. Type-specific attributes
// (CVSS score, MITRE id, difficulty, ...) live in Extra and are surfaced
// through the typed accessors below.
type Node struct {
	// ID is the store-assigned element id. Stable within a session, not
	// guaranteed stable across store compaction.
	ID          string         `json:"id,omitempty"`
	Type        NodeType       `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Severity    Severity       `json:"severity,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
	URL         string         `json:"url,omitempty"`
	Category    string         `json:"category,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
}

// DisplayName returns the human-readable identity of the node.
// Search deduplication keys on this value.
func (n Node) DisplayName() string {
	return n.Name
}

// CVE is the typed view of a CVE node.
type CVE struct {
	Node
	CVSSScore float64
	Published string
}

// Technique is the typed view of an attack technique node.
type Technique struct {
	Node
	MitreID    string
	Difficulty string
}

// Lab is the typed view of a training lab node.
type Lab struct {
	Node
	Difficulty string
	Free       bool
	Topics     []string
}

// Defense is the typed view of a defense node.
type Defense struct {
	Node
}

// Tool is the typed view of a tool node.
type Tool struct {
	Node
}

// AsCVE returns the CVE view when the node's type is CVE.
func (n Node) AsCVE() (CVE, bool) {
	if n.Type != NodeTypeCVE {
		return CVE{}, false
	}
	return CVE{
		Node:      n,
		CVSSScore: extraFloat(n.Extra, "cvss_score"),
		Published: extraString(n.Extra, "published_date"),
	}, true
}

// AsTechnique returns the Technique view when the node's type is Technique.
func (n Node) AsTechnique() (Technique, bool) {
	if n.Type != NodeTypeTechnique {
		return Technique{}, false
	}
	return Technique{
		Node:       n,
		MitreID:    extraString(n.Extra, "mitre_id"),
		Difficulty: extraString(n.Extra, "difficulty"),
	}, true
}

// AsLab returns the Lab view when the node's type is Lab.
func (n Node) AsLab() (Lab, bool) {
	if n.Type != NodeTypeLab {
		return Lab{}, false
	}
	return Lab{
		Node:       n,
		Difficulty: extraString(n.Extra, "difficulty"),
		Free:       extraBool(n.Extra, "free"),
		Topics:     extraStringSlice(n.Extra, "topics"),
	}, true
}

// AsDefense returns the Defense view when the node's type is Defense.
func (n Node) AsDefense() (Defense, bool) {
	if n.Type != NodeTypeDefense {
		return Defense{}, false
	}
	return Defense{Node: n}, true
}

// AsTool returns the Tool view when the node's type is Tool.
func (n Node) AsTool() (Tool, bool) {
	if n.Type != NodeTypeTool {
		return Tool{}, false
	}
	return Tool{Node: n}, true
}

// Relationship is a typed, directed edge between two knowledge nodes,
// identified by the store-assigned element ids of the edge and its endpoints.
type Relationship struct {
	ID     string `json:"id,omitempty"`
	Type   string `json:"type"`
	FromID string `json:"from_id"`
	ToID   string `json:"to_id"`
}

// Subgraph is the result of a bounded related-knowledge expansion: the seed
// node plus everything reachable within the requested depth, and every
// relationship whose endpoints are both inside that node set. Both sets are
// deduplicated by element identity.
type Subgraph struct {
	Nodes         []Node         `json:"nodes"`
	Relationships []Relationship `json:"relationships"`
}

// IsEmpty reports whether the subgraph contains no nodes.
func (s Subgraph) IsEmpty() bool {
	return len(s.Nodes) == 0
}

// PathStep is one hop of a learning path. Relation names the relationship
// type leaving this step toward the next; it is empty on the final step.
type PathStep struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Relation    string `json:"relation,omitempty"`
}

// NodeFilter selects nodes of one type either by an exact property match or
// by a relationship to a named node. Exactly one of the two modes must be set.
type NodeFilter struct {
	Type NodeType

	// Property equality mode.
	Property string
	Value    string

	// Relationship mode: return nodes with an outgoing edge of RelatedVia
	// pointing at the node named RelatedTo.
	RelatedVia RelType
	RelatedTo  string
}

// Validate checks that the filter selects exactly one matching mode.
// Property names end up inside statement text, so they must be plain
// identifiers; values stay parameterized and are unrestricted.
func (f NodeFilter) Validate() error {
	if !f.Type.IsValid() {
		return fmt.Errorf("invalid node type: %q", f.Type)
	}

	propertyMode := f.Property != ""
	relationMode := f.RelatedVia != "" || f.RelatedTo != ""

	if propertyMode == relationMode {
		return fmt.Errorf("filter must set exactly one of property match or relationship match")
	}
	if propertyMode && !isIdentifier(f.Property) {
		return fmt.Errorf("invalid property name: %q", f.Property)
	}
	if relationMode {
		if !f.RelatedVia.IsValid() {
			return fmt.Errorf("invalid relationship type: %q", f.RelatedVia)
		}
		if f.RelatedTo == "" {
			return fmt.Errorf("relationship filter requires a target name")
		}
	}
	return nil
}

// isIdentifier reports whether s is a bare property identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// Statistics aggregates node counts per domain type plus the total
// relationship count.
type Statistics struct {
	CVECount          int64 `json:"cve_count"`
	TechniqueCount    int64 `json:"technique_count"`
	LabCount          int64 `json:"lab_count"`
	DefenseCount      int64 `json:"defense_count"`
	ToolCount         int64 `json:"tool_count"`
	RelationshipCount int64 `json:"relationship_count"`
}

// GraphSnapshot is a bounded view of the graph for visualization.
type GraphSnapshot struct {
	Nodes []SnapshotNode `json:"nodes"`
	Edges []SnapshotEdge `json:"edges"`
}

// SnapshotNode is one node of a visualization snapshot.
type SnapshotNode struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

// SnapshotEdge is one edge of a visualization snapshot.
type SnapshotEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
	Type string `json:"type"`
}

func extraString(extra map[string]any, key string) string {
	if extra == nil {
		return ""
	}
	if s, ok := extra[key].(string); ok {
		return s
	}
	return ""
}

func extraFloat(extra map[string]any, key string) float64 {
	if extra == nil {
		return 0
	}
	switch v := extra[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func extraBool(extra map[string]any, key string) bool {
	if extra == nil {
		return false
	}
	if b, ok := extra[key].(bool); ok {
		return b
	}
	return false
}

func extraStringSlice(extra map[string]any, key string) []string {
	if extra == nil {
		return nil
	}
	return toStringSlice(extra[key])
}

// toStringSlice converts driver-returned list values ([]any or []string)
// into a []string, dropping non-string entries.
func toStringSlice(v any) []string {
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// toInt64 safely converts driver-returned numeric types to int64.
// The Neo4j driver returns int64, but other sources may return float64.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	default:
		return 0, false
	}
}
