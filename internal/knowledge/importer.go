package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/LeonFTWANG/AIKG/internal/graph"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

// Default property values applied when a seed record leaves a field empty.
const (
	defaultCVECategory       = "漏洞库"
	defaultTechniqueCategory = "未分类"
	defaultLabCategory       = "综合靶场"
	defaultSeverity          = "MEDIUM"
	defaultDifficulty        = "INTERMEDIATE"
)

// relationWorkers bounds the concurrent relationship writes fanned out by a
// single record import.
const relationWorkers = 4

// constraintStatements hold the per-label uniqueness constraints. CVE nodes
// are keyed by id, every other domain label by name.
var constraintStatements = []string{
	"CREATE CONSTRAINT IF NOT EXISTS FOR (c:CVE) REQUIRE c.id IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (v:Vulnerability) REQUIRE v.id IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (t:Technique) REQUIRE t.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (l:Lab) REQUIRE l.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (d:Defense) REQUIRE d.name IS UNIQUE",
	"CREATE CONSTRAINT IF NOT EXISTS FOR (tool:Tool) REQUIRE tool.name IS UNIQUE",
}

// ImportStats counts the outcome of a batch import by record kind.
type ImportStats struct {
	CVE       int `json:"cve"`
	Technique int `json:"technique"`
	Lab       int `json:"lab"`
	Other     int `json:"other"`
	Failed    int `json:"failed"`
}

// Total returns the number of records the batch attempted.
func (s ImportStats) Total() int {
	return s.CVE + s.Technique + s.Lab + s.Other + s.Failed
}

// Importer writes seed knowledge into the graph and links related entries.
// All mutations are MERGE-based so re-importing the same seed file is
// idempotent.
type Importer struct {
	client graph.GraphClient
	logger *slog.Logger
}

// NewImporter creates an Importer backed by the given graph client.
func NewImporter(client graph.GraphClient, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		client: client,
		logger: logger,
	}
}

// EnsureConstraints creates the uniqueness constraints the importer relies
// on. Individual statement failures are logged and skipped so that accounts
// without schema privileges can still load data; cancellation aborts the
// loop.
func (i *Importer) EnsureConstraints(ctx context.Context) error {
	for _, stmt := range constraintStatements {
		if _, err := i.client.Write(ctx, stmt, nil); err != nil {
			if ctx.Err() != nil {
				return types.WrapError(types.IMPORT_FAILED, "constraint setup cancelled", err)
			}
			i.logger.Warn("constraint setup skipped", "statement", stmt, "error", err)
		}
	}
	return nil
}

// ImportCVE upserts a CVE node keyed by id. A record without an id falls
// back to its name, matching how scraped advisories are keyed upstream.
func (i *Importer) ImportCVE(ctx context.Context, rec SeedRecord) error {
	id := rec.ID
	if id == "" {
		id = rec.Name
	}
	if id == "" {
		return types.NewError(types.INVALID_ARGUMENT, "cve record requires an id or name")
	}

	cypher := `
		MERGE (c:CVE {id: $id})
		SET c.name = $name,
			c.description = $description,
			c.severity = $severity,
			c.cvss_score = $cvss_score,
			c.published = $published,
			c.url = $url,
			c.category = $category,
			c.tags = $tags,
			c.updated_at = datetime()
	`

	params := map[string]any{
		"id":          id,
		"name":        rec.Name,
		"description": rec.Description,
		"severity":    orDefault(rec.Severity, "UNKNOWN"),
		"cvss_score":  rec.CVSSScore,
		"published":   rec.Published,
		"url":         rec.URL,
		"category":    orDefault(rec.Category, defaultCVECategory),
		"tags":        emptyIfNil(rec.Tags),
	}

	if _, err := i.client.Write(ctx, cypher, params); err != nil {
		return types.WrapError(types.IMPORT_FAILED, fmt.Sprintf("import cve %s", id), err)
	}

	i.logger.Debug("imported cve", "id", id)
	return nil
}

// ImportTechnique upserts a Technique node keyed by name, then links its
// defenses and tools. Defense and Tool nodes are created on demand.
func (i *Importer) ImportTechnique(ctx context.Context, rec SeedRecord) error {
	if rec.Name == "" {
		return types.NewError(types.INVALID_ARGUMENT, "technique record requires a name")
	}

	cypher := `
		MERGE (t:Technique {name: $name})
		SET t.description = $description,
			t.category = $category,
			t.severity = $severity,
			t.mitre_id = $mitre_id,
			t.tags = $tags,
			t.difficulty = $difficulty,
			t.updated_at = datetime()
	`

	params := map[string]any{
		"name":        rec.Name,
		"description": rec.Description,
		"category":    orDefault(rec.Category, defaultTechniqueCategory),
		"severity":    orDefault(rec.Severity, defaultSeverity),
		"mitre_id":    rec.MitreID,
		"tags":        emptyIfNil(rec.Tags),
		"difficulty":  orDefault(rec.Difficulty, defaultDifficulty),
	}

	if _, err := i.client.Write(ctx, cypher, params); err != nil {
		return types.WrapError(types.IMPORT_FAILED, fmt.Sprintf("import technique %s", rec.Name), err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(relationWorkers)
	for _, defense := range rec.Defenses {
		g.Go(func() error {
			return i.linkDefense(gCtx, rec.Name, defense)
		})
	}
	for _, tool := range rec.Tools {
		g.Go(func() error {
			return i.linkTool(gCtx, rec.Name, tool)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	i.logger.Debug("imported technique", "name", rec.Name)
	return nil
}

// ImportLab upserts a Lab node keyed by name, then links every topic to
// techniques whose names overlap with it.
func (i *Importer) ImportLab(ctx context.Context, rec SeedRecord) error {
	if rec.Name == "" {
		return types.NewError(types.INVALID_ARGUMENT, "lab record requires a name")
	}

	cypher := `
		MERGE (l:Lab {name: $name})
		SET l.description = $description,
			l.url = $url,
			l.category = $category,
			l.difficulty = $difficulty,
			l.topics = $topics,
			l.free = $free,
			l.tags = $tags,
			l.updated_at = datetime()
	`

	params := map[string]any{
		"name":        rec.Name,
		"description": rec.Description,
		"url":         rec.URL,
		"category":    orDefault(rec.Category, defaultLabCategory),
		"difficulty":  orDefault(rec.Difficulty, defaultDifficulty),
		"topics":      emptyIfNil(rec.Topics),
		"free":        rec.Free,
		"tags":        emptyIfNil(rec.Tags),
	}

	if _, err := i.client.Write(ctx, cypher, params); err != nil {
		return types.WrapError(types.IMPORT_FAILED, fmt.Sprintf("import lab %s", rec.Name), err)
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(relationWorkers)
	for _, topic := range rec.Topics {
		g.Go(func() error {
			return i.linkLabTopic(gCtx, rec.Name, topic)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	i.logger.Debug("imported lab", "name", rec.Name)
	return nil
}

// ImportBatch imports a list of seed records, isolating per-record failures
// so one bad entry does not abort the run. Exploit records are stored as CVE
// nodes. Records of unknown type count under Other and are skipped.
func (i *Importer) ImportBatch(ctx context.Context, records []SeedRecord) (ImportStats, error) {
	var stats ImportStats
	i.logger.Info("starting batch import", "records", len(records))

	for _, rec := range records {
		if ctx.Err() != nil {
			return stats, types.WrapError(types.IMPORT_FAILED, "batch import cancelled", ctx.Err())
		}

		switch strings.ToLower(rec.Type) {
		case "cve", "exploit":
			if err := i.ImportCVE(ctx, rec); err != nil {
				stats.Failed++
				i.logger.Error("cve import failed", "id", rec.ID, "name", rec.Name, "error", err)
				continue
			}
			stats.CVE++
		case "technique":
			if err := i.ImportTechnique(ctx, rec); err != nil {
				stats.Failed++
				i.logger.Error("technique import failed", "name", rec.Name, "error", err)
				continue
			}
			stats.Technique++
		case "lab":
			if err := i.ImportLab(ctx, rec); err != nil {
				stats.Failed++
				i.logger.Error("lab import failed", "name", rec.Name, "error", err)
				continue
			}
			stats.Lab++
		default:
			i.logger.Warn("skipping record of unknown type", "type", rec.Type, "name", rec.Name)
			stats.Other++
		}
	}

	i.logger.Info("batch import complete",
		"cve", stats.CVE,
		"technique", stats.Technique,
		"lab", stats.Lab,
		"other", stats.Other,
		"failed", stats.Failed)
	return stats, nil
}

// LinkRelated connects entries that reference each other. CVE nodes gain a
// RELATED_TO edge to every technique mentioned in their tags or description,
// and techniques sharing a category gain SIMILAR_TO edges in both directions.
func (i *Importer) LinkRelated(ctx context.Context) error {
	cveToTechnique := `
		MATCH (c:CVE), (t:Technique)
		WHERE any(tag IN c.tags WHERE toLower(t.name) CONTAINS toLower(tag))
		   OR toLower(c.description) CONTAINS toLower(t.name)
		MERGE (c)-[:RELATED_TO]->(t)
	`
	if _, err := i.client.Write(ctx, cveToTechnique, nil); err != nil {
		return types.WrapError(types.IMPORT_FAILED, "link cve to technique", err)
	}

	similarTechniques := `
		MATCH (t1:Technique), (t2:Technique)
		WHERE t1 <> t2 AND t1.category = t2.category
		MERGE (t1)-[:SIMILAR_TO]->(t2)
	`
	if _, err := i.client.Write(ctx, similarTechniques, nil); err != nil {
		return types.WrapError(types.IMPORT_FAILED, "link similar techniques", err)
	}

	i.logger.Info("relationship linking complete")
	return nil
}

func (i *Importer) linkDefense(ctx context.Context, technique, defense string) error {
	cypher := `
		MATCH (t:Technique {name: $technique})
		MERGE (d:Defense {name: $defense})
		MERGE (d)-[:MITIGATES]->(t)
	`
	params := map[string]any{
		"technique": technique,
		"defense":   defense,
	}
	if _, err := i.client.Write(ctx, cypher, params); err != nil {
		return types.WrapError(types.IMPORT_FAILED, fmt.Sprintf("link defense %s", defense), err)
	}
	return nil
}

func (i *Importer) linkTool(ctx context.Context, technique, tool string) error {
	cypher := `
		MATCH (t:Technique {name: $technique})
		MERGE (tool:Tool {name: $tool})
		MERGE (tool)-[:USED_FOR]->(t)
	`
	params := map[string]any{
		"technique": technique,
		"tool":      tool,
	}
	if _, err := i.client.Write(ctx, cypher, params); err != nil {
		return types.WrapError(types.IMPORT_FAILED, fmt.Sprintf("link tool %s", tool), err)
	}
	return nil
}

// linkLabTopic links a lab to techniques whose name contains the topic or is
// contained by it. Topics without a matching technique are left unlinked.
func (i *Importer) linkLabTopic(ctx context.Context, lab, topic string) error {
	cypher := `
		MATCH (l:Lab {name: $lab})
		OPTIONAL MATCH (t:Technique)
		WHERE t.name CONTAINS $topic OR $topic CONTAINS t.name
		WITH l, t
		WHERE t IS NOT NULL
		MERGE (l)-[:PRACTICES]->(t)
	`
	params := map[string]any{
		"lab":   lab,
		"topic": topic,
	}
	if _, err := i.client.Write(ctx, cypher, params); err != nil {
		return types.WrapError(types.IMPORT_FAILED, fmt.Sprintf("link lab topic %s", topic), err)
	}
	return nil
}

// orDefault returns fallback when value is empty.
func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// emptyIfNil keeps list properties stored as empty lists rather than nulls
// so Cypher list predicates keep working on them.
func emptyIfNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
