// Package service assembles the AIKG components behind a single facade:
// the knowledge query engine, the conversation store, the answer
// pipeline, and the seed importer, wired from one configuration over a
// shared graph client.
package service

import (
	"context"
	"log/slog"

	"github.com/LeonFTWANG/AIKG/internal/answer"
	"github.com/LeonFTWANG/AIKG/internal/config"
	"github.com/LeonFTWANG/AIKG/internal/conversation"
	"github.com/LeonFTWANG/AIKG/internal/graph"
	"github.com/LeonFTWANG/AIKG/internal/knowledge"
	"github.com/LeonFTWANG/AIKG/internal/llm"
	"github.com/LeonFTWANG/AIKG/internal/llm/providers"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

// Service exposes the module's boundary operations. Construct with New,
// then Open before use and Close on teardown.
type Service struct {
	client    graph.GraphClient
	engine    knowledge.QueryEngine
	importer  *knowledge.Importer
	store     *conversation.Store
	generator llm.Generator
	pipeline  *answer.Orchestrator
	logger    *slog.Logger
}

// Option adjusts the wiring of a Service under construction.
type Option func(*Service)

// WithGenerator overrides the generator built from configuration.
// Passing nil forces degraded graph-only answers.
func WithGenerator(g llm.Generator) Option {
	return func(s *Service) {
		s.generator = g
	}
}

// New wires a Service from configuration. A nil client builds the Neo4j
// client from cfg.Graph; tests inject their own. A generator that cannot
// be built degrades answering instead of failing construction.
func New(cfg *config.Config, client graph.GraphClient, logger *slog.Logger, opts ...Option) (*Service, error) {
	if cfg == nil {
		return nil, types.NewError(types.INVALID_ARGUMENT, "configuration is nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	if client == nil {
		built, err := graph.NewNeo4jClient(cfg.Graph.ClientConfig())
		if err != nil {
			return nil, err
		}
		client = built
	}

	s := &Service{
		client:    client,
		generator: buildGenerator(cfg, logger),
		logger:    logger,
	}
	for _, opt := range opts {
		opt(s)
	}

	// The tracing wrapper is no-op without an installed provider, so it
	// stays in the wiring unconditionally.
	s.engine = knowledge.NewTracedQueryEngine(knowledge.NewGraphQueryEngine(client, logger), nil)
	s.store = conversation.NewStore(client, logger)
	s.importer = knowledge.NewImporter(client, logger)
	s.pipeline = answer.NewOrchestrator(s.engine, s.store, s.generator, cfg.Answer.PipelineConfig(), logger)

	return s, nil
}

func buildGenerator(cfg *config.Config, logger *slog.Logger) llm.Generator {
	providerCfg, err := cfg.LLM.DefaultProviderConfig()
	if err != nil {
		logger.Warn("no usable generation provider, answers will degrade", "error", err)
		return nil
	}
	generator, err := providers.NewGenerator(providerCfg)
	if err != nil {
		logger.Warn("building generation provider failed, answers will degrade",
			"provider", string(providerCfg.Type),
			"error", err)
		return nil
	}
	return generator
}

// Open connects the underlying graph client.
func (s *Service) Open(ctx context.Context) error {
	return s.client.Connect(ctx)
}

// Close releases the graph connection.
func (s *Service) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// Search returns knowledge nodes matching the term.
func (s *Service) Search(ctx context.Context, term string, limit int) ([]knowledge.Node, error) {
	return s.engine.Search(ctx, term, limit)
}

// Related returns the subgraph within depth hops of the named node.
func (s *Service) Related(ctx context.Context, name string, depth int) (knowledge.Subgraph, error) {
	return s.engine.Related(ctx, name, depth)
}

// ShortestPath returns one fewest-hop learning path between two nodes.
func (s *Service) ShortestPath(ctx context.Context, startName, endName string) ([]knowledge.PathStep, error) {
	return s.engine.ShortestPath(ctx, startName, endName)
}

// ByFilter returns nodes of one type selected by property or relationship.
func (s *Service) ByFilter(ctx context.Context, filter knowledge.NodeFilter) ([]knowledge.Node, error) {
	return s.engine.ByFilter(ctx, filter)
}

// ByID returns the node with the given store-assigned id.
func (s *Service) ByID(ctx context.Context, id string) (knowledge.Node, error) {
	return s.engine.ByID(ctx, id)
}

// Statistics returns per-type node counts and the relationship total.
func (s *Service) Statistics(ctx context.Context) (knowledge.Statistics, error) {
	return s.engine.Statistics(ctx)
}

// Visualization returns a bounded snapshot of the graph for rendering.
func (s *Service) Visualization(ctx context.Context, limit int) (knowledge.GraphSnapshot, error) {
	return s.engine.Visualization(ctx, limit)
}

// Answer runs the full question answering pipeline.
func (s *Service) Answer(ctx context.Context, req answer.Request) (answer.Result, error) {
	return s.pipeline.Answer(ctx, req)
}

// Summarize produces a short generated summary of one knowledge node.
func (s *Service) Summarize(ctx context.Context, nodeName string) (string, error) {
	return s.pipeline.Summarize(ctx, nodeName)
}

// RegisterUser creates a user account. False means the name was taken.
func (s *Service) RegisterUser(ctx context.Context, username, password string) (bool, error) {
	return s.store.RegisterUser(ctx, username, password)
}

// Authenticate verifies a username and password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) error {
	return s.store.Authenticate(ctx, username, password)
}

// CreateConversation opens a new conversation owned by the user.
func (s *Service) CreateConversation(ctx context.Context, userID, title string) (conversation.Conversation, error) {
	return s.store.CreateConversation(ctx, userID, title)
}

// ListConversations returns the user's conversations, most recent first.
func (s *Service) ListConversations(ctx context.Context, userID string) ([]conversation.Conversation, error) {
	return s.store.ListConversations(ctx, userID)
}

// Messages returns the conversation's messages in timestamp order.
func (s *Service) Messages(ctx context.Context, conversationID string) ([]conversation.Message, error) {
	return s.store.Messages(ctx, conversationID)
}

// DeleteConversation removes a conversation the user owns. False covers
// both a missing conversation and one owned by someone else.
func (s *Service) DeleteConversation(ctx context.Context, conversationID, userID string) (bool, error) {
	return s.store.DeleteConversation(ctx, conversationID, userID)
}

// ImportSeed loads a seed file and imports its records, optionally
// linking cross-references afterwards.
func (s *Service) ImportSeed(ctx context.Context, path string, link bool) (knowledge.ImportStats, error) {
	records, err := knowledge.LoadSeedFile(path)
	if err != nil {
		return knowledge.ImportStats{}, err
	}
	if err := s.importer.EnsureConstraints(ctx); err != nil {
		return knowledge.ImportStats{}, err
	}
	stats, err := s.importer.ImportBatch(ctx, records)
	if err != nil {
		return stats, err
	}
	if link {
		if err := s.importer.LinkRelated(ctx); err != nil {
			return stats, err
		}
	}
	return stats, nil
}
