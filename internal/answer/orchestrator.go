// Package answer orchestrates the question answering pipeline: topic
// evaluation, knowledge retrieval, prompt assembly, generation, and
// best-effort persistence of the finished turn.
package answer

import (
	"context"
	"log/slog"
	"strings"

	"github.com/LeonFTWANG/AIKG/internal/conversation"
	"github.com/LeonFTWANG/AIKG/internal/knowledge"
	"github.com/LeonFTWANG/AIKG/internal/llm"
	"github.com/LeonFTWANG/AIKG/internal/topic"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

// KnowledgeSource is the slice of the query engine the pipeline needs.
type KnowledgeSource interface {
	Search(ctx context.Context, term string, limit int) ([]knowledge.Node, error)
	Related(ctx context.Context, name string, depth int) (knowledge.Subgraph, error)
}

// TurnStore replays conversation history and persists finished exchanges.
type TurnStore interface {
	Messages(ctx context.Context, conversationID string) ([]conversation.Message, error)
	AppendMessage(ctx context.Context, conversationID string, msg conversation.Message) error
}

// Request identifies a question and, optionally, the conversation it
// belongs to. Persistence happens only when both ConversationID and
// UserID are set.
type Request struct {
	Question       string
	ConversationID string
	UserID         string
}

// Result carries the answer, the knowledge items behind it, and the mode
// the answer was actually produced in. Degraded answers always report
// freeform mode regardless of what the topic evaluation asked for.
type Result struct {
	Answer      string           `json:"answer"`
	Supporting  []knowledge.Node `json:"related_knowledge"`
	ContextUsed bool             `json:"context_used"`
	Mode        llm.Mode         `json:"mode"`
}

// Orchestrator runs the answer pipeline. A nil generator is allowed and
// routes every question to the degraded graph-only answer. A nil store
// disables history and persistence but never fails a question.
type Orchestrator struct {
	source    KnowledgeSource
	store     TurnStore
	generator llm.Generator
	config    Config
	logger    *slog.Logger
}

// NewOrchestrator wires the pipeline collaborators together.
func NewOrchestrator(source KnowledgeSource, store TurnStore, generator llm.Generator, cfg Config, logger *slog.Logger) *Orchestrator {
	cfg.ApplyDefaults()
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		source:    source,
		store:     store,
		generator: generator,
		config:    cfg,
		logger:    logger,
	}
}

// Answer runs the full pipeline for one question. Retrieval, generation,
// and persistence are each best-effort: their failures degrade the
// answer but are never surfaced to the caller. The only error condition
// is an empty question.
func (o *Orchestrator) Answer(ctx context.Context, req Request) (Result, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return Result{}, types.NewError(types.INVALID_ARGUMENT, "question must not be empty")
	}

	// Coverage reads the full history; only the prompt is windowed.
	history := o.loadHistory(ctx, req.ConversationID)
	decision := topic.Evaluate(question, history)

	supporting := o.collectSupporting(ctx, topic.Keywords(question))
	knowledgeContext := buildContextBlock(supporting)
	historyText := historyBlock(tail(history, o.config.HistoryWindow))

	text, generated := o.generate(ctx, question, knowledgeContext, historyText, decision.Mode)
	mode := decision.Mode
	if !generated {
		text = o.degradedAnswer(question, supporting)
		mode = llm.ModeFreeform
	}

	o.persistTurn(ctx, req, question, text, mode, supporting)

	return Result{
		Answer:      text,
		Supporting:  supporting,
		ContextUsed: len(supporting) > 0,
		Mode:        mode,
	}, nil
}

func (o *Orchestrator) loadHistory(ctx context.Context, conversationID string) []conversation.Message {
	if conversationID == "" || o.store == nil {
		return nil
	}
	history, err := o.store.Messages(ctx, conversationID)
	if err != nil {
		o.logger.Warn("loading conversation history failed",
			"conversation_id", conversationID,
			"error", err)
		return nil
	}
	return history
}

// collectSupporting searches the graph once per keyword and merges the
// results, deduplicated by display name with first occurrence winning,
// up to the configured cap. Search failures skip the keyword.
func (o *Orchestrator) collectSupporting(ctx context.Context, keywords []string) []knowledge.Node {
	items := make([]knowledge.Node, 0, o.config.MaxContextItems)
	seen := make(map[string]bool, o.config.MaxContextItems)
	for _, keyword := range keywords {
		if len(items) >= o.config.MaxContextItems {
			break
		}
		nodes, err := o.source.Search(ctx, keyword, o.config.SearchLimit)
		if err != nil {
			o.logger.Warn("knowledge search failed", "keyword", keyword, "error", err)
			continue
		}
		for _, node := range nodes {
			if len(items) >= o.config.MaxContextItems {
				break
			}
			name := node.DisplayName()
			if name == "" || seen[name] {
				continue
			}
			seen[name] = true
			items = append(items, node)
		}
	}
	return items
}

// generate calls the generator under the configured timeout. Any
// failure, including timeout and cancellation, reports false so the
// caller takes the degraded path.
func (o *Orchestrator) generate(ctx context.Context, question, knowledgeContext, historyText string, mode llm.Mode) (string, bool) {
	if o.generator == nil {
		return "", false
	}

	genCtx, cancel := context.WithTimeout(ctx, o.config.GenerationTimeout)
	defer cancel()

	text, err := o.generator.Generate(genCtx, llm.GenerationRequest{
		System: llm.SystemPromptFor(mode),
		Prompt: userPrompt(question, knowledgeContext, historyText),
		Mode:   mode,
	})
	if err != nil {
		o.logger.Warn("answer generation failed", "mode", mode.String(), "error", err)
		return "", false
	}
	if strings.TrimSpace(text) == "" {
		o.logger.Warn("generator returned an empty answer", "mode", mode.String())
		return "", false
	}
	return text, true
}

func (o *Orchestrator) persistTurn(ctx context.Context, req Request, question, answerText string, mode llm.Mode, supporting []knowledge.Node) {
	if req.ConversationID == "" || req.UserID == "" || o.store == nil {
		return
	}
	msg := conversation.Message{
		Question:         question,
		Answer:           answerText,
		Mode:             mode,
		RelatedKnowledge: supporting,
	}
	if err := o.store.AppendMessage(ctx, req.ConversationID, msg); err != nil {
		o.logger.Warn("persisting conversation turn failed",
			"conversation_id", req.ConversationID,
			"error", err)
	}
}
