// Package conversation persists users, conversations, and chat messages in
// the graph alongside the knowledge they reference.
//
// The layout is three node labels chained by two relationship types:
//
//	(User)-[:HAS_CONVERSATION]->(Conversation)-[:HAS_MESSAGE]->(Message)
//
// Messages snapshot the knowledge items that informed an answer as a JSON
// string property, so history survives later graph edits.
package conversation

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/LeonFTWANG/AIKG/internal/graph"
	"github.com/LeonFTWANG/AIKG/internal/knowledge"
	"github.com/LeonFTWANG/AIKG/internal/llm"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

// DefaultTitle names conversations created without one.
const DefaultTitle = "New Chat"

// Conversation is one chat thread owned by a user.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Message is one question/answer exchange inside a conversation.
// Mode records how the answer was generated; messages persisted before
// mode tagging carry ModeUnknown and are classified by content instead.
type Message struct {
	Question         string           `json:"question"`
	Answer           string           `json:"answer"`
	Mode             llm.Mode         `json:"mode,omitempty"`
	RelatedKnowledge []knowledge.Node `json:"related_knowledge"`
	Timestamp        time.Time        `json:"timestamp"`
}

// Store persists conversations in the graph.
type Store struct {
	client graph.GraphClient
	logger *slog.Logger
}

// NewStore creates a conversation store on top of the given client.
func NewStore(client graph.GraphClient, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{client: client, logger: logger}
}

// RegisterUser creates a user with a bcrypt password hash. Returns false
// without error when the username is already taken.
func (s *Store) RegisterUser(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, types.NewError(types.INVALID_ARGUMENT, "username and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return false, types.WrapError(types.INVALID_ARGUMENT, "failed to hash password", err)
	}

	cypher := `
MERGE (u:User {username: $username})
ON CREATE SET u.password_hash = $password_hash,
              u.created_at = datetime()
`

	result, err := s.client.Write(ctx, cypher, map[string]any{
		"username":      username,
		"password_hash": string(hash),
	})
	if err != nil {
		return false, types.WrapError(types.GRAPH_UNAVAILABLE, "failed to register user", err)
	}

	created := result.Summary.NodesCreated > 0
	if !created {
		s.logger.Debug("username already registered", "username", username)
	}
	return created, nil
}

// PasswordHash returns the stored bcrypt hash for the username.
func (s *Store) PasswordHash(ctx context.Context, username string) (string, error) {
	if username == "" {
		return "", types.NewError(types.INVALID_ARGUMENT, "username is required")
	}

	cypher := `MATCH (u:User {username: $username}) RETURN u.password_hash AS hash`

	result, err := s.client.Query(ctx, cypher, map[string]any{"username": username})
	if err != nil {
		return "", types.WrapError(types.GRAPH_UNAVAILABLE, "failed to look up user", err)
	}
	if len(result.Records) == 0 {
		return "", types.NewError(types.USER_NOT_FOUND, "user not found: "+username)
	}

	hash, ok := result.Records[0]["hash"].(string)
	if !ok || hash == "" {
		return "", types.NewError(types.USER_NOT_FOUND, "user has no password hash: "+username)
	}
	return hash, nil
}

// Authenticate verifies the password against the stored hash.
func (s *Store) Authenticate(ctx context.Context, username, password string) error {
	hash, err := s.PasswordHash(ctx, username)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return types.NewError(types.AUTH_FAILED, "invalid credentials")
	}
	return nil
}

// CreateConversation starts a new conversation for the user. An empty
// title falls back to DefaultTitle.
func (s *Store) CreateConversation(ctx context.Context, userID, title string) (Conversation, error) {
	if userID == "" {
		return Conversation{}, types.NewError(types.INVALID_ARGUMENT, "user id is required")
	}
	if title == "" {
		title = DefaultTitle
	}

	cypher := `
MATCH (u:User {username: $user_id})
CREATE (c:Conversation {
    id: $conversation_id,
    title: $title,
    created_at: datetime(),
    updated_at: datetime()
})
MERGE (u)-[:HAS_CONVERSATION]->(c)
RETURN c.id AS id, c.title AS title, c.created_at AS created_at, c.updated_at AS updated_at
`

	result, err := s.client.Write(ctx, cypher, map[string]any{
		"user_id":         userID,
		"conversation_id": uuid.New().String(),
		"title":           title,
	})
	if err != nil {
		return Conversation{}, types.WrapError(types.GRAPH_UNAVAILABLE, "failed to create conversation", err)
	}
	if len(result.Records) == 0 {
		return Conversation{}, types.NewError(types.USER_NOT_FOUND, "user not found: "+userID)
	}

	return conversationFromRecord(result.Records[0]), nil
}

// ListConversations returns the user's conversations, most recently
// updated first. Unknown users get an empty list.
func (s *Store) ListConversations(ctx context.Context, userID string) ([]Conversation, error) {
	if userID == "" {
		return nil, types.NewError(types.INVALID_ARGUMENT, "user id is required")
	}

	cypher := `
MATCH (u:User {username: $user_id})-[:HAS_CONVERSATION]->(c)
RETURN c.id AS id, c.title AS title, c.created_at AS created_at, c.updated_at AS updated_at
ORDER BY c.updated_at DESC
`

	result, err := s.client.Query(ctx, cypher, map[string]any{"user_id": userID})
	if err != nil {
		return nil, types.WrapError(types.GRAPH_UNAVAILABLE, "failed to list conversations", err)
	}

	conversations := make([]Conversation, 0, len(result.Records))
	for _, record := range result.Records {
		conversations = append(conversations, conversationFromRecord(record))
	}
	return conversations, nil
}

// AppendMessage adds an exchange to the conversation and bumps its
// updated_at so listings sort it first.
func (s *Store) AppendMessage(ctx context.Context, conversationID string, msg Message) error {
	if conversationID == "" {
		return types.NewError(types.INVALID_ARGUMENT, "conversation id is required")
	}

	cypher := `
MATCH (c:Conversation {id: $conversation_id})
CREATE (m:Message {
    question: $question,
    answer: $answer,
    mode: $mode,
    related_knowledge: $related_knowledge,
    timestamp: datetime()
})
MERGE (c)-[:HAS_MESSAGE]->(m)
SET c.updated_at = datetime()
`

	result, err := s.client.Write(ctx, cypher, map[string]any{
		"conversation_id":   conversationID,
		"question":          msg.Question,
		"answer":            msg.Answer,
		"mode":              msg.Mode.String(),
		"related_knowledge": s.encodeSnapshot(msg.RelatedKnowledge),
	})
	if err != nil {
		return types.WrapError(types.GRAPH_UNAVAILABLE, "failed to append message", err)
	}
	if result.Summary.NodesCreated == 0 {
		return types.NewError(types.CONVERSATION_NOT_FOUND, "conversation not found: "+conversationID)
	}
	return nil
}

// Messages returns the conversation's exchanges in chronological order.
// A missing conversation yields an empty list, not an error.
func (s *Store) Messages(ctx context.Context, conversationID string) ([]Message, error) {
	if conversationID == "" {
		return nil, types.NewError(types.INVALID_ARGUMENT, "conversation id is required")
	}

	cypher := `
MATCH (c:Conversation {id: $conversation_id})-[:HAS_MESSAGE]->(m)
RETURN m.question AS question, m.answer AS answer, m.mode AS mode,
       m.related_knowledge AS related_knowledge, m.timestamp AS timestamp
ORDER BY m.timestamp ASC
`

	result, err := s.client.Query(ctx, cypher, map[string]any{"conversation_id": conversationID})
	if err != nil {
		return nil, types.WrapError(types.GRAPH_UNAVAILABLE, "failed to load messages", err)
	}

	messages := make([]Message, 0, len(result.Records))
	for _, record := range result.Records {
		messages = append(messages, s.messageFromRecord(record))
	}
	return messages, nil
}

// DeleteConversation removes the conversation and its messages. Ownership
// is part of the match: a conversation that does not exist and one owned
// by someone else both report false, with no way to tell them apart.
func (s *Store) DeleteConversation(ctx context.Context, conversationID, userID string) (bool, error) {
	if conversationID == "" || userID == "" {
		return false, types.NewError(types.INVALID_ARGUMENT, "conversation id and user id are required")
	}

	cypher := `
MATCH (u:User {username: $user_id})-[:HAS_CONVERSATION]->(c:Conversation {id: $conversation_id})
OPTIONAL MATCH (c)-[:HAS_MESSAGE]->(m:Message)
WITH c, collect(m) AS messages
FOREACH (msg IN messages | DETACH DELETE msg)
DETACH DELETE c
`

	result, err := s.client.Write(ctx, cypher, map[string]any{
		"user_id":         userID,
		"conversation_id": conversationID,
	})
	if err != nil {
		return false, types.WrapError(types.GRAPH_UNAVAILABLE, "failed to delete conversation", err)
	}

	deleted := result.Summary.NodesDeleted > 0
	if deleted {
		s.logger.Info("conversation deleted", "conversation_id", conversationID, "user", userID)
	} else {
		s.logger.Warn("conversation not found or not permitted", "conversation_id", conversationID, "user", userID)
	}
	return deleted, nil
}

// encodeSnapshot serializes knowledge items for the message property.
// Serialization failure degrades to an empty list rather than losing the
// message.
func (s *Store) encodeSnapshot(items []knowledge.Node) string {
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		s.logger.Warn("failed to serialize knowledge snapshot", "error", err)
		return "[]"
	}
	return string(data)
}

// decodeSnapshot restores knowledge items from the message property.
// Unreadable snapshots (older formats, truncation) decode to empty.
func (s *Store) decodeSnapshot(raw string) []knowledge.Node {
	if raw == "" || raw == "[]" {
		return []knowledge.Node{}
	}
	var items []knowledge.Node
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.Warn("failed to decode knowledge snapshot", "error", err)
		return []knowledge.Node{}
	}
	return items
}

func (s *Store) messageFromRecord(record map[string]any) Message {
	msg := Message{
		RelatedKnowledge: []knowledge.Node{},
	}
	if q, ok := record["question"].(string); ok {
		msg.Question = q
	}
	if a, ok := record["answer"].(string); ok {
		msg.Answer = a
	}
	if m, ok := record["mode"].(string); ok {
		msg.Mode = llm.ParseMode(m)
	}
	if raw, ok := record["related_knowledge"].(string); ok {
		msg.RelatedKnowledge = s.decodeSnapshot(raw)
	}
	msg.Timestamp = toTime(record["timestamp"])
	return msg
}

func conversationFromRecord(record map[string]any) Conversation {
	conv := Conversation{}
	if id, ok := record["id"].(string); ok {
		conv.ID = id
	}
	if title, ok := record["title"].(string); ok {
		conv.Title = title
	}
	conv.CreatedAt = toTime(record["created_at"])
	conv.UpdatedAt = toTime(record["updated_at"])
	return conv
}

// toTime converts a record value to time.Time. The driver maps Neo4j
// DATETIME to time.Time already; strings cover fixtures and exports.
func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse(time.RFC3339, t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}
