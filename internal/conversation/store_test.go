package conversation

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/LeonFTWANG/AIKG/internal/graph"
	"github.com/LeonFTWANG/AIKG/internal/knowledge"
	"github.com/LeonFTWANG/AIKG/internal/llm"
	"github.com/LeonFTWANG/AIKG/internal/types"
)

func newTestStore(t *testing.T) (*Store, *graph.MockGraphClient) {
	t.Helper()
	mock := graph.NewMockGraphClient()
	require.NoError(t, mock.Connect(context.Background()))
	return NewStore(mock, nil), mock
}

func writeSummary(nodesCreated, nodesDeleted int) graph.QueryResult {
	return graph.QueryResult{
		Records: []map[string]any{},
		Summary: graph.QuerySummary{
			NodesCreated: nodesCreated,
			NodesDeleted: nodesDeleted,
		},
	}
}

func TestStore_RegisterUser(t *testing.T) {
	store, mock := newTestStore(t)
	mock.AddWriteResult(writeSummary(1, 0))

	created, err := store.RegisterUser(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.True(t, created)

	call, ok := mock.LastCallByMethod("Write")
	require.True(t, ok)
	assert.Contains(t, call.Cypher, "MERGE (u:User {username: $username})")
	assert.Contains(t, call.Cypher, "ON CREATE SET")
	assert.Equal(t, "alice", call.Params["username"])

	// The password itself never reaches the store.
	hash, ok := call.Params["password_hash"].(string)
	require.True(t, ok)
	assert.NotEqual(t, "s3cret", hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("s3cret")))
}

func TestStore_RegisterUser_Duplicate(t *testing.T) {
	store, mock := newTestStore(t)
	mock.AddWriteResult(writeSummary(0, 0))

	created, err := store.RegisterUser(context.Background(), "alice", "s3cret")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestStore_RegisterUser_MissingArgs(t *testing.T) {
	store, mock := newTestStore(t)

	for _, args := range [][2]string{{"", "pw"}, {"alice", ""}, {"", ""}} {
		_, err := store.RegisterUser(context.Background(), args[0], args[1])
		require.Error(t, err)
		assert.True(t, types.IsCode(err, types.INVALID_ARGUMENT))
	}
	assert.Equal(t, 0, len(mock.GetCallsByMethod("Write")))
}

func TestStore_PasswordHash(t *testing.T) {
	store, mock := newTestStore(t)
	mock.AddQueryResult(graph.QueryResult{
		Records: []map[string]any{{"hash": "$2a$10$abcdefg"}},
	})

	hash, err := store.PasswordHash(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$abcdefg", hash)
}

func TestStore_PasswordHash_NotFound(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.PasswordHash(context.Background(), "ghost")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.USER_NOT_FOUND))
}

func TestStore_Authenticate(t *testing.T) {
	store, mock := newTestStore(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	mock.AddQueryResult(graph.QueryResult{
		Records: []map[string]any{{"hash": string(hash)}},
	})
	mock.AddQueryResult(graph.QueryResult{
		Records: []map[string]any{{"hash": string(hash)}},
	})

	assert.NoError(t, store.Authenticate(context.Background(), "alice", "s3cret"))

	err = store.Authenticate(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.AUTH_FAILED))
}

func TestStore_CreateConversation(t *testing.T) {
	store, mock := newTestStore(t)
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	mock.AddWriteResult(graph.QueryResult{
		Records: []map[string]any{{
			"id":         "conv-1",
			"title":      "SQL注入学习",
			"created_at": now,
			"updated_at": now,
		}},
		Summary: graph.QuerySummary{NodesCreated: 1},
	})

	conv, err := store.CreateConversation(context.Background(), "alice", "SQL注入学习")
	require.NoError(t, err)
	assert.Equal(t, "conv-1", conv.ID)
	assert.Equal(t, "SQL注入学习", conv.Title)
	assert.Equal(t, now, conv.CreatedAt)

	call, ok := mock.LastCallByMethod("Write")
	require.True(t, ok)
	assert.Contains(t, call.Cypher, "MERGE (u)-[:HAS_CONVERSATION]->(c)")
	assert.NotEmpty(t, call.Params["conversation_id"])
}

func TestStore_CreateConversation_DefaultTitle(t *testing.T) {
	store, mock := newTestStore(t)
	mock.AddWriteResult(graph.QueryResult{
		Records: []map[string]any{{"id": "conv-1", "title": DefaultTitle}},
		Summary: graph.QuerySummary{NodesCreated: 1},
	})

	_, err := store.CreateConversation(context.Background(), "alice", "")
	require.NoError(t, err)

	call, _ := mock.LastCallByMethod("Write")
	assert.Equal(t, DefaultTitle, call.Params["title"])
}

func TestStore_CreateConversation_UnknownUser(t *testing.T) {
	store, mock := newTestStore(t)
	mock.AddWriteResult(writeSummary(0, 0))

	_, err := store.CreateConversation(context.Background(), "ghost", "title")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.USER_NOT_FOUND))
}

func TestStore_ListConversations(t *testing.T) {
	store, mock := newTestStore(t)
	newer := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	mock.AddQueryResult(graph.QueryResult{
		Records: []map[string]any{
			{"id": "conv-2", "title": "XSS", "created_at": older, "updated_at": newer},
			{"id": "conv-1", "title": "SQL注入", "created_at": older, "updated_at": older},
		},
	})

	conversations, err := store.ListConversations(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, conversations, 2)
	assert.Equal(t, "conv-2", conversations[0].ID)
	assert.Equal(t, newer, conversations[0].UpdatedAt)

	call, ok := mock.LastCallByMethod("Query")
	require.True(t, ok)
	assert.Contains(t, call.Cypher, "ORDER BY c.updated_at DESC")
}

func TestStore_ListConversations_Empty(t *testing.T) {
	store, _ := newTestStore(t)

	conversations, err := store.ListConversations(context.Background(), "alice")
	require.NoError(t, err)
	assert.NotNil(t, conversations)
	assert.Empty(t, conversations)
}

func TestStore_AppendMessage(t *testing.T) {
	store, mock := newTestStore(t)
	mock.AddWriteResult(writeSummary(1, 0))

	items := []knowledge.Node{
		{Type: knowledge.NodeTypeTechnique, Name: "SQL注入", Severity: knowledge.SeverityHigh},
	}
	err := store.AppendMessage(context.Background(), "conv-1", Message{
		Question:         "什么是SQL注入",
		Answer:           `{"vulnerability_introduction": "..."}`,
		Mode:             llm.ModeStructured,
		RelatedKnowledge: items,
	})
	require.NoError(t, err)

	call, ok := mock.LastCallByMethod("Write")
	require.True(t, ok)
	assert.Contains(t, call.Cypher, "MERGE (c)-[:HAS_MESSAGE]->(m)")
	assert.Contains(t, call.Cypher, "SET c.updated_at = datetime()")
	assert.Equal(t, "structured", call.Params["mode"])

	// The snapshot round-trips through its JSON string form.
	raw, ok := call.Params["related_knowledge"].(string)
	require.True(t, ok)
	var decoded []knowledge.Node
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, "SQL注入", decoded[0].Name)
	assert.Equal(t, knowledge.SeverityHigh, decoded[0].Severity)
}

func TestStore_AppendMessage_EmptySnapshot(t *testing.T) {
	store, mock := newTestStore(t)
	mock.AddWriteResult(writeSummary(1, 0))

	err := store.AppendMessage(context.Background(), "conv-1", Message{
		Question: "q",
		Answer:   "a",
		Mode:     llm.ModeFreeform,
	})
	require.NoError(t, err)

	call, _ := mock.LastCallByMethod("Write")
	assert.Equal(t, "[]", call.Params["related_knowledge"])
	assert.Equal(t, "text", call.Params["mode"])
}

func TestStore_AppendMessage_MissingConversation(t *testing.T) {
	store, mock := newTestStore(t)
	mock.AddWriteResult(writeSummary(0, 0))

	err := store.AppendMessage(context.Background(), "ghost", Message{Question: "q", Answer: "a"})
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.CONVERSATION_NOT_FOUND))
}

func TestStore_Messages(t *testing.T) {
	store, mock := newTestStore(t)
	early := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	late := time.Date(2025, 6, 1, 11, 0, 0, 0, time.UTC)
	snapshot, err := json.Marshal([]knowledge.Node{{Type: knowledge.NodeTypeCVE, Name: "CVE-2021-44228"}})
	require.NoError(t, err)

	mock.AddQueryResult(graph.QueryResult{
		Records: []map[string]any{
			{
				"question":          "什么是SQL注入",
				"answer":            `{"vulnerability_introduction": "x", "classic_cases": "y"}`,
				"mode":              "structured",
				"related_knowledge": string(snapshot),
				"timestamp":         early,
			},
			{
				// Legacy row: no mode property, empty snapshot.
				"question":          "如何防御",
				"answer":            "使用参数化查询。",
				"related_knowledge": "[]",
				"timestamp":         late,
			},
		},
	})

	messages, err := store.Messages(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Len(t, messages, 2)

	assert.Equal(t, llm.ModeStructured, messages[0].Mode)
	require.Len(t, messages[0].RelatedKnowledge, 1)
	assert.Equal(t, "CVE-2021-44228", messages[0].RelatedKnowledge[0].Name)
	assert.Equal(t, early, messages[0].Timestamp)

	assert.Equal(t, llm.ModeUnknown, messages[1].Mode)
	assert.Empty(t, messages[1].RelatedKnowledge)

	call, ok := mock.LastCallByMethod("Query")
	require.True(t, ok)
	assert.Contains(t, call.Cypher, "ORDER BY m.timestamp ASC")
}

func TestStore_Messages_TolerantSnapshotDecode(t *testing.T) {
	store, mock := newTestStore(t)
	mock.AddQueryResult(graph.QueryResult{
		Records: []map[string]any{
			{"question": "q", "answer": "a", "related_knowledge": "{not valid json"},
		},
	})

	messages, err := store.Messages(context.Background(), "conv-1")
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.NotNil(t, messages[0].RelatedKnowledge)
	assert.Empty(t, messages[0].RelatedKnowledge)
}

func TestStore_Messages_MissingConversation(t *testing.T) {
	store, _ := newTestStore(t)

	messages, err := store.Messages(context.Background(), "ghost")
	require.NoError(t, err)
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestStore_DeleteConversation(t *testing.T) {
	store, mock := newTestStore(t)
	// Conversation plus two messages removed.
	mock.AddWriteResult(writeSummary(0, 3))

	deleted, err := store.DeleteConversation(context.Background(), "conv-1", "alice")
	require.NoError(t, err)
	assert.True(t, deleted)

	call, ok := mock.LastCallByMethod("Write")
	require.True(t, ok)
	assert.Contains(t, call.Cypher, "MATCH (u:User {username: $user_id})-[:HAS_CONVERSATION]->(c:Conversation {id: $conversation_id})")
	assert.Contains(t, call.Cypher, "DETACH DELETE c")
}

func TestStore_DeleteConversation_NotFoundOrNotOwned(t *testing.T) {
	store, mock := newTestStore(t)
	mock.AddWriteResult(writeSummary(0, 0))

	deleted, err := store.DeleteConversation(context.Background(), "conv-1", "mallory")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestStore_StoreErrors(t *testing.T) {
	store, mock := newTestStore(t)
	mock.SetQueryError(assert.AnError)
	mock.SetWriteError(assert.AnError)

	_, err := store.ListConversations(context.Background(), "alice")
	assert.True(t, types.IsCode(err, types.GRAPH_UNAVAILABLE))

	err = store.AppendMessage(context.Background(), "conv-1", Message{Question: "q"})
	assert.True(t, types.IsCode(err, types.GRAPH_UNAVAILABLE))

	_, err = store.DeleteConversation(context.Background(), "conv-1", "alice")
	assert.True(t, types.IsCode(err, types.GRAPH_UNAVAILABLE))
}

func TestToTime(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, now, toTime(now))
	assert.Equal(t, now, toTime("2025-06-01T00:00:00Z"))
	assert.True(t, toTime(nil).IsZero())
	assert.True(t, toTime(42).IsZero())
	assert.True(t, toTime("yesterday").IsZero())
}

func TestEncodeSnapshot_NeverFails(t *testing.T) {
	store, _ := newTestStore(t)

	// Unmarshalable extras degrade to the empty list instead of erroring.
	items := []knowledge.Node{{
		Name:  "broken",
		Extra: map[string]any{"ch": make(chan int)},
	}}
	assert.Equal(t, "[]", store.encodeSnapshot(items))
	assert.False(t, strings.Contains(store.encodeSnapshot(nil), "null"))
}
