package graph

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeonFTWANG/AIKG/internal/types"
)

func TestGraphClientConfig_Validate(t *testing.T) {
	valid := func() GraphClientConfig {
		return GraphClientConfig{
			URI:                     "bolt://localhost:7687",
			Username:                "neo4j",
			Password:                "password",
			ConnectionTimeout:       30 * time.Second,
			MaxTransactionRetryTime: 30 * time.Second,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*GraphClientConfig)
		wantErr bool
	}{
		{
			name:    "valid config",
			mutate:  func(c *GraphClientConfig) {},
			wantErr: false,
		},
		{
			name:    "empty URI",
			mutate:  func(c *GraphClientConfig) { c.URI = "" },
			wantErr: true,
		},
		{
			name:    "empty username",
			mutate:  func(c *GraphClientConfig) { c.Username = "" },
			wantErr: true,
		},
		{
			name:    "empty password",
			mutate:  func(c *GraphClientConfig) { c.Password = "" },
			wantErr: true,
		},
		{
			name:    "zero connection timeout",
			mutate:  func(c *GraphClientConfig) { c.ConnectionTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "negative retry time",
			mutate:  func(c *GraphClientConfig) { c.MaxTransactionRetryTime = -1 * time.Second },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(&config)

			err := config.Validate()

			if tt.wantErr {
				require.Error(t, err)
				var kgErr *types.AIKGError
				require.True(t, errors.As(err, &kgErr))
				assert.Equal(t, ErrCodeInvalidConfig, kgErr.Code)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	assert.Equal(t, "bolt://localhost:7687", config.URI)
	assert.Equal(t, "neo4j", config.Username)
	assert.Equal(t, 50, config.MaxConnectionPoolSize)
	assert.Equal(t, 30*time.Second, config.ConnectionTimeout)
	assert.Equal(t, 30*time.Second, config.MaxTransactionRetryTime)
	require.NoError(t, config.Validate())
}

func TestNewNeo4jClient_InvalidConfig(t *testing.T) {
	_, err := NewNeo4jClient(GraphClientConfig{})
	require.Error(t, err)
	assert.True(t, types.IsCode(err, ErrCodeInvalidConfig))
}

func TestNeo4jClient_NotConnected(t *testing.T) {
	client, err := NewNeo4jClient(DefaultConfig())
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("query before connect", func(t *testing.T) {
		_, err := client.Query(ctx, "MATCH (n) RETURN n", nil)
		require.Error(t, err)
		assert.True(t, types.IsCode(err, ErrCodeConnectionClosed))
	})

	t.Run("write before connect", func(t *testing.T) {
		_, err := client.Write(ctx, "MERGE (n:Technique {name: $name})", map[string]any{"name": "XSS"})
		require.Error(t, err)
		assert.True(t, types.IsCode(err, ErrCodeConnectionClosed))
	})

	t.Run("health before connect", func(t *testing.T) {
		status := client.Health(ctx)
		assert.True(t, status.IsUnhealthy())
	})

	t.Run("close before connect is a no-op", func(t *testing.T) {
		require.NoError(t, client.Close(ctx))
	})
}

func TestMockGraphClient_ConnectionState(t *testing.T) {
	mock := NewMockGraphClient()
	ctx := context.Background()

	assert.False(t, mock.IsConnected())

	require.NoError(t, mock.Connect(ctx))
	assert.True(t, mock.IsConnected())
	assert.True(t, mock.Health(ctx).IsHealthy())

	require.NoError(t, mock.Close(ctx))
	assert.False(t, mock.IsConnected())
	assert.True(t, mock.Health(ctx).IsUnhealthy())
}

func TestMockGraphClient_QueryFIFO(t *testing.T) {
	mock := NewMockGraphClient()
	ctx := context.Background()
	require.NoError(t, mock.Connect(ctx))

	first := QueryResult{
		Records: []map[string]any{{"name": "SQL Injection"}},
		Columns: []string{"name"},
	}
	second := QueryResult{
		Records: []map[string]any{{"name": "XSS"}},
		Columns: []string{"name"},
	}
	mock.AddQueryResult(first)
	mock.AddQueryResult(second)

	got1, err := mock.Query(ctx, "MATCH (n) RETURN n.name AS name", nil)
	require.NoError(t, err)
	assert.Equal(t, first.Records, got1.Records)

	got2, err := mock.Query(ctx, "MATCH (n) RETURN n.name AS name", nil)
	require.NoError(t, err)
	assert.Equal(t, second.Records, got2.Records)

	// Queue exhausted: empty result, no error.
	got3, err := mock.Query(ctx, "MATCH (n) RETURN n.name AS name", nil)
	require.NoError(t, err)
	assert.Empty(t, got3.Records)
}

func TestMockGraphClient_WriteQueueSeparateFromQuery(t *testing.T) {
	mock := NewMockGraphClient()
	ctx := context.Background()
	require.NoError(t, mock.Connect(ctx))

	mock.AddWriteResult(QueryResult{Summary: QuerySummary{NodesDeleted: 3}})

	queryGot, err := mock.Query(ctx, "MATCH (n) RETURN n", nil)
	require.NoError(t, err)
	assert.Zero(t, queryGot.Summary.NodesDeleted)

	writeGot, err := mock.Write(ctx, "MATCH (n:Message) DETACH DELETE n", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, writeGot.Summary.NodesDeleted)
}

func TestMockGraphClient_ErrorInjection(t *testing.T) {
	mock := NewMockGraphClient()
	ctx := context.Background()
	require.NoError(t, mock.Connect(ctx))

	queryErr := errors.New("query boom")
	writeErr := errors.New("write boom")
	mock.SetQueryError(queryErr)
	mock.SetWriteError(writeErr)

	_, err := mock.Query(ctx, "MATCH (n) RETURN n", nil)
	assert.ErrorIs(t, err, queryErr)

	_, err = mock.Write(ctx, "CREATE (n)", nil)
	assert.ErrorIs(t, err, writeErr)
}

func TestMockGraphClient_NotConnectedErrors(t *testing.T) {
	mock := NewMockGraphClient()
	ctx := context.Background()

	_, err := mock.Query(ctx, "MATCH (n) RETURN n", nil)
	assert.True(t, types.IsCode(err, ErrCodeConnectionClosed))

	_, err = mock.Write(ctx, "CREATE (n)", nil)
	assert.True(t, types.IsCode(err, ErrCodeConnectionClosed))
}

func TestMockGraphClient_CallRecording(t *testing.T) {
	mock := NewMockGraphClient()
	ctx := context.Background()
	require.NoError(t, mock.Connect(ctx))

	params := map[string]any{"term": "csrf", "limit": 5}
	_, err := mock.Query(ctx, "MATCH (n) WHERE n.name CONTAINS $term RETURN n LIMIT $limit", params)
	require.NoError(t, err)

	calls := mock.GetCallsByMethod("Query")
	require.Len(t, calls, 1)
	assert.Contains(t, calls[0].Cypher, "CONTAINS $term")
	assert.Equal(t, params, calls[0].Params)

	last, ok := mock.LastCallByMethod("Query")
	require.True(t, ok)
	assert.Equal(t, calls[0].Cypher, last.Cypher)

	assert.Equal(t, 2, mock.CallCount()) // Connect + Query
}

func TestMockGraphClient_Reset(t *testing.T) {
	mock := NewMockGraphClient()
	ctx := context.Background()
	require.NoError(t, mock.Connect(ctx))
	mock.AddQueryResult(QueryResult{Records: []map[string]any{{"x": 1}}})
	mock.SetQueryError(errors.New("boom"))

	mock.Reset()

	assert.False(t, mock.IsConnected())
	assert.Zero(t, mock.CallCount())

	require.NoError(t, mock.Connect(ctx))
	got, err := mock.Query(ctx, "MATCH (n) RETURN n", nil)
	require.NoError(t, err)
	assert.Empty(t, got.Records)
}
