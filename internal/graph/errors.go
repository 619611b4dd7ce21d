package graph

import "github.com/LeonFTWANG/AIKG/internal/types"

// Graph database error codes
const (
	// Connection errors
	ErrCodeConnectionFailed types.ErrorCode = "GRAPH_CONNECTION_FAILED"
	ErrCodeConnectionClosed types.ErrorCode = "GRAPH_CONNECTION_CLOSED"

	// Configuration errors
	ErrCodeInvalidConfig types.ErrorCode = "GRAPH_INVALID_CONFIG"

	// Statement errors
	ErrCodeQueryFailed = types.GRAPH_QUERY_FAILED
	ErrCodeWriteFailed = types.GRAPH_WRITE_FAILED
)
