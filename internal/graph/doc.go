// Package graph provides the graph database client abstraction for the
// knowledge store.
//
// The package follows an interface-based design:
//
//   - GraphClient: core interface for Cypher reads and writes
//   - Neo4jClient: production implementation using the Neo4j Go driver
//   - MockGraphClient: test implementation with scripted results
//
// Query() runs statements in read transactions, Write() in write
// transactions; both return a QueryResult with records, column names, and a
// summary carrying the write counters. Encryption is selected via the URI
// scheme (bolt:// vs bolt+s://, neo4j:// vs neo4j+s://), and connections are
// retried with exponential backoff.
//
// All errors are wrapped in types.AIKGError with GRAPH_* error codes, and
// query/write failures are marked retryable so callers can distinguish
// transient store trouble from their own bad input.
package graph
