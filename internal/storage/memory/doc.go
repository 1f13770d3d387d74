// Package memory provides the in-memory store implementation.
//
// Clients and users live in sharded concurrent maps; relationships are
// kept as a scanned slice because the authorization pipeline matches
// them by predicate, not by key. Nothing is persisted across restarts,
// which suits tests and single-node development deployments.
package memory
