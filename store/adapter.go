// Package store implements the store adapter (C1): enumerating keys from a
// backing key/value store and fetching each key's advertised type and raw
// value, batched and pipelined so round trips stay O(N/batch).
package store

import (
	"context"

	"kvschema.dev/kvschema/value"
)

// TypeTag is the store's advertised type for a key, drawn from the closed
// set the per-type handling table dispatches on.
type TypeTag string

// The fixed set of type tags a store can advertise.
const (
	TypeString  TypeTag = "string"
	TypeList    TypeTag = "list"
	TypeSet     TypeTag = "set"
	TypeHash    TypeTag = "hash"
	TypeZSet    TypeTag = "zset"
	TypeJSON    TypeTag = "json"
	TypeUnknown TypeTag = "unknown"
)

// RawPair is one key and its normalized value, as produced by GetTyped.
type RawPair struct {
	Key   string
	Value value.Value
}

// Adapter abstracts the backing store C1 reads from. ListKeys enumerates
// every key; GetTyped resolves a batch of keys to their normalized values,
// applying the per-type handling table (string printability check, zset
// geospatial-score guard, JSON root unwrap, and so on).
type Adapter interface {
	// ListKeys enumerates every key in the target database. Implementations
	// should use cursor-based, non-blocking iteration; order is unspecified
	// at this layer (callers that need a stable order sort the result).
	ListKeys(ctx context.Context) ([]string, error)

	// GetTyped resolves keys to their (key, normalized value) pairs,
	// pipelining the type probe and value fetch so the round-trip count is
	// O(len(keys)/batch) rather than O(len(keys)). Returns exactly
	// len(keys) pairs, in the same order as keys; a per-key decode failure
	// yields a null value for that key rather than failing the batch.
	GetTyped(ctx context.Context, keys []string) ([]RawPair, error)
}
