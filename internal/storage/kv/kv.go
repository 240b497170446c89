// Package kv defines the key-value store the ledger persists its state in,
// with embedded backends under kv/bbolt and kv/pebble and an in-memory
// backend for tests and standalone runs. The core assumes the store is
// durable and crash-consistent; it does not implement durability itself.
package kv

import (
	"context"
	"errors"
)

var (
	// ErrDBClosed is returned when operating on a closed store
	ErrDBClosed = errors.New("store is closed")

	// ErrKeyNotFound is returned when a key does not exist
	ErrKeyNotFound = errors.New("key not found")
)

// DB is the operation set every backend must support.
type DB interface {
	// Read returns the value for key, or ErrKeyNotFound.
	Read(ctx context.Context, key []byte) ([]byte, error)

	// Write stores value under key, overwriting any prior value.
	Write(ctx context.Context, key []byte, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key []byte) error

	// Batch applies the operations atomically.
	Batch(ctx context.Context, ops []BatchOperation) error

	// ForEach visits every key/value pair. Iteration stops early when fn
	// returns false.
	ForEach(ctx context.Context, fn func(key, value []byte) bool) error

	// Close releases the backend.
	Close() error
}

// BatchOpType selects the kind of a batch operation.
type BatchOpType int

const (
	BatchPut BatchOpType = iota
	BatchDelete
)

// BatchOperation is a single operation in an atomic batch.
type BatchOperation struct {
	Type  BatchOpType
	Key   []byte
	Value []byte
}
