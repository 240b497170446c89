// Package pebble implements the kv.DB interface on top of a pebble
// database. This is the default persistent backend.
package pebble

import (
	"context"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"

	"github.com/settleng/goledgerd/internal/storage/kv"
)

// DB wraps a pebble database.
type DB struct {
	db *pebble.DB
}

// Open opens (or creates) a pebble database at path.
func Open(path string) (*DB, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open pebble store: %w", err)
	}
	return &DB{db: db}, nil
}

func (p *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if p.db == nil {
		return nil, kv.ErrDBClosed
	}

	value, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, kv.ErrKeyNotFound
		}
		return nil, err
	}
	defer closer.Close()

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

func (p *DB) Write(ctx context.Context, key, value []byte) error {
	if p.db == nil {
		return kv.ErrDBClosed
	}
	return p.db.Set(key, value, pebble.Sync)
}

func (p *DB) Delete(ctx context.Context, key []byte) error {
	if p.db == nil {
		return kv.ErrDBClosed
	}
	return p.db.Delete(key, pebble.Sync)
}

func (p *DB) Batch(ctx context.Context, ops []kv.BatchOperation) error {
	if p.db == nil {
		return kv.ErrDBClosed
	}

	batch := p.db.NewBatch()
	defer batch.Close()

	for _, op := range ops {
		var err error
		switch op.Type {
		case kv.BatchPut:
			err = batch.Set(op.Key, op.Value, nil)
		case kv.BatchDelete:
			err = batch.Delete(op.Key, nil)
		default:
			return fmt.Errorf("unknown batch operation type: %d", op.Type)
		}
		if err != nil {
			return err
		}
	}

	return batch.Commit(pebble.Sync)
}

func (p *DB) ForEach(ctx context.Context, fn func(key, value []byte) bool) error {
	if p.db == nil {
		return kv.ErrDBClosed
	}

	iter, err := p.db.NewIter(nil)
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if !fn(iter.Key(), iter.Value()) {
			break
		}
	}
	return iter.Error()
}

func (p *DB) Close() error {
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}
