// Package bbolt implements the kv.DB interface on top of an embedded
// bbolt database with a single bucket.
package bbolt

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/settleng/goledgerd/internal/storage/kv"
)

var defaultBucket = []byte("ledger")

// DB wraps a bbolt database.
type DB struct {
	db     *bbolt.DB
	bucket []byte
}

// Open opens (or creates) a bbolt database at path.
func Open(path string) (*DB, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open bbolt store: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(defaultBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &DB{db: db, bucket: defaultBucket}, nil
}

func (b *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if b.db == nil {
		return nil, kv.ErrDBClosed
	}

	var value []byte
	err := b.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(b.bucket).Get(key)
		if v == nil {
			return kv.ErrKeyNotFound
		}
		// bbolt values are only valid inside the transaction
		value = make([]byte, len(v))
		copy(value, v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (b *DB) Write(ctx context.Context, key, value []byte) error {
	if b.db == nil {
		return kv.ErrDBClosed
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).Put(key, value)
	})
}

func (b *DB) Delete(ctx context.Context, key []byte) error {
	if b.db == nil {
		return kv.ErrDBClosed
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(b.bucket).Delete(key)
	})
}

func (b *DB) Batch(ctx context.Context, ops []kv.BatchOperation) error {
	if b.db == nil {
		return kv.ErrDBClosed
	}
	return b.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(b.bucket)
		for _, op := range ops {
			var err error
			switch op.Type {
			case kv.BatchPut:
				err = bucket.Put(op.Key, op.Value)
			case kv.BatchDelete:
				err = bucket.Delete(op.Key)
			default:
				return fmt.Errorf("unknown batch operation type: %d", op.Type)
			}
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *DB) ForEach(ctx context.Context, fn func(key, value []byte) bool) error {
	if b.db == nil {
		return kv.ErrDBClosed
	}
	return b.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(b.bucket).Cursor()
		for k, v := c.First(); k != nil; k, v = c.Next() {
			if !fn(k, v) {
				return nil
			}
		}
		return nil
	})
}

func (b *DB) Close() error {
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	return err
}
