// Package ledger provides the state views the transaction engine runs
// against: a pure in-memory view and a view backed by a key-value store
// with a read cache.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/storage/kv"
)

var (
	ErrEntryExists  = errors.New("ledger: entry already exists")
	ErrEntryMissing = errors.New("ledger: entry does not exist")
)

// MemoryView keeps all state in a map. Used by tests and standalone runs.
type MemoryView struct {
	mu      sync.RWMutex
	entries map[[32]byte][]byte
}

func NewMemoryView() *MemoryView {
	return &MemoryView{entries: make(map[[32]byte][]byte)}
}

func (v *MemoryView) Read(k keylet.Keylet) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	data, ok := v.entries[k.Key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (v *MemoryView) Exists(k keylet.Keylet) (bool, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	_, ok := v.entries[k.Key]
	return ok, nil
}

func (v *MemoryView) Insert(k keylet.Keylet, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.entries[k.Key]; ok {
		return fmt.Errorf("%w: %s", ErrEntryExists, k.Kind)
	}
	v.entries[k.Key] = append([]byte{}, data...)
	return nil
}

func (v *MemoryView) Update(k keylet.Keylet, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.entries[k.Key]; !ok {
		return fmt.Errorf("%w: %s", ErrEntryMissing, k.Kind)
	}
	v.entries[k.Key] = append([]byte{}, data...)
	return nil
}

func (v *MemoryView) Erase(k keylet.Keylet) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.entries[k.Key]; !ok {
		return fmt.Errorf("%w: %s", ErrEntryMissing, k.Kind)
	}
	delete(v.entries, k.Key)
	return nil
}

// Len returns the number of live entries.
func (v *MemoryView) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.entries)
}

// StoreView persists entries in a key-value store. Storage keys are the
// entry kind byte followed by the 32-byte keylet key. Reads go through
// an LRU cache; writes update the cache in place.
type StoreView struct {
	mu    sync.Mutex
	db    kv.DB
	cache *lru.Cache[[33]byte, []byte]
}

// NewStoreView wraps a key-value store. cacheSize is the number of
// entries kept hot.
func NewStoreView(db kv.DB, cacheSize int) (*StoreView, error) {
	if cacheSize <= 0 {
		cacheSize = 16384
	}
	cache, err := lru.New[[33]byte, []byte](cacheSize)
	if err != nil {
		return nil, err
	}
	return &StoreView{db: db, cache: cache}, nil
}

func storeKey(k keylet.Keylet) [33]byte {
	var sk [33]byte
	sk[0] = byte(k.Kind)
	copy(sk[1:], k.Key[:])
	return sk
}

func (v *StoreView) Read(k keylet.Keylet) ([]byte, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.read(storeKey(k))
}

func (v *StoreView) read(sk [33]byte) ([]byte, error) {
	if data, ok := v.cache.Get(sk); ok {
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	}
	data, err := v.db.Read(context.Background(), sk[:])
	if errors.Is(err, kv.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	v.cache.Add(sk, data)
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (v *StoreView) Exists(k keylet.Keylet) (bool, error) {
	data, err := v.Read(k)
	if err != nil {
		return false, err
	}
	return data != nil, nil
}

func (v *StoreView) Insert(k keylet.Keylet, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	sk := storeKey(k)
	existing, err := v.read(sk)
	if err != nil {
		return err
	}
	if existing != nil {
		return fmt.Errorf("%w: %s", ErrEntryExists, k.Kind)
	}
	return v.write(sk, data)
}

func (v *StoreView) Update(k keylet.Keylet, data []byte) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	sk := storeKey(k)
	existing, err := v.read(sk)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("%w: %s", ErrEntryMissing, k.Kind)
	}
	return v.write(sk, data)
}

func (v *StoreView) write(sk [33]byte, data []byte) error {
	stored := append([]byte{}, data...)
	if err := v.db.Write(context.Background(), sk[:], stored); err != nil {
		return err
	}
	v.cache.Add(sk, stored)
	return nil
}

func (v *StoreView) Erase(k keylet.Keylet) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	sk := storeKey(k)
	if err := v.db.Delete(context.Background(), sk[:]); err != nil &&
		!errors.Is(err, kv.ErrKeyNotFound) {
		return err
	}
	v.cache.Remove(sk)
	return nil
}
