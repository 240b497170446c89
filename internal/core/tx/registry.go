package tx

import (
	"fmt"
	"sync"
)

// Factory builds an empty transaction of a given type.
type Factory func() Transaction

var (
	registryMu sync.RWMutex
	registry   = make(map[Type]Factory)
)

// Register installs a factory for a transaction type. Transactor packages
// call this from init; double registration is a programming error.
func Register(t Type, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	if _, dup := registry[t]; dup {
		panic(fmt.Sprintf("tx: duplicate registration for %s", t))
	}
	registry[t] = f
}

// New builds an empty transaction of the given type.
func New(t Type) (Transaction, error) {
	registryMu.RLock()
	f, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tx: no factory registered for %s", t)
	}
	return f(), nil
}

// Registered reports whether a factory exists for the type.
func Registered(t Type) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[t]
	return ok
}
