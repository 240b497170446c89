package tx

import "github.com/settleng/goledgerd/internal/core/keylet"

// LedgerView is read/write access to ledger entries. Read returns
// (nil, nil) for an absent entry; a non-nil error means the backing
// store failed, not that the entry is missing.
type LedgerView interface {
	Read(k keylet.Keylet) ([]byte, error)
	Exists(k keylet.Keylet) (bool, error)
	Insert(k keylet.Keylet, data []byte) error
	Update(k keylet.Keylet, data []byte) error
	Erase(k keylet.Keylet) error
}
