package tx

import (
	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
)

// ReadEntry loads and decodes a typed entry. Returns (nil, nil) when the
// entry does not exist.
func ReadEntry[T any](view LedgerView, k keylet.Keylet) (*T, error) {
	data, err := view.Read(k)
	if err != nil || data == nil {
		return nil, err
	}
	v := new(T)
	if err := sle.Decode(data, v); err != nil {
		return nil, err
	}
	return v, nil
}

// InsertEntry encodes and inserts a typed entry.
func InsertEntry(view LedgerView, k keylet.Keylet, v any) error {
	data, err := sle.Encode(v)
	if err != nil {
		return err
	}
	return view.Insert(k, data)
}

// UpdateEntry encodes and updates a typed entry.
func UpdateEntry(view LedgerView, k keylet.Keylet, v any) error {
	data, err := sle.Encode(v)
	if err != nil {
		return err
	}
	return view.Update(k, data)
}
