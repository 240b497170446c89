// Package sle defines the serialized ledger entries. Entries are encoded
// with canonical CBOR so the same logical entry always produces the same
// bytes.
package sle

import (
	"github.com/ugorji/go/codec"
)

var cborHandle = func() *codec.CborHandle {
	h := new(codec.CborHandle)
	h.Canonical = true
	return h
}()

// Encode serializes an entry to canonical CBOR.
func Encode(v any) ([]byte, error) {
	var buf []byte
	enc := codec.NewEncoderBytes(&buf, cborHandle)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf, nil
}

// Decode deserializes a CBOR entry.
func Decode(data []byte, v any) error {
	dec := codec.NewDecoderBytes(data, cborHandle)
	return dec.Decode(v)
}
