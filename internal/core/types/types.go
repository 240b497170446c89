// Package types holds the primitive identity and value types shared by the
// ledger core: account identifiers, token identifiers and checked amounts.
package types

import (
	"encoding/hex"
	"errors"
	"strings"
)

var (
	// ErrInvalidAccountID is returned when an account string is not 20 hex-encoded bytes
	ErrInvalidAccountID = errors.New("invalid account id")

	// ErrInvalidTokenID is returned when a token string is not 32 hex-encoded bytes
	ErrInvalidTokenID = errors.New("invalid token id")
)

// AccountID is a 20-byte account identifier, derived from the account's
// public key. The zero value is the null identity and is never a valid
// transfer destination.
type AccountID [20]byte

// ZeroAccount is the null identity.
var ZeroAccount AccountID

// IsZero reports whether the account id is the null identity.
func (a AccountID) IsZero() bool {
	return a == ZeroAccount
}

// String returns the canonical upper-case hex encoding of the account id.
func (a AccountID) String() string {
	return strings.ToUpper(hex.EncodeToString(a[:]))
}

// ParseAccountID parses a 40-character hex string into an AccountID.
func ParseAccountID(s string) (AccountID, error) {
	var id AccountID
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(id) {
		return id, ErrInvalidAccountID
	}
	copy(id[:], b)
	return id, nil
}

// TokenID is a 32-byte asset identifier. Fungible issuances, non-fungible
// tokens and semi-fungible token classes all share this id space.
type TokenID [32]byte

// IsZero reports whether the token id is unset.
func (t TokenID) IsZero() bool {
	return t == TokenID{}
}

// String returns the canonical upper-case hex encoding of the token id.
func (t TokenID) String() string {
	return strings.ToUpper(hex.EncodeToString(t[:]))
}

// ParseTokenID parses a 64-character hex string into a TokenID.
func ParseTokenID(s string) (TokenID, error) {
	var id TokenID
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(id) {
		return id, ErrInvalidTokenID
	}
	copy(id[:], b)
	return id, nil
}

// AddUint64 returns a+b and reports whether the addition stayed within
// uint64 range. Balance arithmetic never wraps silently.
func AddUint64(a, b uint64) (uint64, bool) {
	sum := a + b
	return sum, sum >= a
}

// SubUint64 returns a-b and reports whether a was large enough.
func SubUint64(a, b uint64) (uint64, bool) {
	if b > a {
		return 0, false
	}
	return a - b, true
}
