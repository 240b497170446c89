// Package crypto implements the signature and identity primitives of the
// ledger core: account id derivation, keypair generation, signing and the
// stateless signature verifier.
//
// Two key types are supported. Compressed secp256k1 public keys are 33
// bytes; ed25519 public keys are 32 bytes carried with a 0xED prefix byte,
// so both serialize to 33 bytes and the prefix selects the algorithm.
package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/decred/dcrd/crypto/ripemd160"

	"github.com/settleng/goledgerd/internal/core/types"
)

const (
	// PubKeyLen is the serialized public key length for both key types.
	PubKeyLen = 33

	// Ed25519Prefix marks an ed25519 public key.
	Ed25519Prefix = 0xED
)

// ErrInvalidPublicKey is returned when a public key is not a well-formed
// hex string of the expected length.
var ErrInvalidPublicKey = errors.New("invalid public key")

// AccountIDFromPubKey derives the account id for a public key:
// RIPEMD160(SHA256(pubkey)).
func AccountIDFromPubKey(pubKeyHex string) (types.AccountID, error) {
	var id types.AccountID

	pub, err := hex.DecodeString(pubKeyHex)
	if err != nil || len(pub) != PubKeyLen {
		return id, ErrInvalidPublicKey
	}

	sha := sha256.Sum256(pub)
	r := ripemd160.New()
	r.Write(sha[:])
	copy(id[:], r.Sum(nil))

	return id, nil
}

// IsEd25519 reports whether the hex public key carries the ed25519 prefix.
func IsEd25519(pubKeyHex string) bool {
	return strings.HasPrefix(strings.ToUpper(pubKeyHex), "ED")
}
