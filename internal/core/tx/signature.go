package tx

import (
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/crypto"
	hashing "github.com/settleng/goledgerd/internal/crypto/common"
)

// signingPrefix domain-separates transaction signatures from any other
// use of the same keys.
var signingPrefix = []byte("TXN\x00")

// SigningData returns the canonical bytes a transaction signature covers:
// the domain prefix followed by the transaction's fields, canonically
// CBOR-encoded, with the signature itself removed.
func SigningData(t Transaction) ([]byte, error) {
	fields := t.Flatten()
	delete(fields, "TxnSignature")
	enc, err := sle.Encode(fields)
	if err != nil {
		return nil, err
	}
	return append(append([]byte{}, signingPrefix...), enc...), nil
}

// Hash returns the transaction's identifying hash, covering all fields
// including the signature.
func Hash(t Transaction) ([32]byte, error) {
	enc, err := sle.Encode(t.Flatten())
	if err != nil {
		return [32]byte{}, err
	}
	return hashing.Sha512Half(signingPrefix, enc), nil
}

// VerifySignature checks the transaction's signature and that the signing
// key actually controls the submitting account.
func VerifySignature(t Transaction) Result {
	common := t.GetCommon()
	if common.SigningPubKey == "" || common.TxnSignature == "" {
		return InvalidSignature
	}
	signer, err := crypto.AccountIDFromPubKey(common.SigningPubKey)
	if err != nil {
		return InvalidSignature
	}
	account, err := common.AccountID()
	if err != nil || signer != account {
		return InvalidSignature
	}
	payload, err := SigningData(t)
	if err != nil {
		return Internal
	}
	ok, err := crypto.Verify(payload, common.TxnSignature, common.SigningPubKey)
	if err != nil || !ok {
		return InvalidSignature
	}
	return Success
}
