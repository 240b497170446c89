package crypto

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"errors"

	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	common "github.com/settleng/goledgerd/internal/crypto/common"
)

var (
	// ErrInvalidSignature is returned for malformed signature encodings:
	// bad hex, wrong length for the key type. A signature that decodes
	// cleanly but was not produced by the claimed key is NOT an error;
	// Verify reports it as the normal-case false.
	ErrInvalidSignature = errors.New("invalid signature encoding")

	// ErrInvalidPrivateKey is returned when a private key cannot be decoded.
	ErrInvalidPrivateKey = errors.New("invalid private key format")
)

const (
	secpCompactSigLen = 65
	ed25519SigLen     = ed25519.SignatureSize
)

// Verify reports whether sigHex is a valid signature by the holder of
// pubKeyHex over payload. The payload is digested with Sha512Half before
// verification. The verifier is stateless: replay protection (nonce
// tracking) is the caller's responsibility.
func Verify(payload []byte, sigHex, pubKeyHex string) (bool, error) {
	pub, err := hex.DecodeString(pubKeyHex)
	if err != nil || len(pub) != PubKeyLen {
		return false, ErrInvalidPublicKey
	}

	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return false, ErrInvalidSignature
	}

	digest := common.Sha512Half(payload)

	if pub[0] == Ed25519Prefix {
		if len(sig) != ed25519SigLen {
			return false, ErrInvalidSignature
		}
		return ed25519.Verify(ed25519.PublicKey(pub[1:]), digest[:], sig), nil
	}

	if len(sig) != secpCompactSigLen {
		return false, ErrInvalidSignature
	}

	recovered, _, err := secpecdsa.RecoverCompact(sig, digest[:])
	if err != nil {
		// The signature decodes as 65 bytes but does not recover a key:
		// treat as a wrong signature, not a malformed one.
		return false, nil
	}

	return bytes.Equal(recovered.SerializeCompressed(), pub), nil
}
