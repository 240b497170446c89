package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	secpecdsa "github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"

	common "github.com/settleng/goledgerd/internal/crypto/common"
)

// KeyType identifies a signing algorithm.
type KeyType int

const (
	// KeyTypeSecp256k1 uses ECDSA over secp256k1 with compact signatures.
	KeyTypeSecp256k1 KeyType = iota

	// KeyTypeEd25519 uses ed25519.
	KeyTypeEd25519
)

// Keypair holds a hex-encoded private/public key pair.
type Keypair struct {
	Type       KeyType
	PrivateKey string
	PublicKey  string
}

// GenerateKeypair creates a fresh keypair of the given type.
func GenerateKeypair(kt KeyType) (Keypair, error) {
	switch kt {
	case KeyTypeSecp256k1:
		priv, err := btcec.NewPrivateKey()
		if err != nil {
			return Keypair{}, fmt.Errorf("failed to generate secp256k1 key: %w", err)
		}
		return Keypair{
			Type:       KeyTypeSecp256k1,
			PrivateKey: hexUpper(priv.Serialize()),
			PublicKey:  hexUpper(priv.PubKey().SerializeCompressed()),
		}, nil

	case KeyTypeEd25519:
		pub, priv, err := ed25519.GenerateKey(rand.Reader)
		if err != nil {
			return Keypair{}, fmt.Errorf("failed to generate ed25519 key: %w", err)
		}
		return Keypair{
			Type:       KeyTypeEd25519,
			PrivateKey: hexUpper(priv.Seed()),
			PublicKey:  hexUpper(append([]byte{Ed25519Prefix}, pub...)),
		}, nil

	default:
		return Keypair{}, fmt.Errorf("unknown key type %d", kt)
	}
}

// AccountID derives the account id for the keypair's public key.
func (k Keypair) AccountID() (string, error) {
	id, err := AccountIDFromPubKey(k.PublicKey)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// Sign signs the Sha512Half digest of payload with the keypair and returns
// the hex-encoded signature. secp256k1 signatures are 65-byte compact
// (recovery id first); ed25519 signatures are 64 bytes.
func (k Keypair) Sign(payload []byte) (string, error) {
	digest := common.Sha512Half(payload)

	switch k.Type {
	case KeyTypeSecp256k1:
		raw, err := hex.DecodeString(k.PrivateKey)
		if err != nil || len(raw) != 32 {
			return "", ErrInvalidPrivateKey
		}
		priv := secp256k1.PrivKeyFromBytes(raw)
		sig := secpecdsa.SignCompact(priv, digest[:], true)
		return hexUpper(sig), nil

	case KeyTypeEd25519:
		seed, err := hex.DecodeString(k.PrivateKey)
		if err != nil || len(seed) != ed25519.SeedSize {
			return "", ErrInvalidPrivateKey
		}
		priv := ed25519.NewKeyFromSeed(seed)
		return hexUpper(ed25519.Sign(priv, digest[:])), nil

	default:
		return "", fmt.Errorf("unknown key type %d", k.Type)
	}
}

func hexUpper(b []byte) string {
	return strings.ToUpper(hex.EncodeToString(b))
}
