// Package keylet computes the deterministic addresses of ledger state
// entries. Every entry key is the Sha512Half of a 2-byte space identifier
// followed by the fields that identify the entry, so identical inputs always
// address the same entry and distinct spaces never collide.
package keylet

import (
	"encoding/binary"

	"github.com/settleng/goledgerd/internal/core/types"
	crypto "github.com/settleng/goledgerd/internal/crypto/common"
)

// Kind identifies the entry type an address points at.
type Kind uint8

const (
	KindAccount Kind = iota
	KindIssuance
	KindBalance
	KindAllowance
	KindNFToken
	KindSemiToken
	KindSemiBalance
	KindEscrow
	KindAuction
	KindAuctionRefund
	KindWallet
	KindWalletTx
	KindChannel
	KindTimelockOp
	KindCampaign
	KindPledge
)

var kindNames = map[Kind]string{
	KindAccount:       "AccountRoot",
	KindIssuance:      "Issuance",
	KindBalance:       "Balance",
	KindAllowance:     "Allowance",
	KindNFToken:       "NFToken",
	KindSemiToken:     "SemiToken",
	KindSemiBalance:   "SemiBalance",
	KindEscrow:        "Escrow",
	KindAuction:       "Auction",
	KindAuctionRefund: "AuctionRefund",
	KindWallet:        "Wallet",
	KindWalletTx:      "WalletTx",
	KindChannel:       "Channel",
	KindTimelockOp:    "TimelockOp",
	KindCampaign:      "Campaign",
	KindPledge:        "Pledge",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Space identifiers for key generation.
const (
	spaceAccount       uint16 = 'a' // Account root
	spaceIssuance      uint16 = 't' // Token issuance
	spaceBalance       uint16 = 'b' // Fungible holder balance
	spaceAllowance     uint16 = 'l' // Fungible allowance
	spaceNFToken       uint16 = 'n' // Non-fungible token
	spaceSemiToken     uint16 = 'S' // Semi-fungible token id
	spaceSemiBalance   uint16 = 's' // Semi-fungible holder balance
	spaceEscrow        uint16 = 'u' // Escrow
	spaceAuction       uint16 = 'A' // Auction
	spaceAuctionRefund uint16 = 'r' // Auction refundable balance
	spaceWallet        uint16 = 'w' // Multisig wallet
	spaceWalletTx      uint16 = 'x' // Multisig wallet transaction
	spaceChannel       uint16 = 'c' // Payment channel
	spaceTimelockOp    uint16 = 'q' // Time-locked operation
	spaceCampaign      uint16 = 'C' // Crowdfund campaign
	spacePledge        uint16 = 'p' // Crowdfund pledge
)

// Keylet is an addressable location in ledger state.
type Keylet struct {
	Kind Kind
	Key  [32]byte
}

func indexHash(space uint16, data ...[]byte) [32]byte {
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return crypto.Sha512Half(inputs...)
}

func uint32Bytes(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

func uint64Bytes(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// Account returns the keylet for an account root entry.
func Account(id types.AccountID) Keylet {
	return Keylet{Kind: KindAccount, Key: indexHash(spaceAccount, id[:])}
}

// Issuance returns the keylet for a token issuance entry.
func Issuance(token types.TokenID) Keylet {
	return Keylet{Kind: KindIssuance, Key: indexHash(spaceIssuance, token[:])}
}

// IssuanceID derives the token id for an issuance created by issuer at the
// given sequence.
func IssuanceID(issuer types.AccountID, sequence uint32) types.TokenID {
	return types.TokenID(indexHash(spaceIssuance, issuer[:], uint32Bytes(sequence)))
}

// Balance returns the keylet for a holder's fungible balance of a token.
func Balance(token types.TokenID, holder types.AccountID) Keylet {
	return Keylet{Kind: KindBalance, Key: indexHash(spaceBalance, token[:], holder[:])}
}

// Allowance returns the keylet for the (owner, spender) allowance of a token.
func Allowance(token types.TokenID, owner, spender types.AccountID) Keylet {
	return Keylet{Kind: KindAllowance, Key: indexHash(spaceAllowance, token[:], owner[:], spender[:])}
}

// NFToken returns the keylet for a non-fungible token entry.
func NFToken(token types.TokenID) Keylet {
	return Keylet{Kind: KindNFToken, Key: indexHash(spaceNFToken, token[:])}
}

// SemiToken returns the keylet for a semi-fungible token id entry.
func SemiToken(token types.TokenID) Keylet {
	return Keylet{Kind: KindSemiToken, Key: indexHash(spaceSemiToken, token[:])}
}

// SemiBalance returns the keylet for a holder's quantity of a semi-fungible
// token id.
func SemiBalance(token types.TokenID, holder types.AccountID) Keylet {
	return Keylet{Kind: KindSemiBalance, Key: indexHash(spaceSemiBalance, token[:], holder[:])}
}

// Escrow returns the keylet for an escrow created by owner at the given
// sequence.
func Escrow(owner types.AccountID, sequence uint32) Keylet {
	return Keylet{Kind: KindEscrow, Key: indexHash(spaceEscrow, owner[:], uint32Bytes(sequence))}
}

// Auction returns the keylet for an auction created by seller at the given
// sequence.
func Auction(seller types.AccountID, sequence uint32) Keylet {
	return Keylet{Kind: KindAuction, Key: indexHash(spaceAuction, seller[:], uint32Bytes(sequence))}
}

// AuctionRefund returns the keylet for an outbid bidder's refundable
// balance in an auction.
func AuctionRefund(auction [32]byte, bidder types.AccountID) Keylet {
	return Keylet{Kind: KindAuctionRefund, Key: indexHash(spaceAuctionRefund, auction[:], bidder[:])}
}

// Wallet returns the keylet for a multisig wallet created by creator at the
// given sequence.
func Wallet(creator types.AccountID, sequence uint32) Keylet {
	return Keylet{Kind: KindWallet, Key: indexHash(spaceWallet, creator[:], uint32Bytes(sequence))}
}

// WalletTx returns the keylet for a wallet transaction by index.
func WalletTx(wallet [32]byte, index uint32) Keylet {
	return Keylet{Kind: KindWalletTx, Key: indexHash(spaceWalletTx, wallet[:], uint32Bytes(index))}
}

// Channel returns the keylet for a payment channel opened by creator at the
// given sequence.
func Channel(creator types.AccountID, sequence uint32) Keylet {
	return Keylet{Kind: KindChannel, Key: indexHash(spaceChannel, creator[:], uint32Bytes(sequence))}
}

// TimelockOp returns the keylet for a time-locked operation. The key is a
// pure function of the operation tuple: queuing the identical tuple twice
// addresses the same entry, which is how duplicates are detected. The
// variable-length fields carry length prefixes so the tuple encoding is
// unambiguous.
func TimelockOp(target types.AccountID, value uint64, signature string, data []byte, timestamp int64) Keylet {
	sig := []byte(signature)
	return Keylet{Kind: KindTimelockOp, Key: indexHash(
		spaceTimelockOp,
		target[:],
		uint64Bytes(value),
		uint32Bytes(uint32(len(sig))), sig,
		uint32Bytes(uint32(len(data))), data,
		uint64Bytes(uint64(timestamp)),
	)}
}

// Campaign returns the keylet for a campaign launched by creator at the
// given sequence.
func Campaign(creator types.AccountID, sequence uint32) Keylet {
	return Keylet{Kind: KindCampaign, Key: indexHash(spaceCampaign, creator[:], uint32Bytes(sequence))}
}

// Pledge returns the keylet for a pledger's contribution to a campaign.
func Pledge(campaign [32]byte, pledger types.AccountID) Keylet {
	return Keylet{Kind: KindPledge, Key: indexHash(spacePledge, campaign[:], pledger[:])}
}
