package keylet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/settleng/goledgerd/internal/core/types"
)

func acct(b byte) types.AccountID {
	var id types.AccountID
	id[0] = b
	return id
}

func TestKeyletsAreDeterministic(t *testing.T) {
	a := acct(1)
	assert.Equal(t, Account(a), Account(a))
	assert.Equal(t, Escrow(a, 7), Escrow(a, 7))
	assert.NotEqual(t, Escrow(a, 7).Key, Escrow(a, 8).Key)
	assert.NotEqual(t, Escrow(a, 7).Key, Escrow(acct(2), 7).Key)
}

func TestSpacesDoNotCollide(t *testing.T) {
	a := acct(1)
	// Same identifying inputs, different entry spaces.
	keys := map[[32]byte]string{
		Account(a).Key:     "account",
		Escrow(a, 0).Key:   "escrow",
		Auction(a, 0).Key:  "auction",
		Wallet(a, 0).Key:   "wallet",
		Channel(a, 0).Key:  "channel",
		Campaign(a, 0).Key: "campaign",
	}
	assert.Len(t, keys, 6)
}

func TestTimelockOpKeyIsTupleFunction(t *testing.T) {
	target := acct(3)
	k1 := TimelockOp(target, 100, "upgrade()", []byte{1, 2}, 5000)
	k2 := TimelockOp(target, 100, "upgrade()", []byte{1, 2}, 5000)
	assert.Equal(t, k1, k2)

	assert.NotEqual(t, k1.Key, TimelockOp(target, 101, "upgrade()", []byte{1, 2}, 5000).Key)
	assert.NotEqual(t, k1.Key, TimelockOp(target, 100, "upgrade()", []byte{1, 2}, 5001).Key)
	assert.NotEqual(t, k1.Key, TimelockOp(target, 100, "pause()", []byte{1, 2}, 5000).Key)
}

func TestTimelockOpFieldBoundaries(t *testing.T) {
	target := acct(3)

	// Tuples whose signature and data concatenate to the same bytes must
	// still address distinct entries.
	a := TimelockOp(target, 100, "ab", []byte{'c'}, 5000)
	b := TimelockOp(target, 100, "a", []byte{'b', 'c'}, 5000)
	assert.NotEqual(t, a.Key, b.Key)

	empty := TimelockOp(target, 100, "", []byte{'a', 'b', 'c'}, 5000)
	assert.NotEqual(t, a.Key, empty.Key)
	assert.NotEqual(t, b.Key, empty.Key)
}

func TestIssuanceIDVariesWithSequence(t *testing.T) {
	issuer := acct(4)
	assert.NotEqual(t, IssuanceID(issuer, 1), IssuanceID(issuer, 2))
	assert.Equal(t, IssuanceID(issuer, 1), IssuanceID(issuer, 1))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "AccountRoot", KindAccount.String())
	assert.Equal(t, "TimelockOp", KindTimelockOp.String())
	assert.Equal(t, "Unknown", Kind(200).String())
}
