package tx_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settleng/goledgerd/internal/core/tx"
	_ "github.com/settleng/goledgerd/internal/core/tx/all"
	"github.com/settleng/goledgerd/internal/core/tx/payment"
	"github.com/settleng/goledgerd/internal/testutil"
)

func TestPaymentMovesValue(t *testing.T) {
	env := testutil.NewEnv(t)
	alice := env.FundedAccount(1000)
	bob := env.FundedAccount(100)

	p := payment.NewPayment(alice.Address(), alice.Seq())
	p.Destination = bob.Address()
	p.Amount = 250
	env.RequireSuccess(alice, p)

	assert.Equal(t, uint64(750), env.Balance(alice))
	assert.Equal(t, uint64(350), env.Balance(bob))
}

func TestNoAccount(t *testing.T) {
	env := testutil.NewEnv(t)
	bob := env.FundedAccount(100)

	// A syntactically valid identity with no account root.
	ghost := "00112233445566778899AABBCCDDEEFF00112233"
	p := payment.NewPayment(ghost, 0)
	p.Destination = bob.Address()
	p.Amount = 1

	res := env.Engine.Apply(p)
	assert.Equal(t, tx.NoAccount, res.Result)
}

func TestSequenceReplayProtection(t *testing.T) {
	env := testutil.NewEnv(t)
	alice := env.FundedAccount(1000)
	bob := env.FundedAccount(0)

	p := payment.NewPayment(alice.Address(), alice.Seq())
	p.Destination = bob.Address()
	p.Amount = 10
	env.RequireSuccess(alice, p)

	// Replaying the same sequence is rejected and changes nothing.
	replay := payment.NewPayment(alice.Address(), 0)
	replay.Destination = bob.Address()
	replay.Amount = 10
	res := env.Engine.Apply(replay)
	assert.Equal(t, tx.PastSequence, res.Result)
	assert.Equal(t, uint64(990), env.Balance(alice))

	// A gap ahead of the account sequence is also rejected.
	future := payment.NewPayment(alice.Address(), 5)
	future.Destination = bob.Address()
	future.Amount = 10
	res = env.Engine.Apply(future)
	assert.Equal(t, tx.FutureSequence, res.Result)
}

func TestFailedApplyConsumesNothing(t *testing.T) {
	env := testutil.NewEnv(t)
	alice := env.FundedAccount(100)
	bob := env.FundedAccount(0)

	broke := payment.NewPayment(alice.Address(), alice.Seq())
	broke.Destination = bob.Address()
	broke.Amount = 500
	env.RequireResult(alice, broke, tx.InsufficientBalance)

	// The sequence was not consumed; the same number still works.
	p := payment.NewPayment(alice.Address(), alice.Seq())
	p.Destination = bob.Address()
	p.Amount = 50
	env.RequireSuccess(alice, p)
	assert.Equal(t, uint64(50), env.Balance(alice))
}

func TestPreflightResults(t *testing.T) {
	env := testutil.NewEnv(t)
	alice := env.FundedAccount(100)
	zero := "0000000000000000000000000000000000000000"

	tests := []struct {
		name string
		tx   tx.Transaction
		want tx.Result
	}{
		{
			name: "zero amount",
			tx: func() tx.Transaction {
				p := payment.NewPayment(alice.Address(), alice.Seq())
				p.Destination = zero
				p.Amount = 0
				return p
			}(),
			want: tx.Malformed,
		},
		{
			name: "zero destination",
			tx: func() tx.Transaction {
				p := payment.NewPayment(alice.Address(), alice.Seq())
				p.Destination = zero
				p.Amount = 5
				return p
			}(),
			want: tx.ZeroAddress,
		},
		{
			name: "self payment",
			tx: func() tx.Transaction {
				p := payment.NewPayment(alice.Address(), alice.Seq())
				p.Destination = alice.Address()
				p.Amount = 5
				return p
			}(),
			want: tx.InvalidTarget,
		},
		{
			name: "bad account",
			tx: func() tx.Transaction {
				p := payment.NewPayment("not-hex", 0)
				p.Destination = alice.Address()
				p.Amount = 5
				return p
			}(),
			want: tx.Malformed,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := env.Engine.Apply(tc.tx)
			assert.Equal(t, tc.want, res.Result)
		})
	}
}

func TestEventsEmittedOnlyOnSuccess(t *testing.T) {
	env := testutil.NewEnv(t)
	alice := env.FundedAccount(100)
	bob := env.FundedAccount(0)

	broke := payment.NewPayment(alice.Address(), alice.Seq())
	broke.Destination = bob.Address()
	broke.Amount = 500
	env.RequireResult(alice, broke, tx.InsufficientBalance)
	assert.Empty(t, env.Sink.Events(), "failed transactions emit nothing")

	p := payment.NewPayment(alice.Address(), alice.Seq())
	p.Destination = bob.Address()
	p.Amount = 10
	env.RequireSuccess(alice, p)

	events := env.Sink.Named("payment")
	require.Len(t, events, 1)
	assert.Equal(t, alice.Address(), events[0].Fields["from"])
	assert.NotEmpty(t, events[0].TxHash)
}

func TestSignatureVerification(t *testing.T) {
	env := testutil.NewSigningEnv(t)
	alice := env.FundedAccount(1000)
	bob := env.FundedAccount(0)

	p := payment.NewPayment(alice.Address(), alice.Seq())
	p.Destination = bob.Address()
	p.Amount = 100
	env.RequireSuccess(alice, p)
	assert.Equal(t, uint64(100), env.Balance(bob))
}

func TestTamperedTransactionRejected(t *testing.T) {
	env := testutil.NewSigningEnv(t)
	alice := env.FundedAccount(1000)
	bob := env.FundedAccount(0)

	p := payment.NewPayment(alice.Address(), alice.Seq())
	p.Destination = bob.Address()
	p.Amount = 100
	require.NoError(t, testutil.Sign(p, alice.Keys))

	// Raise the amount after signing.
	p.Amount = 900
	res := env.Engine.Apply(p)
	assert.Equal(t, tx.InvalidSignature, res.Result)
	assert.Equal(t, uint64(1000), env.Balance(alice))
}

func TestForeignKeyCannotSign(t *testing.T) {
	env := testutil.NewSigningEnv(t)
	alice := env.FundedAccount(1000)
	mallory := env.FundedAccount(10)
	bob := env.FundedAccount(0)

	// Mallory signs a payment out of Alice's account.
	p := payment.NewPayment(alice.Address(), alice.Seq())
	p.Destination = bob.Address()
	p.Amount = 100
	require.NoError(t, testutil.Sign(p, mallory.Keys))

	res := env.Engine.Apply(p)
	assert.Equal(t, tx.InvalidSignature, res.Result)
}

func TestUnsignedRejectedWhenVerifying(t *testing.T) {
	env := testutil.NewSigningEnv(t)
	alice := env.FundedAccount(1000)
	bob := env.FundedAccount(0)

	p := payment.NewPayment(alice.Address(), alice.Seq())
	p.Destination = bob.Address()
	p.Amount = 100
	res := env.Engine.Apply(p)
	assert.Equal(t, tx.InvalidSignature, res.Result)
}
