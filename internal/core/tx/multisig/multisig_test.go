package multisig_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/tx/multisig"
	"github.com/settleng/goledgerd/internal/testutil"
)

type walletEnv struct {
	env       *testutil.Env
	alice     *testutil.Account
	bob       *testutil.Account
	carol     *testutil.Account
	walletSeq uint32
}

// newWalletEnv funds three owners and creates a 2-of-3 wallet holding
// 500 from alice.
func newWalletEnv(t *testing.T) *walletEnv {
	t.Helper()
	env := testutil.NewEnv(t)
	w := &walletEnv{
		env:   env,
		alice: env.FundedAccount(1000),
		bob:   env.FundedAccount(1000),
		carol: env.FundedAccount(1000),
	}

	w.walletSeq = w.alice.Seq()
	create := multisig.NewWalletCreate(w.alice.Address(), w.walletSeq)
	create.Owners = []string{w.alice.Address(), w.bob.Address(), w.carol.Address()}
	create.Threshold = 2
	env.RequireSuccess(w.alice, create)

	deposit := multisig.NewWalletDeposit(w.alice.Address(), w.alice.Seq())
	deposit.Creator = w.alice.Address()
	deposit.WalletSequence = w.walletSeq
	deposit.Amount = 500
	env.RequireSuccess(w.alice, deposit)
	return w
}

func (w *walletEnv) submit(from *testutil.Account, dest string, amount uint64) *multisig.WalletSubmit {
	s := multisig.NewWalletSubmit(from.Address(), from.Seq())
	s.Creator = w.alice.Address()
	s.WalletSequence = w.walletSeq
	s.Destination = dest
	s.Amount = amount
	return s
}

func (w *walletEnv) confirm(from *testutil.Account, index uint32) *multisig.WalletConfirm {
	c := multisig.NewWalletConfirm(from.Address(), from.Seq())
	c.Creator = w.alice.Address()
	c.WalletSequence = w.walletSeq
	c.Index = index
	return c
}

func (w *walletEnv) revoke(from *testutil.Account, index uint32) *multisig.WalletRevoke {
	r := multisig.NewWalletRevoke(from.Address(), from.Seq())
	r.Creator = w.alice.Address()
	r.WalletSequence = w.walletSeq
	r.Index = index
	return r
}

func (w *walletEnv) execute(from *testutil.Account, index uint32) *multisig.WalletExecute {
	e := multisig.NewWalletExecute(from.Address(), from.Seq())
	e.Creator = w.alice.Address()
	e.WalletSequence = w.walletSeq
	e.Index = index
	return e
}

func TestWalletThresholdExecution(t *testing.T) {
	w := newWalletEnv(t)
	payee := w.env.FundedAccount(0)

	w.env.RequireSuccess(w.alice, w.submit(w.alice, payee.Address(), 300))

	// One confirmation is below the threshold.
	w.env.RequireSuccess(w.alice, w.confirm(w.alice, 0))
	w.env.RequireResult(w.alice, w.execute(w.alice, 0), tx.InsufficientConfirmations)

	w.env.RequireSuccess(w.bob, w.confirm(w.bob, 0))
	w.env.RequireSuccess(w.carol, w.execute(w.carol, 0))
	assert.Equal(t, uint64(300), w.env.Balance(payee))

	// A proposal executes at most once.
	w.env.RequireResult(w.bob, w.execute(w.bob, 0), tx.AlreadyExecuted)
	w.env.RequireResult(w.bob, w.confirm(w.bob, 0), tx.AlreadyExecuted)
	assert.Equal(t, uint64(300), w.env.Balance(payee))
}

func TestWalletConfirmationBookkeeping(t *testing.T) {
	w := newWalletEnv(t)
	payee := w.env.FundedAccount(0)

	w.env.RequireSuccess(w.bob, w.submit(w.bob, payee.Address(), 100))

	w.env.RequireSuccess(w.alice, w.confirm(w.alice, 0))
	w.env.RequireResult(w.alice, w.confirm(w.alice, 0), tx.AlreadyConfirmed)

	// Revoking drops back below the threshold.
	w.env.RequireSuccess(w.bob, w.confirm(w.bob, 0))
	w.env.RequireSuccess(w.alice, w.revoke(w.alice, 0))
	w.env.RequireResult(w.alice, w.execute(w.alice, 0), tx.InsufficientConfirmations)

	// Revoking a confirmation that was never given fails.
	w.env.RequireResult(w.carol, w.revoke(w.carol, 0), tx.NotConfirmed)

	w.env.RequireSuccess(w.carol, w.confirm(w.carol, 0))
	w.env.RequireSuccess(w.bob, w.execute(w.bob, 0))
	assert.Equal(t, uint64(100), w.env.Balance(payee))
}

func TestWalletOwnersOnly(t *testing.T) {
	w := newWalletEnv(t)
	outsider := w.env.FundedAccount(1000)
	payee := w.env.FundedAccount(0)

	w.env.RequireResult(outsider, w.submit(outsider, payee.Address(), 100), tx.NotAuthorized)

	w.env.RequireSuccess(w.alice, w.submit(w.alice, payee.Address(), 100))
	w.env.RequireResult(outsider, w.confirm(outsider, 0), tx.NotAuthorized)
	w.env.RequireResult(outsider, w.execute(outsider, 0), tx.NotAuthorized)

	// Anyone may deposit, owner or not.
	deposit := multisig.NewWalletDeposit(outsider.Address(), outsider.Seq())
	deposit.Creator = w.alice.Address()
	deposit.WalletSequence = w.walletSeq
	deposit.Amount = 50
	w.env.RequireSuccess(outsider, deposit)
	assert.Equal(t, uint64(950), w.env.Balance(outsider))
}

func TestWalletInsufficientBalance(t *testing.T) {
	w := newWalletEnv(t)
	payee := w.env.FundedAccount(0)

	w.env.RequireSuccess(w.alice, w.submit(w.alice, payee.Address(), 600))
	w.env.RequireSuccess(w.alice, w.confirm(w.alice, 0))
	w.env.RequireSuccess(w.bob, w.confirm(w.bob, 0))

	// The wallet holds 500; the proposal asks for 600.
	w.env.RequireResult(w.alice, w.execute(w.alice, 0), tx.InsufficientBalance)

	// A later deposit makes the same proposal executable.
	deposit := multisig.NewWalletDeposit(w.bob.Address(), w.bob.Seq())
	deposit.Creator = w.alice.Address()
	deposit.WalletSequence = w.walletSeq
	deposit.Amount = 200
	w.env.RequireSuccess(w.bob, deposit)
	w.env.RequireSuccess(w.alice, w.execute(w.alice, 0))
	assert.Equal(t, uint64(600), w.env.Balance(payee))
}

func TestWalletUnknownTargets(t *testing.T) {
	w := newWalletEnv(t)

	missing := w.confirm(w.alice, 7)
	w.env.RequireResult(w.alice, missing, tx.NoTarget)

	deposit := multisig.NewWalletDeposit(w.alice.Address(), w.alice.Seq())
	deposit.Creator = w.alice.Address()
	deposit.WalletSequence = 99
	deposit.Amount = 10
	w.env.RequireResult(w.alice, deposit, tx.NoTarget)
}

func TestWalletCreateValidation(t *testing.T) {
	env := testutil.NewEnv(t)
	acct := env.FundedAccount(100)
	other := env.FundedAccount(0)

	tests := []struct {
		name string
		mod  func(*multisig.WalletCreate)
		want tx.Result
	}{
		{
			name: "no owners",
			mod:  func(c *multisig.WalletCreate) { c.Owners = nil },
			want: tx.Malformed,
		},
		{
			name: "duplicate owner",
			mod: func(c *multisig.WalletCreate) {
				c.Owners = []string{acct.Address(), acct.Address()}
			},
			want: tx.Malformed,
		},
		{
			name: "null owner",
			mod: func(c *multisig.WalletCreate) {
				c.Owners = []string{acct.Address(), "0000000000000000000000000000000000000000"}
			},
			want: tx.ZeroAddress,
		},
		{
			name: "zero threshold",
			mod:  func(c *multisig.WalletCreate) { c.Threshold = 0 },
			want: tx.Malformed,
		},
		{
			name: "threshold above owner count",
			mod:  func(c *multisig.WalletCreate) { c.Threshold = 3 },
			want: tx.Malformed,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			create := multisig.NewWalletCreate(acct.Address(), acct.Seq())
			create.Owners = []string{acct.Address(), other.Address()}
			create.Threshold = 2
			tc.mod(create)
			env.RequireResult(acct, create, tc.want)
		})
	}
}
