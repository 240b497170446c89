// Package testutil provides the shared ledger test harness: a manual
// clock, an in-memory view, funded accounts and submit helpers.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/settleng/goledgerd/internal/clock"
	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/ledger"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/types"
	"github.com/settleng/goledgerd/internal/crypto"
	"github.com/settleng/goledgerd/internal/events"
)

// TestParams are short delays so window tests don't need day-scale
// jumps.
func TestParams() tx.Params {
	return tx.Params{
		TimelockMinDelay:    10 * time.Second,
		TimelockMaxDelay:    1000 * time.Second,
		TimelockGracePeriod: 100 * time.Second,
		MaxCampaignDuration: 90 * 24 * time.Hour,
	}
}

// Account is a funded test identity with its signing keys and expected
// next sequence.
type Account struct {
	ID   types.AccountID
	Keys crypto.Keypair
	seq  uint32
}

// Address returns the hex account identity.
func (a *Account) Address() string {
	return a.ID.String()
}

// Seq returns the sequence the account's next transaction must carry.
func (a *Account) Seq() uint32 {
	return a.seq
}

// Env wires an engine over an in-memory view with a manual clock and a
// recording event sink.
type Env struct {
	T      *testing.T
	Clock  *clock.ManualClock
	View   *ledger.MemoryView
	Engine *tx.Engine
	Sink   *events.MemorySink

	signing bool
}

// NewEnv builds an environment with signature verification disabled, so
// tests can submit bare transactions.
func NewEnv(t *testing.T) *Env {
	return newEnv(t, true)
}

// NewSigningEnv builds an environment that verifies real signatures.
// Submit signs each transaction with the account's keys.
func NewSigningEnv(t *testing.T) *Env {
	return newEnv(t, false)
}

func newEnv(t *testing.T, skipSig bool) *Env {
	t.Helper()
	clk := clock.NewManualClock()
	view := ledger.NewMemoryView()
	sink := events.NewMemorySink()
	params := TestParams()
	engine := tx.NewEngine(view, tx.Options{
		Clock:                     clk,
		Sink:                      sink,
		Params:                    &params,
		SkipSignatureVerification: skipSig,
	})
	return &Env{
		T:       t,
		Clock:   clk,
		View:    view,
		Engine:  engine,
		Sink:    sink,
		signing: !skipSig,
	}
}

// FundedAccount creates an identity seeded with the given native
// balance.
func (e *Env) FundedAccount(balance uint64) *Account {
	e.T.Helper()
	keys, err := crypto.GenerateKeypair(crypto.KeyTypeSecp256k1)
	require.NoError(e.T, err)
	addr, err := keys.AccountID()
	require.NoError(e.T, err)
	id, err := types.ParseAccountID(addr)
	require.NoError(e.T, err)
	require.NoError(e.T, ledger.Genesis(e.View, map[types.AccountID]uint64{id: balance}))
	return &Account{ID: id, Keys: keys}
}

// Submit runs a transaction through the engine, signing it first when
// the environment verifies signatures. The account's sequence advances
// on success.
func (e *Env) Submit(acct *Account, t tx.Transaction) tx.TxResult {
	e.T.Helper()
	if e.signing {
		require.NoError(e.T, Sign(t, acct.Keys))
	}
	res := e.Engine.Apply(t)
	if res.Applied {
		acct.seq++
	}
	return res
}

// RequireSuccess submits and asserts the transaction applied.
func (e *Env) RequireSuccess(acct *Account, t tx.Transaction) {
	e.T.Helper()
	res := e.Submit(acct, t)
	require.Equal(e.T, tx.Success, res.Result,
		"expected success, got %s: %s", res.Result, res.Result.Message())
}

// RequireResult submits and asserts the exact result code.
func (e *Env) RequireResult(acct *Account, t tx.Transaction, want tx.Result) {
	e.T.Helper()
	res := e.Submit(acct, t)
	require.Equal(e.T, want, res.Result,
		"expected %s, got %s", want, res.Result)
}

// Balance reads an account's native balance straight from the view.
func (e *Env) Balance(acct *Account) uint64 {
	e.T.Helper()
	root := e.AccountRoot(acct.ID)
	if root == nil {
		return 0
	}
	return root.Balance
}

// AccountRoot reads an account root, or nil if absent.
func (e *Env) AccountRoot(id types.AccountID) *sle.AccountRoot {
	e.T.Helper()
	data, err := e.View.Read(keylet.Account(id))
	require.NoError(e.T, err)
	if data == nil {
		return nil
	}
	var root sle.AccountRoot
	require.NoError(e.T, sle.Decode(data, &root))
	return &root
}

// Advance moves the manual clock forward.
func (e *Env) Advance(d time.Duration) {
	e.Clock.Advance(d)
}

// Now returns the current manual clock reading.
func (e *Env) Now() time.Time {
	return e.Clock.Now()
}

// Sign attaches the keypair's public key and signature to a
// transaction.
func Sign(t tx.Transaction, keys crypto.Keypair) error {
	common := t.GetCommon()
	common.SigningPubKey = keys.PublicKey
	common.TxnSignature = ""
	payload, err := tx.SigningData(t)
	if err != nil {
		return err
	}
	sig, err := keys.Sign(payload)
	if err != nil {
		return err
	}
	common.TxnSignature = sig
	return nil
}
