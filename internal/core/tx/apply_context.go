package tx

import (
	"errors"
	"time"

	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/types"
)

var errBalanceOverflow = errors.New("tx: balance overflow")

// Params are the engine's consensus-critical knobs.
type Params struct {
	// TimelockMinDelay and TimelockMaxDelay bound how far in the future
	// a queued operation's timestamp may lie.
	TimelockMinDelay time.Duration
	TimelockMaxDelay time.Duration
	// TimelockGracePeriod is how long past its timestamp an operation
	// stays executable.
	TimelockGracePeriod time.Duration
	// MaxCampaignDuration caps the pledge window of a crowdfund.
	MaxCampaignDuration time.Duration
}

// DefaultParams returns production delays.
func DefaultParams() Params {
	return Params{
		TimelockMinDelay:    24 * time.Hour,
		TimelockMaxDelay:    30 * 24 * time.Hour,
		TimelockGracePeriod: 14 * 24 * time.Hour,
		MaxCampaignDuration: 90 * 24 * time.Hour,
	}
}

// ApplyContext carries everything a transactor needs during apply. All
// mutations go through View, a buffering state table, so nothing is
// visible until the engine commits.
type ApplyContext struct {
	View      LedgerView
	AccountID types.AccountID
	// Account is the submitting account's root, loaded by the engine.
	// Transactors mutate it in place; the engine writes it back on
	// success.
	Account *sle.AccountRoot
	// Sequence is the transaction's sequence, which also seeds the
	// addresses of entries the transaction creates.
	Sequence uint32
	Params   Params
	Now      time.Time
	TxHash   [32]byte

	events []PendingEvent
}

// PendingEvent is an event recorded during apply. The engine forwards
// pending events to the sink only if the transaction succeeds.
type PendingEvent struct {
	Name   string
	Fields map[string]any
}

// Emit records an event for delivery on success.
func (ctx *ApplyContext) Emit(name string, fields map[string]any) {
	ctx.events = append(ctx.events, PendingEvent{Name: name, Fields: fields})
}

// PendingEvents returns the events recorded so far.
func (ctx *ApplyContext) PendingEvents() []PendingEvent {
	return ctx.events
}

// ReadAccount loads an account root. Returns (nil, nil) if the account
// does not exist. The submitting account is served from the in-memory
// copy so its staged mutations are visible.
func (ctx *ApplyContext) ReadAccount(id types.AccountID) (*sle.AccountRoot, error) {
	if id == ctx.AccountID {
		return ctx.Account, nil
	}
	data, err := ctx.View.Read(keylet.Account(id))
	if err != nil || data == nil {
		return nil, err
	}
	var acct sle.AccountRoot
	if err := sle.Decode(data, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

// WriteAccount stores an account root back to the view.
func (ctx *ApplyContext) WriteAccount(acct *sle.AccountRoot) error {
	if acct.Account == ctx.AccountID {
		// Written back by the engine at commit time.
		return nil
	}
	data, err := sle.Encode(acct)
	if err != nil {
		return err
	}
	k := keylet.Account(acct.Account)
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return ctx.View.Update(k, data)
	}
	return ctx.View.Insert(k, data)
}

// Credit adds native value to an account, creating the root if needed.
func (ctx *ApplyContext) Credit(id types.AccountID, amount uint64) error {
	acct, err := ctx.ReadAccount(id)
	if err != nil {
		return err
	}
	if acct == nil {
		acct = &sle.AccountRoot{Account: id}
	}
	sum, ok := types.AddUint64(acct.Balance, amount)
	if !ok {
		return errBalanceOverflow
	}
	acct.Balance = sum
	return ctx.WriteAccount(acct)
}

// Debit removes native value from the submitting account. Returns
// InsufficientBalance without touching state when the balance does not
// cover the amount.
func (ctx *ApplyContext) Debit(amount uint64) Result {
	rest, ok := types.SubUint64(ctx.Account.Balance, amount)
	if !ok {
		return InsufficientBalance
	}
	ctx.Account.Balance = rest
	return Success
}
