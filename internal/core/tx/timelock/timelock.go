// Package timelock implements delayed operations. An operation is
// queued with an execution timestamp bounded by the engine's delay
// params, then executed inside its grace window or cancelled. The queue
// entry's address is a pure function of the operation tuple, so an
// identical operation cannot be queued twice.
package timelock

import (
	"encoding/hex"

	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/types"
)

func init() {
	tx.Register(tx.TypeTimelockQueue, func() tx.Transaction { return &TimelockQueue{} })
	tx.Register(tx.TypeTimelockExecute, func() tx.Transaction { return &TimelockExecute{} })
	tx.Register(tx.TypeTimelockCancel, func() tx.Transaction { return &TimelockCancel{} })
}

// opFields identifies a queued operation. All three transactions carry
// the full tuple; the ledger entry is addressed by hashing it.
type opFields struct {
	Target string `json:"Target"`
	Value  uint64 `json:"Value"`
	// Signature names the action, e.g. "upgrade(address)". It is
	// opaque to the ledger.
	Signature string `json:"Signature,omitempty"`
	// Data is hex-encoded opaque call data.
	Data      string `json:"Data,omitempty"`
	Timestamp int64  `json:"Timestamp"`
}

func (f *opFields) validate() error {
	target, err := types.ParseAccountID(f.Target)
	if err != nil {
		return tx.ValidationError("malformed", "Target is not a valid identity")
	}
	if target.IsZero() {
		return tx.ValidationError("zeroAddress", "Target is the null identity")
	}
	if _, err := hex.DecodeString(f.Data); err != nil {
		return tx.ValidationError("malformed", "Data is not valid hex")
	}
	if f.Timestamp <= 0 {
		return tx.ValidationError("invalidWindow", "Timestamp is required")
	}
	return nil
}

func (f *opFields) flattenInto(m map[string]any) {
	m["Target"] = f.Target
	m["Value"] = f.Value
	if f.Signature != "" {
		m["Signature"] = f.Signature
	}
	if f.Data != "" {
		m["Data"] = f.Data
	}
	m["Timestamp"] = f.Timestamp
}

func (f *opFields) keylet() keylet.Keylet {
	target, _ := types.ParseAccountID(f.Target)
	data, _ := hex.DecodeString(f.Data)
	return keylet.TimelockOp(target, f.Value, f.Signature, data, f.Timestamp)
}

// TimelockQueue schedules an operation. Its timestamp must fall between
// MinDelay and MaxDelay from now.
type TimelockQueue struct {
	tx.BaseTx
	opFields
}

func NewTimelockQueue(account string, sequence uint32) *TimelockQueue {
	t := &TimelockQueue{}
	t.Account = account
	t.TransactionType = tx.TypeTimelockQueue.String()
	t.Sequence = sequence
	return t
}

func (t *TimelockQueue) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	return t.opFields.validate()
}

func (t *TimelockQueue) Flatten() map[string]any {
	m := t.Common.Flatten()
	t.opFields.flattenInto(m)
	return m
}

func (t *TimelockQueue) Apply(ctx *tx.ApplyContext) tx.Result {
	k := t.opFields.keylet()
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return tx.Internal
	}
	if exists {
		return tx.AlreadyQueued
	}
	now := ctx.Now.Unix()
	minAt := now + int64(ctx.Params.TimelockMinDelay.Seconds())
	maxAt := now + int64(ctx.Params.TimelockMaxDelay.Seconds())
	if t.Timestamp < minAt || t.Timestamp > maxAt {
		return tx.InvalidWindow
	}
	target, _ := types.ParseAccountID(t.Target)
	data, _ := hex.DecodeString(t.Data)
	op := &sle.TimelockOp{
		Owner:     ctx.AccountID,
		Target:    target,
		Value:     t.Value,
		Signature: t.Signature,
		Data:      data,
		Timestamp: t.Timestamp,
	}
	if err := tx.InsertEntry(ctx.View, k, op); err != nil {
		return tx.Internal
	}
	ctx.Account.OwnerCount++
	ctx.Emit("timelock_queued", map[string]any{
		"owner":     t.Account,
		"target":    t.Target,
		"timestamp": t.Timestamp,
	})
	return tx.Success
}

// TimelockExecute runs a queued operation inside its grace window,
// transferring Value from the owner to the target.
type TimelockExecute struct {
	tx.BaseTx
	opFields
}

func NewTimelockExecute(account string, sequence uint32) *TimelockExecute {
	t := &TimelockExecute{}
	t.Account = account
	t.TransactionType = tx.TypeTimelockExecute.String()
	t.Sequence = sequence
	return t
}

func (t *TimelockExecute) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	return t.opFields.validate()
}

func (t *TimelockExecute) Flatten() map[string]any {
	m := t.Common.Flatten()
	t.opFields.flattenInto(m)
	return m
}

func (t *TimelockExecute) Apply(ctx *tx.ApplyContext) tx.Result {
	k := t.opFields.keylet()
	op, err := tx.ReadEntry[sle.TimelockOp](ctx.View, k)
	if err != nil {
		return tx.Internal
	}
	if op == nil {
		return tx.NotQueued
	}
	if op.Owner != ctx.AccountID {
		return tx.NotAuthorized
	}
	now := ctx.Now.Unix()
	if now < op.Timestamp {
		return tx.TooEarly
	}
	if now > op.Timestamp+int64(ctx.Params.TimelockGracePeriod.Seconds()) {
		return tx.TooLate
	}
	if op.Value > 0 {
		if r := ctx.Debit(op.Value); !r.IsSuccess() {
			return r
		}
		if err := ctx.Credit(op.Target, op.Value); err != nil {
			return tx.Internal
		}
	}
	if err := ctx.View.Erase(k); err != nil {
		return tx.Internal
	}
	if ctx.Account.OwnerCount > 0 {
		ctx.Account.OwnerCount--
	}
	ctx.Emit("timelock_executed", map[string]any{
		"owner":  t.Account,
		"target": t.Target,
		"value":  op.Value,
	})
	return tx.Success
}

// TimelockCancel removes a queued operation at any time before
// execution.
type TimelockCancel struct {
	tx.BaseTx
	opFields
}

func NewTimelockCancel(account string, sequence uint32) *TimelockCancel {
	t := &TimelockCancel{}
	t.Account = account
	t.TransactionType = tx.TypeTimelockCancel.String()
	t.Sequence = sequence
	return t
}

func (t *TimelockCancel) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	return t.opFields.validate()
}

func (t *TimelockCancel) Flatten() map[string]any {
	m := t.Common.Flatten()
	t.opFields.flattenInto(m)
	return m
}

func (t *TimelockCancel) Apply(ctx *tx.ApplyContext) tx.Result {
	k := t.opFields.keylet()
	op, err := tx.ReadEntry[sle.TimelockOp](ctx.View, k)
	if err != nil {
		return tx.Internal
	}
	if op == nil {
		return tx.NotQueued
	}
	if op.Owner != ctx.AccountID {
		return tx.NotAuthorized
	}
	if err := ctx.View.Erase(k); err != nil {
		return tx.Internal
	}
	if ctx.Account.OwnerCount > 0 {
		ctx.Account.OwnerCount--
	}
	ctx.Emit("timelock_cancelled", map[string]any{
		"owner":  t.Account,
		"target": t.Target,
	})
	return tx.Success
}
