// Package escrow implements conditional native value locks. An escrow
// settles exactly once: a finish pays the beneficiary, a cancel returns
// the funds to the owner.
package escrow

import (
	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/types"
)

func init() {
	tx.Register(tx.TypeEscrowCreate, func() tx.Transaction { return &EscrowCreate{} })
	tx.Register(tx.TypeEscrowFinish, func() tx.Transaction { return &EscrowFinish{} })
	tx.Register(tx.TypeEscrowCancel, func() tx.Transaction { return &EscrowCancel{} })
}

// EscrowCreate locks native value for a beneficiary. The funds become
// releasable at ReleaseAfter; if CancelAfter is set the owner may
// reclaim from that point on.
type EscrowCreate struct {
	tx.BaseTx
	Beneficiary  string `json:"Beneficiary"`
	Amount       uint64 `json:"Amount"`
	ReleaseAfter int64  `json:"ReleaseAfter"`
	CancelAfter  int64  `json:"CancelAfter,omitempty"`
}

func NewEscrowCreate(account string, sequence uint32) *EscrowCreate {
	t := &EscrowCreate{}
	t.Account = account
	t.TransactionType = tx.TypeEscrowCreate.String()
	t.Sequence = sequence
	return t
}

func (t *EscrowCreate) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if t.Amount == 0 {
		return tx.ValidationError("malformed", "Amount must be positive")
	}
	ben, err := types.ParseAccountID(t.Beneficiary)
	if err != nil {
		return tx.ValidationError("malformed", "Beneficiary is not a valid identity")
	}
	if ben.IsZero() {
		return tx.ValidationError("zeroAddress", "Beneficiary is the null identity")
	}
	if t.ReleaseAfter <= 0 {
		return tx.ValidationError("invalidWindow", "ReleaseAfter is required")
	}
	if t.CancelAfter != 0 && t.CancelAfter <= t.ReleaseAfter {
		return tx.ValidationError("invalidWindow", "CancelAfter must follow ReleaseAfter")
	}
	return nil
}

func (t *EscrowCreate) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Beneficiary"] = t.Beneficiary
	m["Amount"] = t.Amount
	m["ReleaseAfter"] = t.ReleaseAfter
	if t.CancelAfter != 0 {
		m["CancelAfter"] = t.CancelAfter
	}
	return m
}

func (t *EscrowCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	ben, _ := types.ParseAccountID(t.Beneficiary)
	if r := ctx.Debit(t.Amount); !r.IsSuccess() {
		return r
	}
	esc := &sle.Escrow{
		Owner:        ctx.AccountID,
		Beneficiary:  ben,
		Amount:       t.Amount,
		ReleaseAfter: t.ReleaseAfter,
		CancelAfter:  t.CancelAfter,
	}
	if err := tx.InsertEntry(ctx.View, keylet.Escrow(ctx.AccountID, ctx.Sequence), esc); err != nil {
		return tx.Internal
	}
	ctx.Account.OwnerCount++
	ctx.Emit("escrow_created", map[string]any{
		"owner":       t.Account,
		"beneficiary": t.Beneficiary,
		"amount":      t.Amount,
	})
	return tx.Success
}

// EscrowFinish releases the escrowed value to the beneficiary. Only the
// beneficiary may finish, and only once ReleaseAfter has passed.
type EscrowFinish struct {
	tx.BaseTx
	Owner         string `json:"Owner"`
	OfferSequence uint32 `json:"OfferSequence"`
}

func NewEscrowFinish(account string, sequence uint32) *EscrowFinish {
	t := &EscrowFinish{}
	t.Account = account
	t.TransactionType = tx.TypeEscrowFinish.String()
	t.Sequence = sequence
	return t
}

func (t *EscrowFinish) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseAccountID(t.Owner); err != nil {
		return tx.ValidationError("malformed", "Owner is not a valid identity")
	}
	return nil
}

func (t *EscrowFinish) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Owner"] = t.Owner
	m["OfferSequence"] = t.OfferSequence
	return m
}

func (t *EscrowFinish) Apply(ctx *tx.ApplyContext) tx.Result {
	owner, _ := types.ParseAccountID(t.Owner)
	k := keylet.Escrow(owner, t.OfferSequence)
	esc, err := tx.ReadEntry[sle.Escrow](ctx.View, k)
	if err != nil {
		return tx.Internal
	}
	if esc == nil {
		return tx.NoTarget
	}
	if esc.Released {
		return tx.AlreadyReleased
	}
	if esc.Beneficiary != ctx.AccountID {
		return tx.NotAuthorized
	}
	if ctx.Now.Unix() < esc.ReleaseAfter {
		return tx.TooEarly
	}
	esc.Released = true
	if err := tx.UpdateEntry(ctx.View, k, esc); err != nil {
		return tx.Internal
	}
	if err := ctx.Credit(esc.Beneficiary, esc.Amount); err != nil {
		return tx.Internal
	}
	ctx.Emit("escrow_finished", map[string]any{
		"owner":       t.Owner,
		"beneficiary": t.Account,
		"amount":      esc.Amount,
	})
	return tx.Success
}

// EscrowCancel returns the escrowed value to the owner once CancelAfter
// has passed. Escrows created without CancelAfter cannot be cancelled.
type EscrowCancel struct {
	tx.BaseTx
	OfferSequence uint32 `json:"OfferSequence"`
}

func NewEscrowCancel(account string, sequence uint32) *EscrowCancel {
	t := &EscrowCancel{}
	t.Account = account
	t.TransactionType = tx.TypeEscrowCancel.String()
	t.Sequence = sequence
	return t
}

func (t *EscrowCancel) Validate() error {
	return t.Common.Validate()
}

func (t *EscrowCancel) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["OfferSequence"] = t.OfferSequence
	return m
}

func (t *EscrowCancel) Apply(ctx *tx.ApplyContext) tx.Result {
	k := keylet.Escrow(ctx.AccountID, t.OfferSequence)
	esc, err := tx.ReadEntry[sle.Escrow](ctx.View, k)
	if err != nil {
		return tx.Internal
	}
	if esc == nil {
		return tx.NoTarget
	}
	if esc.Released {
		return tx.AlreadyReleased
	}
	if esc.Owner != ctx.AccountID || esc.CancelAfter == 0 {
		return tx.NotAuthorized
	}
	if ctx.Now.Unix() < esc.CancelAfter {
		return tx.TooEarly
	}
	esc.Released = true
	if err := tx.UpdateEntry(ctx.View, k, esc); err != nil {
		return tx.Internal
	}
	sum, ok := types.AddUint64(ctx.Account.Balance, esc.Amount)
	if !ok {
		return tx.Internal
	}
	ctx.Account.Balance = sum
	ctx.Emit("escrow_cancelled", map[string]any{
		"owner":  t.Account,
		"amount": esc.Amount,
	})
	return tx.Success
}
