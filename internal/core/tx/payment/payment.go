// Package payment implements native value transfers between accounts.
package payment

import (
	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/types"
)

func init() {
	tx.Register(tx.TypePayment, func() tx.Transaction { return &Payment{} })
}

// Payment moves native value from the submitting account to Destination.
// The destination account is created if it does not exist.
type Payment struct {
	tx.BaseTx
	Destination string `json:"Destination"`
	Amount      uint64 `json:"Amount"`
}

func NewPayment(account string, sequence uint32) *Payment {
	p := &Payment{}
	p.Account = account
	p.TransactionType = tx.TypePayment.String()
	p.Sequence = sequence
	return p
}

func (p *Payment) Validate() error {
	if err := p.Common.Validate(); err != nil {
		return err
	}
	if p.Amount == 0 {
		return tx.ValidationError("malformed", "Amount must be positive")
	}
	dest, err := types.ParseAccountID(p.Destination)
	if err != nil {
		return tx.ValidationError("malformed", "Destination is not a valid identity")
	}
	if dest.IsZero() {
		return tx.ValidationError("zeroAddress", "Destination is the null identity")
	}
	if acct, err := p.AccountID(); err == nil && dest == acct {
		return tx.ValidationError("invalidTarget", "Destination is the sender")
	}
	return nil
}

func (p *Payment) Flatten() map[string]any {
	m := p.Common.Flatten()
	m["Destination"] = p.Destination
	m["Amount"] = p.Amount
	return m
}

func (p *Payment) Apply(ctx *tx.ApplyContext) tx.Result {
	dest, err := types.ParseAccountID(p.Destination)
	if err != nil {
		return tx.Malformed
	}
	if r := ctx.Debit(p.Amount); !r.IsSuccess() {
		return r
	}
	if err := ctx.Credit(dest, p.Amount); err != nil {
		return tx.Internal
	}
	ctx.Emit("payment", map[string]any{
		"from":   p.Account,
		"to":     p.Destination,
		"amount": p.Amount,
	})
	return tx.Success
}
