package token

import (
	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/types"
)

func init() {
	tx.Register(tx.TypeSemiMint, func() tx.Transaction { return &SemiMint{} })
	tx.Register(tx.TypeSemiBurn, func() tx.Transaction { return &SemiBurn{} })
	tx.Register(tx.TypeSemiTransfer, func() tx.Transaction { return &SemiTransfer{} })
}

// SemiMint creates quantity of a semi-fungible token id. The first mint
// of an id fixes its issuer; later mints of that id are issuer-only.
type SemiMint struct {
	tx.BaseTx
	Token       string `json:"Token"`
	Destination string `json:"Destination"`
	Amount      uint64 `json:"Amount"`
}

func NewSemiMint(account string, sequence uint32) *SemiMint {
	t := &SemiMint{}
	t.Account = account
	t.TransactionType = tx.TypeSemiMint.String()
	t.Sequence = sequence
	return t
}

func (t *SemiMint) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseTokenID(t.Token); err != nil {
		return tx.ValidationError("malformed", "Token is not a valid token id")
	}
	if t.Amount == 0 {
		return tx.ValidationError("malformed", "Amount must be positive")
	}
	dest, err := types.ParseAccountID(t.Destination)
	if err != nil {
		return tx.ValidationError("malformed", "Destination is not a valid identity")
	}
	if dest.IsZero() {
		return tx.ValidationError("zeroAddress", "Destination is the null identity")
	}
	return nil
}

func (t *SemiMint) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Token"] = t.Token
	m["Destination"] = t.Destination
	m["Amount"] = t.Amount
	return m
}

func (t *SemiMint) Apply(ctx *tx.ApplyContext) tx.Result {
	token, _ := types.ParseTokenID(t.Token)
	dest, _ := types.ParseAccountID(t.Destination)

	k := keylet.SemiToken(token)
	st, err := tx.ReadEntry[sle.SemiToken](ctx.View, k)
	if err != nil {
		return tx.Internal
	}
	created := false
	if st == nil {
		st = &sle.SemiToken{Token: token, Issuer: ctx.AccountID}
		created = true
	} else if st.Issuer != ctx.AccountID {
		return tx.NotAuthorized
	}
	supply, ok := types.AddUint64(st.TotalSupply, t.Amount)
	if !ok {
		return tx.Internal
	}
	st.TotalSupply = supply
	if created {
		if err := tx.InsertEntry(ctx.View, k, st); err != nil {
			return tx.Internal
		}
		ctx.Account.OwnerCount++
	} else if err := tx.UpdateEntry(ctx.View, k, st); err != nil {
		return tx.Internal
	}
	if r := creditSemi(ctx, token, dest, t.Amount); !r.IsSuccess() {
		return r
	}
	ctx.Emit("semi_minted", map[string]any{
		"token":  t.Token,
		"to":     t.Destination,
		"amount": t.Amount,
	})
	return tx.Success
}

// SemiBurn destroys quantity from the submitting account's holding.
type SemiBurn struct {
	tx.BaseTx
	Token  string `json:"Token"`
	Amount uint64 `json:"Amount"`
}

func NewSemiBurn(account string, sequence uint32) *SemiBurn {
	t := &SemiBurn{}
	t.Account = account
	t.TransactionType = tx.TypeSemiBurn.String()
	t.Sequence = sequence
	return t
}

func (t *SemiBurn) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseTokenID(t.Token); err != nil {
		return tx.ValidationError("malformed", "Token is not a valid token id")
	}
	if t.Amount == 0 {
		return tx.ValidationError("malformed", "Amount must be positive")
	}
	return nil
}

func (t *SemiBurn) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Token"] = t.Token
	m["Amount"] = t.Amount
	return m
}

func (t *SemiBurn) Apply(ctx *tx.ApplyContext) tx.Result {
	token, _ := types.ParseTokenID(t.Token)

	k := keylet.SemiToken(token)
	st, err := tx.ReadEntry[sle.SemiToken](ctx.View, k)
	if err != nil {
		return tx.Internal
	}
	if st == nil {
		return tx.NoTarget
	}
	if r := debitSemi(ctx, token, ctx.AccountID, t.Amount); !r.IsSuccess() {
		return r
	}
	supply, ok := types.SubUint64(st.TotalSupply, t.Amount)
	if !ok {
		return tx.Internal
	}
	st.TotalSupply = supply
	if err := tx.UpdateEntry(ctx.View, k, st); err != nil {
		return tx.Internal
	}
	ctx.Emit("semi_burned", map[string]any{
		"token":  t.Token,
		"from":   t.Account,
		"amount": t.Amount,
	})
	return tx.Success
}

// SemiTransfer moves quantity of a semi-fungible id between holders.
type SemiTransfer struct {
	tx.BaseTx
	Token       string `json:"Token"`
	Destination string `json:"Destination"`
	Amount      uint64 `json:"Amount"`
}

func NewSemiTransfer(account string, sequence uint32) *SemiTransfer {
	t := &SemiTransfer{}
	t.Account = account
	t.TransactionType = tx.TypeSemiTransfer.String()
	t.Sequence = sequence
	return t
}

func (t *SemiTransfer) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseTokenID(t.Token); err != nil {
		return tx.ValidationError("malformed", "Token is not a valid token id")
	}
	if t.Amount == 0 {
		return tx.ValidationError("malformed", "Amount must be positive")
	}
	dest, err := types.ParseAccountID(t.Destination)
	if err != nil {
		return tx.ValidationError("malformed", "Destination is not a valid identity")
	}
	if dest.IsZero() {
		return tx.ValidationError("zeroAddress", "Destination is the null identity")
	}
	return nil
}

func (t *SemiTransfer) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Token"] = t.Token
	m["Destination"] = t.Destination
	m["Amount"] = t.Amount
	return m
}

func (t *SemiTransfer) Apply(ctx *tx.ApplyContext) tx.Result {
	token, _ := types.ParseTokenID(t.Token)
	dest, _ := types.ParseAccountID(t.Destination)

	exists, err := ctx.View.Exists(keylet.SemiToken(token))
	if err != nil {
		return tx.Internal
	}
	if !exists {
		return tx.NoTarget
	}
	if r := debitSemi(ctx, token, ctx.AccountID, t.Amount); !r.IsSuccess() {
		return r
	}
	if r := creditSemi(ctx, token, dest, t.Amount); !r.IsSuccess() {
		return r
	}
	ctx.Emit("semi_transferred", map[string]any{
		"token":  t.Token,
		"from":   t.Account,
		"to":     t.Destination,
		"amount": t.Amount,
	})
	return tx.Success
}

func creditSemi(ctx *tx.ApplyContext, token types.TokenID, holder types.AccountID, amount uint64) tx.Result {
	k := keylet.SemiBalance(token, holder)
	bal, err := tx.ReadEntry[sle.SemiBalance](ctx.View, k)
	if err != nil {
		return tx.Internal
	}
	if bal == nil {
		bal = &sle.SemiBalance{Token: token, Holder: holder, Amount: amount}
		if err := tx.InsertEntry(ctx.View, k, bal); err != nil {
			return tx.Internal
		}
		return tx.Success
	}
	sum, ok := types.AddUint64(bal.Amount, amount)
	if !ok {
		return tx.Internal
	}
	bal.Amount = sum
	if err := tx.UpdateEntry(ctx.View, k, bal); err != nil {
		return tx.Internal
	}
	return tx.Success
}

func debitSemi(ctx *tx.ApplyContext, token types.TokenID, holder types.AccountID, amount uint64) tx.Result {
	k := keylet.SemiBalance(token, holder)
	bal, err := tx.ReadEntry[sle.SemiBalance](ctx.View, k)
	if err != nil {
		return tx.Internal
	}
	if bal == nil || bal.Amount < amount {
		return tx.InsufficientBalance
	}
	bal.Amount -= amount
	if bal.Amount == 0 {
		if err := ctx.View.Erase(k); err != nil {
			return tx.Internal
		}
		return tx.Success
	}
	if err := tx.UpdateEntry(ctx.View, k, bal); err != nil {
		return tx.Internal
	}
	return tx.Success
}
