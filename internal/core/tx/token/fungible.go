// Package token implements the asset transactions: fungible issuances
// with allowances, unique tokens, and semi-fungible token ids.
package token

import (
	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/types"
)

func init() {
	tx.Register(tx.TypeTokenCreate, func() tx.Transaction { return &TokenCreate{} })
	tx.Register(tx.TypeTokenMint, func() tx.Transaction { return &TokenMint{} })
	tx.Register(tx.TypeTokenBurn, func() tx.Transaction { return &TokenBurn{} })
	tx.Register(tx.TypeTokenTransfer, func() tx.Transaction { return &TokenTransfer{} })
	tx.Register(tx.TypeTokenApprove, func() tx.Transaction { return &TokenApprove{} })
	tx.Register(tx.TypeTokenTransferFrom, func() tx.Transaction { return &TokenTransferFrom{} })
}

// TokenCreate issues a new fungible token with zero supply. The token id
// is derived from the issuer and the transaction sequence.
type TokenCreate struct {
	tx.BaseTx
	Name     string `json:"Name"`
	Symbol   string `json:"Symbol"`
	Decimals uint8  `json:"Decimals"`
}

func NewTokenCreate(account string, sequence uint32) *TokenCreate {
	t := &TokenCreate{}
	t.Account = account
	t.TransactionType = tx.TypeTokenCreate.String()
	t.Sequence = sequence
	return t
}

func (t *TokenCreate) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if t.Name == "" {
		return tx.ValidationError("malformed", "Name is required")
	}
	if t.Symbol == "" {
		return tx.ValidationError("malformed", "Symbol is required")
	}
	if t.Decimals > 18 {
		return tx.ValidationError("malformed", "Decimals must not exceed 18")
	}
	return nil
}

func (t *TokenCreate) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Name"] = t.Name
	m["Symbol"] = t.Symbol
	m["Decimals"] = t.Decimals
	return m
}

func (t *TokenCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	token := keylet.IssuanceID(ctx.AccountID, ctx.Sequence)
	iss := &sle.Issuance{
		Token:    token,
		Issuer:   ctx.AccountID,
		Name:     t.Name,
		Symbol:   t.Symbol,
		Decimals: t.Decimals,
	}
	if err := tx.InsertEntry(ctx.View, keylet.Issuance(token), iss); err != nil {
		return tx.Internal
	}
	ctx.Account.OwnerCount++
	ctx.Emit("token_created", map[string]any{
		"token":  token.String(),
		"issuer": t.Account,
		"symbol": t.Symbol,
	})
	return tx.Success
}

// TokenMint creates supply. Only the issuer may mint.
type TokenMint struct {
	tx.BaseTx
	Token       string `json:"Token"`
	Destination string `json:"Destination"`
	Amount      uint64 `json:"Amount"`
}

func NewTokenMint(account string, sequence uint32) *TokenMint {
	t := &TokenMint{}
	t.Account = account
	t.TransactionType = tx.TypeTokenMint.String()
	t.Sequence = sequence
	return t
}

func (t *TokenMint) Validate() error {
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

func (t *TokenMint) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Token"] = t.Token
	m["Destination"] = t.Destination
	m["Amount"] = t.Amount
	return m
}

func (t *TokenMint) Apply(ctx *tx.ApplyContext) tx.Result {
	token, _ := types.ParseTokenID(t.Token)
	dest, _ := types.ParseAccountID(t.Destination)

	iss, err := tx.ReadEntry[sle.Issuance](ctx.View, keylet.Issuance(token))
	if err != nil {
		return tx.Internal
	}
	if iss == nil {
		return tx.NoTarget
	}
	if iss.Issuer != ctx.AccountID {
		return tx.NotAuthorized
	}
	supply, ok := types.AddUint64(iss.TotalSupply, t.Amount)
	if !ok {
		return tx.Internal
	}
	iss.TotalSupply = supply
	if err := tx.UpdateEntry(ctx.View, keylet.Issuance(token), iss); err != nil {
		return tx.Internal
	}
	if r := creditToken(ctx, token, dest, t.Amount); !r.IsSuccess() {
		return r
	}
	ctx.Emit("token_minted", map[string]any{
		"token":  t.Token,
		"to":     t.Destination,
		"amount": t.Amount,
	})
	return tx.Success
}

// TokenBurn destroys supply from the submitting account's balance.
type TokenBurn struct {
	tx.BaseTx
	Token  string `json:"Token"`
	Amount uint64 `json:"Amount"`
}

func NewTokenBurn(account string, sequence uint32) *TokenBurn {
	t := &TokenBurn{}
	t.Account = account
	t.TransactionType = tx.TypeTokenBurn.String()
	t.Sequence = sequence
	return t
}

func (t *TokenBurn) Validate() error {
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

func (t *TokenBurn) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Token"] = t.Token
	m["Amount"] = t.Amount
	return m
}

func (t *TokenBurn) Apply(ctx *tx.ApplyContext) tx.Result {
	token, _ := types.ParseTokenID(t.Token)

	iss, err := tx.ReadEntry[sle.Issuance](ctx.View, keylet.Issuance(token))
	if err != nil {
		return tx.Internal
	}
	if iss == nil {
		return tx.NoTarget
	}
	if r := debitToken(ctx, token, ctx.AccountID, t.Amount); !r.IsSuccess() {
		return r
	}
	supply, ok := types.SubUint64(iss.TotalSupply, t.Amount)
	if !ok {
		return tx.Internal
	}
	iss.TotalSupply = supply
	if err := tx.UpdateEntry(ctx.View, keylet.Issuance(token), iss); err != nil {
		return tx.Internal
	}
	ctx.Emit("token_burned", map[string]any{
		"token":  t.Token,
		"from":   t.Account,
		"amount": t.Amount,
	})
	return tx.Success
}

// TokenTransfer moves fungible balance between holders.
type TokenTransfer struct {
	tx.BaseTx
	Token       string `json:"Token"`
	Destination string `json:"Destination"`
	Amount      uint64 `json:"Amount"`
}

func NewTokenTransfer(account string, sequence uint32) *TokenTransfer {
	t := &TokenTransfer{}
	t.Account = account
	t.TransactionType = tx.TypeTokenTransfer.String()
	t.Sequence = sequence
	return t
}

func (t *TokenTransfer) Validate() error {
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

func (t *TokenTransfer) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Token"] = t.Token
	m["Destination"] = t.Destination
	m["Amount"] = t.Amount
	return m
}

func (t *TokenTransfer) Apply(ctx *tx.ApplyContext) tx.Result {
	token, _ := types.ParseTokenID(t.Token)
	dest, _ := types.ParseAccountID(t.Destination)

	exists, err := ctx.View.Exists(keylet.Issuance(token))
	if err != nil {
		return tx.Internal
	}
	if !exists {
		return tx.NoTarget
	}
	if r := debitToken(ctx, token, ctx.AccountID, t.Amount); !r.IsSuccess() {
		return r
	}
	if r := creditToken(ctx, token, dest, t.Amount); !r.IsSuccess() {
		return r
	}
	ctx.Emit("token_transferred", map[string]any{
		"token":  t.Token,
		"from":   t.Account,
		"to":     t.Destination,
		"amount": t.Amount,
	})
	return tx.Success
}

// TokenApprove sets the allowance a spender may move out of the
// submitting account's balance. The new allowance replaces any prior
// one.
type TokenApprove struct {
	tx.BaseTx
	Token   string `json:"Token"`
	Spender string `json:"Spender"`
	Amount  uint64 `json:"Amount"`
}

func NewTokenApprove(account string, sequence uint32) *TokenApprove {
	t := &TokenApprove{}
	t.Account = account
	t.TransactionType = tx.TypeTokenApprove.String()
	t.Sequence = sequence
	return t
}

func (t *TokenApprove) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseTokenID(t.Token); err != nil {
		return tx.ValidationError("malformed", "Token is not a valid token id")
	}
	spender, err := types.ParseAccountID(t.Spender)
	if err != nil {
		return tx.ValidationError("malformed", "Spender is not a valid identity")
	}
	if spender.IsZero() {
		return tx.ValidationError("zeroAddress", "Spender is the null identity")
	}
	return nil
}

func (t *TokenApprove) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Token"] = t.Token
	m["Spender"] = t.Spender
	m["Amount"] = t.Amount
	return m
}

func (t *TokenApprove) Apply(ctx *tx.ApplyContext) tx.Result {
	token, _ := types.ParseTokenID(t.Token)
	spender, _ := types.ParseAccountID(t.Spender)

	exists, err := ctx.View.Exists(keylet.Issuance(token))
	if err != nil {
		return tx.Internal
	}
	if !exists {
		return tx.NoTarget
	}
	k := keylet.Allowance(token, ctx.AccountID, spender)
	allowance := &sle.Allowance{
		Token:   token,
		Owner:   ctx.AccountID,
		Spender: spender,
		Amount:  t.Amount,
	}
	prior, err := ctx.View.Exists(k)
	if err != nil {
		return tx.Internal
	}
	if prior {
		if t.Amount == 0 {
			if err := ctx.View.Erase(k); err != nil {
				return tx.Internal
			}
		} else if err := tx.UpdateEntry(ctx.View, k, allowance); err != nil {
			return tx.Internal
		}
	} else if t.Amount > 0 {
		if err := tx.InsertEntry(ctx.View, k, allowance); err != nil {
			return tx.Internal
		}
	}
	ctx.Emit("token_approved", map[string]any{
		"token":   t.Token,
		"owner":   t.Account,
		"spender": t.Spender,
		"amount":  t.Amount,
	})
	return tx.Success
}

// TokenTransferFrom moves balance out of another holder's account
// against a previously granted allowance.
type TokenTransferFrom struct {
	tx.BaseTx
	Token       string `json:"Token"`
	Owner       string `json:"Owner"`
	Destination string `json:"Destination"`
	Amount      uint64 `json:"Amount"`
}

func NewTokenTransferFrom(account string, sequence uint32) *TokenTransferFrom {
	t := &TokenTransferFrom{}
	t.Account = account
	t.TransactionType = tx.TypeTokenTransferFrom.String()
	t.Sequence = sequence
	return t
}

func (t *TokenTransferFrom) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseTokenID(t.Token); err != nil {
		return tx.ValidationError("malformed", "Token is not a valid token id")
	}
	if t.Amount == 0 {
		return tx.ValidationError("malformed", "Amount must be positive")
	}
	if _, err := types.ParseAccountID(t.Owner); err != nil {
		return tx.ValidationError("malformed", "Owner is not a valid identity")
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

func (t *TokenTransferFrom) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Token"] = t.Token
	m["Owner"] = t.Owner
	m["Destination"] = t.Destination
	m["Amount"] = t.Amount
	return m
}

func (t *TokenTransferFrom) Apply(ctx *tx.ApplyContext) tx.Result {
	token, _ := types.ParseTokenID(t.Token)
	owner, _ := types.ParseAccountID(t.Owner)
	dest, _ := types.ParseAccountID(t.Destination)

	k := keylet.Allowance(token, owner, ctx.AccountID)
	allowance, err := tx.ReadEntry[sle.Allowance](ctx.View, k)
	if err != nil {
		return tx.Internal
	}
	if allowance == nil || allowance.Amount < t.Amount {
		return tx.NotAuthorized
	}
	if r := debitToken(ctx, token, owner, t.Amount); !r.IsSuccess() {
		return r
	}
	if r := creditToken(ctx, token, dest, t.Amount); !r.IsSuccess() {
		return r
	}
	allowance.Amount -= t.Amount
	if allowance.Amount == 0 {
		if err := ctx.View.Erase(k); err != nil {
			return tx.Internal
		}
	} else if err := tx.UpdateEntry(ctx.View, k, allowance); err != nil {
		return tx.Internal
	}
	ctx.Emit("token_transferred", map[string]any{
		"token":   t.Token,
		"from":    t.Owner,
		"to":      t.Destination,
		"spender": t.Account,
		"amount":  t.Amount,
	})
	return tx.Success
}

// creditToken adds fungible balance, creating the balance entry if
// needed.
func creditToken(ctx *tx.ApplyContext, token types.TokenID, holder types.AccountID, amount uint64) tx.Result {
	k := keylet.Balance(token, holder)
	bal, err := tx.ReadEntry[sle.Balance](ctx.View, k)
	if err != nil {
		return tx.Internal
	}
	if bal == nil {
		bal = &sle.Balance{Token: token, Holder: holder}
		sum, ok := types.AddUint64(bal.Amount, amount)
		if !ok {
			return tx.Internal
		}
		bal.Amount = sum
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

// debitToken removes fungible balance, erasing the entry when it hits
// zero.
func debitToken(ctx *tx.ApplyContext, token types.TokenID, holder types.AccountID, amount uint64) tx.Result {
	k := keylet.Balance(token, holder)
	bal, err := tx.ReadEntry[sle.Balance](ctx.View, k)
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
