// Package multisig implements threshold-controlled shared wallets.
// Transfers out of a wallet are proposed, confirmed by owners, and
// executed once confirmations reach the threshold.
package multisig

import (
	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/types"
)

func init() {
	tx.Register(tx.TypeWalletCreate, func() tx.Transaction { return &WalletCreate{} })
	tx.Register(tx.TypeWalletDeposit, func() tx.Transaction { return &WalletDeposit{} })
	tx.Register(tx.TypeWalletSubmit, func() tx.Transaction { return &WalletSubmit{} })
	tx.Register(tx.TypeWalletConfirm, func() tx.Transaction { return &WalletConfirm{} })
	tx.Register(tx.TypeWalletRevoke, func() tx.Transaction { return &WalletRevoke{} })
	tx.Register(tx.TypeWalletExecute, func() tx.Transaction { return &WalletExecute{} })
}

// WalletCreate sets up a wallet with a fixed owner set and confirmation
// threshold.
type WalletCreate struct {
	tx.BaseTx
	Owners    []string `json:"Owners"`
	Threshold uint32   `json:"Threshold"`
}

func NewWalletCreate(account string, sequence uint32) *WalletCreate {
	t := &WalletCreate{}
	t.Account = account
	t.TransactionType = tx.TypeWalletCreate.String()
	t.Sequence = sequence
	return t
}

func (t *WalletCreate) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if len(t.Owners) == 0 {
		return tx.ValidationError("malformed", "Owners is required")
	}
	seen := make(map[types.AccountID]bool, len(t.Owners))
	for _, o := range t.Owners {
		id, err := types.ParseAccountID(o)
		if err != nil {
			return tx.ValidationError("malformed", "Owners contains an invalid identity")
		}
		if id.IsZero() {
			return tx.ValidationError("zeroAddress", "Owners contains the null identity")
		}
		if seen[id] {
			return tx.ValidationError("malformed", "Owners contains a duplicate")
		}
		seen[id] = true
	}
	if t.Threshold == 0 || int(t.Threshold) > len(t.Owners) {
		return tx.ValidationError("malformed", "Threshold must be between 1 and the owner count")
	}
	return nil
}

func (t *WalletCreate) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Owners"] = t.Owners
	m["Threshold"] = t.Threshold
	return m
}

func (t *WalletCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	owners := make([]types.AccountID, len(t.Owners))
	for i, o := range t.Owners {
		owners[i], _ = types.ParseAccountID(o)
	}
	w := &sle.Wallet{
		Creator:   ctx.AccountID,
		Owners:    owners,
		Threshold: t.Threshold,
	}
	if err := tx.InsertEntry(ctx.View, keylet.Wallet(ctx.AccountID, ctx.Sequence), w); err != nil {
		return tx.Internal
	}
	ctx.Account.OwnerCount++
	ctx.Emit("wallet_created", map[string]any{
		"creator":   t.Account,
		"owners":    len(t.Owners),
		"threshold": t.Threshold,
	})
	return tx.Success
}

// walletRef loads a wallet by its creator and creation sequence.
func walletRef(ctx *tx.ApplyContext, creator string, seq uint32) (keylet.Keylet, *sle.Wallet, tx.Result) {
	id, err := types.ParseAccountID(creator)
	if err != nil {
		return keylet.Keylet{}, nil, tx.Malformed
	}
	k := keylet.Wallet(id, seq)
	w, err := tx.ReadEntry[sle.Wallet](ctx.View, k)
	if err != nil {
		return keylet.Keylet{}, nil, tx.Internal
	}
	if w == nil {
		return keylet.Keylet{}, nil, tx.NoTarget
	}
	return k, w, tx.Success
}

// WalletDeposit moves native value from the submitting account into the
// wallet. Anyone may deposit.
type WalletDeposit struct {
	tx.BaseTx
	Creator        string `json:"Creator"`
	WalletSequence uint32 `json:"WalletSequence"`
	Amount         uint64 `json:"Amount"`
}

func NewWalletDeposit(account string, sequence uint32) *WalletDeposit {
	t := &WalletDeposit{}
	t.Account = account
	t.TransactionType = tx.TypeWalletDeposit.String()
	t.Sequence = sequence
	return t
}

func (t *WalletDeposit) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseAccountID(t.Creator); err != nil {
		return tx.ValidationError("malformed", "Creator is not a valid identity")
	}
	if t.Amount == 0 {
		return tx.ValidationError("malformed", "Amount must be positive")
	}
	return nil
}

func (t *WalletDeposit) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Creator"] = t.Creator
	m["WalletSequence"] = t.WalletSequence
	m["Amount"] = t.Amount
	return m
}

func (t *WalletDeposit) Apply(ctx *tx.ApplyContext) tx.Result {
	k, w, r := walletRef(ctx, t.Creator, t.WalletSequence)
	if !r.IsSuccess() {
		return r
	}
	if r := ctx.Debit(t.Amount); !r.IsSuccess() {
		return r
	}
	sum, ok := types.AddUint64(w.Balance, t.Amount)
	if !ok {
		return tx.Internal
	}
	w.Balance = sum
	if err := tx.UpdateEntry(ctx.View, k, w); err != nil {
		return tx.Internal
	}
	ctx.Emit("wallet_deposited", map[string]any{
		"creator": t.Creator,
		"from":    t.Account,
		"amount":  t.Amount,
	})
	return tx.Success
}

// WalletSubmit proposes a transfer out of the wallet. Owners only. The
// proposal takes the wallet's next index and starts unconfirmed.
type WalletSubmit struct {
	tx.BaseTx
	Creator        string `json:"Creator"`
	WalletSequence uint32 `json:"WalletSequence"`
	Destination    string `json:"Destination"`
	Amount         uint64 `json:"Amount"`
}

func NewWalletSubmit(account string, sequence uint32) *WalletSubmit {
	t := &WalletSubmit{}
	t.Account = account
	t.TransactionType = tx.TypeWalletSubmit.String()
	t.Sequence = sequence
	return t
}

func (t *WalletSubmit) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseAccountID(t.Creator); err != nil {
		return tx.ValidationError("malformed", "Creator is not a valid identity")
	}
	dest, err := types.ParseAccountID(t.Destination)
	if err != nil {
		return tx.ValidationError("malformed", "Destination is not a valid identity")
	}
	if dest.IsZero() {
		return tx.ValidationError("zeroAddress", "Destination is the null identity")
	}
	if t.Amount == 0 {
		return tx.ValidationError("malformed", "Amount must be positive")
	}
	return nil
}

func (t *WalletSubmit) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Creator"] = t.Creator
	m["WalletSequence"] = t.WalletSequence
	m["Destination"] = t.Destination
	m["Amount"] = t.Amount
	return m
}

func (t *WalletSubmit) Apply(ctx *tx.ApplyContext) tx.Result {
	k, w, r := walletRef(ctx, t.Creator, t.WalletSequence)
	if !r.IsSuccess() {
		return r
	}
	if !w.IsOwner(ctx.AccountID) {
		return tx.NotAuthorized
	}
	dest, _ := types.ParseAccountID(t.Destination)
	proposal := &sle.WalletTx{
		Index:  w.TxCount,
		To:     dest,
		Amount: t.Amount,
	}
	if err := tx.InsertEntry(ctx.View, keylet.WalletTx(k.Key, w.TxCount), proposal); err != nil {
		return tx.Internal
	}
	w.TxCount++
	if err := tx.UpdateEntry(ctx.View, k, w); err != nil {
		return tx.Internal
	}
	ctx.Emit("wallet_submitted", map[string]any{
		"creator": t.Creator,
		"index":   proposal.Index,
		"to":      t.Destination,
		"amount":  t.Amount,
	})
	return tx.Success
}

// WalletConfirm adds the submitting owner's confirmation to a proposal.
type WalletConfirm struct {
	tx.BaseTx
	Creator        string `json:"Creator"`
	WalletSequence uint32 `json:"WalletSequence"`
	Index          uint32 `json:"Index"`
}

func NewWalletConfirm(account string, sequence uint32) *WalletConfirm {
	t := &WalletConfirm{}
	t.Account = account
	t.TransactionType = tx.TypeWalletConfirm.String()
	t.Sequence = sequence
	return t
}

func (t *WalletConfirm) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseAccountID(t.Creator); err != nil {
		return tx.ValidationError("malformed", "Creator is not a valid identity")
	}
	return nil
}

func (t *WalletConfirm) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Creator"] = t.Creator
	m["WalletSequence"] = t.WalletSequence
	m["Index"] = t.Index
	return m
}

func (t *WalletConfirm) Apply(ctx *tx.ApplyContext) tx.Result {
	k, w, r := walletRef(ctx, t.Creator, t.WalletSequence)
	if !r.IsSuccess() {
		return r
	}
	if !w.IsOwner(ctx.AccountID) {
		return tx.NotAuthorized
	}
	tk := keylet.WalletTx(k.Key, t.Index)
	proposal, err := tx.ReadEntry[sle.WalletTx](ctx.View, tk)
	if err != nil {
		return tx.Internal
	}
	if proposal == nil {
		return tx.NoTarget
	}
	if proposal.Executed {
		return tx.AlreadyExecuted
	}
	if proposal.Confirmed(ctx.AccountID) {
		return tx.AlreadyConfirmed
	}
	proposal.Confirmations = append(proposal.Confirmations, ctx.AccountID)
	if err := tx.UpdateEntry(ctx.View, tk, proposal); err != nil {
		return tx.Internal
	}
	ctx.Emit("wallet_confirmed", map[string]any{
		"creator": t.Creator,
		"index":   t.Index,
		"owner":   t.Account,
	})
	return tx.Success
}

// WalletRevoke withdraws a prior confirmation before execution.
type WalletRevoke struct {
	tx.BaseTx
	Creator        string `json:"Creator"`
	WalletSequence uint32 `json:"WalletSequence"`
	Index          uint32 `json:"Index"`
}

func NewWalletRevoke(account string, sequence uint32) *WalletRevoke {
	t := &WalletRevoke{}
	t.Account = account
	t.TransactionType = tx.TypeWalletRevoke.String()
	t.Sequence = sequence
	return t
}

func (t *WalletRevoke) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseAccountID(t.Creator); err != nil {
		return tx.ValidationError("malformed", "Creator is not a valid identity")
	}
	return nil
}

func (t *WalletRevoke) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Creator"] = t.Creator
	m["WalletSequence"] = t.WalletSequence
	m["Index"] = t.Index
	return m
}

func (t *WalletRevoke) Apply(ctx *tx.ApplyContext) tx.Result {
	k, w, r := walletRef(ctx, t.Creator, t.WalletSequence)
	if !r.IsSuccess() {
		return r
	}
	if !w.IsOwner(ctx.AccountID) {
		return tx.NotAuthorized
	}
	tk := keylet.WalletTx(k.Key, t.Index)
	proposal, err := tx.ReadEntry[sle.WalletTx](ctx.View, tk)
	if err != nil {
		return tx.Internal
	}
	if proposal == nil {
		return tx.NoTarget
	}
	if proposal.Executed {
		return tx.AlreadyExecuted
	}
	if !proposal.Revoke(ctx.AccountID) {
		return tx.NotConfirmed
	}
	if err := tx.UpdateEntry(ctx.View, tk, proposal); err != nil {
		return tx.Internal
	}
	ctx.Emit("wallet_revoked", map[string]any{
		"creator": t.Creator,
		"index":   t.Index,
		"owner":   t.Account,
	})
	return tx.Success
}

// WalletExecute carries out a proposal once confirmations reach the
// threshold. The proposal is marked executed before the transfer so a
// re-entrant path can never pay twice.
type WalletExecute struct {
	tx.BaseTx
	Creator        string `json:"Creator"`
	WalletSequence uint32 `json:"WalletSequence"`
	Index          uint32 `json:"Index"`
}

func NewWalletExecute(account string, sequence uint32) *WalletExecute {
	t := &WalletExecute{}
	t.Account = account
	t.TransactionType = tx.TypeWalletExecute.String()
	t.Sequence = sequence
	return t
}

func (t *WalletExecute) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseAccountID(t.Creator); err != nil {
		return tx.ValidationError("malformed", "Creator is not a valid identity")
	}
	return nil
}

func (t *WalletExecute) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Creator"] = t.Creator
	m["WalletSequence"] = t.WalletSequence
	m["Index"] = t.Index
	return m
}

func (t *WalletExecute) Apply(ctx *tx.ApplyContext) tx.Result {
	k, w, r := walletRef(ctx, t.Creator, t.WalletSequence)
	if !r.IsSuccess() {
		return r
	}
	if !w.IsOwner(ctx.AccountID) {
		return tx.NotAuthorized
	}
	tk := keylet.WalletTx(k.Key, t.Index)
	proposal, err := tx.ReadEntry[sle.WalletTx](ctx.View, tk)
	if err != nil {
		return tx.Internal
	}
	if proposal == nil {
		return tx.NoTarget
	}
	if proposal.Executed {
		return tx.AlreadyExecuted
	}
	if uint32(len(proposal.Confirmations)) < w.Threshold {
		return tx.InsufficientConfirmations
	}
	rest, ok := types.SubUint64(w.Balance, proposal.Amount)
	if !ok {
		return tx.InsufficientBalance
	}

	proposal.Executed = true
	if err := tx.UpdateEntry(ctx.View, tk, proposal); err != nil {
		return tx.Internal
	}
	w.Balance = rest
	if err := tx.UpdateEntry(ctx.View, k, w); err != nil {
		return tx.Internal
	}
	if err := ctx.Credit(proposal.To, proposal.Amount); err != nil {
		return tx.Internal
	}
	ctx.Emit("wallet_executed", map[string]any{
		"creator": t.Creator,
		"index":   t.Index,
		"to":      proposal.To.String(),
		"amount":  proposal.Amount,
	})
	return tx.Success
}
