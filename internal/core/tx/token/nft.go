package token

import (
	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/types"
)

func init() {
	tx.Register(tx.TypeNFTMint, func() tx.Transaction { return &NFTMint{} })
	tx.Register(tx.TypeNFTBurn, func() tx.Transaction { return &NFTBurn{} })
	tx.Register(tx.TypeNFTTransfer, func() tx.Transaction { return &NFTTransfer{} })
	tx.Register(tx.TypeNFTApprove, func() tx.Transaction { return &NFTApprove{} })
}

// NFTMint creates a unique token owned by the submitting account. The
// first mint of an id wins; repeats fail.
type NFTMint struct {
	tx.BaseTx
	Token string `json:"Token"`
}

func NewNFTMint(account string, sequence uint32) *NFTMint {
	t := &NFTMint{}
	t.Account = account
	t.TransactionType = tx.TypeNFTMint.String()
	t.Sequence = sequence
	return t
}

func (t *NFTMint) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseTokenID(t.Token); err != nil {
		return tx.ValidationError("malformed", "Token is not a valid token id")
	}
	return nil
}

func (t *NFTMint) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Token"] = t.Token
	return m
}

func (t *NFTMint) Apply(ctx *tx.ApplyContext) tx.Result {
	token, _ := types.ParseTokenID(t.Token)
	k := keylet.NFToken(token)
	exists, err := ctx.View.Exists(k)
	if err != nil {
		return tx.Internal
	}
	if exists {
		return tx.AlreadyMinted
	}
	nft := &sle.NFToken{Token: token, Owner: ctx.AccountID}
	if err := tx.InsertEntry(ctx.View, k, nft); err != nil {
		return tx.Internal
	}
	ctx.Account.OwnerCount++
	ctx.Emit("nft_minted", map[string]any{
		"token": t.Token,
		"owner": t.Account,
	})
	return tx.Success
}

// NFTBurn destroys a unique token. Only the owner may burn, and not
// while the token is locked by a machine entry.
type NFTBurn struct {
	tx.BaseTx
	Token string `json:"Token"`
}

func NewNFTBurn(account string, sequence uint32) *NFTBurn {
	t := &NFTBurn{}
	t.Account = account
	t.TransactionType = tx.TypeNFTBurn.String()
	t.Sequence = sequence
	return t
}

func (t *NFTBurn) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseTokenID(t.Token); err != nil {
		return tx.ValidationError("malformed", "Token is not a valid token id")
	}
	return nil
}

func (t *NFTBurn) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Token"] = t.Token
	return m
}

func (t *NFTBurn) Apply(ctx *tx.ApplyContext) tx.Result {
	token, _ := types.ParseTokenID(t.Token)
	k := keylet.NFToken(token)
	nft, err := tx.ReadEntry[sle.NFToken](ctx.View, k)
	if err != nil {
		return tx.Internal
	}
	if nft == nil {
		return tx.NoTarget
	}
	if nft.Owner != ctx.AccountID || nft.Held {
		return tx.NotAuthorized
	}
	if err := ctx.View.Erase(k); err != nil {
		return tx.Internal
	}
	if ctx.Account.OwnerCount > 0 {
		ctx.Account.OwnerCount--
	}
	ctx.Emit("nft_burned", map[string]any{
		"token": t.Token,
		"owner": t.Account,
	})
	return tx.Success
}

// NFTTransfer moves a unique token to a new owner. The owner or the
// approved identity may transfer; approval clears on transfer.
type NFTTransfer struct {
	tx.BaseTx
	Token       string `json:"Token"`
	Destination string `json:"Destination"`
}

func NewNFTTransfer(account string, sequence uint32) *NFTTransfer {
	t := &NFTTransfer{}
	t.Account = account
	t.TransactionType = tx.TypeNFTTransfer.String()
	t.Sequence = sequence
	return t
}

func (t *NFTTransfer) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseTokenID(t.Token); err != nil {
		return tx.ValidationError("malformed", "Token is not a valid token id")
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

func (t *NFTTransfer) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Token"] = t.Token
	m["Destination"] = t.Destination
	return m
}

func (t *NFTTransfer) Apply(ctx *tx.ApplyContext) tx.Result {
	token, _ := types.ParseTokenID(t.Token)
	dest, _ := types.ParseAccountID(t.Destination)
	k := keylet.NFToken(token)
	nft, err := tx.ReadEntry[sle.NFToken](ctx.View, k)
	if err != nil {
		return tx.Internal
	}
	if nft == nil {
		return tx.NoTarget
	}
	if nft.Held {
		return tx.NotAuthorized
	}
	if nft.Owner != ctx.AccountID && nft.Approved != ctx.AccountID {
		return tx.NotAuthorized
	}
	from := nft.Owner
	nft.Owner = dest
	nft.Approved = types.ZeroAccount
	if err := tx.UpdateEntry(ctx.View, k, nft); err != nil {
		return tx.Internal
	}
	ctx.Emit("nft_transferred", map[string]any{
		"token": t.Token,
		"from":  from.String(),
		"to":    t.Destination,
	})
	return tx.Success
}

// NFTApprove authorizes one identity to transfer the token. Approving
// the null identity clears the approval.
type NFTApprove struct {
	tx.BaseTx
	Token   string `json:"Token"`
	Spender string `json:"Spender"`
}

func NewNFTApprove(account string, sequence uint32) *NFTApprove {
	t := &NFTApprove{}
	t.Account = account
	t.TransactionType = tx.TypeNFTApprove.String()
	t.Sequence = sequence
	return t
}

func (t *NFTApprove) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseTokenID(t.Token); err != nil {
		return tx.ValidationError("malformed", "Token is not a valid token id")
	}
	if _, err := types.ParseAccountID(t.Spender); err != nil {
		return tx.ValidationError("malformed", "Spender is not a valid identity")
	}
	return nil
}

func (t *NFTApprove) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Token"] = t.Token
	m["Spender"] = t.Spender
	return m
}

func (t *NFTApprove) Apply(ctx *tx.ApplyContext) tx.Result {
	token, _ := types.ParseTokenID(t.Token)
	spender, _ := types.ParseAccountID(t.Spender)
	k := keylet.NFToken(token)
	nft, err := tx.ReadEntry[sle.NFToken](ctx.View, k)
	if err != nil {
		return tx.Internal
	}
	if nft == nil {
		return tx.NoTarget
	}
	if nft.Owner != ctx.AccountID {
		return tx.NotAuthorized
	}
	nft.Approved = spender
	if err := tx.UpdateEntry(ctx.View, k, nft); err != nil {
		return tx.Internal
	}
	ctx.Emit("nft_approved", map[string]any{
		"token":   t.Token,
		"owner":   t.Account,
		"spender": t.Spender,
	})
	return tx.Success
}
