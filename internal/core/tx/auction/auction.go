// Package auction implements English and Dutch auctions over unique
// tokens. The listed token is locked for the life of the auction; bids
// are escrowed by the auction entry and outbid deposits become
// withdrawable refunds.
package auction

import (
	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/types"
)

func init() {
	tx.Register(tx.TypeAuctionCreate, func() tx.Transaction { return &AuctionCreate{} })
	tx.Register(tx.TypeAuctionStart, func() tx.Transaction { return &AuctionStart{} })
	tx.Register(tx.TypeAuctionBid, func() tx.Transaction { return &AuctionBid{} })
	tx.Register(tx.TypeAuctionWithdraw, func() tx.Transaction { return &AuctionWithdraw{} })
	tx.Register(tx.TypeAuctionEnd, func() tx.Transaction { return &AuctionEnd{} })
	tx.Register(tx.TypeAuctionBuy, func() tx.Transaction { return &AuctionBuy{} })
}

const (
	KindEnglish = "english"
	KindDutch   = "dutch"
)

// AuctionCreate lists a unique token. English auctions wait for an
// explicit start; Dutch auctions start decaying immediately.
type AuctionCreate struct {
	tx.BaseTx
	Kind          string `json:"Kind"`
	Item          string `json:"Item"`
	StartingPrice uint64 `json:"StartingPrice"`
	// Duration is the bidding window for English auctions and the
	// decay window for Dutch auctions, in seconds.
	Duration     int64  `json:"Duration"`
	DiscountRate uint64 `json:"DiscountRate,omitempty"`
}

func NewAuctionCreate(account string, sequence uint32) *AuctionCreate {
	t := &AuctionCreate{}
	t.Account = account
	t.TransactionType = tx.TypeAuctionCreate.String()
	t.Sequence = sequence
	return t
}

func (t *AuctionCreate) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if t.Kind != KindEnglish && t.Kind != KindDutch {
		return tx.ValidationError("malformed", "Kind must be english or dutch")
	}
	if _, err := types.ParseTokenID(t.Item); err != nil {
		return tx.ValidationError("malformed", "Item is not a valid token id")
	}
	if t.StartingPrice == 0 {
		return tx.ValidationError("malformed", "StartingPrice must be positive")
	}
	if t.Duration <= 0 {
		return tx.ValidationError("invalidWindow", "Duration must be positive")
	}
	if t.Kind == KindDutch {
		if t.DiscountRate == 0 {
			return tx.ValidationError("malformed", "DiscountRate must be positive")
		}
		if t.StartingPrice < t.DiscountRate*uint64(t.Duration) {
			return tx.ValidationError("malformed", "StartingPrice must cover the full decay")
		}
	}
	return nil
}

func (t *AuctionCreate) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Kind"] = t.Kind
	m["Item"] = t.Item
	m["StartingPrice"] = t.StartingPrice
	m["Duration"] = t.Duration
	if t.DiscountRate != 0 {
		m["DiscountRate"] = t.DiscountRate
	}
	return m
}

func (t *AuctionCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	item, _ := types.ParseTokenID(t.Item)
	nk := keylet.NFToken(item)
	nft, err := tx.ReadEntry[sle.NFToken](ctx.View, nk)
	if err != nil {
		return tx.Internal
	}
	if nft == nil {
		return tx.NoTarget
	}
	if nft.Owner != ctx.AccountID || nft.Held {
		return tx.NotAuthorized
	}
	nft.Held = true
	nft.Approved = types.ZeroAccount
	if err := tx.UpdateEntry(ctx.View, nk, nft); err != nil {
		return tx.Internal
	}

	a := &sle.Auction{
		Seller:        ctx.AccountID,
		Item:          item,
		StartingPrice: t.StartingPrice,
	}
	if t.Kind == KindEnglish {
		a.Kind = sle.AuctionEnglish
		a.State = sle.AuctionNotStarted
		a.Duration = t.Duration
	} else {
		a.Kind = sle.AuctionDutch
		a.State = sle.AuctionActive
		a.DiscountRate = t.DiscountRate
		a.StartAt = ctx.Now.Unix()
		a.ExpiresAt = ctx.Now.Unix() + t.Duration
	}
	if err := tx.InsertEntry(ctx.View, keylet.Auction(ctx.AccountID, ctx.Sequence), a); err != nil {
		return tx.Internal
	}
	ctx.Account.OwnerCount++
	ctx.Emit("auction_created", map[string]any{
		"seller": t.Account,
		"kind":   t.Kind,
		"item":   t.Item,
	})
	return tx.Success
}

// auctionRef loads an auction by its seller and creation sequence.
func auctionRef(ctx *tx.ApplyContext, seller string, seq uint32) (keylet.Keylet, *sle.Auction, tx.Result) {
	id, err := types.ParseAccountID(seller)
	if err != nil {
		return keylet.Keylet{}, nil, tx.Malformed
	}
	k := keylet.Auction(id, seq)
	a, err := tx.ReadEntry[sle.Auction](ctx.View, k)
	if err != nil {
		return keylet.Keylet{}, nil, tx.Internal
	}
	if a == nil {
		return keylet.Keylet{}, nil, tx.NoTarget
	}
	return k, a, tx.Success
}

// AuctionStart opens the bidding window of an English auction.
type AuctionStart struct {
	tx.BaseTx
	Seller          string `json:"Seller"`
	AuctionSequence uint32 `json:"AuctionSequence"`
}

func NewAuctionStart(account string, sequence uint32) *AuctionStart {
	t := &AuctionStart{}
	t.Account = account
	t.TransactionType = tx.TypeAuctionStart.String()
	t.Sequence = sequence
	return t
}

func (t *AuctionStart) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseAccountID(t.Seller); err != nil {
		return tx.ValidationError("malformed", "Seller is not a valid identity")
	}
	return nil
}

func (t *AuctionStart) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Seller"] = t.Seller
	m["AuctionSequence"] = t.AuctionSequence
	return m
}

func (t *AuctionStart) Apply(ctx *tx.ApplyContext) tx.Result {
	k, a, r := auctionRef(ctx, t.Seller, t.AuctionSequence)
	if !r.IsSuccess() {
		return r
	}
	if a.Kind != sle.AuctionEnglish {
		return tx.InvalidTarget
	}
	if a.Seller != ctx.AccountID {
		return tx.NotAuthorized
	}
	if a.State != sle.AuctionNotStarted {
		return tx.AlreadyExecuted
	}
	a.State = sle.AuctionActive
	a.EndAt = ctx.Now.Unix() + a.Duration
	if err := tx.UpdateEntry(ctx.View, k, a); err != nil {
		return tx.Internal
	}
	ctx.Emit("auction_started", map[string]any{
		"seller": t.Seller,
		"endAt":  a.EndAt,
	})
	return tx.Success
}

// AuctionBid escrows a new highest bid. The previous highest bid moves
// to a refund entry its bidder can withdraw.
type AuctionBid struct {
	tx.BaseTx
	Seller          string `json:"Seller"`
	AuctionSequence uint32 `json:"AuctionSequence"`
	Amount          uint64 `json:"Amount"`
}

func NewAuctionBid(account string, sequence uint32) *AuctionBid {
	t := &AuctionBid{}
	t.Account = account
	t.TransactionType = tx.TypeAuctionBid.String()
	t.Sequence = sequence
	return t
}

func (t *AuctionBid) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseAccountID(t.Seller); err != nil {
		return tx.ValidationError("malformed", "Seller is not a valid identity")
	}
	if t.Amount == 0 {
		return tx.ValidationError("malformed", "Amount must be positive")
	}
	return nil
}

func (t *AuctionBid) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Seller"] = t.Seller
	m["AuctionSequence"] = t.AuctionSequence
	m["Amount"] = t.Amount
	return m
}

func (t *AuctionBid) Apply(ctx *tx.ApplyContext) tx.Result {
	k, a, r := auctionRef(ctx, t.Seller, t.AuctionSequence)
	if !r.IsSuccess() {
		return r
	}
	if a.Kind != sle.AuctionEnglish {
		return tx.InvalidTarget
	}
	if a.State == sle.AuctionNotStarted {
		return tx.NotStarted
	}
	if a.State == sle.AuctionFinished || ctx.Now.Unix() >= a.EndAt {
		return tx.AuctionEnded
	}
	floor := a.StartingPrice
	if !a.HighestBidder.IsZero() {
		floor = a.HighestBid
	}
	if t.Amount <= floor {
		return tx.BidTooLow
	}
	if r := ctx.Debit(t.Amount); !r.IsSuccess() {
		return r
	}
	if !a.HighestBidder.IsZero() {
		if r := creditRefund(ctx, k.Key, a.HighestBidder, a.HighestBid); !r.IsSuccess() {
			return r
		}
	}
	a.HighestBidder = ctx.AccountID
	a.HighestBid = t.Amount
	a.Held = t.Amount
	if err := tx.UpdateEntry(ctx.View, k, a); err != nil {
		return tx.Internal
	}
	ctx.Emit("auction_bid", map[string]any{
		"seller": t.Seller,
		"bidder": t.Account,
		"amount": t.Amount,
	})
	return tx.Success
}

// AuctionWithdraw reclaims an outbid deposit.
type AuctionWithdraw struct {
	tx.BaseTx
	Seller          string `json:"Seller"`
	AuctionSequence uint32 `json:"AuctionSequence"`
}

func NewAuctionWithdraw(account string, sequence uint32) *AuctionWithdraw {
	t := &AuctionWithdraw{}
	t.Account = account
	t.TransactionType = tx.TypeAuctionWithdraw.String()
	t.Sequence = sequence
	return t
}

func (t *AuctionWithdraw) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseAccountID(t.Seller); err != nil {
		return tx.ValidationError("malformed", "Seller is not a valid identity")
	}
	return nil
}

func (t *AuctionWithdraw) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Seller"] = t.Seller
	m["AuctionSequence"] = t.AuctionSequence
	return m
}

func (t *AuctionWithdraw) Apply(ctx *tx.ApplyContext) tx.Result {
	k, _, r := auctionRef(ctx, t.Seller, t.AuctionSequence)
	if !r.IsSuccess() {
		return r
	}
	rk := keylet.AuctionRefund(k.Key, ctx.AccountID)
	refund, err := tx.ReadEntry[sle.Refund](ctx.View, rk)
	if err != nil {
		return tx.Internal
	}
	if refund == nil {
		return tx.NoTarget
	}
	if err := ctx.View.Erase(rk); err != nil {
		return tx.Internal
	}
	sum, ok := types.AddUint64(ctx.Account.Balance, refund.Amount)
	if !ok {
		return tx.Internal
	}
	ctx.Account.Balance = sum
	ctx.Emit("auction_refund_withdrawn", map[string]any{
		"seller": t.Seller,
		"bidder": t.Account,
		"amount": refund.Amount,
	})
	return tx.Success
}

// AuctionEnd settles an auction after its window closes. Anyone may
// call it. For an English auction with a standing bid the item goes to
// the bidder and the bid to the seller; otherwise, and for an expired
// unsold Dutch auction, the item unlocks back to the seller.
type AuctionEnd struct {
	tx.BaseTx
	Seller          string `json:"Seller"`
	AuctionSequence uint32 `json:"AuctionSequence"`
}

func NewAuctionEnd(account string, sequence uint32) *AuctionEnd {
	t := &AuctionEnd{}
	t.Account = account
	t.TransactionType = tx.TypeAuctionEnd.String()
	t.Sequence = sequence
	return t
}

func (t *AuctionEnd) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseAccountID(t.Seller); err != nil {
		return tx.ValidationError("malformed", "Seller is not a valid identity")
	}
	return nil
}

func (t *AuctionEnd) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Seller"] = t.Seller
	m["AuctionSequence"] = t.AuctionSequence
	return m
}

func (t *AuctionEnd) Apply(ctx *tx.ApplyContext) tx.Result {
	k, a, r := auctionRef(ctx, t.Seller, t.AuctionSequence)
	if !r.IsSuccess() {
		return r
	}
	if a.State == sle.AuctionNotStarted {
		return tx.NotStarted
	}
	if a.State == sle.AuctionFinished {
		return tx.AuctionEnded
	}
	if a.Kind == sle.AuctionDutch {
		if ctx.Now.Unix() <= a.ExpiresAt {
			return tx.TooEarly
		}
	} else if ctx.Now.Unix() < a.EndAt {
		return tx.TooEarly
	}

	nk := keylet.NFToken(a.Item)
	nft, err := tx.ReadEntry[sle.NFToken](ctx.View, nk)
	if err != nil || nft == nil {
		return tx.Internal
	}
	nft.Held = false
	if !a.HighestBidder.IsZero() {
		nft.Owner = a.HighestBidder
		if err := ctx.Credit(a.Seller, a.HighestBid); err != nil {
			return tx.Internal
		}
		a.Held = 0
	}
	if err := tx.UpdateEntry(ctx.View, nk, nft); err != nil {
		return tx.Internal
	}
	a.State = sle.AuctionFinished
	if err := tx.UpdateEntry(ctx.View, k, a); err != nil {
		return tx.Internal
	}
	ctx.Emit("auction_ended", map[string]any{
		"seller": t.Seller,
		"winner": a.HighestBidder.String(),
		"amount": a.HighestBid,
	})
	return tx.Success
}

// AuctionBuy settles a Dutch auction at the current decayed price. Only
// the price is taken from the buyer; any surplus in Payment stays put.
type AuctionBuy struct {
	tx.BaseTx
	Seller          string `json:"Seller"`
	AuctionSequence uint32 `json:"AuctionSequence"`
	// Payment is the buyer's ceiling. It must cover the price at apply
	// time.
	Payment uint64 `json:"Payment"`
}

func NewAuctionBuy(account string, sequence uint32) *AuctionBuy {
	t := &AuctionBuy{}
	t.Account = account
	t.TransactionType = tx.TypeAuctionBuy.String()
	t.Sequence = sequence
	return t
}

func (t *AuctionBuy) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseAccountID(t.Seller); err != nil {
		return tx.ValidationError("malformed", "Seller is not a valid identity")
	}
	if t.Payment == 0 {
		return tx.ValidationError("malformed", "Payment must be positive")
	}
	return nil
}

func (t *AuctionBuy) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Seller"] = t.Seller
	m["AuctionSequence"] = t.AuctionSequence
	m["Payment"] = t.Payment
	return m
}

func (t *AuctionBuy) Apply(ctx *tx.ApplyContext) tx.Result {
	k, a, r := auctionRef(ctx, t.Seller, t.AuctionSequence)
	if !r.IsSuccess() {
		return r
	}
	if a.Kind != sle.AuctionDutch {
		return tx.InvalidTarget
	}
	if a.State == sle.AuctionFinished || ctx.Now.Unix() > a.ExpiresAt {
		return tx.AuctionEnded
	}
	price := a.CurrentPrice(ctx.Now.Unix())
	if t.Payment < price {
		return tx.InsufficientPayment
	}
	if r := ctx.Debit(price); !r.IsSuccess() {
		return r
	}
	if err := ctx.Credit(a.Seller, price); err != nil {
		return tx.Internal
	}

	nk := keylet.NFToken(a.Item)
	nft, err := tx.ReadEntry[sle.NFToken](ctx.View, nk)
	if err != nil || nft == nil {
		return tx.Internal
	}
	nft.Owner = ctx.AccountID
	nft.Held = false
	if err := tx.UpdateEntry(ctx.View, nk, nft); err != nil {
		return tx.Internal
	}
	a.State = sle.AuctionFinished
	if err := tx.UpdateEntry(ctx.View, k, a); err != nil {
		return tx.Internal
	}
	ctx.Emit("auction_bought", map[string]any{
		"seller": t.Seller,
		"buyer":  t.Account,
		"price":  price,
	})
	return tx.Success
}

func creditRefund(ctx *tx.ApplyContext, auction [32]byte, bidder types.AccountID, amount uint64) tx.Result {
	rk := keylet.AuctionRefund(auction, bidder)
	refund, err := tx.ReadEntry[sle.Refund](ctx.View, rk)
	if err != nil {
		return tx.Internal
	}
	if refund == nil {
		refund = &sle.Refund{Bidder: bidder, Amount: amount}
		if err := tx.InsertEntry(ctx.View, rk, refund); err != nil {
			return tx.Internal
		}
		return tx.Success
	}
	sum, ok := types.AddUint64(refund.Amount, amount)
	if !ok {
		return tx.Internal
	}
	refund.Amount = sum
	if err := tx.UpdateEntry(ctx.View, rk, refund); err != nil {
		return tx.Internal
	}
	return tx.Success
}
