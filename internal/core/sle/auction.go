package sle

import "github.com/settleng/goledgerd/internal/core/types"

// AuctionKind selects the price mechanism.
type AuctionKind uint8

const (
	AuctionEnglish AuctionKind = 1
	AuctionDutch   AuctionKind = 2
)

// AuctionState is the lifecycle phase of an auction.
type AuctionState uint8

const (
	AuctionNotStarted AuctionState = iota
	AuctionActive
	AuctionFinished
)

// Auction sells one unique token. English auctions run an ascending-bid
// window; Dutch auctions decay linearly from StartingPrice and settle on
// the first sufficient payment.
type Auction struct {
	Seller types.AccountID `codec:"seller"`
	Kind   AuctionKind     `codec:"kind"`
	State  AuctionState    `codec:"state"`
	// Item is the unique token under the hammer.
	Item          types.TokenID `codec:"item"`
	StartingPrice uint64        `codec:"startingPrice"`

	// English fields.
	Duration      int64           `codec:"duration"`
	EndAt         int64           `codec:"endAt"`
	HighestBidder types.AccountID `codec:"highestBidder"`
	HighestBid    uint64          `codec:"highestBid"`

	// Dutch fields. DiscountRate is native units shed per second.
	DiscountRate uint64 `codec:"discountRate"`
	StartAt      int64  `codec:"startAt"`
	ExpiresAt    int64  `codec:"expiresAt"`

	// Held is the native value escrowed by the auction entry itself:
	// the standing highest bid for English auctions.
	Held uint64 `codec:"held"`
}

// CurrentPrice returns the Dutch price at the given unix second.
func (a *Auction) CurrentPrice(now int64) uint64 {
	elapsed := now - a.StartAt
	if elapsed < 0 {
		elapsed = 0
	}
	discount := a.DiscountRate * uint64(elapsed)
	if discount >= a.StartingPrice {
		return 0
	}
	return a.StartingPrice - discount
}

// Refund is an outbid bidder's reclaimable deposit.
type Refund struct {
	Bidder types.AccountID `codec:"bidder"`
	Amount uint64          `codec:"amount"`
}
