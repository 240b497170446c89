// Package crowdfund implements goal-based funding campaigns. Pledges
// escrow during a fixed window; the creator claims the pool if the goal
// was met, otherwise each backer refunds their own contribution.
package crowdfund

import (
	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/types"
)

func init() {
	tx.Register(tx.TypeCampaignLaunch, func() tx.Transaction { return &CampaignLaunch{} })
	tx.Register(tx.TypeCampaignPledge, func() tx.Transaction { return &CampaignPledge{} })
	tx.Register(tx.TypeCampaignCancel, func() tx.Transaction { return &CampaignCancel{} })
	tx.Register(tx.TypeCampaignClaim, func() tx.Transaction { return &CampaignClaim{} })
	tx.Register(tx.TypeCampaignRefund, func() tx.Transaction { return &CampaignRefund{} })
}

// CampaignLaunch opens a campaign. The pledge window must start no
// earlier than now and must not exceed the engine's maximum duration.
type CampaignLaunch struct {
	tx.BaseTx
	Goal    uint64 `json:"Goal"`
	StartAt int64  `json:"StartAt"`
	EndAt   int64  `json:"EndAt"`
}

func NewCampaignLaunch(account string, sequence uint32) *CampaignLaunch {
	t := &CampaignLaunch{}
	t.Account = account
	t.TransactionType = tx.TypeCampaignLaunch.String()
	t.Sequence = sequence
	return t
}

func (t *CampaignLaunch) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if t.Goal == 0 {
		return tx.ValidationError("malformed", "Goal must be positive")
	}
	if t.StartAt <= 0 || t.EndAt <= t.StartAt {
		return tx.ValidationError("invalidWindow", "EndAt must follow StartAt")
	}
	return nil
}

func (t *CampaignLaunch) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Goal"] = t.Goal
	m["StartAt"] = t.StartAt
	m["EndAt"] = t.EndAt
	return m
}

func (t *CampaignLaunch) Apply(ctx *tx.ApplyContext) tx.Result {
	if t.StartAt < ctx.Now.Unix() {
		return tx.InvalidWindow
	}
	if t.EndAt-t.StartAt > int64(ctx.Params.MaxCampaignDuration.Seconds()) {
		return tx.InvalidWindow
	}
	c := &sle.Campaign{
		Creator: ctx.AccountID,
		Goal:    t.Goal,
		StartAt: t.StartAt,
		EndAt:   t.EndAt,
	}
	if err := tx.InsertEntry(ctx.View, keylet.Campaign(ctx.AccountID, ctx.Sequence), c); err != nil {
		return tx.Internal
	}
	ctx.Account.OwnerCount++
	ctx.Emit("campaign_launched", map[string]any{
		"creator": t.Account,
		"goal":    t.Goal,
		"startAt": t.StartAt,
		"endAt":   t.EndAt,
	})
	return tx.Success
}

func campaignRef(ctx *tx.ApplyContext, creator string, seq uint32) (keylet.Keylet, *sle.Campaign, tx.Result) {
	id, err := types.ParseAccountID(creator)
	if err != nil {
		return keylet.Keylet{}, nil, tx.Malformed
	}
	k := keylet.Campaign(id, seq)
	c, err := tx.ReadEntry[sle.Campaign](ctx.View, k)
	if err != nil {
		return keylet.Keylet{}, nil, tx.Internal
	}
	if c == nil {
		return keylet.Keylet{}, nil, tx.NoTarget
	}
	return k, c, tx.Success
}

// CampaignPledge escrows a contribution while the window is open.
type CampaignPledge struct {
	tx.BaseTx
	Creator          string `json:"Creator"`
	CampaignSequence uint32 `json:"CampaignSequence"`
	Amount           uint64 `json:"Amount"`
}

func NewCampaignPledge(account string, sequence uint32) *CampaignPledge {
	t := &CampaignPledge{}
	t.Account = account
	t.TransactionType = tx.TypeCampaignPledge.String()
	t.Sequence = sequence
	return t
}

func (t *CampaignPledge) Validate() error {
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

func (t *CampaignPledge) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Creator"] = t.Creator
	m["CampaignSequence"] = t.CampaignSequence
	m["Amount"] = t.Amount
	return m
}

func (t *CampaignPledge) Apply(ctx *tx.ApplyContext) tx.Result {
	k, c, r := campaignRef(ctx, t.Creator, t.CampaignSequence)
	if !r.IsSuccess() {
		return r
	}
	now := ctx.Now.Unix()
	if now < c.StartAt {
		return tx.NotStarted
	}
	if now >= c.EndAt {
		return tx.Ended
	}
	if r := ctx.Debit(t.Amount); !r.IsSuccess() {
		return r
	}
	pledged, ok := types.AddUint64(c.Pledged, t.Amount)
	if !ok {
		return tx.Internal
	}
	c.Pledged = pledged
	c.Held += t.Amount
	if err := tx.UpdateEntry(ctx.View, k, c); err != nil {
		return tx.Internal
	}

	pk := keylet.Pledge(k.Key, ctx.AccountID)
	pledge, err := tx.ReadEntry[sle.Pledge](ctx.View, pk)
	if err != nil {
		return tx.Internal
	}
	if pledge == nil {
		pledge = &sle.Pledge{Pledger: ctx.AccountID, Amount: t.Amount}
		if err := tx.InsertEntry(ctx.View, pk, pledge); err != nil {
			return tx.Internal
		}
	} else {
		pledge.Amount += t.Amount
		if err := tx.UpdateEntry(ctx.View, pk, pledge); err != nil {
			return tx.Internal
		}
	}
	ctx.Emit("campaign_pledged", map[string]any{
		"creator": t.Creator,
		"pledger": t.Account,
		"amount":  t.Amount,
	})
	return tx.Success
}

// CampaignCancel removes a campaign before its window opens.
type CampaignCancel struct {
	tx.BaseTx
	CampaignSequence uint32 `json:"CampaignSequence"`
}

func NewCampaignCancel(account string, sequence uint32) *CampaignCancel {
	t := &CampaignCancel{}
	t.Account = account
	t.TransactionType = tx.TypeCampaignCancel.String()
	t.Sequence = sequence
	return t
}

func (t *CampaignCancel) Validate() error {
	return t.Common.Validate()
}

func (t *CampaignCancel) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["CampaignSequence"] = t.CampaignSequence
	return m
}

func (t *CampaignCancel) Apply(ctx *tx.ApplyContext) tx.Result {
	k, c, r := campaignRef(ctx, ctx.AccountID.String(), t.CampaignSequence)
	if !r.IsSuccess() {
		return r
	}
	if c.Creator != ctx.AccountID {
		return tx.NotAuthorized
	}
	if ctx.Now.Unix() >= c.StartAt {
		return tx.TooLate
	}
	if err := ctx.View.Erase(k); err != nil {
		return tx.Internal
	}
	if ctx.Account.OwnerCount > 0 {
		ctx.Account.OwnerCount--
	}
	ctx.Emit("campaign_cancelled", map[string]any{
		"creator": t.Account,
	})
	return tx.Success
}

// CampaignClaim pays the escrowed pool to the creator after a
// successful campaign. One shot.
type CampaignClaim struct {
	tx.BaseTx
	CampaignSequence uint32 `json:"CampaignSequence"`
}

func NewCampaignClaim(account string, sequence uint32) *CampaignClaim {
	t := &CampaignClaim{}
	t.Account = account
	t.TransactionType = tx.TypeCampaignClaim.String()
	t.Sequence = sequence
	return t
}

func (t *CampaignClaim) Validate() error {
	return t.Common.Validate()
}

func (t *CampaignClaim) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["CampaignSequence"] = t.CampaignSequence
	return m
}

func (t *CampaignClaim) Apply(ctx *tx.ApplyContext) tx.Result {
	k, c, r := campaignRef(ctx, ctx.AccountID.String(), t.CampaignSequence)
	if !r.IsSuccess() {
		return r
	}
	if c.Creator != ctx.AccountID {
		return tx.NotAuthorized
	}
	if c.Claimed {
		return tx.AlreadyClaimed
	}
	if ctx.Now.Unix() < c.EndAt {
		return tx.TooEarly
	}
	if c.Pledged < c.Goal {
		return tx.GoalNotReached
	}
	amount := c.Held
	c.Claimed = true
	c.Held = 0
	if err := tx.UpdateEntry(ctx.View, k, c); err != nil {
		return tx.Internal
	}
	sum, ok := types.AddUint64(ctx.Account.Balance, amount)
	if !ok {
		return tx.Internal
	}
	ctx.Account.Balance = sum
	ctx.Emit("campaign_claimed", map[string]any{
		"creator": t.Account,
		"amount":  amount,
	})
	return tx.Success
}

// CampaignRefund returns a backer's contribution after a failed
// campaign.
type CampaignRefund struct {
	tx.BaseTx
	Creator          string `json:"Creator"`
	CampaignSequence uint32 `json:"CampaignSequence"`
}

func NewCampaignRefund(account string, sequence uint32) *CampaignRefund {
	t := &CampaignRefund{}
	t.Account = account
	t.TransactionType = tx.TypeCampaignRefund.String()
	t.Sequence = sequence
	return t
}

func (t *CampaignRefund) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseAccountID(t.Creator); err != nil {
		return tx.ValidationError("malformed", "Creator is not a valid identity")
	}
	return nil
}

func (t *CampaignRefund) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Creator"] = t.Creator
	m["CampaignSequence"] = t.CampaignSequence
	return m
}

func (t *CampaignRefund) Apply(ctx *tx.ApplyContext) tx.Result {
	k, c, r := campaignRef(ctx, t.Creator, t.CampaignSequence)
	if !r.IsSuccess() {
		return r
	}
	if ctx.Now.Unix() < c.EndAt {
		return tx.TooEarly
	}
	if c.Pledged >= c.Goal {
		return tx.GoalReached
	}
	pk := keylet.Pledge(k.Key, ctx.AccountID)
	pledge, err := tx.ReadEntry[sle.Pledge](ctx.View, pk)
	if err != nil {
		return tx.Internal
	}
	if pledge == nil {
		return tx.NoPledge
	}
	if err := ctx.View.Erase(pk); err != nil {
		return tx.Internal
	}
	rest, ok := types.SubUint64(c.Held, pledge.Amount)
	if !ok {
		return tx.Internal
	}
	c.Held = rest
	if err := tx.UpdateEntry(ctx.View, k, c); err != nil {
		return tx.Internal
	}
	sum, ok := types.AddUint64(ctx.Account.Balance, pledge.Amount)
	if !ok {
		return tx.Internal
	}
	ctx.Account.Balance = sum
	ctx.Emit("campaign_refunded", map[string]any{
		"creator": t.Creator,
		"pledger": t.Account,
		"amount":  pledge.Amount,
	})
	return tx.Success
}
