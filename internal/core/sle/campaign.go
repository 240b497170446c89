package sle

import "github.com/settleng/goledgerd/internal/core/types"

// Campaign is a crowdfund with a fixed pledge window and funding goal.
type Campaign struct {
	Creator types.AccountID `codec:"creator"`
	Goal    uint64          `codec:"goal"`
	// Pledged is the running total of contributions.
	Pledged uint64 `codec:"pledged"`
	StartAt int64  `codec:"startAt"`
	EndAt   int64  `codec:"endAt"`
	Claimed bool   `codec:"claimed"`
	// Held is the native value currently escrowed by the campaign. It
	// trails Pledged once claims or refunds pay out.
	Held uint64 `codec:"held"`
}

// Pledge is a single backer's outstanding contribution to a campaign.
type Pledge struct {
	Pledger types.AccountID `codec:"pledger"`
	Amount  uint64          `codec:"amount"`
}
