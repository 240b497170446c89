package sle

import "github.com/settleng/goledgerd/internal/core/types"

// Escrow holds native value locked by Owner for Beneficiary. The entry
// survives release so a repeat finish reports the right condition.
type Escrow struct {
	Owner       types.AccountID `codec:"owner"`
	Beneficiary types.AccountID `codec:"beneficiary"`
	Amount      uint64          `codec:"amount"`
	// ReleaseAfter is the unix second from which the beneficiary may
	// finish.
	ReleaseAfter int64 `codec:"releaseAfter"`
	// CancelAfter is the unix second from which the owner may reclaim.
	// Zero means the escrow cannot be cancelled.
	CancelAfter int64 `codec:"cancelAfter"`
	Released    bool  `codec:"released"`
}
