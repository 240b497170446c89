package sle

import "github.com/settleng/goledgerd/internal/core/types"

// AccountRoot is the per-identity root entry.
type AccountRoot struct {
	Account types.AccountID `codec:"account"`
	// Balance is the native value held directly by the identity.
	Balance uint64 `codec:"balance"`
	// Sequence is the next transaction sequence the account will accept.
	Sequence uint32 `codec:"sequence"`
	// OwnerCount tracks ledger entries owned by this account.
	OwnerCount uint32 `codec:"ownerCount"`
}
