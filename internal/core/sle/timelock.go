package sle

import "github.com/settleng/goledgerd/internal/core/types"

// TimelockOp is a queued delayed operation. The entry key is derived from
// the operation tuple, so queueing the identical operation twice is
// detected structurally.
type TimelockOp struct {
	// Owner queued the operation and is the only identity allowed to
	// execute or cancel it.
	Owner  types.AccountID `codec:"owner"`
	Target types.AccountID `codec:"target"`
	// Value is the native amount transferred to Target at execution.
	Value     uint64 `codec:"value"`
	Signature string `codec:"signature"`
	Data      []byte `codec:"data"`
	// Timestamp is the earliest unix second at which execution is
	// allowed.
	Timestamp int64 `codec:"timestamp"`
}
