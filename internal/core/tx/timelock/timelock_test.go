package timelock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/tx/timelock"
	"github.com/settleng/goledgerd/internal/testutil"
)

func TestTimelockQueueWindow(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.FundedAccount(1000)
	target := env.FundedAccount(0)
	now := env.Now().Unix()

	// Delay bounds come from the engine params: 10s to 1000s out.
	early := timelock.NewTimelockQueue(owner.Address(), owner.Seq())
	early.Target = target.Address()
	early.Value = 100
	early.Timestamp = now + 5
	env.RequireResult(owner, early, tx.InvalidWindow)

	late := timelock.NewTimelockQueue(owner.Address(), owner.Seq())
	late.Target = target.Address()
	late.Value = 100
	late.Timestamp = now + 2000
	env.RequireResult(owner, late, tx.InvalidWindow)

	queue := timelock.NewTimelockQueue(owner.Address(), owner.Seq())
	queue.Target = target.Address()
	queue.Value = 100
	queue.Timestamp = now + 60
	env.RequireSuccess(owner, queue)

	// The same operation tuple cannot be queued twice.
	dup := timelock.NewTimelockQueue(owner.Address(), owner.Seq())
	dup.Target = target.Address()
	dup.Value = 100
	dup.Timestamp = now + 60
	env.RequireResult(owner, dup, tx.AlreadyQueued)

	// Changing any part of the tuple makes a distinct operation.
	variant := timelock.NewTimelockQueue(owner.Address(), owner.Seq())
	variant.Target = target.Address()
	variant.Value = 100
	variant.Signature = "upgrade(address)"
	variant.Timestamp = now + 60
	env.RequireSuccess(owner, variant)
}

func TestTimelockExecute(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.FundedAccount(1000)
	target := env.FundedAccount(0)
	at := env.Now().Unix() + 60

	queue := timelock.NewTimelockQueue(owner.Address(), owner.Seq())
	queue.Target = target.Address()
	queue.Value = 250
	queue.Data = "deadbeef"
	queue.Timestamp = at
	env.RequireSuccess(owner, queue)

	exec := func() *timelock.TimelockExecute {
		e := timelock.NewTimelockExecute(owner.Address(), owner.Seq())
		e.Target = target.Address()
		e.Value = 250
		e.Data = "deadbeef"
		e.Timestamp = at
		return e
	}

	env.RequireResult(owner, exec(), tx.TooEarly)

	env.Advance(time.Minute)
	env.RequireSuccess(owner, exec())
	assert.Equal(t, uint64(750), env.Balance(owner))
	assert.Equal(t, uint64(250), env.Balance(target))

	// Execution consumed the entry.
	env.RequireResult(owner, exec(), tx.NotQueued)
}

func TestTimelockGraceWindow(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.FundedAccount(1000)
	target := env.FundedAccount(0)
	at := env.Now().Unix() + 60

	queue := timelock.NewTimelockQueue(owner.Address(), owner.Seq())
	queue.Target = target.Address()
	queue.Value = 100
	queue.Timestamp = at
	env.RequireSuccess(owner, queue)

	// 100s grace after the timestamp, then the operation goes stale.
	env.Advance(time.Minute + 101*time.Second)
	exec := timelock.NewTimelockExecute(owner.Address(), owner.Seq())
	exec.Target = target.Address()
	exec.Value = 100
	exec.Timestamp = at
	env.RequireResult(owner, exec, tx.TooLate)

	// A stale operation can still be cancelled.
	cancel := timelock.NewTimelockCancel(owner.Address(), owner.Seq())
	cancel.Target = target.Address()
	cancel.Value = 100
	cancel.Timestamp = at
	env.RequireSuccess(owner, cancel)
}

func TestTimelockOwnerOnly(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.FundedAccount(1000)
	other := env.FundedAccount(1000)
	target := env.FundedAccount(0)
	at := env.Now().Unix() + 60

	queue := timelock.NewTimelockQueue(owner.Address(), owner.Seq())
	queue.Target = target.Address()
	queue.Value = 100
	queue.Timestamp = at
	env.RequireSuccess(owner, queue)

	env.Advance(time.Minute)
	exec := timelock.NewTimelockExecute(other.Address(), other.Seq())
	exec.Target = target.Address()
	exec.Value = 100
	exec.Timestamp = at
	env.RequireResult(other, exec, tx.NotAuthorized)

	cancel := timelock.NewTimelockCancel(other.Address(), other.Seq())
	cancel.Target = target.Address()
	cancel.Value = 100
	cancel.Timestamp = at
	env.RequireResult(other, cancel, tx.NotAuthorized)
}

func TestTimelockCancel(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.FundedAccount(1000)
	target := env.FundedAccount(0)
	at := env.Now().Unix() + 60

	// Cancelling something never queued fails.
	cancel := func() *timelock.TimelockCancel {
		c := timelock.NewTimelockCancel(owner.Address(), owner.Seq())
		c.Target = target.Address()
		c.Value = 100
		c.Timestamp = at
		return c
	}
	env.RequireResult(owner, cancel(), tx.NotQueued)

	queue := timelock.NewTimelockQueue(owner.Address(), owner.Seq())
	queue.Target = target.Address()
	queue.Value = 100
	queue.Timestamp = at
	env.RequireSuccess(owner, queue)

	env.RequireSuccess(owner, cancel())

	// The tuple is free to queue again after cancellation.
	requeue := timelock.NewTimelockQueue(owner.Address(), owner.Seq())
	requeue.Target = target.Address()
	requeue.Value = 100
	requeue.Timestamp = at
	env.RequireSuccess(owner, requeue)
}

func TestTimelockQueueValidation(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.FundedAccount(1000)
	target := env.FundedAccount(0)

	tests := []struct {
		name string
		mod  func(*timelock.TimelockQueue)
		want tx.Result
	}{
		{
			name: "null target",
			mod: func(q *timelock.TimelockQueue) {
				q.Target = "0000000000000000000000000000000000000000"
			},
			want: tx.ZeroAddress,
		},
		{
			name: "bad data hex",
			mod:  func(q *timelock.TimelockQueue) { q.Data = "xyz" },
			want: tx.Malformed,
		},
		{
			name: "missing timestamp",
			mod:  func(q *timelock.TimelockQueue) { q.Timestamp = 0 },
			want: tx.InvalidWindow,
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			queue := timelock.NewTimelockQueue(owner.Address(), owner.Seq())
			queue.Target = target.Address()
			queue.Value = 10
			queue.Timestamp = env.Now().Unix() + 60
			tc.mod(queue)
			env.RequireResult(owner, queue, tc.want)
		})
	}
}
