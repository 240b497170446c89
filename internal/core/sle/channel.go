package sle

import "github.com/settleng/goledgerd/internal/core/types"

// Channel is a two-party payment channel. Both parties fund it at
// creation; the split is renegotiated off-ledger and settled by
// presenting the latest co-signed balance claim.
type Channel struct {
	Creator      types.AccountID `codec:"creator"`
	Participants []types.AccountID `codec:"participants"`
	// PubKeys are the hex-encoded signing keys, index-aligned with
	// Participants. Claims are verified against these, not against
	// whatever key signs the settling transaction.
	PubKeys []string `codec:"pubKeys"`
	// Funded is the total native value locked at creation.
	Funded uint64 `codec:"funded"`
	// Remaining is Funded minus what has been withdrawn.
	Remaining uint64 `codec:"remaining"`
	// Balances is the latest agreed split, index-aligned with
	// Participants.
	Balances []uint64 `codec:"balances"`
	// Nonce is the version of the latest accepted claim. A challenge
	// must carry a strictly higher nonce.
	Nonce           uint64 `codec:"nonce"`
	ExpiresAt       int64  `codec:"expiresAt"`
	ChallengePeriod int64  `codec:"challengePeriod"`
	// LastChallengeAt is zero until the first successful challenge.
	LastChallengeAt int64  `codec:"lastChallengeAt"`
	Withdrawn       []bool `codec:"withdrawn"`
}

// ParticipantIndex returns the identity's index, or -1 if it is not a
// channel participant.
func (c *Channel) ParticipantIndex(id types.AccountID) int {
	for i, p := range c.Participants {
		if p == id {
			return i
		}
	}
	return -1
}

// SettleAt returns the unix second from which withdrawals open: the
// later of expiry and the last challenge, plus the challenge period.
func (c *Channel) SettleAt() int64 {
	base := c.ExpiresAt
	if c.LastChallengeAt > base {
		base = c.LastChallengeAt
	}
	return base + c.ChallengePeriod
}
