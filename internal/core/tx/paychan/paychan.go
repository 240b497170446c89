// Package paychan implements two-party payment channels. The channel
// escrows native value at creation; the parties renegotiate the split
// off-ledger by co-signing balance claims, and either party can present
// a newer claim on-ledger during the challenge window. Withdrawals open
// once the window closes.
package paychan

import (
	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/types"
	"github.com/settleng/goledgerd/internal/crypto"
)

func init() {
	tx.Register(tx.TypeChannelCreate, func() tx.Transaction { return &ChannelCreate{} })
	tx.Register(tx.TypeChannelChallenge, func() tx.Transaction { return &ChannelChallenge{} })
	tx.Register(tx.TypeChannelWithdraw, func() tx.Transaction { return &ChannelWithdraw{} })
}

// claimPrefix domain-separates channel claims from transaction
// signatures.
var claimPrefix = []byte("CLM\x00")

type claimPayload struct {
	Balances []uint64 `codec:"balances"`
	Nonce    uint64   `codec:"nonce"`
}

// ClaimSigningData returns the bytes both parties sign to agree on a
// channel split.
func ClaimSigningData(channel [32]byte, balances []uint64, nonce uint64) ([]byte, error) {
	enc, err := sle.Encode(&claimPayload{Balances: balances, Nonce: nonce})
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(claimPrefix)+len(channel)+len(enc))
	out = append(out, claimPrefix...)
	out = append(out, channel[:]...)
	out = append(out, enc...)
	return out, nil
}

// ChannelCreate opens a channel with a counterparty. The creator funds
// the whole channel; the opening split assigns everything to the
// creator and claims renegotiate it. Claim keys are fixed at creation.
type ChannelCreate struct {
	tx.BaseTx
	Counterparty string `json:"Counterparty"`
	// PubKey and CounterpartyPubKey verify claim signatures for the
	// creator and counterparty respectively.
	PubKey             string `json:"PubKey"`
	CounterpartyPubKey string `json:"CounterpartyPubKey"`
	Amount             uint64 `json:"Amount"`
	// ExpiresIn is the channel lifetime in seconds.
	ExpiresIn int64 `json:"ExpiresIn"`
	// ChallengePeriod is the settling delay in seconds. Each accepted
	// challenge restarts it.
	ChallengePeriod int64 `json:"ChallengePeriod"`
}

func NewChannelCreate(account string, sequence uint32) *ChannelCreate {
	t := &ChannelCreate{}
	t.Account = account
	t.TransactionType = tx.TypeChannelCreate.String()
	t.Sequence = sequence
	return t
}

func (t *ChannelCreate) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	cp, err := types.ParseAccountID(t.Counterparty)
	if err != nil {
		return tx.ValidationError("malformed", "Counterparty is not a valid identity")
	}
	if cp.IsZero() {
		return tx.ValidationError("zeroAddress", "Counterparty is the null identity")
	}
	if acct, err := t.AccountID(); err == nil && cp == acct {
		return tx.ValidationError("invalidTarget", "Counterparty is the creator")
	}
	if _, err := crypto.AccountIDFromPubKey(t.PubKey); err != nil {
		return tx.ValidationError("malformed", "PubKey is not a valid public key")
	}
	if _, err := crypto.AccountIDFromPubKey(t.CounterpartyPubKey); err != nil {
		return tx.ValidationError("malformed", "CounterpartyPubKey is not a valid public key")
	}
	if t.Amount == 0 {
		return tx.ValidationError("malformed", "Amount must be positive")
	}
	if t.ExpiresIn <= 0 || t.ChallengePeriod <= 0 {
		return tx.ValidationError("invalidWindow", "ExpiresIn and ChallengePeriod must be positive")
	}
	return nil
}

func (t *ChannelCreate) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Counterparty"] = t.Counterparty
	m["PubKey"] = t.PubKey
	m["CounterpartyPubKey"] = t.CounterpartyPubKey
	m["Amount"] = t.Amount
	m["ExpiresIn"] = t.ExpiresIn
	m["ChallengePeriod"] = t.ChallengePeriod
	return m
}

func (t *ChannelCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	cp, _ := types.ParseAccountID(t.Counterparty)
	if r := ctx.Debit(t.Amount); !r.IsSuccess() {
		return r
	}
	ch := &sle.Channel{
		Creator:         ctx.AccountID,
		Participants:    []types.AccountID{ctx.AccountID, cp},
		PubKeys:         []string{t.PubKey, t.CounterpartyPubKey},
		Funded:          t.Amount,
		Remaining:       t.Amount,
		Balances:        []uint64{t.Amount, 0},
		ExpiresAt:       ctx.Now.Unix() + t.ExpiresIn,
		ChallengePeriod: t.ChallengePeriod,
		Withdrawn:       []bool{false, false},
	}
	if err := tx.InsertEntry(ctx.View, keylet.Channel(ctx.AccountID, ctx.Sequence), ch); err != nil {
		return tx.Internal
	}
	ctx.Account.OwnerCount++
	ctx.Emit("channel_created", map[string]any{
		"creator":      t.Account,
		"counterparty": t.Counterparty,
		"amount":       t.Amount,
	})
	return tx.Success
}

func channelRef(ctx *tx.ApplyContext, creator string, seq uint32) (keylet.Keylet, *sle.Channel, tx.Result) {
	id, err := types.ParseAccountID(creator)
	if err != nil {
		return keylet.Keylet{}, nil, tx.Malformed
	}
	k := keylet.Channel(id, seq)
	ch, err := tx.ReadEntry[sle.Channel](ctx.View, k)
	if err != nil {
		return keylet.Keylet{}, nil, tx.Internal
	}
	if ch == nil {
		return keylet.Keylet{}, nil, tx.NoTarget
	}
	return k, ch, tx.Success
}

// ChannelChallenge presents a co-signed balance claim. The claim must
// carry a strictly newer nonce and both participants' signatures over
// the claimed split. An accepted challenge restarts the challenge
// period.
type ChannelChallenge struct {
	tx.BaseTx
	Creator         string   `json:"Creator"`
	ChannelSequence uint32   `json:"ChannelSequence"`
	Balances        []uint64 `json:"Balances"`
	Nonce           uint64   `json:"Nonce"`
	// Signatures are index-aligned with the channel participants.
	Signatures []string `json:"Signatures"`
}

func NewChannelChallenge(account string, sequence uint32) *ChannelChallenge {
	t := &ChannelChallenge{}
	t.Account = account
	t.TransactionType = tx.TypeChannelChallenge.String()
	t.Sequence = sequence
	return t
}

func (t *ChannelChallenge) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseAccountID(t.Creator); err != nil {
		return tx.ValidationError("malformed", "Creator is not a valid identity")
	}
	if len(t.Balances) != 2 {
		return tx.ValidationError("malformed", "Balances must list both parties")
	}
	if t.Nonce == 0 {
		return tx.ValidationError("malformed", "Nonce must be positive")
	}
	if len(t.Signatures) != 2 || t.Signatures[0] == "" || t.Signatures[1] == "" {
		return tx.ValidationError("malformed", "Signatures must carry both parties")
	}
	return nil
}

func (t *ChannelChallenge) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Creator"] = t.Creator
	m["ChannelSequence"] = t.ChannelSequence
	m["Balances"] = t.Balances
	m["Nonce"] = t.Nonce
	m["Signatures"] = t.Signatures
	return m
}

func (t *ChannelChallenge) Apply(ctx *tx.ApplyContext) tx.Result {
	k, ch, r := channelRef(ctx, t.Creator, t.ChannelSequence)
	if !r.IsSuccess() {
		return r
	}
	if ch.ParticipantIndex(ctx.AccountID) < 0 {
		return tx.NotAuthorized
	}
	if ch.Withdrawn[0] || ch.Withdrawn[1] {
		return tx.TooLate
	}
	if t.Nonce <= ch.Nonce {
		return tx.StaleNonce
	}
	sum, ok := types.AddUint64(t.Balances[0], t.Balances[1])
	if !ok || sum != ch.Funded {
		return tx.Malformed
	}
	payload, err := ClaimSigningData(k.Key, t.Balances, t.Nonce)
	if err != nil {
		return tx.Internal
	}
	for i, sig := range t.Signatures {
		ok, err := crypto.Verify(payload, sig, ch.PubKeys[i])
		if err != nil || !ok {
			return tx.InvalidSignature
		}
	}
	ch.Balances = append([]uint64{}, t.Balances...)
	ch.Nonce = t.Nonce
	ch.LastChallengeAt = ctx.Now.Unix()
	if err := tx.UpdateEntry(ctx.View, k, ch); err != nil {
		return tx.Internal
	}
	ctx.Emit("channel_challenged", map[string]any{
		"creator": t.Creator,
		"nonce":   t.Nonce,
		"by":      t.Account,
	})
	return tx.Success
}

// ChannelWithdraw pays out the submitting participant's side of the
// latest accepted split. It opens only after the later of expiry and
// the last challenge, plus the challenge period.
type ChannelWithdraw struct {
	tx.BaseTx
	Creator         string `json:"Creator"`
	ChannelSequence uint32 `json:"ChannelSequence"`
}

func NewChannelWithdraw(account string, sequence uint32) *ChannelWithdraw {
	t := &ChannelWithdraw{}
	t.Account = account
	t.TransactionType = tx.TypeChannelWithdraw.String()
	t.Sequence = sequence
	return t
}

func (t *ChannelWithdraw) Validate() error {
	if err := t.Common.Validate(); err != nil {
		return err
	}
	if _, err := types.ParseAccountID(t.Creator); err != nil {
		return tx.ValidationError("malformed", "Creator is not a valid identity")
	}
	return nil
}

func (t *ChannelWithdraw) Flatten() map[string]any {
	m := t.Common.Flatten()
	m["Creator"] = t.Creator
	m["ChannelSequence"] = t.ChannelSequence
	return m
}

func (t *ChannelWithdraw) Apply(ctx *tx.ApplyContext) tx.Result {
	k, ch, r := channelRef(ctx, t.Creator, t.ChannelSequence)
	if !r.IsSuccess() {
		return r
	}
	idx := ch.ParticipantIndex(ctx.AccountID)
	if idx < 0 {
		return tx.NotAuthorized
	}
	if ctx.Now.Unix() < ch.SettleAt() {
		return tx.ChannelNotExpired
	}
	if ch.Withdrawn[idx] {
		return tx.AlreadyWithdrawn
	}
	amount := ch.Balances[idx]
	rest, ok := types.SubUint64(ch.Remaining, amount)
	if !ok {
		return tx.Internal
	}
	ch.Withdrawn[idx] = true
	ch.Remaining = rest
	if err := tx.UpdateEntry(ctx.View, k, ch); err != nil {
		return tx.Internal
	}
	sum, ok := types.AddUint64(ctx.Account.Balance, amount)
	if !ok {
		return tx.Internal
	}
	ctx.Account.Balance = sum
	ctx.Emit("channel_withdrawn", map[string]any{
		"creator": t.Creator,
		"by":      t.Account,
		"amount":  amount,
	})
	return tx.Success
}
