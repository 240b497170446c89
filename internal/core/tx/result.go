package tx

import "fmt"

// Result is a transaction result code. Every failure an operation can
// produce is a distinct code so callers and tests can assert on the exact
// condition; no failure is ever folded into a generic error.
type Result int

const (
	// Success means the transaction was applied in full.
	Success Result = 0
)

// Malformed-class results: the transaction was rejected on its face,
// before any ledger state was consulted.
const (
	Malformed Result = -(200 + iota)
	ZeroAddress
	InvalidTarget
	InvalidWindow
)

// Authorization-class results.
const (
	InvalidSignature Result = -(100 + iota)
	NotAuthorized
	StaleNonce
	PastSequence
	FutureSequence
)

// Internal faults. InvariantFailed means an apply would have broken value
// conservation and was discarded wholesale.
const (
	Internal Result = -(900 + iota)
	InvariantFailed
)

// State-class results: the transaction was well-formed and authorized but
// current ledger state forbids it.
const (
	NoAccount Result = 100 + iota
	NoTarget
	InsufficientBalance
	InsufficientPayment
	InsufficientConfirmations
	BidTooLow
	GoalNotReached
	GoalReached
	AlreadyMinted
	AlreadyConfirmed
	AlreadyExecuted
	AlreadyReleased
	AlreadyQueued
	AlreadyClaimed
	AlreadyWithdrawn
	NotConfirmed
	NotQueued
	NoPledge
)

// Time-window results.
const (
	TooEarly Result = 200 + iota
	TooLate
	NotStarted
	Ended
	AuctionEnded
	ChannelNotExpired
)

var resultNames = map[Result]string{
	Success:                   "success",
	Malformed:                 "malformed",
	ZeroAddress:               "zeroAddress",
	InvalidTarget:             "invalidTarget",
	InvalidWindow:             "invalidWindow",
	InvalidSignature:          "invalidSignature",
	NotAuthorized:             "notAuthorized",
	StaleNonce:                "staleNonce",
	PastSequence:              "pastSequence",
	FutureSequence:            "futureSequence",
	Internal:                  "internal",
	InvariantFailed:           "invariantFailed",
	NoAccount:                 "noAccount",
	NoTarget:                  "noTarget",
	InsufficientBalance:       "insufficientBalance",
	InsufficientPayment:       "insufficientPayment",
	InsufficientConfirmations: "insufficientConfirmations",
	BidTooLow:                 "bidTooLow",
	GoalNotReached:            "goalNotReached",
	GoalReached:               "goalReached",
	AlreadyMinted:             "alreadyMinted",
	AlreadyConfirmed:          "alreadyConfirmed",
	AlreadyExecuted:           "alreadyExecuted",
	AlreadyReleased:           "alreadyReleased",
	AlreadyQueued:             "alreadyQueued",
	AlreadyClaimed:            "alreadyClaimed",
	AlreadyWithdrawn:          "alreadyWithdrawn",
	NotConfirmed:              "notConfirmed",
	NotQueued:                 "notQueued",
	NoPledge:                  "noPledge",
	TooEarly:                  "tooEarly",
	TooLate:                   "tooLate",
	NotStarted:                "notStarted",
	Ended:                     "ended",
	AuctionEnded:              "auctionEnded",
	ChannelNotExpired:         "channelNotExpired",
}

var resultMessages = map[Result]string{
	Success:                   "The transaction was applied.",
	Malformed:                 "The transaction is malformed.",
	ZeroAddress:               "The destination is the null identity.",
	InvalidTarget:             "The target of the operation is invalid.",
	InvalidWindow:             "The time window is invalid.",
	InvalidSignature:          "The signature does not authorize this transaction.",
	NotAuthorized:             "The caller is not authorized for this operation.",
	StaleNonce:                "The nonce is not newer than the last accepted one.",
	PastSequence:              "The sequence number was already used.",
	FutureSequence:            "The sequence number is ahead of the account.",
	Internal:                  "An internal error occurred during processing.",
	InvariantFailed:           "Applying the transaction would break value conservation.",
	NoAccount:                 "The source account does not exist.",
	NoTarget:                  "The referenced entry does not exist.",
	InsufficientBalance:       "The balance does not cover the amount.",
	InsufficientPayment:       "The payment does not cover the current price.",
	InsufficientConfirmations: "Confirmations have not reached the threshold.",
	BidTooLow:                 "The bid does not exceed the highest bid.",
	GoalNotReached:            "The funding goal was not reached.",
	GoalReached:               "The funding goal was reached.",
	AlreadyMinted:             "The token id is already minted.",
	AlreadyConfirmed:          "The caller already confirmed this transaction.",
	AlreadyExecuted:           "The transaction was already executed.",
	AlreadyReleased:           "The escrowed value was already released.",
	AlreadyQueued:             "An identical operation is already queued.",
	AlreadyClaimed:            "The campaign was already claimed.",
	AlreadyWithdrawn:          "The caller already withdrew.",
	NotConfirmed:              "The caller has not confirmed this transaction.",
	NotQueued:                 "The operation is not queued.",
	NoPledge:                  "The caller has no outstanding contribution.",
	TooEarly:                  "The operation time has not been reached.",
	TooLate:                   "The operation window has expired.",
	NotStarted:                "The window has not opened yet.",
	Ended:                     "The window has closed.",
	AuctionEnded:              "The auction has ended.",
	ChannelNotExpired:         "The channel expiry plus challenge period has not elapsed.",
}

// String returns the short code name.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// Message returns the human-readable description.
func (r Result) Message() string {
	if msg, ok := resultMessages[r]; ok {
		return msg
	}
	return "Unknown result."
}

// IsSuccess reports whether the transaction was applied.
func (r Result) IsSuccess() bool {
	return r == Success
}
