package tx

import (
	"fmt"
	"strings"

	"github.com/settleng/goledgerd/internal/core/types"
)

// Transaction is the interface every ledger transaction implements.
// Validate performs stateless checks only; state-dependent checks belong
// in Apply.
type Transaction interface {
	TxType() Type
	GetCommon() *Common
	Validate() error
	Flatten() map[string]any
}

// Appliable is implemented by transactions that mutate ledger state. The
// engine rejects any registered transaction that does not implement it.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// Common holds the fields shared by all transactions.
type Common struct {
	// Account is the hex-encoded identity submitting the transaction.
	Account string `json:"Account"`
	// TransactionType is the type name, e.g. "EscrowCreate".
	TransactionType string `json:"TransactionType"`
	// Sequence is the per-account replay counter. It must equal the
	// account's current sequence exactly.
	Sequence uint32 `json:"Sequence"`
	// SigningPubKey is the hex-encoded 33-byte public key.
	SigningPubKey string `json:"SigningPubKey,omitempty"`
	// TxnSignature is the hex-encoded signature over the signing data.
	TxnSignature string `json:"TxnSignature,omitempty"`
}

// AccountID parses the Account field.
func (c *Common) AccountID() (types.AccountID, error) {
	return types.ParseAccountID(c.Account)
}

// Validate checks the stateless common fields.
func (c *Common) Validate() error {
	if c.Account == "" {
		return ValidationError("malformed", "Account is required")
	}
	if _, err := types.ParseAccountID(c.Account); err != nil {
		return ValidationError("malformed", "Account is not a valid identity")
	}
	if c.TransactionType == "" {
		return ValidationError("malformed", "TransactionType is required")
	}
	if TypeFromName(c.TransactionType) == TypeInvalid {
		return ValidationError("malformed", "unknown TransactionType "+c.TransactionType)
	}
	return nil
}

// Flatten returns the common fields as a map. Transaction types merge
// their own fields on top.
func (c *Common) Flatten() map[string]any {
	m := map[string]any{
		"Account":         c.Account,
		"TransactionType": c.TransactionType,
		"Sequence":        c.Sequence,
	}
	if c.SigningPubKey != "" {
		m["SigningPubKey"] = c.SigningPubKey
	}
	if c.TxnSignature != "" {
		m["TxnSignature"] = c.TxnSignature
	}
	return m
}

// BaseTx is embedded by every concrete transaction type.
type BaseTx struct {
	Common
}

func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

func (b *BaseTx) TxType() Type {
	return TypeFromName(b.TransactionType)
}

// ValidationError builds an error whose kind prefix maps back to a
// Result code via ResultFromError.
func ValidationError(kind, msg string) error {
	return fmt.Errorf("%s: %s", kind, msg)
}

var validationKinds = map[string]Result{
	"malformed":     Malformed,
	"zeroAddress":   ZeroAddress,
	"invalidTarget": InvalidTarget,
	"invalidWindow": InvalidWindow,
	"notAuthorized": NotAuthorized,
}

// ResultFromError maps a validation error to its Result code. Errors
// without a recognized kind prefix classify as Malformed.
func ResultFromError(err error) Result {
	if err == nil {
		return Success
	}
	msg := err.Error()
	if idx := strings.Index(msg, ":"); idx > 0 {
		if r, ok := validationKinds[msg[:idx]]; ok {
			return r
		}
	}
	return Malformed
}
