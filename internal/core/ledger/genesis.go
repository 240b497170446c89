package ledger

import (
	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/types"
)

// Genesis seeds account roots with their opening native balances. This
// is the only place native value enters the ledger; every transaction
// after it conserves the total. Seeding an account that already exists
// is an error.
func Genesis(view tx.LedgerView, balances map[types.AccountID]uint64) error {
	for id, balance := range balances {
		acct := sle.AccountRoot{Account: id, Balance: balance}
		data, err := sle.Encode(&acct)
		if err != nil {
			return err
		}
		if err := view.Insert(keylet.Account(id), data); err != nil {
			return err
		}
	}
	return nil
}
