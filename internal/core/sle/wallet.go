package sle

import "github.com/settleng/goledgerd/internal/core/types"

// Wallet is a threshold-controlled shared account.
type Wallet struct {
	Creator   types.AccountID   `codec:"creator"`
	Owners    []types.AccountID `codec:"owners"`
	Threshold uint32            `codec:"threshold"`
	// TxCount numbers submitted proposals; the next proposal takes
	// index TxCount.
	TxCount uint32 `codec:"txCount"`
	// Balance is the native value deposited into the wallet.
	Balance uint64 `codec:"balance"`
}

// IsOwner reports whether the identity is one of the wallet owners.
func (w *Wallet) IsOwner(id types.AccountID) bool {
	for _, o := range w.Owners {
		if o == id {
			return true
		}
	}
	return false
}

// WalletTx is a proposed transfer out of a wallet.
type WalletTx struct {
	Index    uint32          `codec:"index"`
	To       types.AccountID `codec:"to"`
	Amount   uint64          `codec:"amount"`
	Executed bool            `codec:"executed"`
	// Confirmations lists the owners that currently confirm, in
	// confirmation order.
	Confirmations []types.AccountID `codec:"confirmations"`
}

// Confirmed reports whether the identity currently confirms the proposal.
func (t *WalletTx) Confirmed(id types.AccountID) bool {
	for _, c := range t.Confirmations {
		if c == id {
			return true
		}
	}
	return false
}

// Revoke removes the identity's confirmation. Returns false if it was not
// present.
func (t *WalletTx) Revoke(id types.AccountID) bool {
	for i, c := range t.Confirmations {
		if c == id {
			t.Confirmations = append(t.Confirmations[:i], t.Confirmations[i+1:]...)
			return true
		}
	}
	return false
}
