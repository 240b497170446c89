package sle

import "github.com/settleng/goledgerd/internal/core/types"

// Issuance describes a fungible token.
type Issuance struct {
	Token       types.TokenID   `codec:"token"`
	Issuer      types.AccountID `codec:"issuer"`
	Name        string          `codec:"name"`
	Symbol      string          `codec:"symbol"`
	Decimals    uint8           `codec:"decimals"`
	TotalSupply uint64          `codec:"totalSupply"`
}

// Balance holds a fungible token balance for one holder.
type Balance struct {
	Token  types.TokenID   `codec:"token"`
	Holder types.AccountID `codec:"holder"`
	Amount uint64          `codec:"amount"`
}

// Allowance authorizes a spender to move up to Amount of a holder's
// fungible balance.
type Allowance struct {
	Token   types.TokenID   `codec:"token"`
	Owner   types.AccountID `codec:"owner"`
	Spender types.AccountID `codec:"spender"`
	Amount  uint64          `codec:"amount"`
}

// NFToken is a unique token. Held marks the token as locked by a machine
// entry (for example while listed in an auction) so owner transfers are
// refused until it is released.
type NFToken struct {
	Token    types.TokenID   `codec:"token"`
	Owner    types.AccountID `codec:"owner"`
	Approved types.AccountID `codec:"approved"`
	Held     bool            `codec:"held"`
}

// SemiToken describes a semi-fungible token id. The first mint of an id
// fixes its issuer.
type SemiToken struct {
	Token       types.TokenID   `codec:"token"`
	Issuer      types.AccountID `codec:"issuer"`
	TotalSupply uint64          `codec:"totalSupply"`
}

// SemiBalance holds a semi-fungible quantity for one holder.
type SemiBalance struct {
	Token  types.TokenID   `codec:"token"`
	Holder types.AccountID `codec:"holder"`
	Amount uint64          `codec:"amount"`
}
