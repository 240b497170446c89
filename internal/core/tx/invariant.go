package tx

import (
	"fmt"

	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/types"
)

// checkConservation verifies that a transaction neither creates nor
// destroys value. Native value is summed across account roots and every
// machine entry that escrows it; fungible and semi-fungible balances are
// checked per token against the issuance supply, so only mints and burns
// may move supply.
func checkConservation(items map[[32]byte]*TrackedEntry) error {
	var nativeBefore, nativeAfter uint64
	tokenBefore := make(map[types.TokenID]uint64)
	tokenAfter := make(map[types.TokenID]uint64)
	supplyBefore := make(map[types.TokenID]uint64)
	supplyAfter := make(map[types.TokenID]uint64)

	for _, e := range items {
		if e.Action == ActionNone {
			continue
		}
		switch e.Keylet.Kind {
		case keylet.KindBalance, keylet.KindSemiBalance:
			tok, amt, err := holderAmount(e.Keylet.Kind, e.Original)
			if err != nil {
				return err
			}
			tokenBefore[tok] += amt
			tok, amt, err = holderAmount(e.Keylet.Kind, e.Current)
			if err != nil {
				return err
			}
			tokenAfter[tok] += amt
		case keylet.KindIssuance, keylet.KindSemiToken:
			tok, sup, err := tokenSupply(e.Keylet.Kind, e.Original)
			if err != nil {
				return err
			}
			supplyBefore[tok] += sup
			tok, sup, err = tokenSupply(e.Keylet.Kind, e.Current)
			if err != nil {
				return err
			}
			supplyAfter[tok] += sup
		default:
			held, err := nativeHeld(e.Keylet.Kind, e.Original)
			if err != nil {
				return err
			}
			nativeBefore += held
			held, err = nativeHeld(e.Keylet.Kind, e.Current)
			if err != nil {
				return err
			}
			nativeAfter += held
		}
	}

	if nativeBefore != nativeAfter {
		return fmt.Errorf("tx: native value not conserved: %d before, %d after",
			nativeBefore, nativeAfter)
	}
	for tok := range union(tokenBefore, tokenAfter, supplyBefore, supplyAfter) {
		balDelta := int64(tokenAfter[tok]) - int64(tokenBefore[tok])
		supDelta := int64(supplyAfter[tok]) - int64(supplyBefore[tok])
		if balDelta != supDelta {
			return fmt.Errorf("tx: token %s not conserved: balance delta %d, supply delta %d",
				tok, balDelta, supDelta)
		}
	}
	return nil
}

func union(ms ...map[types.TokenID]uint64) map[types.TokenID]struct{} {
	out := make(map[types.TokenID]struct{})
	for _, m := range ms {
		for tok := range m {
			out[tok] = struct{}{}
		}
	}
	return out
}

func holderAmount(kind keylet.Kind, data []byte) (types.TokenID, uint64, error) {
	if data == nil {
		return types.TokenID{}, 0, nil
	}
	if kind == keylet.KindBalance {
		var b sle.Balance
		if err := sle.Decode(data, &b); err != nil {
			return types.TokenID{}, 0, err
		}
		return b.Token, b.Amount, nil
	}
	var b sle.SemiBalance
	if err := sle.Decode(data, &b); err != nil {
		return types.TokenID{}, 0, err
	}
	return b.Token, b.Amount, nil
}

func tokenSupply(kind keylet.Kind, data []byte) (types.TokenID, uint64, error) {
	if data == nil {
		return types.TokenID{}, 0, nil
	}
	if kind == keylet.KindIssuance {
		var iss sle.Issuance
		if err := sle.Decode(data, &iss); err != nil {
			return types.TokenID{}, 0, err
		}
		return iss.Token, iss.TotalSupply, nil
	}
	var st sle.SemiToken
	if err := sle.Decode(data, &st); err != nil {
		return types.TokenID{}, 0, err
	}
	return st.Token, st.TotalSupply, nil
}

// nativeHeld returns the native value an entry escrows.
func nativeHeld(kind keylet.Kind, data []byte) (uint64, error) {
	if data == nil {
		return 0, nil
	}
	switch kind {
	case keylet.KindAccount:
		var a sle.AccountRoot
		if err := sle.Decode(data, &a); err != nil {
			return 0, err
		}
		return a.Balance, nil
	case keylet.KindEscrow:
		var e sle.Escrow
		if err := sle.Decode(data, &e); err != nil {
			return 0, err
		}
		if e.Released {
			return 0, nil
		}
		return e.Amount, nil
	case keylet.KindAuction:
		var a sle.Auction
		if err := sle.Decode(data, &a); err != nil {
			return 0, err
		}
		return a.Held, nil
	case keylet.KindAuctionRefund:
		var r sle.Refund
		if err := sle.Decode(data, &r); err != nil {
			return 0, err
		}
		return r.Amount, nil
	case keylet.KindWallet:
		var w sle.Wallet
		if err := sle.Decode(data, &w); err != nil {
			return 0, err
		}
		return w.Balance, nil
	case keylet.KindChannel:
		var c sle.Channel
		if err := sle.Decode(data, &c); err != nil {
			return 0, err
		}
		return c.Remaining, nil
	case keylet.KindCampaign:
		var c sle.Campaign
		if err := sle.Decode(data, &c); err != nil {
			return 0, err
		}
		return c.Held, nil
	default:
		return 0, nil
	}
}
