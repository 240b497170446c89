package token_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/tx/token"
	"github.com/settleng/goledgerd/internal/core/types"
	"github.com/settleng/goledgerd/internal/testutil"
)

func createToken(t *testing.T, env *testutil.Env, issuer *testutil.Account) types.TokenID {
	t.Helper()
	id := keylet.IssuanceID(issuer.ID, issuer.Seq())
	create := token.NewTokenCreate(issuer.Address(), issuer.Seq())
	create.Name = "Settlement Credit"
	create.Symbol = "SET"
	create.Decimals = 6
	env.RequireSuccess(issuer, create)
	return id
}

func fungibleBalance(t *testing.T, env *testutil.Env, tok types.TokenID, holder *testutil.Account) uint64 {
	t.Helper()
	data, err := env.View.Read(keylet.Balance(tok, holder.ID))
	require.NoError(t, err)
	if data == nil {
		return 0
	}
	var bal sle.Balance
	require.NoError(t, sle.Decode(data, &bal))
	return bal.Amount
}

func TestFungibleLifecycle(t *testing.T) {
	env := testutil.NewEnv(t)
	issuer := env.FundedAccount(1000)
	holder := env.FundedAccount(1000)

	tok := createToken(t, env, issuer)

	mint := token.NewTokenMint(issuer.Address(), issuer.Seq())
	mint.Token = tok.String()
	mint.Destination = holder.Address()
	mint.Amount = 500
	env.RequireSuccess(issuer, mint)
	assert.Equal(t, uint64(500), fungibleBalance(t, env, tok, holder))

	transfer := token.NewTokenTransfer(holder.Address(), holder.Seq())
	transfer.Token = tok.String()
	transfer.Destination = issuer.Address()
	transfer.Amount = 120
	env.RequireSuccess(holder, transfer)
	assert.Equal(t, uint64(380), fungibleBalance(t, env, tok, holder))
	assert.Equal(t, uint64(120), fungibleBalance(t, env, tok, issuer))

	burn := token.NewTokenBurn(issuer.Address(), issuer.Seq())
	burn.Token = tok.String()
	burn.Amount = 120
	env.RequireSuccess(issuer, burn)
	assert.Equal(t, uint64(0), fungibleBalance(t, env, tok, issuer))

	// Supply reflects mint minus burn.
	data, err := env.View.Read(keylet.Issuance(tok))
	require.NoError(t, err)
	var iss sle.Issuance
	require.NoError(t, sle.Decode(data, &iss))
	assert.Equal(t, uint64(380), iss.TotalSupply)
}

func TestMintRequiresIssuer(t *testing.T) {
	env := testutil.NewEnv(t)
	issuer := env.FundedAccount(1000)
	outsider := env.FundedAccount(1000)

	tok := createToken(t, env, issuer)

	mint := token.NewTokenMint(outsider.Address(), outsider.Seq())
	mint.Token = tok.String()
	mint.Destination = outsider.Address()
	mint.Amount = 10
	env.RequireResult(outsider, mint, tx.NotAuthorized)
}

func TestTransferInsufficientBalance(t *testing.T) {
	env := testutil.NewEnv(t)
	issuer := env.FundedAccount(1000)
	holder := env.FundedAccount(1000)

	tok := createToken(t, env, issuer)

	transfer := token.NewTokenTransfer(holder.Address(), holder.Seq())
	transfer.Token = tok.String()
	transfer.Destination = issuer.Address()
	transfer.Amount = 1
	env.RequireResult(holder, transfer, tx.InsufficientBalance)
}

func TestUnknownToken(t *testing.T) {
	env := testutil.NewEnv(t)
	holder := env.FundedAccount(1000)

	transfer := token.NewTokenTransfer(holder.Address(), holder.Seq())
	transfer.Token = strings.Repeat("77", 32)
	transfer.Destination = holder.Address()
	transfer.Amount = 1
	env.RequireResult(holder, transfer, tx.NoTarget)
}

func TestAllowanceFlow(t *testing.T) {
	env := testutil.NewEnv(t)
	issuer := env.FundedAccount(1000)
	owner := env.FundedAccount(1000)
	spender := env.FundedAccount(1000)
	dest := env.FundedAccount(1000)

	tok := createToken(t, env, issuer)

	mint := token.NewTokenMint(issuer.Address(), issuer.Seq())
	mint.Token = tok.String()
	mint.Destination = owner.Address()
	mint.Amount = 100
	env.RequireSuccess(issuer, mint)

	// Spending without an allowance is refused.
	steal := token.NewTokenTransferFrom(spender.Address(), spender.Seq())
	steal.Token = tok.String()
	steal.Owner = owner.Address()
	steal.Destination = dest.Address()
	steal.Amount = 10
	env.RequireResult(spender, steal, tx.NotAuthorized)

	approve := token.NewTokenApprove(owner.Address(), owner.Seq())
	approve.Token = tok.String()
	approve.Spender = spender.Address()
	approve.Amount = 40
	env.RequireSuccess(owner, approve)

	spend := token.NewTokenTransferFrom(spender.Address(), spender.Seq())
	spend.Token = tok.String()
	spend.Owner = owner.Address()
	spend.Destination = dest.Address()
	spend.Amount = 30
	env.RequireSuccess(spender, spend)
	assert.Equal(t, uint64(70), fungibleBalance(t, env, tok, owner))
	assert.Equal(t, uint64(30), fungibleBalance(t, env, tok, dest))

	// Only 10 left on the allowance.
	over := token.NewTokenTransferFrom(spender.Address(), spender.Seq())
	over.Token = tok.String()
	over.Owner = owner.Address()
	over.Destination = dest.Address()
	over.Amount = 11
	env.RequireResult(spender, over, tx.NotAuthorized)
}

func TestNFTLifecycle(t *testing.T) {
	env := testutil.NewEnv(t)
	minter := env.FundedAccount(1000)
	receiver := env.FundedAccount(1000)

	id := strings.Repeat("AA", 32)

	mint := token.NewNFTMint(minter.Address(), minter.Seq())
	mint.Token = id
	env.RequireSuccess(minter, mint)

	// Same id cannot be minted twice, by anyone.
	again := token.NewNFTMint(receiver.Address(), receiver.Seq())
	again.Token = id
	env.RequireResult(receiver, again, tx.AlreadyMinted)

	transfer := token.NewNFTTransfer(minter.Address(), minter.Seq())
	transfer.Token = id
	transfer.Destination = receiver.Address()
	env.RequireSuccess(minter, transfer)

	// The old owner can no longer move it.
	back := token.NewNFTTransfer(minter.Address(), minter.Seq())
	back.Token = id
	back.Destination = minter.Address()
	env.RequireResult(minter, back, tx.NotAuthorized)

	burn := token.NewNFTBurn(receiver.Address(), receiver.Seq())
	burn.Token = id
	env.RequireSuccess(receiver, burn)

	// Burned id reads as gone.
	gone := token.NewNFTTransfer(receiver.Address(), receiver.Seq())
	gone.Token = id
	gone.Destination = minter.Address()
	env.RequireResult(receiver, gone, tx.NoTarget)
}

func TestNFTApprovedTransfer(t *testing.T) {
	env := testutil.NewEnv(t)
	owner := env.FundedAccount(1000)
	operator := env.FundedAccount(1000)
	dest := env.FundedAccount(1000)

	id := strings.Repeat("BB", 32)
	mint := token.NewNFTMint(owner.Address(), owner.Seq())
	mint.Token = id
	env.RequireSuccess(owner, mint)

	approve := token.NewNFTApprove(owner.Address(), owner.Seq())
	approve.Token = id
	approve.Spender = operator.Address()
	env.RequireSuccess(owner, approve)

	move := token.NewNFTTransfer(operator.Address(), operator.Seq())
	move.Token = id
	move.Destination = dest.Address()
	env.RequireSuccess(operator, move)

	// Approval cleared by the transfer.
	again := token.NewNFTTransfer(operator.Address(), operator.Seq())
	again.Token = id
	again.Destination = operator.Address()
	env.RequireResult(operator, again, tx.NotAuthorized)
}

func TestSemiFungibleLifecycle(t *testing.T) {
	env := testutil.NewEnv(t)
	issuer := env.FundedAccount(1000)
	holder := env.FundedAccount(1000)

	id := strings.Repeat("CC", 32)

	mint := token.NewSemiMint(issuer.Address(), issuer.Seq())
	mint.Token = id
	mint.Destination = holder.Address()
	mint.Amount = 40
	env.RequireSuccess(issuer, mint)

	// The first mint fixed the issuer.
	pirate := token.NewSemiMint(holder.Address(), holder.Seq())
	pirate.Token = id
	pirate.Destination = holder.Address()
	pirate.Amount = 1
	env.RequireResult(holder, pirate, tx.NotAuthorized)

	transfer := token.NewSemiTransfer(holder.Address(), holder.Seq())
	transfer.Token = id
	transfer.Destination = issuer.Address()
	transfer.Amount = 15
	env.RequireSuccess(holder, transfer)

	burn := token.NewSemiBurn(issuer.Address(), issuer.Seq())
	burn.Token = id
	burn.Amount = 15
	env.RequireSuccess(issuer, burn)

	over := token.NewSemiBurn(holder.Address(), holder.Seq())
	over.Token = id
	over.Amount = 26
	env.RequireResult(holder, over, tx.InsufficientBalance)
}
