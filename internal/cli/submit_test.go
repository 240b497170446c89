package cli

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/ledger"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/tx"
	"github.com/settleng/goledgerd/internal/core/types"
)

func TestDecodeTransaction(t *testing.T) {
	got, err := decodeTransaction([]byte(`{"TransactionType":"Payment","Amount":5}`))
	require.NoError(t, err)
	assert.Equal(t, tx.TypePayment, got.TxType())

	_, err = decodeTransaction([]byte(`{"TransactionType":"Bogus"}`))
	assert.Error(t, err)

	_, err = decodeTransaction([]byte(`{`))
	assert.Error(t, err)
}

func TestSubmitLoop(t *testing.T) {
	view := ledger.NewMemoryView()
	var sender, dest types.AccountID
	sender[0] = 1
	dest[0] = 2
	require.NoError(t, ledger.Genesis(view, map[types.AccountID]uint64{sender: 1000, dest: 0}))
	engine := tx.NewEngine(view, tx.Options{SkipSignatureVerification: true})

	lines := []string{
		`{"TransactionType":"Payment","Account":"` + sender.String() + `","Sequence":0,"Destination":"` + dest.String() + `","Amount":100}`,
		`not json`,
		`{"TransactionType":"Bogus"}`,
		``,
		`{"TransactionType":"Payment","Account":"` + sender.String() + `","Sequence":1,"Destination":"` + dest.String() + `","Amount":50}`,
	}
	feed := strings.NewReader(strings.Join(lines, "\n") + "\n")

	// Bad lines are logged and skipped; good ones apply in order.
	require.NoError(t, submitLoop(context.Background(), feed, engine, zerolog.Nop()))

	data, err := view.Read(keylet.Account(dest))
	require.NoError(t, err)
	require.NotNil(t, data)
	var root sle.AccountRoot
	require.NoError(t, sle.Decode(data, &root))
	assert.Equal(t, uint64(150), root.Balance)
}
