package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/sle"
	"github.com/settleng/goledgerd/internal/core/types"
	"github.com/settleng/goledgerd/internal/storage/kv"
)

func testAccount(b byte) types.AccountID {
	var id types.AccountID
	id[0] = b
	return id
}

// viewUnderTest lets both view implementations run the same cases.
type viewUnderTest interface {
	Read(k keylet.Keylet) ([]byte, error)
	Exists(k keylet.Keylet) (bool, error)
	Insert(k keylet.Keylet, data []byte) error
	Update(k keylet.Keylet, data []byte) error
	Erase(k keylet.Keylet) error
}

func runViewCases(t *testing.T, v viewUnderTest) {
	k := keylet.Account(testAccount(1))

	data, err := v.Read(k)
	require.NoError(t, err)
	assert.Nil(t, data, "absent entry reads as nil without error")

	assert.Error(t, v.Update(k, []byte("x")), "update of a missing entry fails")
	assert.Error(t, v.Erase(k), "erase of a missing entry fails")

	require.NoError(t, v.Insert(k, []byte("v1")))
	assert.Error(t, v.Insert(k, []byte("v2")), "double insert fails")

	data, err = v.Read(k)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), data)

	exists, err := v.Exists(k)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, v.Update(k, []byte("v2")))
	data, err = v.Read(k)
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)

	require.NoError(t, v.Erase(k))
	exists, err = v.Exists(k)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestMemoryView(t *testing.T) {
	runViewCases(t, NewMemoryView())
}

func TestStoreView(t *testing.T) {
	db := kv.NewMemoryDB()
	defer db.Close()
	v, err := NewStoreView(db, 8)
	require.NoError(t, err)
	runViewCases(t, v)
}

func TestStoreViewSurvivesColdCache(t *testing.T) {
	db := kv.NewMemoryDB()
	defer db.Close()

	v, err := NewStoreView(db, 8)
	require.NoError(t, err)
	k := keylet.Account(testAccount(2))
	require.NoError(t, v.Insert(k, []byte("persisted")))

	// A fresh view over the same store must see the entry.
	v2, err := NewStoreView(db, 8)
	require.NoError(t, err)
	data, err := v2.Read(k)
	require.NoError(t, err)
	assert.Equal(t, []byte("persisted"), data)
}

func TestGenesis(t *testing.T) {
	v := NewMemoryView()
	a, b := testAccount(1), testAccount(2)
	require.NoError(t, Genesis(v, map[types.AccountID]uint64{a: 1000, b: 50}))

	data, err := v.Read(keylet.Account(a))
	require.NoError(t, err)
	var root sle.AccountRoot
	require.NoError(t, sle.Decode(data, &root))
	assert.Equal(t, uint64(1000), root.Balance)
	assert.Equal(t, uint32(0), root.Sequence)

	// Re-seeding an existing account fails.
	assert.Error(t, Genesis(v, map[types.AccountID]uint64{a: 1}))
}
