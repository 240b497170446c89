package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/settleng/goledgerd/internal/core/keylet"
	"github.com/settleng/goledgerd/internal/core/types"
)

// fakeView is a minimal base view for table tests.
type fakeView map[[32]byte][]byte

func (v fakeView) Read(k keylet.Keylet) ([]byte, error) {
	return v[k.Key], nil
}

func (v fakeView) Exists(k keylet.Keylet) (bool, error) {
	_, ok := v[k.Key]
	return ok, nil
}

func (v fakeView) Insert(k keylet.Keylet, data []byte) error {
	v[k.Key] = data
	return nil
}

func (v fakeView) Update(k keylet.Keylet, data []byte) error {
	v[k.Key] = data
	return nil
}

func (v fakeView) Erase(k keylet.Keylet) error {
	delete(v, k.Key)
	return nil
}

func pledgeKey(b byte) keylet.Keylet {
	var id types.AccountID
	id[0] = b
	// Pledge entries carry no native value, so conservation stays
	// neutral in these tests.
	return keylet.Pledge([32]byte{b}, id)
}

func TestTableBuffersUntilApply(t *testing.T) {
	base := fakeView{}
	table := NewApplyStateTable(base)

	k := pledgeKey(1)
	require.NoError(t, table.Insert(k, []byte("v")))

	data, err := table.Read(k)
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), data, "staged insert visible through the table")
	assert.Empty(t, base, "base untouched before Apply")

	require.NoError(t, table.Apply())
	assert.Equal(t, []byte("v"), base[k.Key])
}

func TestTableDiscardWithoutApply(t *testing.T) {
	base := fakeView{}
	k := pledgeKey(1)
	require.NoError(t, base.Insert(k, []byte("orig")))

	table := NewApplyStateTable(base)
	require.NoError(t, table.Update(k, []byte("changed")))
	require.NoError(t, table.Insert(pledgeKey(2), []byte("new")))

	// Dropping the table without Apply leaves the base untouched.
	assert.Equal(t, []byte("orig"), base[k.Key])
	assert.Len(t, base, 1)
}

func TestTableInsertOverExisting(t *testing.T) {
	base := fakeView{}
	k := pledgeKey(1)
	require.NoError(t, base.Insert(k, []byte("orig")))

	table := NewApplyStateTable(base)
	assert.Error(t, table.Insert(k, []byte("dup")))
}

func TestTableUpdateMissing(t *testing.T) {
	table := NewApplyStateTable(fakeView{})
	assert.Error(t, table.Update(pledgeKey(1), []byte("x")))
}

func TestTableEraseStagedInsert(t *testing.T) {
	base := fakeView{}
	table := NewApplyStateTable(base)
	k := pledgeKey(1)

	require.NoError(t, table.Insert(k, []byte("v")))
	require.NoError(t, table.Erase(k))

	exists, err := table.Exists(k)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, table.Apply())
	assert.Empty(t, base)
}

func TestTableEraseThenReinsert(t *testing.T) {
	base := fakeView{}
	k := pledgeKey(1)
	require.NoError(t, base.Insert(k, []byte("orig")))

	table := NewApplyStateTable(base)
	require.NoError(t, table.Erase(k))
	require.NoError(t, table.Insert(k, []byte("reborn")))
	require.NoError(t, table.Apply())

	assert.Equal(t, []byte("reborn"), base[k.Key])
}

func TestTableReadIsolation(t *testing.T) {
	base := fakeView{}
	k := pledgeKey(1)
	require.NoError(t, base.Insert(k, []byte("orig")))

	table := NewApplyStateTable(base)
	require.NoError(t, table.Erase(k))
	data, err := table.Read(k)
	require.NoError(t, err)
	assert.Nil(t, data, "erased entry reads as absent inside the transaction")
}
