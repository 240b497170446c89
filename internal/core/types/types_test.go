package types

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAccountID(t *testing.T) {
	hex40 := strings.Repeat("AB", 20)
	id, err := ParseAccountID(hex40)
	require.NoError(t, err)
	assert.Equal(t, hex40, id.String())

	// Lower-case input parses; String canonicalizes to upper.
	lower, err := ParseAccountID(strings.ToLower(hex40))
	require.NoError(t, err)
	assert.Equal(t, id, lower)

	for _, bad := range []string{"", "zz", strings.Repeat("AB", 19), strings.Repeat("AB", 21)} {
		_, err := ParseAccountID(bad)
		assert.ErrorIs(t, err, ErrInvalidAccountID, "input %q", bad)
	}
}

func TestZeroAccount(t *testing.T) {
	assert.True(t, ZeroAccount.IsZero())
	id, err := ParseAccountID(strings.Repeat("00", 20))
	require.NoError(t, err)
	assert.True(t, id.IsZero())
}

func TestParseTokenID(t *testing.T) {
	hex64 := strings.Repeat("1F", 32)
	tok, err := ParseTokenID(hex64)
	require.NoError(t, err)
	assert.Equal(t, hex64, tok.String())

	_, err = ParseTokenID("1F")
	assert.ErrorIs(t, err, ErrInvalidTokenID)
}

func TestCheckedArithmetic(t *testing.T) {
	sum, ok := AddUint64(1, 2)
	assert.True(t, ok)
	assert.Equal(t, uint64(3), sum)

	_, ok = AddUint64(^uint64(0), 1)
	assert.False(t, ok)

	diff, ok := SubUint64(5, 3)
	assert.True(t, ok)
	assert.Equal(t, uint64(2), diff)

	_, ok = SubUint64(3, 5)
	assert.False(t, ok)
}
