package util

import (
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		raw    string
		digits string
		plus   bool
	}{
		{"+1 (415) 555-2671", "14155552671", true},
		{"  00 44 20 7946 0958 ", "00442079460958", false},
		{"＋４４ ２０", "4420", true},
		{"۰۹۱۲ ۳۴۵ ۶۷۸۹", "09123456789", false},
		{"٠١٢٣", "0123", false},
		{"९८४१२३४५६७", "9841234567", false},
		{"12+34", "1234", false},
		{"abc", "", false},
		{"+", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			digits, plus := NormalizePhone(tt.raw)
			assert.Equal(t, tt.digits, digits)
			assert.Equal(t, tt.plus, plus)
		})
	}
}

func TestFoldDigit(t *testing.T) {
	d, ok := FoldDigit('７')
	require.True(t, ok)
	assert.Equal(t, byte('7'), d)

	d, ok = FoldDigit('৫')
	require.True(t, ok)
	assert.Equal(t, byte('5'), d)

	_, ok = FoldDigit('x')
	assert.False(t, ok)

	assert.True(t, IsPlus('＋'))
	assert.False(t, IsPlus('-'))
}

func TestNewIDMonotonic(t *testing.T) {
	prev := NewID()
	for i := 0; i < 100; i++ {
		id := NewID()
		_, err := ulid.ParseStrict(id)
		require.NoError(t, err)
		assert.Greater(t, id, prev)
		prev = id
	}
}
