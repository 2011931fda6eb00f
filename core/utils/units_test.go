package utils

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const maxWei = "115792089237316195423570985008687907853269984665640564039457584007913129639935"

func TestParseEther(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"1", "1000000000000000000", false},
		{"1.0", "1000000000000000000", false},
		{"0.9", "900000000000000000", false},
		{".1", "100000000000000000", false},
		{"0", "0", false},
		{"0.000000000000000001", "1", false},
		{" 2.5 ", "2500000000000000000", false},
		{"18", "18000000000000000000", false},
		{"19", "19000000000000000000", false},
		{"1000000", "1000000000000000000000000", false},
		{"115792089237316195423570985008687907853269984665640564039457.584007913129639935", maxWei, false},
		{"115792089237316195423570985008687907853269984665640564039457.584007913129639936", "", true},
		{"0.0000000000000000001", "", true},
		{"-1", "", true},
		{"+1", "", true},
		{"1e18", "", true},
		{"abc", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseEther(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Dec())
		})
	}
}

func TestFormatEther(t *testing.T) {
	wei := func(s string) *uint256.Int {
		v, err := uint256.FromDecimal(s)
		require.NoError(t, err)
		return v
	}

	assert.Equal(t, "1", FormatEther(wei("1000000000000000000")))
	assert.Equal(t, "0.9", FormatEther(wei("900000000000000000")))
	assert.Equal(t, "0.1", FormatEther(wei("100000000000000000")))
	assert.Equal(t, "0", FormatEther(wei("0")))
	assert.Equal(t, "0.000000000000000001", FormatEther(wei("1")))
	assert.Equal(t, "12.5", FormatEther(wei("12500000000000000000")))
	assert.Equal(t, "20", FormatEther(wei("20000000000000000000")))
	assert.Equal(t, "115792089237316195423570985008687907853269984665640564039457.584007913129639935", FormatEther(wei(maxWei)))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	assert.NoError(t, err)
	assert.Equal(t, uint64(42), id)

	_, err = ParseID("-1")
	assert.Error(t, err)
	_, err = ParseID("x")
	assert.Error(t, err)
}
