package utils

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// Decimals is the number of fractional digits of one whole currency unit.
const Decimals = 18

// ParseEther converts a decimal string such as "1", "0.9" or "1.25" into the
// smallest currency unit (1 = 10^18). It rejects negative values, exponent
// notation, more than Decimals fractional digits and amounts wider than
// 256 bits.
func ParseEther(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty amount")
	}
	if strings.ContainsAny(s, "eE+") {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q", s)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("invalid amount %q: negative", s)
	}

	wei := d.Shift(Decimals)
	if !wei.Equal(wei.Truncate(0)) {
		return nil, fmt.Errorf("invalid amount %q: more than %d decimals", s, Decimals)
	}
	v, overflow := uint256.FromBig(wei.BigInt())
	if overflow {
		return nil, fmt.Errorf("invalid amount %q: too large", s)
	}
	return v, nil
}

// FormatEther renders a smallest-unit amount as a decimal string without
// trailing zeros, e.g. 900000000000000000 -> "0.9".
func FormatEther(wei *uint256.Int) string {
	return decimal.NewFromBigInt(wei.ToBig(), -Decimals).String()
}

// ParseID parses a non-negative decimal identifier.
func ParseID(s string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
