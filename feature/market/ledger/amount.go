package ledger

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Amount is a non-negative monetary value in the smallest unit of the
// settlement currency, 256 bits wide like the on-chain original. The zero
// value is 0. Amounts are comparable with ==.
type Amount struct {
	v uint256.Int
}

// MaxAmount is 2^256 - 1.
var MaxAmount = Amount{v: *new(uint256.Int).SetAllOne()}

// NewAmount returns n as an Amount.
func NewAmount(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// AmountFromInt copies x into an Amount.
func AmountFromInt(x *uint256.Int) Amount {
	return Amount{v: *x}
}

// ParseAmount parses a base-10 integer string.
func ParseAmount(s string) (Amount, error) {
	x, err := uint256.FromDecimal(strings.TrimSpace(s))
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Amount{v: *x}, nil
}

// MustParseAmount is ParseAmount for constants; it panics on bad input.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Int returns a copy of the value.
func (a Amount) Int() *uint256.Int {
	return new(uint256.Int).Set(&a.v)
}

func (a Amount) IsZero() bool {
	return a.v.IsZero()
}

// Cmp returns -1, 0 or +1 as a is less than, equal to or greater than b.
func (a Amount) Cmp(b Amount) int {
	return a.v.Cmp(&b.v)
}

// Add returns a+b and false if the sum does not fit in 256 bits.
func (a Amount) Add(b Amount) (Amount, bool) {
	var z Amount
	_, overflow := z.v.AddOverflow(&a.v, &b.v)
	return z, !overflow
}

// Sub returns a-b and false if b is greater than a.
func (a Amount) Sub(b Amount) (Amount, bool) {
	var z Amount
	_, underflow := z.v.SubOverflow(&a.v, &b.v)
	return z, !underflow
}

func (a Amount) String() string {
	return a.v.Dec()
}

// MarshalJSON encodes the amount as a decimal string; numbers this wide do
// not survive float64 JSON decoders.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON accepts a decimal string or a bare integer.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		*a = Amount{}
		return nil
	}
	parsed, err := ParseAmount(strings.Trim(s, `"`))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value stores the amount as a decimal string.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan reads a decimal string column.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Amount{}
		return nil
	case string:
		return a.scanString(v)
	case []byte:
		return a.scanString(string(v))
	case int64:
		if v < 0 {
			return fmt.Errorf("negative amount %d", v)
		}
		*a = NewAmount(uint64(v))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Amount", src)
	}
}

func (a *Amount) scanString(s string) error {
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
