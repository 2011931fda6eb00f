package ledger

import "github.com/holiman/uint256"

// CommissionPercent is the share of every sale credited to the operator.
const CommissionPercent = 10

var (
	commissionRate = uint256.NewInt(CommissionPercent)
	hundred        = uint256.NewInt(100)
)

// Commission returns floor(price * CommissionPercent / 100). The product is
// kept in 512 bits, so every 256-bit price is exact.
func Commission(price Amount) Amount {
	var c Amount
	c.v.MulDivOverflow(&price.v, commissionRate, hundred)
	return c
}

// Split returns the seller proceeds and operator commission for price.
func Split(price Amount) (proceeds, commission Amount) {
	commission = Commission(price)
	proceeds, _ = price.Sub(commission)
	return proceeds, commission
}
