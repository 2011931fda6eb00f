package ledger

import (
	"strconv"
	"strings"
)

// ZeroAccount is the null address. It never owns an item.
const ZeroAccount Account = "0x0000000000000000000000000000000000000000"

// Account identifies a participant (owner, buyer, operator). The ledger
// stores and compares accounts in their normalized form.
type Account string

// NormalizeAccount trims s and lower-cases it, so "0xAbC" and " 0xabc " name
// the same account.
func NormalizeAccount(s string) Account {
	return Account(strings.ToLower(strings.TrimSpace(s)))
}

// Normalize returns the canonical form of a.
func (a Account) Normalize() Account {
	return NormalizeAccount(string(a))
}

// Valid reports whether the account can hold items or receive funds.
func (a Account) Valid() bool {
	n := a.Normalize()
	return n != "" && n != ZeroAccount
}

func (a Account) String() string {
	return string(a)
}

// ItemID is the sequential identifier assigned at mint time.
type ItemID uint64

func (id ItemID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Item is a single ledger entry.
type Item struct {
	ID          ItemID  `json:"id"`
	Owner       Account `json:"owner"`
	ResourceURI string  `json:"resource_uri"`
	ForSale     bool    `json:"for_sale"`
	// SalePrice is kept even when ForSale is false.
	SalePrice Amount `json:"sale_price"`
}

// Settlement describes the transfers of a single purchase.
// Proceeds + Commission always equals Payment.
type Settlement struct {
	ItemID     ItemID  `json:"item_id"`
	Payer      Account `json:"payer"`
	Payment    Amount  `json:"payment"`
	Seller     Account `json:"seller"`
	Proceeds   Amount  `json:"proceeds"`
	Operator   Account `json:"operator"`
	Commission Amount  `json:"commission"`
}
