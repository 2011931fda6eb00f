package ledger

import "errors"

// Validation errors.
var (
	ErrInvalidRecipient = errors.New("invalid recipient")
	ErrInvalidBuyer     = errors.New("invalid buyer")
	ErrInvalidOperator  = errors.New("invalid operator")
	ErrIncorrectPayment = errors.New("incorrect payment amount")
)

// State errors.
var (
	ErrNonexistentItem   = errors.New("nonexistent item")
	ErrNotForSale        = errors.New("item not for sale")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrBalanceOverflow   = errors.New("balance overflow")
)

// Authorization errors.
var (
	ErrNotAuthorized = errors.New("not authorized")
)

// IsValidation reports whether err was caused by bad input.
func IsValidation(err error) bool {
	return errors.Is(err, ErrInvalidRecipient) ||
		errors.Is(err, ErrInvalidBuyer) ||
		errors.Is(err, ErrInvalidOperator) ||
		errors.Is(err, ErrIncorrectPayment)
}

// IsState reports whether err was caused by the current state of an item or account.
func IsState(err error) bool {
	return errors.Is(err, ErrNotForSale) ||
		errors.Is(err, ErrInsufficientFunds) ||
		errors.Is(err, ErrBalanceOverflow)
}
