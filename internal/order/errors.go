package order

import "errors"

// Checkout failure kinds. Every one of them aborts the transaction; the
// caller never observes a partially applied order.
var (
	ErrInvalidPayment    = errors.New("invalid credit card number: must be 16 digits")
	ErrEmptyCart         = errors.New("cart is empty or invalid")
	ErrBookNotFound      = errors.New("book not found")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrInsufficientStock = errors.New("not enough stock")
	ErrNegativeStock     = errors.New("stock would go negative")
	ErrTransactionFailed = errors.New("transaction failed")
)

// ErrNotFound is returned by the ledger read side for unknown orders.
var ErrNotFound = errors.New("order not found")
