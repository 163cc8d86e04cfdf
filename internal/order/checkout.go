package order

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// CartLine is a validated-on-entry cart position. Quantities and prices are
// checked against the inventory rows inside the checkout transaction.
type CartLine struct {
	ISBN     string
	Quantity int
}

// StockInfo is the point-in-time inventory view of one book.
type StockInfo struct {
	Price decimal.Decimal
	Stock int
}

// Confirmation references the committed order.
type Confirmation struct {
	OrderID int64
	Total   decimal.Decimal
}

// Inventory is the transaction-scoped view of the books table. DecrementStock
// must refuse any write that would drive stock below zero, independent of the
// service's own pre-check.
type Inventory interface {
	ReadStock(ctx context.Context, isbns []string) (map[string]StockInfo, error)
	DecrementStock(ctx context.Context, isbn string, quantity int) error
}

// Ledger appends order headers and line items within the same transaction as
// the stock decrements.
type Ledger interface {
	CreateOrder(ctx context.Context, customerID int64, total decimal.Decimal, at time.Time) (int64, error)
	AddItem(ctx context.Context, orderID int64, isbn string, quantity int, price decimal.Decimal) error
}

// Store runs fn inside one transaction: commit when fn returns nil, full
// rollback otherwise.
type Store interface {
	InTx(ctx context.Context, fn func(inv Inventory, led Ledger) error) error
}

var cardNumberRe = regexp.MustCompile(`^[0-9]{16}$`)

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// Checkout converts a cart into a persisted order plus matching stock
// decrements, or makes no persistent change at all. Prices come from the
// inventory rows read inside the transaction, never from the client.
func (s *Service) Checkout(ctx context.Context, customerID int64, cardNumber string, lines []CartLine) (*Confirmation, error) {
	// Shape checks happen before any storage access.
	if !cardNumberRe.MatchString(cardNumber) {
		return nil, ErrInvalidPayment
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}

	var conf Confirmation
	err := s.store.InTx(ctx, func(inv Inventory, led Ledger) error {
		stock, err := inv.ReadStock(ctx, distinctISBNs(lines))
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, ln := range lines {
			info, ok := stock[ln.ISBN]
			if !ok {
				return fmt.Errorf("%w: %s", ErrBookNotFound, ln.ISBN)
			}
			if ln.Quantity <= 0 {
				return fmt.Errorf("%w: %s", ErrInvalidQuantity, ln.ISBN)
			}
			if info.Stock < ln.Quantity {
				return fmt.Errorf("%w: %s", ErrInsufficientStock, ln.ISBN)
			}
			total = total.Add(info.Price.Mul(decimal.NewFromInt(int64(ln.Quantity))))
		}

		orderID, err := led.CreateOrder(ctx, customerID, total, s.now())
		if err != nil {
			return err
		}
		for _, ln := range lines {
			if err := led.AddItem(ctx, orderID, ln.ISBN, ln.Quantity, stock[ln.ISBN].Price); err != nil {
				return err
			}
			if err := inv.DecrementStock(ctx, ln.ISBN, ln.Quantity); err != nil {
				return err
			}
		}
		conf = Confirmation{OrderID: orderID, Total: total}
		return nil
	})
	if err != nil {
		return nil, asCheckoutError(err)
	}
	return &conf, nil
}

// asCheckoutError keeps the named failure kinds intact and folds everything
// else (commit failure, lock timeout, lost connection) into
// ErrTransactionFailed. Retrying is the caller's call: replaying a
// payment-bearing request without idempotency protection risks
// double-charging.
func asCheckoutError(err error) error {
	for _, kind := range []error{
		ErrInvalidPayment, ErrEmptyCart, ErrBookNotFound,
		ErrInvalidQuantity, ErrInsufficientStock, ErrNegativeStock,
	} {
		if errors.Is(err, kind) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrTransactionFailed, err)
}

// distinctISBNs returns the unique ISBNs in sorted order, so concurrent
// checkouts acquire their row locks in the same order.
func distinctISBNs(lines []CartLine) []string {
	seen := make(map[string]struct{}, len(lines))
	out := make([]string, 0, len(lines))
	for _, ln := range lines {
		if _, ok := seen[ln.ISBN]; ok {
			continue
		}
		seen[ln.ISBN] = struct{}{}
		out = append(out, ln.ISBN)
	}
	sort.Strings(out)
	return out
}
