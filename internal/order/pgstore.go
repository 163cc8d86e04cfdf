package order

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PGStore implements Store over a pgx pool. Each InTx call is one database
// transaction; the book rows a checkout touches are locked for its duration.
type PGStore struct{ db *pgxpool.Pool }

func NewPGStore(db *pgxpool.Pool) *PGStore { return &PGStore{db: db} }

func (s *PGStore) InTx(ctx context.Context, fn func(inv Inventory, led Ledger) error) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(&txInventory{tx: tx}, &txLedger{tx: tx}); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

type txInventory struct{ tx pgx.Tx }

// ReadStock locks the selected book rows until commit. Rows are locked in
// ISBN order so two checkouts with overlapping carts cannot deadlock; the
// second blocks on the first and then observes its decrements.
func (i *txInventory) ReadStock(ctx context.Context, isbns []string) (map[string]StockInfo, error) {
	rows, err := i.tx.Query(ctx, `
		SELECT isbn, price::text, stock
		FROM books
		WHERE isbn = ANY($1)
		ORDER BY isbn
		FOR UPDATE
	`, isbns)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]StockInfo, len(isbns))
	for rows.Next() {
		var (
			isbn, price string
			stock       int
		)
		if err := rows.Scan(&isbn, &price, &stock); err != nil {
			return nil, err
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return nil, err
		}
		out[isbn] = StockInfo{Price: p, Stock: stock}
	}
	return out, rows.Err()
}

// DecrementStock is the sole mutation entry point for stock and the hard
// enforcement of the non-negative invariant: the guarded UPDATE matches no
// row when the decrement would go below zero.
func (i *txInventory) DecrementStock(ctx context.Context, isbn string, quantity int) error {
	tag, err := i.tx.Exec(ctx, `
		UPDATE books
		SET stock = stock - $2, updated_at = NOW()
		WHERE isbn = $1 AND stock >= $2
	`, isbn, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNegativeStock, isbn)
	}
	return nil
}

type txLedger struct{ tx pgx.Tx }

func (l *txLedger) CreateOrder(ctx context.Context, customerID int64, total decimal.Decimal, at time.Time) (int64, error) {
	var id int64
	err := l.tx.QueryRow(ctx, `
		INSERT INTO customer_orders (customer_id, order_date, total_price, status)
		VALUES ($1,$2,$3,'Pending')
		RETURNING order_id
	`, customerID, at, total).Scan(&id)
	return id, err
}

func (l *txLedger) AddItem(ctx context.Context, orderID int64, isbn string, quantity int, price decimal.Decimal) error {
	_, err := l.tx.Exec(ctx, `
		INSERT INTO order_items (order_id, isbn, quantity, price)
		VALUES ($1,$2,$3,$4)
	`, orderID, isbn, quantity, price)
	return err
}
