// Package restock implements the publisher reorder workflow: orders are
// placed for books that dropped below their threshold and confirming a
// delivery adds the quantity back onto the shelf.
package restock

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrBookNotFound     = errors.New("book not found")
	ErrStockSufficient  = errors.New("stock is not below the threshold")
	ErrDuplicatePending = errors.New("a pending restock order already exists for this book")
	ErrNotFound         = errors.New("restock order not found or already confirmed")
)

// ReorderQuantity is the fixed lot size ordered from a publisher.
const ReorderQuantity = 50

type Order struct {
	ID        int64     `json:"id"`
	ISBN      string    `json:"isbn"`
	Title     string    `json:"title"`
	Publisher string    `json:"publisher"`
	Quantity  int       `json:"orderQuantity"`
	Status    string    `json:"status"`
	Date      time.Time `json:"date"`
}

type Repository interface {
	ListAll(ctx context.Context) ([]Order, error)
	Place(ctx context.Context, isbn string) (int64, error)
	Confirm(ctx context.Context, id int64) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) ListAll(ctx context.Context) ([]Order, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT po.order_id, po.isbn, b.title, COALESCE(p.name, ''), po.quantity, po.status, po.order_date
		FROM publisher_orders po
		JOIN books b ON po.isbn = b.isbn
		LEFT JOIN publishers p ON b.publisher_id = p.publisher_id
		ORDER BY po.order_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Order
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.ISBN, &o.Title, &o.Publisher, &o.Quantity, &o.Status, &o.Date); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// Place creates a pending restock order for the book. The book must exist,
// its stock must be below its threshold, and at most one pending order per
// ISBN may exist at a time.
func (r *PGRepo) Place(ctx context.Context, isbn string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		publisherID *int64
		stock       int
		threshold   int
	)
	err = tx.QueryRow(ctx, `
		SELECT publisher_id, stock, threshold
		FROM books WHERE isbn = $1
		FOR UPDATE
	`, isbn).Scan(&publisherID, &stock, &threshold)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrBookNotFound
		}
		return 0, err
	}
	if stock >= threshold {
		return 0, ErrStockSufficient
	}

	var pending bool
	if err := tx.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM publisher_orders WHERE isbn = $1 AND status = 'Pending')
	`, isbn).Scan(&pending); err != nil {
		return 0, err
	}
	if pending {
		return 0, ErrDuplicatePending
	}

	var id int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO publisher_orders (isbn, publisher_id, quantity, status, order_date)
		VALUES ($1,$2,$3,'Pending',NOW())
		RETURNING order_id
	`, isbn, publisherID, ReorderQuantity).Scan(&id); err != nil {
		return 0, err
	}
	return id, tx.Commit(ctx)
}

// Confirm marks a pending order received and adds its quantity to the book's
// stock, both inside one transaction.
func (r *PGRepo) Confirm(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var (
		isbn     string
		quantity int
	)
	err = tx.QueryRow(ctx, `
		SELECT isbn, quantity
		FROM publisher_orders
		WHERE order_id = $1 AND status = 'Pending'
		FOR UPDATE
	`, id).Scan(&isbn, &quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE publisher_orders SET status = 'Received' WHERE order_id = $1
	`, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `
		UPDATE books SET stock = stock + $2, updated_at = NOW() WHERE isbn = $1
	`, isbn, quantity); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
