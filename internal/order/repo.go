package order

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the read/admin side of the order ledger. Order rows are only
// ever created by the checkout transaction; this surface reads them and moves
// their status through the admin workflow.
type Repository interface {
	HistoryByCustomer(ctx context.Context, customerID int64) ([]HistoryRow, error)
	ListAll(ctx context.Context) ([]AdminOrder, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) HistoryByCustomer(ctx context.Context, customerID int64) ([]HistoryRow, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT co.order_id, co.order_date, co.status, co.total_price::text,
		       oi.isbn, b.title,
		       COALESCE(string_agg(DISTINCT a.name, ', '), ''),
		       COALESCE(p.name, ''),
		       oi.quantity, oi.price::text
		FROM customer_orders co
		JOIN order_items oi ON co.order_id = oi.order_id
		JOIN books b ON oi.isbn = b.isbn
		LEFT JOIN publishers p ON b.publisher_id = p.publisher_id
		LEFT JOIN book_authors ba ON b.isbn = ba.isbn
		LEFT JOIN authors a ON ba.author_id = a.author_id
		WHERE co.customer_id = $1
		GROUP BY co.order_id, b.isbn, p.name, oi.isbn, oi.quantity, oi.price
		ORDER BY co.order_date DESC, co.order_id DESC
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryRow
	for rows.Next() {
		var h HistoryRow
		if err := rows.Scan(&h.OrderID, &h.OrderDate, &h.Status, &h.Total,
			&h.ISBN, &h.Title, &h.Authors, &h.Publisher, &h.Quantity, &h.Price); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *PGRepo) ListAll(ctx context.Context) ([]AdminOrder, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT co.order_id, co.customer_id, co.order_date, co.total_price::text, co.status,
		       TRIM(c.first_name || ' ' || c.last_name), c.email, c.address
		FROM customer_orders co
		JOIN customers c ON co.customer_id = c.user_id
		ORDER BY co.order_date DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminOrder
	byID := map[int64]int{}
	ids := []int64{}
	for rows.Next() {
		var o AdminOrder
		if err := rows.Scan(&o.ID, &o.CustomerID, &o.OrderDate, &o.Total, &o.Status,
			&o.CustomerName, &o.Email, &o.ShippingAddress); err != nil {
			return nil, err
		}
		o.Items = []Item{}
		byID[o.ID] = len(out)
		ids = append(ids, o.ID)
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	itemRows, err := r.db.Query(ctx, `
		SELECT oi.order_id, oi.isbn, oi.quantity, oi.price::text, b.title
		FROM order_items oi
		JOIN books b ON oi.isbn = b.isbn
		WHERE oi.order_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var it Item
		if err := itemRows.Scan(&it.OrderID, &it.ISBN, &it.Quantity, &it.Price, &it.Title); err != nil {
			return nil, err
		}
		if idx, ok := byID[it.OrderID]; ok {
			out[idx].Items = append(out[idx].Items, it)
		}
	}
	return out, itemRows.Err()
}

func (r *PGRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE customer_orders
		SET status = $2
		WHERE order_id = $1
	`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
