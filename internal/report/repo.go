// Package report serves the read-only sales aggregates for the admin console.
package report

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNoData = errors.New("no data for this query")

type TopCustomer struct {
	UserID     int64  `json:"user_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	TotalSpent string `json:"total_spent"`
}

type TopBook struct {
	ISBN       string `json:"isbn"`
	Title      string `json:"title"`
	CopiesSold int    `json:"total_copies_sold"`
}

type ReplenishmentStats struct {
	Title         string `json:"title"`
	TimesOrdered  int    `json:"times_ordered"`
	TotalReceived int    `json:"total_quantity_received"`
}

type Repository interface {
	SalesLastMonth(ctx context.Context) (string, error)
	SalesByDate(ctx context.Context, date time.Time) (string, error)
	TopCustomers(ctx context.Context) ([]TopCustomer, error)
	TopBooks(ctx context.Context) ([]TopBook, error)
	Replenishment(ctx context.Context, isbn string) (*ReplenishmentStats, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) SalesLastMonth(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var total string
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_price), 0)::text
		FROM customer_orders
		WHERE date_trunc('month', order_date) = date_trunc('month', CURRENT_DATE - INTERVAL '1 month')
	`).Scan(&total)
	return total, err
}

func (r *PGRepo) SalesByDate(ctx context.Context, date time.Time) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var total string
	err := r.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_price), 0)::text
		FROM customer_orders
		WHERE order_date::date = $1::date
	`, date).Scan(&total)
	return total, err
}

// TopCustomers ranks customers by spend over the last three months, top five.
func (r *PGRepo) TopCustomers(ctx context.Context) ([]TopCustomer, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT c.user_id, c.first_name, c.last_name, c.email, SUM(co.total_price)::text AS total_spent
		FROM customer_orders co
		JOIN customers c ON co.customer_id = c.user_id
		WHERE co.order_date >= CURRENT_DATE - INTERVAL '3 months'
		GROUP BY c.user_id
		ORDER BY SUM(co.total_price) DESC
		LIMIT 5
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopCustomer
	for rows.Next() {
		var t TopCustomer
		if err := rows.Scan(&t.UserID, &t.FirstName, &t.LastName, &t.Email, &t.TotalSpent); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// TopBooks ranks books by copies sold over the last three months, top ten.
func (r *PGRepo) TopBooks(ctx context.Context) ([]TopBook, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT b.isbn, b.title, SUM(oi.quantity) AS total_copies_sold
		FROM order_items oi
		JOIN customer_orders co ON oi.order_id = co.order_id
		JOIN books b ON oi.isbn = b.isbn
		WHERE co.order_date >= CURRENT_DATE - INTERVAL '3 months'
		GROUP BY b.isbn
		ORDER BY total_copies_sold DESC
		LIMIT 10
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TopBook
	for rows.Next() {
		var t TopBook
		if err := rows.Scan(&t.ISBN, &t.Title, &t.CopiesSold); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PGRepo) Replenishment(ctx context.Context, isbn string) (*ReplenishmentStats, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s ReplenishmentStats
	err := r.db.QueryRow(ctx, `
		SELECT b.title, COUNT(po.order_id), COALESCE(SUM(po.quantity), 0)
		FROM publisher_orders po
		JOIN books b ON po.isbn = b.isbn
		WHERE po.isbn = $1 AND po.status = 'Received'
		GROUP BY b.isbn
	`, isbn).Scan(&s.Title, &s.TimesOrdered, &s.TotalReceived)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNoData
		}
		return nil, err
	}
	return &s, nil
}
