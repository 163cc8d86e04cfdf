// Package recommend produces best-effort catalog suggestions: books sharing
// an author or category with the customer's previous purchases, with a
// stock-ordered fallback for customers without history.
package recommend

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Recommendation struct {
	ISBN     string `json:"isbn"`
	Title    string `json:"title"`
	Price    string `json:"price"`
	Category string `json:"category"`
	Reason   string `json:"reason"`
}

type Repository interface {
	ForCustomer(ctx context.Context, customerID int64, limit int) ([]Recommendation, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

func (r *PGRepo) ForCustomer(ctx context.Context, customerID int64, limit int) ([]Recommendation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if limit <= 0 || limit > 50 {
		limit = 10
	}

	purchased, err := r.purchasedISBNs(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if len(purchased) == 0 {
		return r.fallback(ctx, limit)
	}

	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT b.isbn, b.title, b.price::text, b.category
		FROM books b
		LEFT JOIN book_authors ba ON b.isbn = ba.isbn
		WHERE (
			ba.author_id IN (SELECT ba2.author_id FROM book_authors ba2 WHERE ba2.isbn = ANY($1))
			OR b.category IN (SELECT b2.category FROM books b2 WHERE b2.isbn = ANY($1) AND b2.category <> '')
		)
		AND NOT (b.isbn = ANY($1))
		LIMIT $2
	`, purchased, limit)
	if err != nil {
		// Recommendations are best effort; degrade instead of failing the request.
		log.Printf("[recommend] content query failed, using fallback: %v", err)
		return r.fallback(ctx, limit)
	}
	defer rows.Close()

	out, err := scanRecommendations(rows, "Similar to your previous purchases")
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return r.fallback(ctx, limit)
	}
	return out, nil
}

func (r *PGRepo) purchasedISBNs(ctx context.Context, customerID int64) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT DISTINCT oi.isbn
		FROM order_items oi
		JOIN customer_orders co ON oi.order_id = co.order_id
		WHERE co.customer_id = $1
	`, customerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var isbn string
		if err := rows.Scan(&isbn); err != nil {
			return nil, err
		}
		out = append(out, isbn)
	}
	return out, rows.Err()
}

func (r *PGRepo) fallback(ctx context.Context, limit int) ([]Recommendation, error) {
	rows, err := r.db.Query(ctx, `
		SELECT isbn, title, price::text, category
		FROM books
		ORDER BY stock DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRecommendations(rows, "Popular right now")
}

func scanRecommendations(rows pgx.Rows, reason string) ([]Recommendation, error) {
	out := []Recommendation{}
	for rows.Next() {
		var rec Recommendation
		if err := rows.Scan(&rec.ISBN, &rec.Title, &rec.Price, &rec.Category); err != nil {
			return nil, err
		}
		rec.Reason = reason
		out = append(out, rec)
	}
	return out, rows.Err()
}
