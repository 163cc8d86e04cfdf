// Package cart persists the per-customer shopping cart. The cart is a
// convenience cache: checkout revalidates everything against live inventory.
package cart

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrBookNotFound = errors.New("book not found")

type Line struct {
	CartID   int64  `json:"cart_id"`
	ISBN     string `json:"isbn"`
	Title    string `json:"title"`
	Price    string `json:"price"`
	Image    string `json:"image,omitempty"`
	Quantity int    `json:"quantity"`
}

type Repository interface {
	Add(ctx context.Context, userID int64, isbn string) error
	List(ctx context.Context, userID int64) ([]Line, error)
	Remove(ctx context.Context, userID, cartID int64) (bool, error)
	Clear(ctx context.Context, userID int64) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// Add puts one unit of the book into the cart, bumping the quantity when the
// line already exists.
func (r *PGRepo) Add(ctx context.Context, userID int64, isbn string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`, isbn).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return ErrBookNotFound
	}

	_, err := r.db.Exec(ctx, `
		INSERT INTO cart (user_id, isbn, quantity)
		VALUES ($1,$2,1)
		ON CONFLICT (user_id, isbn) DO UPDATE SET quantity = cart.quantity + 1
	`, userID, isbn)
	return err
}

func (r *PGRepo) List(ctx context.Context, userID int64) ([]Line, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `
		SELECT c.cart_id, c.isbn, b.title, b.price::text, b.image, c.quantity
		FROM cart c
		JOIN books b ON c.isbn = b.isbn
		WHERE c.user_id = $1
		ORDER BY c.cart_id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []Line{}
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.CartID, &l.ISBN, &l.Title, &l.Price, &l.Image, &l.Quantity); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

// Remove deletes a line only when it belongs to the caller.
func (r *PGRepo) Remove(ctx context.Context, userID, cartID int64) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM cart WHERE cart_id = $1 AND user_id = $2`, cartID, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) Clear(ctx context.Context, userID int64) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := r.db.Exec(ctx, `DELETE FROM cart WHERE user_id = $1`, userID)
	return err
}
