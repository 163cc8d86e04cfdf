// Package book provides the repository interface and PostgreSQL implementation for the catalog.
package book

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("book not found")
	ErrAlreadyExist = errors.New("book with this ISBN already exists")
)

type Repository interface {
	Search(ctx context.Context, q SearchQuery) (*SearchResult, error)
	GetByISBN(ctx context.Context, isbn string) (*Book, error)
	ListAuthors(ctx context.Context) ([]Author, error)
	Create(ctx context.Context, b *Book, authors []string) error
	Update(ctx context.Context, isbn string, upd ModifyBookRequest) error
	Delete(ctx context.Context, isbn string) (bool, error)
	ListLowStock(ctx context.Context) ([]Book, error)
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

const bookColumns = `
	b.isbn, b.title, b.publication_year, b.price::text, b.stock, b.threshold,
	COALESCE(b.publisher_id, 0), COALESCE(p.name, ''), b.category, b.image,
	COALESCE(string_agg(DISTINCT a.name, ', '), ''), b.created_at, b.updated_at`

const bookJoins = `
	FROM books b
	LEFT JOIN publishers p ON b.publisher_id = p.publisher_id
	LEFT JOIN book_authors ba ON b.isbn = ba.isbn
	LEFT JOIN authors a ON ba.author_id = a.author_id`

const bookFilters = `
	WHERE ($1 = '' OR b.isbn = $1)
	  AND ($2 = '' OR b.title ILIKE '%'||$2||'%')
	  AND ($3 = '' OR b.category = $3)
	  AND ($4 = '' OR a.name ILIKE '%'||$4||'%')
	  AND ($5 = '' OR p.name ILIKE '%'||$5||'%')`

func scanBook(row pgx.Rows, b *Book) error {
	return row.Scan(&b.ISBN, &b.Title, &b.PublicationYear, &b.Price, &b.Stock, &b.Threshold,
		&b.PublisherID, &b.Publisher, &b.Category, &b.Image, &b.Authors, &b.CreatedAt, &b.UpdatedAt)
}

func (r *PGRepo) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	page := q.Page
	if page < 1 {
		page = 1
	}
	limit := q.Limit
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	offset := (page - 1) * limit

	args := []any{
		strings.TrimSpace(q.ISBN), strings.TrimSpace(q.Title), strings.TrimSpace(q.Category),
		strings.TrimSpace(q.Author), strings.TrimSpace(q.Publisher),
	}

	var total int
	if err := r.db.QueryRow(ctx,
		`SELECT COUNT(DISTINCT b.isbn)`+bookJoins+bookFilters, args...).Scan(&total); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx,
		`SELECT`+bookColumns+bookJoins+bookFilters+`
		GROUP BY b.isbn, p.name
		ORDER BY b.created_at DESC
		LIMIT $6 OFFSET $7`,
		append(args, limit, offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		var b Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	return &SearchResult{Books: books, Total: total, Page: page, Limit: limit, TotalPages: totalPages}, nil
}

func (r *PGRepo) GetByISBN(ctx context.Context, isbn string) (*Book, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT`+bookColumns+bookJoins+`
		WHERE b.isbn = $1
		GROUP BY b.isbn, p.name`, isbn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, ErrNotFound
	}
	var b Book
	if err := scanBook(rows, &b); err != nil {
		return nil, err
	}
	return &b, rows.Err()
}

func (r *PGRepo) ListAuthors(ctx context.Context) ([]Author, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx, `SELECT author_id, name FROM authors ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Author
	for rows.Next() {
		var a Author
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Create inserts the book together with its author links. Authors and a
// named publisher are upserted by name inside the same transaction.
func (r *PGRepo) Create(ctx context.Context, b *Book, authors []string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM books WHERE isbn = $1)`, b.ISBN).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrAlreadyExist
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	publisherID := b.PublisherID
	if publisherID == 0 && b.Publisher != "" {
		if err := tx.QueryRow(ctx, `
			INSERT INTO publishers (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING publisher_id
		`, b.Publisher).Scan(&publisherID); err != nil {
			return err
		}
	}

	var pubArg any
	if publisherID != 0 {
		pubArg = publisherID
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO books (isbn, title, publication_year, price, stock, threshold, publisher_id, category, image, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW())
	`, b.ISBN, b.Title, b.PublicationYear, b.Price, b.Stock, b.Threshold, pubArg, b.Category, b.Image); err != nil {
		return err
	}

	for _, name := range authors {
		if name == "" {
			continue
		}
		var authorID int64
		if err := tx.QueryRow(ctx, `
			INSERT INTO authors (name) VALUES ($1)
			ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
			RETURNING author_id
		`, name).Scan(&authorID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO book_authors (isbn, author_id) VALUES ($1,$2)
			ON CONFLICT DO NOTHING
		`, b.ISBN, authorID); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *PGRepo) Update(ctx context.Context, isbn string, upd ModifyBookRequest) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tag, err := r.db.Exec(ctx, `
		UPDATE books
		SET title = COALESCE($2, title),
		    publication_year = COALESCE($3, publication_year),
		    price = COALESCE($4::numeric, price),
		    stock = COALESCE($5, stock),
		    threshold = COALESCE($6, threshold),
		    publisher_id = COALESCE($7, publisher_id),
		    category = COALESCE($8, category),
		    image = COALESCE($9, image),
		    updated_at = NOW()
		WHERE isbn = $1
	`, isbn, upd.Title, upd.PublicationYear, upd.Price, upd.Stock, upd.Threshold, upd.PublisherID, upd.Category, upd.Image)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) Delete(ctx context.Context, isbn string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cmd, err := r.db.Exec(ctx, `DELETE FROM books WHERE isbn = $1`, isbn)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *PGRepo) ListLowStock(ctx context.Context) ([]Book, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.Query(ctx,
		`SELECT`+bookColumns+bookJoins+`
		WHERE b.stock < b.threshold
		GROUP BY b.isbn, p.name
		ORDER BY b.stock ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Book
	for rows.Next() {
		var b Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
