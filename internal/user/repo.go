package user

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound     = errors.New("user not found")
	ErrAlreadyExist = errors.New("username or email already exists")
)

type Repository interface {
	Create(ctx context.Context, username, passwordHash string, p Profile) (int64, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	UpdateProfile(ctx context.Context, id int64, p Profile, newPasswordHash string) error
}

type PGRepo struct{ db *pgxpool.Pool }

func NewPGRepo(db *pgxpool.Pool) *PGRepo { return &PGRepo{db: db} }

// Create inserts the account row and its customer profile in one transaction.
func (r *PGRepo) Create(ctx context.Context, username, passwordHash string, p Profile) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var taken bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE username = $1
			UNION
			SELECT 1 FROM customers WHERE email = $2
		)
	`, username, p.Email).Scan(&taken)
	if err != nil {
		return 0, err
	}
	if taken {
		return 0, ErrAlreadyExist
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id int64
	if err := tx.QueryRow(ctx, `
		INSERT INTO users (username, password_hash, role, created_at)
		VALUES ($1,$2,'CUSTOMER',NOW())
		RETURNING user_id
	`, username, passwordHash).Scan(&id); err != nil {
		return 0, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO customers (user_id, first_name, last_name, email, phone, address)
		VALUES ($1,$2,$3,$4,$5,$6)
	`, id, p.FirstName, p.LastName, p.Email, p.Phone, p.Address); err != nil {
		// UNIQUE on email can still fire under a concurrent signup
		return 0, ErrAlreadyExist
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return id, nil
}

const userSelect = `
	SELECT u.user_id, u.username, u.role, u.password_hash, u.created_at,
	       COALESCE(c.first_name, ''), COALESCE(c.last_name, ''),
	       COALESCE(c.email, ''), COALESCE(c.phone, ''), COALESCE(c.address, '')
	FROM users u
	LEFT JOIN customers c ON u.user_id = c.user_id`

func scanUser(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.Role, &u.PasswordHash, &u.CreatedAt,
		&u.FirstName, &u.LastName, &u.Email, &u.Phone, &u.Address)
	if err != nil {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, userSelect+` WHERE u.user_id = $1`, id))
}

func (r *PGRepo) GetByUsername(ctx context.Context, username string) (*User, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return scanUser(r.db.QueryRow(ctx, userSelect+` WHERE u.username = $1`, username))
}

// UpdateProfile merges non-empty profile fields and, when newPasswordHash is
// set, rotates the stored hash.
func (r *PGRepo) UpdateProfile(ctx context.Context, id int64, p Profile, newPasswordHash string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE customers
		SET first_name = COALESCE(NULLIF($2, ''), first_name),
		    last_name  = COALESCE(NULLIF($3, ''), last_name),
		    email      = COALESCE(NULLIF($4, ''), email),
		    phone      = COALESCE(NULLIF($5, ''), phone),
		    address    = COALESCE(NULLIF($6, ''), address)
		WHERE user_id = $1
	`, id, p.FirstName, p.LastName, p.Email, p.Phone, p.Address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if newPasswordHash != "" {
		if _, err := tx.Exec(ctx, `
			UPDATE users SET password_hash = $2 WHERE user_id = $1
		`, id, newPasswordHash); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
