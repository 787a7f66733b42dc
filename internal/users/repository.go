package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Rinkore1/BookServer/internal/db"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

var (
	ErrNotFound          = errors.New("users: not found")
	ErrDuplicateUsername = errors.New("users: username already taken")
)

// User is a credential record. The plaintext password never reaches
// this package; only the digest is stored.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	HashVersion  string
	CreatedAt    time.Time
}

type Repository interface {
	Create(ctx context.Context, u *User) (string, error)
	FindByUsername(ctx context.Context, username string) (*User, error)
}

type PostgresRepository struct {
	db *db.DB
}

func NewPostgresRepository(db *db.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// uniqueViolation is the Postgres error code raised by the unique
// index on LOWER(username).
const uniqueViolation = "23505"

func (r *PostgresRepository) Create(ctx context.Context, u *User) (string, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, hash_version)
		VALUES ($1, $2, $3)
		RETURNING id
	`, u.Username, u.PasswordHash, u.HashVersion).Scan(&id)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return "", ErrDuplicateUsername
	}
	if err != nil {
		return "", fmt.Errorf("users: create: %w", err)
	}

	return id.String(), nil
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var (
		u  User
		id uuid.UUID
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, password_hash, hash_version, created_at
		FROM users
		WHERE LOWER(username) = LOWER($1)
	`, username).Scan(&id, &u.Username, &u.PasswordHash, &u.HashVersion, &u.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("users: find by username: %w", err)
	}

	u.ID = id.String()
	return &u, nil
}
