package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rinkore1/BookServer/internal/db"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("books: not found")

// Repository is the persistent store behind the catalog. The service
// depends on this interface so the breaker path can be exercised
// against in-memory fakes.
type Repository interface {
	GetByID(ctx context.Context, id string) (*Book, error)
	List(ctx context.Context, offset, limit int) ([]Book, error)
	SearchByTitle(ctx context.Context, keyword string, offset, limit int) ([]Book, error)
	TopByPopularity(ctx context.Context, limit int) ([]Book, error)
	Random(ctx context.Context, limit int) ([]Book, error)
	Create(ctx context.Context, b *Book) (string, error)
	Update(ctx context.Context, b *Book) error
	Delete(ctx context.Context, id string) error
}

type PostgresRepository struct {
	db *db.DB
}

func NewPostgresRepository(db *db.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const bookColumns = `id, title, author, popularity, created_at, updated_at`

func scanBook(row interface{ Scan(...any) error }) (*Book, error) {
	var (
		b  Book
		id uuid.UUID
	)
	err := row.Scan(&id, &b.Title, &b.Author, &b.Popularity, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	b.ID = id.String()
	return &b, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Book, error) {
	// a malformed id can never match a uuid column
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+bookColumns+` FROM books WHERE id = $1
	`, id)

	b, err := scanBook(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("books: get by id: %w", err)
	}
	return b, nil
}

func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]Book, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookColumns+` FROM books
		ORDER BY created_at DESC
		OFFSET $1 LIMIT $2
	`, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("books: list: %w", err)
	}
	return collect(rows)
}

func (r *PostgresRepository) SearchByTitle(ctx context.Context, keyword string, offset, limit int) ([]Book, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookColumns+` FROM books
		WHERE title ILIKE '%' || $1 || '%'
		ORDER BY created_at DESC
		OFFSET $2 LIMIT $3
	`, keyword, offset, limit)
	if err != nil {
		return nil, fmt.Errorf("books: search: %w", err)
	}
	return collect(rows)
}

func (r *PostgresRepository) TopByPopularity(ctx context.Context, limit int) ([]Book, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookColumns+` FROM books
		ORDER BY popularity DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("books: top: %w", err)
	}
	return collect(rows)
}

func (r *PostgresRepository) Random(ctx context.Context, limit int) ([]Book, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+bookColumns+` FROM books
		ORDER BY random()
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("books: random: %w", err)
	}
	return collect(rows)
}

func (r *PostgresRepository) Create(ctx context.Context, b *Book) (string, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO books (title, author, popularity)
		VALUES ($1, $2, $3)
		RETURNING id
	`, b.Title, b.Author, b.Popularity).Scan(&id)
	if err != nil {
		return "", fmt.Errorf("books: create: %w", err)
	}
	return id.String(), nil
}

func (r *PostgresRepository) Update(ctx context.Context, b *Book) error {
	if _, err := uuid.Parse(b.ID); err != nil {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET title = $2, author = $3, popularity = $4, updated_at = NOW()
		WHERE id = $1
	`, b.ID, b.Title, b.Author, b.Popularity)
	if err != nil {
		return fmt.Errorf("books: update: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("books: update: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrNotFound
	}

	res, err := r.db.ExecContext(ctx, `
		DELETE FROM books WHERE id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("books: delete: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("books: delete: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func collect(rows *sql.Rows) ([]Book, error) {
	defer rows.Close()

	result := make([]Book, 0)
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("books: scan: %w", err)
		}
		result = append(result, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("books: rows: %w", err)
	}
	return result, nil
}
