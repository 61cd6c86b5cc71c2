package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/url-shortener-go/internal/shortener"
)

const (
	codeConstraint = "short_urls_code_key"
	hashConstraint = "short_urls_url_hash_key"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS short_urls (
		id           BIGSERIAL PRIMARY KEY,
		code         VARCHAR(10) NOT NULL,
		original_url TEXT NOT NULL,
		url_hash     CHAR(64),
		created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT short_urls_code_key UNIQUE (code)
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS short_urls_url_hash_key
		ON short_urls (url_hash) WHERE url_hash IS NOT NULL`,
}

// MigratePostgres creates the short_urls schema if it does not exist.
func MigratePostgres(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range migrations {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}

// PostgresStore is a PostgreSQL implementation of shortener.Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed URL store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (p *PostgresStore) Insert(ctx context.Context, mapping shortener.Mapping) (*shortener.Mapping, error) {
	query := `
		INSERT INTO short_urls (code, original_url, url_hash, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	if mapping.CreatedAt.IsZero() {
		mapping.CreatedAt = time.Now().UTC()
	}

	err := p.pool.QueryRow(ctx, query,
		string(mapping.Code),
		mapping.OriginalURL,
		nullableString(mapping.URLHash),
		mapping.CreatedAt,
	).Scan(&mapping.ID, &mapping.CreatedAt)
	if err != nil {
		return nil, translateInsertError(err)
	}

	return &mapping, nil
}

func (p *PostgresStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.Mapping, error) {
	query := `
		SELECT id, code, original_url, url_hash, created_at
		FROM short_urls
		WHERE code = $1
	`

	return scanMapping(p.pool.QueryRow(ctx, query, string(code)))
}

func (p *PostgresStore) FindByURL(ctx context.Context, hash shortener.URLHash) (*shortener.Mapping, error) {
	query := `
		SELECT id, code, original_url, url_hash, created_at
		FROM short_urls
		WHERE url_hash = $1
	`

	return scanMapping(p.pool.QueryRow(ctx, query, string(hash)))
}

// List returns up to limit mappings, newest first.
func (p *PostgresStore) List(ctx context.Context, limit int) ([]*shortener.Mapping, error) {
	if limit <= 0 {
		return []*shortener.Mapping{}, nil
	}

	query := `
		SELECT id, code, original_url, url_hash, created_at
		FROM short_urls
		ORDER BY id DESC
		LIMIT $1
	`

	rows, err := p.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*shortener.Mapping, 0, limit)

	for rows.Next() {
		mapping, err := scanMapping(rows)
		if err != nil {
			return nil, err
		}

		result = append(result, mapping)
	}

	return result, rows.Err()
}

func scanMapping(row pgx.Row) (*shortener.Mapping, error) {
	var mapping shortener.Mapping

	var urlHash *string

	err := row.Scan(
		&mapping.ID,
		&mapping.Code,
		&mapping.OriginalURL,
		&urlHash,
		&mapping.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shortener.ErrNotFound
		}

		return nil, err
	}

	if urlHash != nil {
		mapping.URLHash = shortener.URLHash(*urlHash)
	}

	return &mapping, nil
}

func translateInsertError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return err
	}

	switch pgErr.ConstraintName {
	case codeConstraint:
		return fmt.Errorf("%w: %s", shortener.ErrDuplicateCode, pgErr.Detail)
	case hashConstraint:
		return shortener.ErrDuplicateURL
	default:
		return err
	}
}

func nullableString(s shortener.URLHash) *string {
	if s == "" {
		return nil
	}

	str := string(s)

	return &str
}

// Compile-time check.
var _ shortener.Repository = (*PostgresStore)(nil)
