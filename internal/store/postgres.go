// internal/store/postgres.go
//
// Postgres-backed Store for deployments that share saves across instances.
// The schema is created on open; there is a single table keyed by storage key.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS saves (
    key        TEXT PRIMARY KEY,
    code       TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

type postgresStore struct {
	pool *pgxpool.Pool
}

// OpenPostgres connects to connStr and ensures the saves table exists.
func OpenPostgres(ctx context.Context, connStr string) (Store, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	var username, database string
	if err := pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database); err != nil {
		pool.Close()
		return nil, fmt.Errorf("query postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create saves table: %w", err)
	}
	log.Info().Str("database", database).Str("user", username).Msg("connected to postgres")
	return &postgresStore{pool: pool}, nil
}

func (p *postgresStore) Get(ctx context.Context, key string) (string, bool, error) {
	var code string
	err := p.pool.QueryRow(ctx, `SELECT code FROM saves WHERE key = $1`, key).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get save %q: %w", key, err)
	}
	return code, true, nil
}

func (p *postgresStore) Set(ctx context.Context, key, value string) error {
	q := `
	INSERT INTO saves (key, code, updated_at) VALUES ($1, $2, now())
	ON CONFLICT (key) DO UPDATE SET code = $2, updated_at = now();
	`
	if _, err := p.pool.Exec(ctx, q, key, value); err != nil {
		return fmt.Errorf("set save %q: %w", key, err)
	}
	return nil
}

func (p *postgresStore) Remove(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM saves WHERE key = $1`, key); err != nil {
		return fmt.Errorf("remove save %q: %w", key, err)
	}
	return nil
}

func (p *postgresStore) Close() error {
	p.pool.Close()
	return nil
}
