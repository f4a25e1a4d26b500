package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres persists setup and waitlist records in two small tables:
// a key/jsonb settings table and an append-only signup table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPool connects to databaseURL and verifies the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL not set")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return pool, nil
}

// NewPostgres wraps an existing pool and ensures the schema exists.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	p := &Postgres{pool: pool}
	if err := p.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return p, nil
}

func (p *Postgres) ensureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS demo_settings (
			key   TEXT PRIMARY KEY,
			value JSONB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS waitlist_signups (
			id        BIGSERIAL PRIMARY KEY,
			shop_name TEXT NOT NULL,
			phone     TEXT NOT NULL,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`)
	return err
}

func (p *Postgres) LoadSetup(ctx context.Context) (*SetupRecord, error) {
	var raw []byte
	err := p.pool.QueryRow(ctx,
		`SELECT value FROM demo_settings WHERE key = $1`, SetupKey).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load setup: %w", err)
	}

	var rec SetupRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("setup record corrupt: %w", err)
	}
	return &rec, nil
}

func (p *Postgres) SaveSetup(ctx context.Context, rec SetupRecord) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal setup record: %w", err)
	}
	_, err = p.pool.Exec(ctx, `
		INSERT INTO demo_settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		SetupKey, raw)
	if err != nil {
		return fmt.Errorf("save setup: %w", err)
	}
	return nil
}

func (p *Postgres) WaitlistJoined(ctx context.Context) (bool, error) {
	var joined bool
	err := p.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM demo_settings WHERE key = $1)`,
		WaitlistKey).Scan(&joined)
	if err != nil {
		return false, fmt.Errorf("waitlist flag: %w", err)
	}
	return joined, nil
}

func (p *Postgres) JoinWaitlist(ctx context.Context, entry WaitlistEntry) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO waitlist_signups (shop_name, phone, joined_at)
		VALUES ($1, $2, $3)`,
		entry.ShopName, entry.Phone, entry.JoinedAt)
	if err != nil {
		return fmt.Errorf("insert signup: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO demo_settings (key, value) VALUES ($1, 'true'::jsonb)
		ON CONFLICT (key) DO NOTHING`,
		WaitlistKey)
	if err != nil {
		return fmt.Errorf("set waitlist flag: %w", err)
	}

	return tx.Commit(ctx)
}
