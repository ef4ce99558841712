// Package postgres provides the production vector index driver backed by
// PostgreSQL with the pgvector extension.
package postgres

import (
	"context"
	"database/sql"
	"sync"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/creatorlab/viralrag/internal/profile"
	"github.com/creatorlab/viralrag/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile

	// dimensions caches the embedding dimension per collection; the first
	// write to a collection fixes it.
	mu         sync.Mutex
	dimensions map[store.Kind]int
}

func NewDB(ctx context.Context, profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", profile.DSN)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Hour)
	db.SetConnMaxIdleTime(15 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	d := &DB{
		db:         db,
		profile:    profile,
		dimensions: make(map[store.Kind]int),
	}
	if err := d.migrate(ctx); err != nil {
		return nil, errors.Wrap(err, "failed to migrate schema")
	}
	return d, nil
}

func (d *DB) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS item (
			id TEXT NOT NULL,
			kind TEXT NOT NULL,
			primary_text TEXT NOT NULL,
			embedding vector NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			scope_tags TEXT[] NOT NULL DEFAULT '{}',
			created_ts BIGINT NOT NULL,
			reference_grade BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (kind, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_item_kind ON item (kind)`,
	}
	for _, stmt := range stmts {
		if _, err := d.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "exec %q", stmt)
		}
	}
	return nil
}

func (d *DB) Close() error {
	return d.db.Close()
}

// collectionDimension returns the fixed dimension for a collection, loading
// it from an existing row on first use. Zero means the collection is empty.
func (d *DB) collectionDimension(ctx context.Context, kind store.Kind) (int, error) {
	d.mu.Lock()
	if dim, ok := d.dimensions[kind]; ok {
		d.mu.Unlock()
		return dim, nil
	}
	d.mu.Unlock()

	var dim int
	err := d.db.QueryRowContext(ctx,
		`SELECT vector_dims(embedding) FROM item WHERE kind = $1 LIMIT 1`, string(kind)).Scan(&dim)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "failed to read collection dimension")
	}

	d.mu.Lock()
	d.dimensions[kind] = dim
	d.mu.Unlock()
	return dim, nil
}

func (d *DB) checkDimension(ctx context.Context, kind store.Kind, got int) error {
	dim, err := d.collectionDimension(ctx, kind)
	if err != nil {
		return err
	}
	if dim != 0 && dim != got {
		return errors.Wrapf(store.ErrDimensionMismatch,
			"collection %s expects dimension %d, got %d", kind, dim, got)
	}
	if dim == 0 {
		d.mu.Lock()
		d.dimensions[kind] = got
		d.mu.Unlock()
	}
	return nil
}
