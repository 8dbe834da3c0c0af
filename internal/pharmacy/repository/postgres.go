package repository

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/medflow/medsupply-backend/pkg/database"
)

// Schema creates the table PostgresKV reads and writes. Values are TEXT
// rather than JSONB so a corrupt record can still be stored and read back.
const Schema = `
	CREATE TABLE IF NOT EXISTS pharmacy_state (
		key        VARCHAR(255) PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)
`

// PostgresKV stores records as rows of pharmacy_state
type PostgresKV struct {
	db *database.DB
}

// NewPostgresKV creates a PostgreSQL backed store
func NewPostgresKV(db *database.DB) *PostgresKV {
	return &PostgresKV{db: db}
}

// Migrate creates the table if needed
func (p *PostgresKV) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to create pharmacy_state: %w", err)
	}
	return nil
}

type kvRow struct {
	Key   string `db:"key"`
	Value string `db:"value"`
}

func (p *PostgresKV) GetMany(ctx context.Context, keys []string) (map[string][]byte, error) {
	out := make(map[string][]byte, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	var rows []kvRow
	query := `SELECT key, value FROM pharmacy_state WHERE key = ANY($1)`
	if err := p.db.SelectContext(ctx, &rows, query, pq.Array(keys)); err != nil {
		return nil, fmt.Errorf("select pharmacy_state: %w", err)
	}

	for _, r := range rows {
		out[r.Key] = []byte(r.Value)
	}
	return out, nil
}

// SetMany upserts every record in one transaction. Keys are written in
// sorted order so concurrent writers lock rows consistently.
func (p *PostgresKV) SetMany(ctx context.Context, values map[string][]byte) error {
	if len(values) == 0 {
		return nil
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	query := `
		INSERT INTO pharmacy_state (key, value)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = NOW()
	`

	return p.db.Transaction(ctx, func(tx *sqlx.Tx) error {
		for _, k := range keys {
			if _, err := tx.ExecContext(ctx, query, k, string(values[k])); err != nil {
				return fmt.Errorf("upsert %s: %w", k, err)
			}
		}
		return nil
	})
}

func (p *PostgresKV) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	query := `DELETE FROM pharmacy_state WHERE key = ANY($1)`
	if _, err := p.db.ExecContext(ctx, query, pq.Array(keys)); err != nil {
		return fmt.Errorf("delete pharmacy_state: %w", err)
	}
	return nil
}

func (p *PostgresKV) Health(ctx context.Context) map[string]string {
	status := p.db.Health(ctx)
	status["backend"] = "postgres"
	return status
}
