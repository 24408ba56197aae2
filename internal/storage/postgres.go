package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	createSlotsTable = `
        CREATE TABLE IF NOT EXISTS storage_slots (
            key        TEXT PRIMARY KEY,
            value      BYTEA NOT NULL,
            version    BIGINT NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
        )`
	getSlotQuery    = `SELECT value, version FROM storage_slots WHERE key = $1`
	insertSlotQuery = `INSERT INTO storage_slots (key, value, version, updated_at) VALUES ($1, $2, 1, now()) ON CONFLICT (key) DO NOTHING`
	updateSlotQuery = `UPDATE storage_slots SET value = $1, version = version + 1, updated_at = now() WHERE key = $2 AND version = $3`
)

// PostgresStore keeps slots as rows of storage_slots. The db is expected to
// be opened with the pgx stdlib driver.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the slots table when it is missing.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, createSlotsTable); err != nil {
		return fmt.Errorf("create storage_slots: %w", err)
	}
	return nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) (Record, error) {
	var rec Record
	err := p.db.QueryRowContext(ctx, getSlotQuery, key).Scan(&rec.Value, &rec.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrSlotNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("select slot %s: %w", key, err)
	}
	return rec, nil
}

func (p *PostgresStore) Put(ctx context.Context, key string, value []byte, expectedVersion int64) (Record, error) {
	var (
		res sql.Result
		err error
	)
	if expectedVersion == 0 {
		res, err = p.db.ExecContext(ctx, insertSlotQuery, key, value)
	} else {
		res, err = p.db.ExecContext(ctx, updateSlotQuery, value, key, expectedVersion)
	}
	if err != nil {
		return Record{}, fmt.Errorf("write slot %s: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Record{}, fmt.Errorf("write slot %s: %w", key, err)
	}
	if n == 0 {
		return Record{}, ErrVersionConflict
	}
	return Record{Value: append([]byte(nil), value...), Version: expectedVersion + 1}, nil
}
