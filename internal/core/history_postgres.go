package core

import (
	"context"
	"fmt"
	"time"

	"github.com/JonMunkholm/datagen/internal/config"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

const pgHistorySchema = `
CREATE TABLE IF NOT EXISTS generation_history (
	id           UUID PRIMARY KEY,
	history_key  TEXT NOT NULL,
	category     TEXT NOT NULL,
	record_count INTEGER NOT NULL,
	format       TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
	seq          BIGSERIAL
);
ALTER TABLE generation_history ADD COLUMN IF NOT EXISTS seq BIGSERIAL;
DROP INDEX IF EXISTS idx_generation_history_key;
CREATE INDEX IF NOT EXISTS idx_generation_history_order
	ON generation_history (history_key, created_at DESC, seq DESC);`

// seq breaks created_at ties so same-instant runs list newest first.
const pgHistoryOrder = `ORDER BY created_at DESC, seq DESC`

// PostgresHistory stores history in a PostgreSQL table, one row per run.
type PostgresHistory struct {
	pool  *pgxpool.Pool
	key   string
	limit int
}

// OpenPostgresHistory connects using the database config and ensures the table exists.
func OpenPostgresHistory(ctx context.Context, cfg config.DatabaseConfig, key string, limit int) (*PostgresHistory, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("postgres history: DATABASE_URL is not set")
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	h, err := NewPostgresHistory(ctx, pool, key, limit)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return h, nil
}

// NewPostgresHistory wraps an existing pool and ensures the table exists.
func NewPostgresHistory(ctx context.Context, pool *pgxpool.Pool, key string, limit int) (*PostgresHistory, error) {
	if key == "" {
		key = DefaultHistoryKey
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if _, err := pool.Exec(ctx, pgHistorySchema); err != nil {
		return nil, fmt.Errorf("migrate history table: %w", err)
	}
	return &PostgresHistory{pool: pool, key: key, limit: limit}, nil
}

func (p *PostgresHistory) Append(ctx context.Context, entry HistoryEntry) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		if err := insertHistoryRow(ctx, tx, p.key, entry); err != nil {
			return err
		}
		return trimHistory(ctx, tx, p.key, p.limit)
	})
}

func (p *PostgresHistory) List(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT id, category, record_count, format, created_at
		FROM generation_history
		WHERE history_key = $1
		`+pgHistoryOrder+`
		LIMIT $2`, p.key, p.limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var (
			id        pgtype.UUID
			entry     HistoryEntry
			createdAt time.Time
		)
		if err := rows.Scan(&id, &entry.Category, &entry.Count, &entry.Format, &createdAt); err != nil {
			return nil, err
		}
		if id.Valid {
			entry.ID = uuid.UUID(id.Bytes).String()
		}
		entry.Timestamp = createdAt
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (p *PostgresHistory) Clear(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM generation_history WHERE history_key = $1`, p.key)
	return err
}

func (p *PostgresHistory) Close() error {
	p.pool.Close()
	return nil
}

func insertHistoryRow(ctx context.Context, db DBTX, key string, entry HistoryEntry) error {
	id, err := uuid.Parse(entry.ID)
	if err != nil {
		return fmt.Errorf("history entry id: %w", err)
	}
	_, err = db.Exec(ctx, `
		INSERT INTO generation_history (id, history_key, category, record_count, format, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		pgtype.UUID{Bytes: id, Valid: true}, key, entry.Category, entry.Count, entry.Format, entry.Timestamp)
	return err
}

func trimHistory(ctx context.Context, db DBTX, key string, limit int) error {
	_, err := db.Exec(ctx, `
		DELETE FROM generation_history
		WHERE history_key = $1 AND id NOT IN (
			SELECT id FROM generation_history
			WHERE history_key = $1
			`+pgHistoryOrder+`
			LIMIT $2
		)`, key, limit)
	return err
}
