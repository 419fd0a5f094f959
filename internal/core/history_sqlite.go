package core

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteHistory stores history in a local SQLite file. The CLI uses it so
// runs are remembered between invocations without a database server.
type SQLiteHistory struct {
	conn  *sql.DB
	key   string
	limit int
}

// OpenSQLiteHistory opens (or creates) the SQLite file at path.
func OpenSQLiteHistory(ctx context.Context, path, key string, limit int) (*SQLiteHistory, error) {
	if key == "" {
		key = DefaultHistoryKey
	}
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite only supports one writer
	conn.SetMaxOpenConns(1)

	h := &SQLiteHistory{conn: conn, key: key, limit: limit}
	if err := h.migrate(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return h, nil
}

func (h *SQLiteHistory) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS generation_history (
			id TEXT PRIMARY KEY,
			history_key TEXT NOT NULL,
			category TEXT NOT NULL,
			record_count INTEGER NOT NULL,
			format TEXT NOT NULL,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_generation_history_key ON generation_history(history_key, created_at)`,
	}
	for _, m := range migrations {
		if _, err := h.conn.ExecContext(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (h *SQLiteHistory) Append(ctx context.Context, entry HistoryEntry) error {
	tx, err := h.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO generation_history (id, history_key, category, record_count, format, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entry.ID, h.key, entry.Category, entry.Count, entry.Format, entry.Timestamp.UnixNano(),
	); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM generation_history
		 WHERE history_key = ? AND id NOT IN (
			SELECT id FROM generation_history
			WHERE history_key = ?
			ORDER BY created_at DESC, rowid DESC
			LIMIT ?
		 )`,
		h.key, h.key, h.limit,
	); err != nil {
		return err
	}

	return tx.Commit()
}

func (h *SQLiteHistory) List(ctx context.Context) ([]HistoryEntry, error) {
	rows, err := h.conn.QueryContext(ctx,
		`SELECT id, category, record_count, format, created_at
		 FROM generation_history
		 WHERE history_key = ?
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`, h.key, h.limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]HistoryEntry, 0)
	for rows.Next() {
		var (
			e     HistoryEntry
			nanos int64
		)
		if err := rows.Scan(&e.ID, &e.Category, &e.Count, &e.Format, &nanos); err != nil {
			return nil, err
		}
		e.Timestamp = time.Unix(0, nanos)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (h *SQLiteHistory) Clear(ctx context.Context) error {
	_, err := h.conn.ExecContext(ctx, `DELETE FROM generation_history WHERE history_key = ?`, h.key)
	return err
}

func (h *SQLiteHistory) Close() error {
	return h.conn.Close()
}
