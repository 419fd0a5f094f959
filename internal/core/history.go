package core

// history.go records recent generation runs.
//
// Only a capped log of runs outlives a generation call: category, count,
// format and time. Entries are listed newest first and the store drops the
// oldest entries once the limit is exceeded.

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/JonMunkholm/datagen/internal/config"
)

// ErrHistoryNotFound is returned when a history entry ID does not exist.
var ErrHistoryNotFound = errors.New("history entry not found")

// DefaultHistoryLimit is the number of runs kept.
const DefaultHistoryLimit = 10

// DefaultHistoryKey is the fixed name history is stored under.
const DefaultHistoryKey = "dataGeneratorHistory"

// HistoryEntry describes one completed generation run.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Category  string    `json:"category"`
	Count     int       `json:"count"`
	Format    string    `json:"format"`
	Timestamp time.Time `json:"timestamp"`
}

// HistoryStore persists the capped run log.
type HistoryStore interface {
	// Append records an entry and trims the log to its limit.
	Append(ctx context.Context, entry HistoryEntry) error
	// List returns entries newest first.
	List(ctx context.Context) ([]HistoryEntry, error)
	// Clear removes every entry.
	Clear(ctx context.Context) error
	Close() error
}

// FindHistoryEntry looks up an entry by ID.
func FindHistoryEntry(ctx context.Context, store HistoryStore, id string) (HistoryEntry, error) {
	entries, err := store.List(ctx)
	if err != nil {
		return HistoryEntry{}, err
	}
	for _, e := range entries {
		if e.ID == id {
			return e, nil
		}
	}
	return HistoryEntry{}, fmt.Errorf("%w: %s", ErrHistoryNotFound, id)
}

// MemoryHistory keeps history in process memory.
type MemoryHistory struct {
	limit int

	mu      sync.RWMutex
	entries []HistoryEntry
}

// NewMemoryHistory creates an in-memory store keeping at most limit entries.
func NewMemoryHistory(limit int) *MemoryHistory {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &MemoryHistory{limit: limit}
}

func (m *MemoryHistory) Append(_ context.Context, entry HistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append([]HistoryEntry{entry}, m.entries...)
	if len(m.entries) > m.limit {
		m.entries = m.entries[:m.limit]
	}
	return nil
}

func (m *MemoryHistory) List(_ context.Context) ([]HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]HistoryEntry, len(m.entries))
	copy(out, m.entries)
	return out, nil
}

func (m *MemoryHistory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = nil
	m.mu.Unlock()
	return nil
}

func (m *MemoryHistory) Close() error { return nil }

// OpenHistory creates the store selected by cfg.History.Backend.
func OpenHistory(ctx context.Context, cfg *config.Config) (HistoryStore, error) {
	h := cfg.History
	switch strings.ToLower(h.Backend) {
	case "", config.BackendMemory:
		return NewMemoryHistory(h.Limit), nil
	case config.BackendPostgres:
		return OpenPostgresHistory(ctx, cfg.Database, h.Key, h.Limit)
	case config.BackendSQLite:
		return OpenSQLiteHistory(ctx, h.SQLitePath, h.Key, h.Limit)
	default:
		return nil, fmt.Errorf("unknown history backend: %s", h.Backend)
	}
}
