package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/JonMunkholm/datagen/internal/config"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
)

func entryAt(i int) HistoryEntry {
	return HistoryEntry{
		ID:        uuid.New().String(),
		Category:  "personal",
		Count:     i,
		Format:    "json",
		Timestamp: testNow.Add(time.Duration(i) * time.Minute),
	}
}

// exerciseHistoryStore runs the behavior every backend must share.
func exerciseHistoryStore(t *testing.T, store HistoryStore, limit int) {
	t.Helper()
	ctx := t.Context()

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List on empty store: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("new store has %d entries", len(entries))
	}

	var appended []HistoryEntry
	for i := 1; i <= limit+3; i++ {
		e := entryAt(i)
		appended = append(appended, e)
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}

	entries, err = store.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}

	want := make([]HistoryEntry, 0, limit)
	for i := len(appended) - 1; i >= len(appended)-limit; i-- {
		want = append(want, appended[i])
	}
	opt := cmpopts.EquateApproxTime(time.Millisecond)
	if diff := cmp.Diff(want, entries, opt); diff != "" {
		t.Fatalf("entries mismatch (-want +got):\n%s", diff)
	}

	found, err := FindHistoryEntry(ctx, store, want[2].ID)
	if err != nil {
		t.Fatalf("FindHistoryEntry: %v", err)
	}
	if found.Count != want[2].Count {
		t.Errorf("found Count = %d, want %d", found.Count, want[2].Count)
	}
	if _, err := FindHistoryEntry(ctx, store, appended[0].ID); !errors.Is(err, ErrHistoryNotFound) {
		t.Errorf("trimmed entry lookup err = %v, want ErrHistoryNotFound", err)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if entries, _ := store.List(ctx); len(entries) != 0 {
		t.Errorf("after Clear: %d entries", len(entries))
	}

	// Runs recorded in the same instant still list newest first and trim oldest first
	var tied []HistoryEntry
	for i := 1; i <= limit+1; i++ {
		e := entryAt(i)
		e.Timestamp = testNow
		tied = append(tied, e)
		if err := store.Append(ctx, e); err != nil {
			t.Fatalf("Append tied %d: %v", i, err)
		}
	}
	entries, err = store.List(ctx)
	if err != nil {
		t.Fatalf("List tied: %v", err)
	}
	gotCounts := make([]int, 0, len(entries))
	for _, e := range entries {
		gotCounts = append(gotCounts, e.Count)
	}
	wantCounts := make([]int, 0, limit)
	for i := limit + 1; i >= 2; i-- {
		wantCounts = append(wantCounts, i)
	}
	if diff := cmp.Diff(wantCounts, gotCounts); diff != "" {
		t.Errorf("tied entries order mismatch (-want +got):\n%s", diff)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
}

func TestMemoryHistory(t *testing.T) {
	exerciseHistoryStore(t, NewMemoryHistory(4), 4)
}

func TestMemoryHistory_ListIsCopy(t *testing.T) {
	h := NewMemoryHistory(2)
	_ = h.Append(t.Context(), entryAt(1))

	list, _ := h.List(t.Context())
	list[0].Category = "mutated"

	again, _ := h.List(t.Context())
	if again[0].Category != "personal" {
		t.Error("List exposed internal storage")
	}
}

func TestSQLiteHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	store, err := OpenSQLiteHistory(t.Context(), path, "", 5)
	if err != nil {
		t.Fatalf("OpenSQLiteHistory: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	exerciseHistoryStore(t, store, 5)
}

func TestSQLiteHistory_PersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := t.Context()

	first, err := OpenSQLiteHistory(ctx, path, "k", 10)
	if err != nil {
		t.Fatal(err)
	}
	e := entryAt(1)
	if err := first.Append(ctx, e); err != nil {
		t.Fatal(err)
	}
	first.Close()

	second, err := OpenSQLiteHistory(ctx, path, "k", 10)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()

	entries, err := second.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ID != e.ID || !entries[0].Timestamp.Equal(e.Timestamp) {
		t.Errorf("entries = %+v, want [%+v]", entries, e)
	}
}

func TestSQLiteHistory_KeysAreIsolated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	ctx := t.Context()

	a, err := OpenSQLiteHistory(ctx, path, "a", 10)
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	b, err := OpenSQLiteHistory(ctx, path, "b", 10)
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()

	_ = a.Append(ctx, entryAt(1))
	if err := b.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	if entries, _ := a.List(ctx); len(entries) != 1 {
		t.Errorf("clearing key b removed entries from key a")
	}
	if entries, _ := b.List(ctx); len(entries) != 0 {
		t.Errorf("key b sees %d entries", len(entries))
	}
}

// TestPostgresHistory needs a disposable database in TEST_DATABASE_URL.
func TestPostgresHistory(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	cfg := config.DatabaseConfig{
		URL:             url,
		MaxConns:        2,
		MinConns:        1,
		MaxConnLifetime: time.Minute,
		MaxConnIdleTime: time.Minute,
	}
	key := fmt.Sprintf("test-%s", uuid.NewString())
	store, err := OpenPostgresHistory(t.Context(), cfg, key, 3)
	if err != nil {
		t.Fatalf("OpenPostgresHistory: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Clear(context.Background())
		store.Close()
	})

	exerciseHistoryStore(t, store, 3)
}

func TestOpenPostgresHistory_RequiresURL(t *testing.T) {
	if _, err := OpenPostgresHistory(t.Context(), config.DatabaseConfig{}, "", 0); err == nil {
		t.Error("expected error without a database URL")
	}
}

func TestOpenHistory(t *testing.T) {
	tests := []struct {
		backend string
		wantErr bool
	}{
		{"", false},
		{config.BackendMemory, false},
		{"MEMORY", false},
		{config.BackendSQLite, false},
		{"redis", true},
	}

	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.History.Backend = tt.backend
			cfg.History.SQLitePath = filepath.Join(t.TempDir(), "h.db")

			store, err := OpenHistory(t.Context(), cfg)
			if tt.wantErr {
				if err == nil {
					store.Close()
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("OpenHistory: %v", err)
			}
			store.Close()
		})
	}
}
