package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/datagen/internal/core"
)

type runOutput struct {
	stdout string
	stderr string
}

// run executes the CLI against an isolated SQLite history file.
func run(t *testing.T, dbPath string, args ...string) (runOutput, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--history-db", dbPath}, args...)
	err := Execute(t.Context(), full, &stdout, &stderr)
	return runOutput{stdout: stdout.String(), stderr: stderr.String()}, err
}

func mustRun(t *testing.T, dbPath string, args ...string) runOutput {
	t.Helper()
	out, err := run(t, dbPath, args...)
	if err != nil {
		t.Fatalf("datagen %s: %v\nstderr: %s", strings.Join(args, " "), err, out.stderr)
	}
	return out
}

func tempDB(t *testing.T) string {
	return filepath.Join(t.TempDir(), "history.db")
}

func TestGenerate_SeedIsReproducible(t *testing.T) {
	db := tempDB(t)
	args := []string{"generate", "--category", "business", "--count", "4", "--format", "csv", "--seed", "99"}

	first := mustRun(t, db, args...)
	second := mustRun(t, db, args...)

	if first.stdout != second.stdout {
		t.Errorf("seeded runs differ:\n%s\n---\n%s", first.stdout, second.stdout)
	}
	lines := strings.Split(strings.TrimSuffix(first.stdout, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines, want header + 4 rows", len(lines))
	}
	if lines[0] != "id,company,employeeCount,revenue,industry,founded" {
		t.Errorf("header = %q", lines[0])
	}
	if !strings.Contains(first.stderr, "4 records") || !strings.Contains(first.stderr, "seed 99") {
		t.Errorf("summary line missing from stderr: %q", first.stderr)
	}
}

func TestGenerate_OutputFile(t *testing.T) {
	db := tempDB(t)
	path := filepath.Join(t.TempDir(), "people.json")

	out := mustRun(t, db, "generate", "-c", "personal", "-n", "2", "-f", "json", "-o", path)
	if out.stdout != "" {
		t.Errorf("stdout should be empty when writing a file, got %q", out.stdout)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var records []map[string]any
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("got %d records, want 2", len(records))
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want error
	}{
		{"zero count", []string{"generate", "--count", "0"}, core.ErrInvalidCount},
		{"negative count", []string{"generate", "--count=-3"}, core.ErrInvalidCount},
		{"unknown category", []string{"generate", "--category", "medical"}, core.ErrUnknownCategory},
		{"unknown format", []string{"generate", "--format", "parquet"}, core.ErrUnknownFormat},
		{"bad schema", []string{"schema", "--schema", `{"a": "number|1,2",}`}, core.ErrInvalidSchemaSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := run(t, tempDB(t), tt.args...)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if out.stdout != "" {
				t.Errorf("failed run wrote output: %q", out.stdout)
			}
		})
	}
}

func TestSchema_Inline(t *testing.T) {
	out := mustRun(t, tempDB(t), "schema", "--schema", `{"greeting": "string|hello"}`, "--count", "1")

	want := "[\n  {\n    \"greeting\": \"hello\"\n  }\n]\n"
	if out.stdout != want {
		t.Errorf("stdout = %q, want %q", out.stdout, want)
	}
}

func TestSchema_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	schema := "score: number|5,5\nstatus: string|active\nmystery: bogus\n"
	if err := os.WriteFile(path, []byte(schema), 0o644); err != nil {
		t.Fatal(err)
	}

	out := mustRun(t, tempDB(t), "schema", "--file", path, "--count", "2", "--format", "csv")

	want := "score,status,mystery\n5,active,Unknown\n5,active,Unknown\n"
	if out.stdout != want {
		t.Errorf("stdout = %q, want %q", out.stdout, want)
	}
}

func TestSchema_RequiresSource(t *testing.T) {
	if _, err := run(t, tempDB(t), "schema"); err == nil {
		t.Fatal("expected error without --file or --schema")
	}
}

func TestHistory_ListReplayClear(t *testing.T) {
	db := tempDB(t)
	mustRun(t, db, "generate", "-c", "geographic", "-n", "3", "-f", "xml")
	mustRun(t, db, "schema", "--schema", `{"who": "firstName"}`, "-n", "1")

	out := mustRun(t, db, "history", "list", "--json")
	var entries []core.HistoryEntry
	if err := json.Unmarshal([]byte(out.stdout), &entries); err != nil {
		t.Fatalf("history json: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Category != core.CustomCategory || entries[1].Category != "geographic" {
		t.Fatalf("entries not newest first: %+v", entries)
	}

	table := mustRun(t, db, "history", "list")
	if !strings.Contains(table.stdout, "geographic") || !strings.Contains(table.stdout, "CATEGORY") {
		t.Errorf("history table = %q", table.stdout)
	}

	replayed := mustRun(t, db, "history", "replay", entries[1].ID)
	if !strings.HasPrefix(replayed.stdout, `<?xml version="1.0" encoding="UTF-8"?>`) {
		t.Errorf("replay output = %q", replayed.stdout)
	}

	if _, err := run(t, db, "history", "replay", entries[0].ID); !errors.Is(err, core.ErrNotReplayable) {
		t.Errorf("custom replay err = %v, want ErrNotReplayable", err)
	}

	mustRun(t, db, "history", "clear")
	cleared := mustRun(t, db, "history", "list")
	if strings.TrimSpace(cleared.stdout) != "No history yet" {
		t.Errorf("after clear = %q", cleared.stdout)
	}
}

func TestHistory_MemoryBackend(t *testing.T) {
	out := mustRun(t, tempDB(t), "--history-backend", "memory", "history", "list")
	if strings.TrimSpace(out.stdout) != "No history yet" {
		t.Errorf("stdout = %q", out.stdout)
	}
}

func TestHistory_BackendFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      string
		flags    []string
		wantKept bool
	}{
		{"env unset uses sqlite", "", nil, true},
		{"env memory is respected", "memory", nil, false},
		{"flag overrides env", "memory", []string{"--history-backend", "sqlite"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HISTORY_BACKEND", tt.env)
			db := tempDB(t)

			mustRun(t, db, append(tt.flags, "generate", "-c", "internet", "-n", "1")...)
			out := mustRun(t, db, append(tt.flags, "history", "list")...)

			kept := strings.Contains(out.stdout, "internet")
			if kept != tt.wantKept {
				t.Errorf("history kept = %v, want %v; stdout = %q", kept, tt.wantKept, out.stdout)
			}
		})
	}
}

func TestCategoriesAndFormats(t *testing.T) {
	cats := mustRun(t, tempDB(t), "categories")
	for _, c := range core.Categories() {
		if !strings.Contains(cats.stdout, c.Key) {
			t.Errorf("categories missing %q", c.Key)
		}
	}

	formats := mustRun(t, tempDB(t), "formats")
	for _, want := range []string{"json", ".csv", "application/xml", "sql"} {
		if !strings.Contains(formats.stdout, want) {
			t.Errorf("formats missing %q", want)
		}
	}
}

func TestVersion(t *testing.T) {
	oldVersion, oldCommit := Version, Commit
	t.Cleanup(func() { Version, Commit = oldVersion, oldCommit })
	Version, Commit = "dev", ""

	out := mustRun(t, tempDB(t), "version")
	if out.stdout != "datagen dev\n" {
		t.Errorf("version = %q", out.stdout)
	}
}
