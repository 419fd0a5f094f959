package core

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/JonMunkholm/datagen/internal/config"
	"github.com/JonMunkholm/datagen/internal/logging"
	"github.com/google/uuid"
)

var (
	// ErrInvalidCount is returned for a record count that is not an integer >= 1.
	ErrInvalidCount = errors.New("invalid record count")

	// ErrTooManyRecords is returned when the count exceeds the configured maximum.
	ErrTooManyRecords = errors.New("too many records requested")

	// ErrNotReplayable is returned when a history entry cannot be regenerated.
	ErrNotReplayable = errors.New("history entry not replayable")
)

// SchemaFormat selects the syntax of custom schema text.
type SchemaFormat string

const (
	SchemaJSON SchemaFormat = "json"
	SchemaYAML SchemaFormat = "yaml"
)

// Request describes a built-in category run.
type Request struct {
	Category string
	Count    int
	Format   string

	// Seed makes the run reproducible when set. Dates still depend on the
	// service clock.
	Seed *uint64

	// Locale is accepted for forward compatibility and currently ignored:
	// sample pools are not localized.
	Locale string
}

// CustomRequest describes a schema-driven run.
type CustomRequest struct {
	Schema       string
	SchemaFormat SchemaFormat
	Count        int
	Format       string
	Seed         *uint64
	Locale       string
}

// Result is a serialized dataset plus the statistics shown alongside it.
type Result struct {
	Output      string        `json:"output"`
	Format      string        `json:"format"`
	Category    string        `json:"category"`
	RecordCount int           `json:"record_count"`
	Bytes       int           `json:"bytes"`
	Seed        uint64        `json:"seed"`
	Duration    time.Duration `json:"-"`

	extension string
}

// SizeKB returns the output size in kilobytes with two decimals.
func (r *Result) SizeKB() string {
	return fmt.Sprintf("%.2f", float64(r.Bytes)/1024)
}

// RecordLabel returns "1 record" or "N records".
func (r *Result) RecordLabel() string {
	if r.RecordCount == 1 {
		return "1 record"
	}
	return fmt.Sprintf("%d records", r.RecordCount)
}

// FileName returns the download name, e.g. "personal_data.csv".
func (r *Result) FileName() string {
	return fmt.Sprintf("%s_data.%s", r.Category, r.extension)
}

// Service orchestrates validation, generation, serialization and history.
type Service struct {
	history    HistoryStore
	limiter    *GenerationLimiter
	maxRecords int

	now  func() time.Time
	seed func() uint64
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for dates and history timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithSeedSource overrides how seeds are chosen for unseeded requests.
func WithSeedSource(seed func() uint64) Option {
	return func(s *Service) { s.seed = seed }
}

// NewService creates a Service backed by history.
func NewService(history HistoryStore, cfg *config.Config, opts ...Option) (*Service, error) {
	if history == nil {
		return nil, fmt.Errorf("history store is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	s := &Service{
		history:    history,
		limiter:    NewGenerationLimiter(cfg.Generate.MaxConcurrent, cfg.Generate.MaxRecords, cfg.Generate.MaxWaitTime),
		maxRecords: cfg.Generate.MaxRecords,
		now:        time.Now,
		seed:       rand.Uint64,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ParseCount parses user-supplied count text.
// Anything that is not an integer >= 1 is ErrInvalidCount.
func ParseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a whole number", ErrInvalidCount, s)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: %d is less than 1", ErrInvalidCount, n)
	}
	return n, nil
}

// Generate produces and serializes a built-in category dataset.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if err := s.validateCount(req.Count); err != nil {
		return nil, err
	}
	cat, err := ParseCategory(req.Category)
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	return s.run(ctx, cat.String(), req.Count, format, req.Seed, func(r *rand.Rand, now time.Time) Dataset {
		return cat.Generate(r, now, req.Count)
	})
}

// GenerateCustom produces and serializes a dataset from schema text.
// A schema syntax error aborts the run with no output.
func (s *Service) GenerateCustom(ctx context.Context, req CustomRequest) (*Result, error) {
	if err := s.validateCount(req.Count); err != nil {
		return nil, err
	}
	format, err := ParseFormat(req.Format)
	if err != nil {
		return nil, err
	}

	var schema Schema
	switch req.SchemaFormat {
	case "", SchemaJSON:
		schema, err = ParseSchema(req.Schema)
	case SchemaYAML:
		schema, err = ParseSchemaYAML(req.Schema)
	default:
		return nil, fmt.Errorf("%w: unsupported schema format %q", ErrInvalidSchemaSyntax, req.SchemaFormat)
	}
	if err != nil {
		return nil, err
	}

	return s.run(ctx, CustomCategory, req.Count, format, req.Seed, func(r *rand.Rand, now time.Time) Dataset {
		return GenerateFromSchema(r, now, schema, req.Count)
	})
}

// History returns recent runs, newest first.
func (s *Service) History(ctx context.Context) ([]HistoryEntry, error) {
	return s.history.List(ctx)
}

// ClearHistory removes every recorded run.
func (s *Service) ClearHistory(ctx context.Context) error {
	return s.history.Clear(ctx)
}

// Replay regenerates a built-in run from its history entry.
// Custom runs store no schema and cannot be replayed.
func (s *Service) Replay(ctx context.Context, id string) (*Result, error) {
	entry, err := FindHistoryEntry(ctx, s.history, id)
	if err != nil {
		return nil, err
	}
	if entry.Category == CustomCategory {
		return nil, fmt.Errorf("%w: custom schema runs are not stored", ErrNotReplayable)
	}
	return s.Generate(ctx, Request{
		Category: entry.Category,
		Count:    entry.Count,
		Format:   entry.Format,
	})
}

// LimiterStatus returns the current generation limiter state.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForIdle blocks until in-flight generation runs finish.
func (s *Service) WaitForIdle(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func (s *Service) validateCount(count int) error {
	if count < 1 {
		return fmt.Errorf("%w: %d is less than 1", ErrInvalidCount, count)
	}
	if s.maxRecords > 0 && count > s.maxRecords {
		return fmt.Errorf("%w: %d exceeds limit of %d", ErrTooManyRecords, count, s.maxRecords)
	}
	return nil
}

// run generates under limiter slots sized by count, serializes and records history.
func (s *Service) run(ctx context.Context, category string, count int, format Format, seed *uint64, build func(*rand.Rand, time.Time) Dataset) (*Result, error) {
	release, err := s.limiter.Acquire(ctx, count)
	if err != nil {
		return nil, err
	}
	defer release()

	start := time.Now()
	now := s.now()

	var seedVal uint64
	if seed != nil {
		seedVal = *seed
	} else {
		seedVal = s.seed()
	}

	ds := build(NewRand(seedVal), now)
	output, err := Serialize(ds, format)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Output:      output,
		Format:      format.String(),
		Category:    category,
		RecordCount: len(ds),
		Bytes:       len(output),
		Seed:        seedVal,
		Duration:    time.Since(start),
		extension:   format.Info().Extension,
	}

	logger := logging.FromContext(ctx)
	logger.Info("dataset generated",
		"category", category,
		"count", result.RecordCount,
		"format", result.Format,
		"bytes", result.Bytes,
		"duration_ms", result.Duration.Milliseconds(),
	)

	entry := HistoryEntry{
		ID:        uuid.New().String(),
		Category:  category,
		Count:     count,
		Format:    result.Format,
		Timestamp: now,
	}
	if err := s.history.Append(ctx, entry); err != nil {
		// The dataset is still returned; only the history log is affected
		logger.Warn("failed to record history", "error", err)
	}

	return result, nil
}
