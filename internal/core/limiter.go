package core

// limiter.go bounds how much generation work is in flight at once.
//
// A run holds its whole dataset and serialized text in memory, so admission is
// weighted by record count rather than by request. The limiter owns a fixed
// number of slots; a run needs one slot per recordsPerSlot records (at least
// one, at most all of them). With the defaults of 5 slots and a 10000 record
// maximum, five small runs proceed together while a maximum-size run occupies
// every slot. Waiting runs are admitted in arrival order and give up after
// maxWait with ErrTooManyRequests.

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyRequests is returned when not enough generation slots free up
// before the wait timeout. Clients should retry after a short delay.
var ErrTooManyRequests = errors.New("too many concurrent generations, please try again later")

// DefaultMaxConcurrent is the default number of slots.
const DefaultMaxConcurrent = 5

// DefaultMaxWaitTime is how long to wait for slots before rejecting.
const DefaultMaxWaitTime = 30 * time.Second

// GenerationLimiter admits generation runs against a weighted semaphore.
type GenerationLimiter struct {
	sem            *semaphore.Weighted
	slots          int64
	recordsPerSlot int
	maxWait        time.Duration

	mu     sync.Mutex
	active int
	inUse  int64
}

// NewGenerationLimiter creates a limiter with slots shared across runs of up
// to maxRecords records. maxRecords <= 0 makes every run cost one slot.
// Non-positive slots or maxWait fall back to the defaults.
func NewGenerationLimiter(slots int, maxRecords int, maxWait time.Duration) *GenerationLimiter {
	if slots <= 0 {
		slots = DefaultMaxConcurrent
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxWaitTime
	}

	perSlot := 0
	if maxRecords > 0 {
		perSlot = (maxRecords + slots - 1) / slots
	}

	return &GenerationLimiter{
		sem:            semaphore.NewWeighted(int64(slots)),
		slots:          int64(slots),
		recordsPerSlot: perSlot,
		maxWait:        maxWait,
	}
}

// Cost returns the number of slots a run of records needs.
func (l *GenerationLimiter) Cost(records int) int64 {
	if l.recordsPerSlot <= 0 || records <= l.recordsPerSlot {
		return 1
	}
	n := int64((records-1)/l.recordsPerSlot) + 1
	return min(n, l.slots)
}

// Acquire waits for the slots a run of records needs. The returned release
// function must be called exactly once when the run is done.
func (l *GenerationLimiter) Acquire(ctx context.Context, records int) (release func(), err error) {
	cost := l.Cost(records)

	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, cost); err != nil {
		// Caller cancellation wins over our own wait timeout
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrTooManyRequests
	}

	l.mu.Lock()
	l.active++
	l.inUse += cost
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.active--
			l.inUse -= cost
			l.mu.Unlock()
			l.sem.Release(cost)
		})
	}, nil
}

// ActiveCount returns the number of runs holding slots.
func (l *GenerationLimiter) ActiveCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// WaitForDrain blocks until every admitted run has released its slots or ctx
// is done. Runs arriving while it waits queue behind it.
func (l *GenerationLimiter) WaitForDrain(ctx context.Context) error {
	if err := l.sem.Acquire(ctx, l.slots); err != nil {
		return err
	}
	l.sem.Release(l.slots)
	return nil
}

// LimiterStatus is a snapshot of the limiter's state.
type LimiterStatus struct {
	Active         int `json:"active"`
	SlotsInUse     int `json:"slots_in_use"`
	Available      int `json:"available"`
	MaxConcurrent  int `json:"max_concurrent"`
	RecordsPerSlot int `json:"records_per_slot"`
}

// Status returns the current limiter state for monitoring.
func (l *GenerationLimiter) Status() LimiterStatus {
	l.mu.Lock()
	defer l.mu.Unlock()

	return LimiterStatus{
		Active:         l.active,
		SlotsInUse:     int(l.inUse),
		Available:      int(l.slots - l.inUse),
		MaxConcurrent:  int(l.slots),
		RecordsPerSlot: l.recordsPerSlot,
	}
}
