package core

// random.go provides the random primitives every generator is built from.
//
// The random source is always passed in explicitly. Nothing here touches a
// package-level generator, so callers can seed a source for reproducible
// output and tests can assert exact values.

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"
	"time"
)

// ErrEmptyPool is returned when an element is requested from an empty pool.
var ErrEmptyPool = errors.New("invalid input: empty pool")

// DateEpoch is the lower bound for generated dates.
var DateEpoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

// NewRand returns a PCG-backed generator seeded from seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// RandomInt returns a uniformly distributed integer in [min, max].
// Both bounds are inclusive. Reversed bounds are swapped. Any pair of ints is
// valid, including the full int range.
func RandomInt(r *rand.Rand, min, max int) int {
	if min > max {
		min, max = max, min
	}
	// Span in uint64 so max-min cannot overflow
	span := uint64(max) - uint64(min)
	if span == math.MaxUint64 {
		return int(r.Uint64())
	}
	return min + int(r.Uint64N(span+1))
}

// RandomElement returns a uniformly chosen member of pool.
func RandomElement[T any](r *rand.Rand, pool []T) (T, error) {
	if len(pool) == 0 {
		var zero T
		return zero, ErrEmptyPool
	}
	return pool[r.IntN(len(pool))], nil
}

// MustElement is RandomElement for the fixed pools, which are never empty.
func MustElement[T any](r *rand.Rand, pool []T) T {
	v, err := RandomElement(r, pool)
	if err != nil {
		panic(err)
	}
	return v
}

// Email returns <lowercased first name><1-999>@<domain>.
func Email(r *rand.Rand) string {
	name := strings.ToLower(MustElement(r, FirstNames))
	domain := MustElement(r, Domains)
	return fmt.Sprintf("%s%d@%s", name, RandomInt(r, 1, 999), domain)
}

// Phone returns a (XXX) XXX-XXXX number.
func Phone(r *rand.Rand) string {
	return fmt.Sprintf("(%d) %d-%d", RandomInt(r, 200, 999), RandomInt(r, 100, 999), RandomInt(r, 1000, 9999))
}

// Address returns "<1-9999> <Street> St".
func Address(r *rand.Rand) string {
	return fmt.Sprintf("%d %s St", RandomInt(r, 1, 9999), MustElement(r, Streets))
}

// AccountNumber returns a masked account number: XXXX followed by two 4-digit groups.
func AccountNumber(r *rand.Rand) string {
	return fmt.Sprintf("XXXX%d%d", RandomInt(r, 1000, 9999), RandomInt(r, 1000, 9999))
}

// IP returns a dotted IPv4 address whose first and last octets are never 0.
func IP(r *rand.Rand) string {
	return fmt.Sprintf("%d.%d.%d.%d", RandomInt(r, 1, 255), RandomInt(r, 0, 255), RandomInt(r, 0, 255), RandomInt(r, 1, 255))
}

// UserAgent returns one of the sample browser user agent strings.
func UserAgent(r *rand.Rand) string {
	return MustElement(r, UserAgents)
}

// Date returns a YYYY-MM-DD date uniformly distributed between DateEpoch and now.
// A now before the epoch yields the epoch date.
func Date(r *rand.Rand, now time.Time) string {
	span := now.Sub(DateEpoch)
	if span <= 0 {
		return DateEpoch.Format(time.DateOnly)
	}
	offset := time.Duration(r.Int64N(int64(span) + 1))
	return DateEpoch.Add(offset).UTC().Format(time.DateOnly)
}

// Coordinate returns a uniform float in [min, max] formatted to 6 decimals.
func Coordinate(r *rand.Rand, min, max float64) string {
	return fmt.Sprintf("%.6f", min+r.Float64()*(max-min))
}
