package keypattern

import (
	"fmt"
	"math/rand/v2"
)

// synthIDMin and synthIDMax bound the synthetic numeric id range from the
// data model invariant: "a synthetic numeric id in [100, 10^9]".
const (
	synthIDMin = 100
	synthIDMax = 1_000_000_000
)

// IDGenerator produces synthetic entity ids when no id is discoverable in a
// key or in a structured value's flattened paths. Implementations must be
// deterministic per run given the same call order (design note: inject a
// deterministic random source rather than relying on process-global state).
type IDGenerator interface {
	Next() string
}

// CounterIDGenerator assigns synthetic ids from a monotonically increasing
// counter, offset into the synthetic id range. It is the simplest
// deterministic generator: the Nth call in a run always returns the same id
// given the same starting Counter.
type CounterIDGenerator struct {
	Counter int64
}

// NewCounterIDGenerator returns a generator whose first Next() call yields
// synthIDMin.
func NewCounterIDGenerator() *CounterIDGenerator {
	return &CounterIDGenerator{Counter: synthIDMin}
}

// Next returns the next synthetic id and advances the counter.
func (g *CounterIDGenerator) Next() string {
	id := g.Counter
	g.Counter++

	return fmt.Sprintf("%d", id)
}

// SeededIDGenerator assigns synthetic ids from a seeded pseudo-random
// source, for callers that want non-sequential but still fully
// reproducible ids across runs with the same seed.
type SeededIDGenerator struct {
	rng *rand.Rand
}

// NewSeededIDGenerator returns a generator seeded deterministically from
// seed.
func NewSeededIDGenerator(seed uint64) *SeededIDGenerator {
	return &SeededIDGenerator{rng: rand.New(rand.NewPCG(seed, seed))} //nolint:gosec // deterministic by design, not for security use.
}

// Next returns a pseudo-random id in [100, 10^9].
func (g *SeededIDGenerator) Next() string {
	id := synthIDMin + g.rng.Int64N(synthIDMax-synthIDMin+1)

	return fmt.Sprintf("%d", id)
}
