package core

import (
	"math/rand"
	"time"
)

// RandomState is an explicitly owned, explicitly seeded random source.
// Samplers draw all randomness from an injected RandomState so that
// identical seeds reproduce identical sequences across independent
// runs, including separate operating-system processes: determinism
// comes from the seed alone, never from process-specific entropy.
//
// The underlying generator is lazily created on first use. RandomState
// is not safe for concurrent use; the engine serializes parameter
// suggestion calls per study.
type RandomState struct {
	seed int64
	rng  *rand.Rand
}

// NewRandomState creates a random state with the given seed. A
// non-positive seed selects a time-based seed, trading reproducibility
// for freshness.
func NewRandomState(seed int64) *RandomState {
	if seed <= 0 {
		seed = time.Now().UnixNano()
	}
	return &RandomState{seed: seed}
}

// Rand returns the underlying generator, creating it on first use.
func (r *RandomState) Rand() *rand.Rand {
	if r.rng == nil {
		r.rng = rand.New(rand.NewSource(r.seed))
	}
	return r.rng
}

// Seed returns the seed the generator was (or will be) created from.
func (r *RandomState) Seed() int64 {
	return r.seed
}

// Reseed discards the current generator state and replaces it with a
// fresh time-based seed. Used to decorrelate workers that were forked
// from an identically-seeded parent.
func (r *RandomState) Reseed() {
	r.seed = time.Now().UnixNano()
	r.rng = rand.New(rand.NewSource(r.seed))
}
