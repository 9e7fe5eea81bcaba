// Package selection picks which two items to put in front of a user next.
package selection

import (
	"math/rand"
	"sync"
	"time"

	"github.com/yjkogan/stuff-tracker/internal/util"
)

// ErrInsufficientCandidates is returned when asked to pick a pair out of
// fewer than two candidates.
const ErrInsufficientCandidates = util.ErrPublic("at least two items are required to compare")

// A Strategy picks two distinct candidates to compare. Implementations must
// not modify the given slice.
type Strategy[T any] interface {
	Select(candidates []T) (T, T, error)
}

// UniformRandom picks any two distinct candidates with equal probability.
type UniformRandom[T any] struct {
	mu  sync.Mutex // *rand.Rand is not safe for concurrent use
	rng *rand.Rand
}

// NewUniformRandom creates a UniformRandom strategy drawing from rng, or from
// a time-seeded source if rng is nil.
func NewUniformRandom[T any](rng *rand.Rand) *UniformRandom[T] {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano())) // nolint:gosec
	}

	return &UniformRandom[T]{rng: rng}
}

func (s *UniformRandom[T]) Select(candidates []T) (T, T, error) {
	var zero T
	if len(candidates) < 2 {
		return zero, zero, ErrInsufficientCandidates
	}

	s.mu.Lock()
	i := s.rng.Intn(len(candidates))
	j := s.rng.Intn(len(candidates) - 1)
	s.mu.Unlock()

	// Draw the second index among the n-1 remaining ones.
	if j >= i {
		j++
	}

	return candidates[i], candidates[j], nil
}
