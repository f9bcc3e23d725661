package rng

import (
	"math/rand"
	"sync"
	"time"
)

// Source is the randomness every game draws from.
// Implementations must be safe for concurrent use.
type Source interface {
	// Intn returns a uniform int in [0, n). n must be > 0.
	Intn(n int) int
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
}

// Locked wraps a seeded math/rand generator behind a mutex.
type Locked struct {
	mu sync.Mutex
	r  *rand.Rand
}

// New creates a seeded source. The same seed yields the same draw sequence.
func New(seed int64) *Locked {
	return &Locked{r: rand.New(rand.NewSource(seed))}
}

// NewFromTime creates a source seeded from the wall clock.
func NewFromTime() *Locked {
	return New(time.Now().UnixNano())
}

func (l *Locked) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func (l *Locked) Float64() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Float64()
}

// Range returns a uniform int in [min, max].
func Range(src Source, min, max int) int {
	if max <= min {
		return min
	}
	return min + src.Intn(max-min+1)
}

// Shuffle performs an in-place Fisher-Yates shuffle driven by src.
func Shuffle(src Source, n int, swap func(i, j int)) {
	for i := n - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		swap(i, j)
	}
}
