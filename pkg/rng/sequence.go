package rng

import "sync"

// Sequence replays scripted draws, for tests that need an exact outcome.
// Once a list is exhausted it falls back to the Fallback source, or to 0.
type Sequence struct {
	mu       sync.Mutex
	Ints     []int
	Floats   []float64
	Fallback Source
}

func (s *Sequence) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Ints) == 0 {
		if s.Fallback != nil {
			return s.Fallback.Intn(n)
		}
		return 0
	}
	v := s.Ints[0]
	s.Ints = s.Ints[1:]
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}

func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Floats) == 0 {
		if s.Fallback != nil {
			return s.Fallback.Float64()
		}
		return 0
	}
	v := s.Floats[0]
	s.Floats = s.Floats[1:]
	return v
}

// Push appends scripted integer draws.
func (s *Sequence) Push(ints ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Ints = append(s.Ints, ints...)
}

// PushFloats appends scripted float draws.
func (s *Sequence) PushFloats(fs ...float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Floats = append(s.Floats, fs...)
}
