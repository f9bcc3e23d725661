package rng

import "testing"

func TestNew_SameSeedSameSequence(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		if x, y := a.Intn(1000), b.Intn(1000); x != y {
			t.Fatalf("draw %d differs: %d vs %d", i, x, y)
		}
	}
}

func TestRange(t *testing.T) {
	src := New(7)
	for i := 0; i < 1000; i++ {
		v := Range(src, 5, 25)
		if v < 5 || v > 25 {
			t.Fatalf("Range() = %d, expected within [5, 25]", v)
		}
	}
	if v := Range(src, 3, 3); v != 3 {
		t.Errorf("Range(3, 3) = %d, expected 3", v)
	}
}

func TestSequence(t *testing.T) {
	s := &Sequence{Ints: []int{4, 99, -1}, Floats: []float64{0.25}}

	if v := s.Intn(10); v != 4 {
		t.Errorf("first Intn = %d, expected 4", v)
	}
	if v := s.Intn(10); v != 9 {
		t.Errorf("out-of-range Intn = %d, expected clamp to 9", v)
	}
	if v := s.Intn(10); v != 0 {
		t.Errorf("negative Intn = %d, expected clamp to 0", v)
	}
	if v := s.Intn(10); v != 0 {
		t.Errorf("exhausted Intn = %d, expected 0", v)
	}
	if v := s.Float64(); v != 0.25 {
		t.Errorf("Float64 = %v, expected 0.25", v)
	}
}

func TestShuffle_IsPermutation(t *testing.T) {
	items := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	Shuffle(New(1), len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })

	seen := make(map[int]bool)
	for _, v := range items {
		seen[v] = true
	}
	if len(seen) != 10 {
		t.Errorf("shuffle lost elements: %v", items)
	}
}
