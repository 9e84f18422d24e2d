package rumpu

import (
	"reflect"
	"testing"
)

func TestEuclideanHitCounts(t *testing.T) {
	for steps := 1; steps <= 32; steps++ {
		for hits := 0; hits <= steps; hits++ {
			p := Euclidean(steps, hits, 0)
			if len(p) != steps {
				t.Fatalf("Euclidean(%d, %d, 0) has length %d", steps, hits, len(p))
			}
			if got := p.Hits(); got != hits {
				t.Errorf("Euclidean(%d, %d, 0) has %d hits", steps, hits, got)
			}
		}
	}
}

func TestEuclideanRotationEquivalence(t *testing.T) {
	for steps := 2; steps <= 16; steps++ {
		for hits := 1; hits < steps; hits++ {
			base := Euclidean(steps, hits, 0)
			for rotation := 0; rotation < steps; rotation++ {
				got := Euclidean(steps, hits, rotation)
				want := base.Rotate(rotation)
				if !reflect.DeepEqual(got, want) {
					t.Fatalf("Euclidean(%d, %d, %d) = %v, want rotated %v", steps, hits, rotation, got, want)
				}
			}
		}
	}
}

func TestEuclideanKnownPatterns(t *testing.T) {
	tests := []struct {
		steps, hits int
		want        Pattern
	}{
		{8, 3, Pattern{true, false, false, true, false, false, true, false}},
		{8, 4, Pattern{true, false, true, false, true, false, true, false}},
		{4, 4, Pattern{true, true, true, true}},
		{5, 0, Pattern{false, false, false, false, false}},
	}
	for _, test := range tests {
		got := Euclidean(test.steps, test.hits, 0)
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("Euclidean(%d, %d, 0) = %v, want %v", test.steps, test.hits, got, test.want)
		}
	}
}

func TestEuclideanCacheIdempotence(t *testing.T) {
	Euclidean(13, 5, 4) // prime the entry
	before := euclideanMisses
	for i := 0; i < 10; i++ {
		p := Euclidean(13, 5, 4)
		if p.Hits() != 5 {
			t.Fatalf("cached pattern has %d hits, want 5", p.Hits())
		}
	}
	// equivalent rotations normalize onto the same entry
	Euclidean(13, 5, 4+13)
	Euclidean(13, 5, 4-13)
	if euclideanMisses != before {
		t.Errorf("repeated calls recomputed the pattern %d times", euclideanMisses-before)
	}
}

func TestEuclideanCacheReturnsCopies(t *testing.T) {
	a := Euclidean(8, 3, 0)
	a.Set(1, true)
	b := Euclidean(8, 3, 0)
	if b.Get(1) {
		t.Error("mutating a returned pattern leaked into the cache")
	}
}

func TestPatternOutOfRange(t *testing.T) {
	p := Pattern{true, false}
	if p.Get(-1) || p.Get(2) {
		t.Error("out-of-range Get should return false")
	}
	p.Set(4, true)
	if len(p) != 5 || !p.Get(4) {
		t.Errorf("Set should extend the pattern, got %v", p)
	}
}
