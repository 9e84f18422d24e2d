package rumpu

import (
	"math"
	"testing"
)

func TestComputeVariationIdentity(t *testing.T) {
	r := NewRand(1)
	v := ComputeVariation(0, r)
	if v != (VariationProfile{Level: 1, Decay: 1, Pitch: 1, Brightness: 1, Attack: 1, Excite: 1}) {
		t.Errorf("ComputeVariation(0) = %+v, want identity", v)
	}
	// a disabled knob must not consume a draw
	r2 := NewRand(1)
	ComputeVariation(0, r2)
	if r.Float() != r2.Float() {
		t.Error("ComputeVariation(0) perturbed the random stream")
	}
}

func TestComputeVariationCorrelation(t *testing.T) {
	r := NewRand(42)
	for i := 0; i < 100; i++ {
		v := ComputeVariation(1, r)
		levelUp := v.Level > 1
		if (v.Brightness > 1) != levelUp {
			t.Fatalf("level and brightness offsets have opposite signs: %+v", v)
		}
		// louder hits start snappier
		if (v.Attack < 1) != levelUp && v.Level != 1 {
			t.Fatalf("attack offset should oppose the level offset: %+v", v)
		}
	}
}

func TestComputeDistanceNeutral(t *testing.T) {
	d := ComputeDistance(0.5)
	if d != (DistanceProfile{T: 0, Level: 1, Decay: 1, Brightness: 1, Attack: 1, Transient: 1, Body: 1}) {
		t.Errorf("ComputeDistance(0.5) = %+v, want identity", d)
	}
}

func TestComputeDistanceSymmetry(t *testing.T) {
	center := ComputeDistance(0)
	edge := ComputeDistance(1)
	if center.T != -1 || edge.T != 1 {
		t.Fatalf("extreme positions should give t=±1, got %v and %v", center.T, edge.T)
	}
	if center.Decay <= 1 || edge.Decay >= 1 {
		t.Errorf("center strikes ring longer, edge shorter: center %v, edge %v", center.Decay, edge.Decay)
	}
	if center.Brightness >= 1 || edge.Brightness <= 1 {
		t.Errorf("edge strikes are brighter: center %v, edge %v", center.Brightness, edge.Brightness)
	}
	if edge.Brightness > 1.85+1e-9 {
		t.Errorf("edge brightness should be log-compressed, got %v", edge.Brightness)
	}
}

func TestApplyCenterEdge(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		t     float64
		c     Coupling
		want  float64
	}{
		{"neutral mul", 2, 0, Coupling{Center: 0.5, Edge: 0.5}, 2},
		{"center mul", 2, -1, Coupling{Center: 0.5, Edge: -0.2}, 3},
		{"edge mul", 2, 1, Coupling{Center: 0.5, Edge: -0.2}, 1.6},
		{"edge add", 2, 1, Coupling{Center: -1, Edge: 0.3, Mode: CoupleAdd}, 2.3},
		{"center add", 2, -0.5, Coupling{Center: 0.4, Edge: 0, Mode: CoupleAdd}, 2.2},
	}
	for _, test := range tests {
		if got := ApplyCenterEdge(test.value, test.t, test.c); math.Abs(got-test.want) > 1e-9 {
			t.Errorf("%s: ApplyCenterEdge = %v, want %v", test.name, got, test.want)
		}
	}
}

func TestCoupleParamUnknownKey(t *testing.T) {
	if got := CoupleParam(Kick, "nosuchparam", 3, 1); got != 3 {
		t.Errorf("unknown coupling key should pass the value through, got %v", got)
	}
	if got := CoupleParam(Kick, "click", 1, 1); got <= 1 {
		t.Errorf("kick click should grow towards the edge, got %v", got)
	}
}

func TestRandDeterminism(t *testing.T) {
	a, b := NewRand(12345), NewRand(12345)
	for i := 0; i < 1000; i++ {
		if a.Float() != b.Float() {
			t.Fatal("identically seeded streams diverged")
		}
	}
}

func TestRandRanges(t *testing.T) {
	r := NewRand(7)
	for i := 0; i < 1000; i++ {
		if f := r.Float(); f < 0 || f >= 1 {
			t.Fatalf("Float out of range: %v", f)
		}
		if v := r.Triangular(); v <= -1 || v >= 1 {
			t.Fatalf("Triangular out of range: %v", v)
		}
		if n := r.Intn(7); n < 0 || n >= 7 {
			t.Fatalf("Intn out of range: %v", n)
		}
	}
}

func TestRandZeroSeed(t *testing.T) {
	if NewRand(0).Float() != NewRand(1).Float() {
		t.Error("zero seed should be bumped to one")
	}
}
