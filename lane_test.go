package rumpu

import (
	"reflect"
	"testing"
)

func TestTrigConditionGating(t *testing.T) {
	cond := TrigCondition{N: 2, Of: 3}
	var fired []int
	for visit := 1; visit <= 6; visit++ {
		if cond.ShouldFire(visit) {
			fired = append(fired, visit)
		}
	}
	if !reflect.DeepEqual(fired, []int{2, 5}) {
		t.Errorf("(2,3) over 6 visits fired on %v, want [2 5]", fired)
	}
}

func TestTrigConditionZeroValue(t *testing.T) {
	var cond TrigCondition
	for visit := 1; visit <= 4; visit++ {
		if !cond.ShouldFire(visit) {
			t.Fatalf("zero condition must always fire, failed on visit %d", visit)
		}
	}
}

func TestSubLaneDirections(t *testing.T) {
	tests := []struct {
		name      string
		direction Direction
		want      []int
	}{
		{"forward", Forward, []int{0, 1, 2, 3, 0, 1}},
		{"reverse", Reverse, []int{0, 3, 2, 1, 0, 3}},
		{"pingpong", PingPong, []int{0, 1, 2, 3, 2, 1, 0, 1}},
	}
	for _, test := range tests {
		s := NewSubLane(SubLaneConfig{Steps: 4, Direction: test.direction, Values: []float64{10, 11, 12, 13}})
		var got []int
		for range test.want {
			got = append(got, int(s.Value(0))-10)
			s.Advance()
		}
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s: visited %v, want %v", test.name, got, test.want)
		}
	}
}

func TestSubLaneEmptyDefault(t *testing.T) {
	var s SubLane
	if got := s.Value(0.5); got != 0.5 {
		t.Errorf("empty sub-lane should return the default, got %v", got)
	}
	s.Advance() // must not panic
}

func TestLaneMergedStepOverrides(t *testing.T) {
	cfg := LaneConfig{Steps: 8, Hits: 4, Division: 2, Probability: 1, Voices: []VoiceType{Kick}}
	cfg.Clamp()
	l := NewLane(0, cfg)

	on, prob, ratchet, cond := l.MergedStep(nil, 0)
	if !on || prob != 1 || ratchet != 0 || cond != (TrigCondition{}) {
		t.Fatalf("unexpected defaults: %v %v %v %+v", on, prob, ratchet, cond)
	}

	o := &StepOverrides{
		Toggles:     []bool{true, true},
		Probability: []float64{0.5},
		Ratchet:     []int{3},
		TrigConds:   []TrigCondition{{N: 1, Of: 2}},
	}
	on, prob, ratchet, cond = l.MergedStep(o, 0)
	if on {
		t.Error("toggle should invert a set pattern bit")
	}
	if prob != 0.5 || ratchet != 3 || cond.Of != 2 {
		t.Errorf("override arrays not applied: %v %v %+v", prob, ratchet, cond)
	}
	// a replacement array also blanks steps it does not cover
	_, prob, ratchet, _ = l.MergedStep(o, 5)
	if prob != 1 || ratchet != 0 {
		t.Errorf("steps past a replacement array should use the replacement defaults, got %v %v", prob, ratchet)
	}
	if on, _, _, _ := l.MergedStep(o, 1); on != !l.Pattern.Get(1) {
		t.Error("toggle at step 1 not applied")
	}
}

func TestLaneHomeSnapshotRestore(t *testing.T) {
	cfg := LaneConfig{
		Steps: 16, Hits: 5, Rotation: 3, Division: 2, Swing: 0.1, Probability: 0.9,
		Voices: []VoiceType{Noise},
		Pitch:  SubLaneConfig{Steps: 3, Values: []float64{0, 3, 7}},
	}
	cfg.Clamp()
	l := NewLane(0, cfg)
	wantPattern := l.Pattern.Copy()

	// drift everything evolution can touch
	l.Rotation = 7
	l.Hits = 2
	l.Regenerate()
	l.Swing = 0.4
	l.Probability = 0.3
	l.StepProb[4] = 0.2
	l.StepRatchet[2] = 3
	l.Pitch.Values[0] = -5
	l.Pitch.Advance()
	l.Visit(0)

	l.ResetToHome()
	if l.Rotation != 3 || l.Hits != 5 || l.Swing != 0.1 || l.Probability != 0.9 {
		t.Errorf("scalar fields not restored: %+v", l)
	}
	if !reflect.DeepEqual(l.Pattern, wantPattern) {
		t.Errorf("pattern not restored: %v, want %v", l.Pattern, wantPattern)
	}
	if l.StepProb[4] != 1 || l.StepRatchet[2] != 0 {
		t.Error("per-step arrays not restored")
	}
	if l.Pitch.Values[0] != 0 {
		t.Error("sub-lane values not restored")
	}
	// restore is a musical undo, not a transport reset
	if l.Pitch.Value(0) != 3 {
		t.Errorf("sub-lane index should survive the restore, got value %v", l.Pitch.Value(0))
	}
	if l.visits[0] != 1 {
		t.Error("visit counters should survive the restore")
	}
}

func TestLaneVisitExtends(t *testing.T) {
	l := NewLane(0, LaneConfig{Steps: 4, Hits: 1, Division: 1, Probability: 1, Voices: []VoiceType{Kick}})
	if got := l.Visit(40); got != 1 {
		t.Errorf("first visit of an unseen step should be 1, got %d", got)
	}
	if got := l.Visit(40); got != 2 {
		t.Errorf("second visit should be 2, got %d", got)
	}
}
