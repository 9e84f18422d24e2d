package graph

import (
	"math"
	"testing"
)

type constNode struct {
	blockCache
	v float32
}

func (c *constNode) Render(start int64, n int) []float32 {
	buf, done := c.begin(start, n)
	if done {
		return buf
	}
	for i := range buf {
		buf[i] = c.v
	}
	return buf
}

func peak(buf []float32) float64 {
	var m float64
	for _, v := range buf {
		if a := math.Abs(float64(v)); a > m {
			m = a
		}
	}
	return m
}

func TestNoiseDeterminism(t *testing.T) {
	a := NewNoise(5).Render(0, 256)
	b := NewNoise(5).Render(0, 256)
	c := NewNoise(6).Render(0, 256)
	same := true
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at sample %d", i)
		}
		if a[i] != c[i] {
			same = false
		}
		if a[i] < -1 || a[i] > 1 {
			t.Fatalf("sample %d out of range: %v", i, a[i])
		}
	}
	if same {
		t.Error("different seeds produced identical noise")
	}
}

func TestBlockCacheFanOut(t *testing.T) {
	g := NewNoise(9)
	first := append([]float32(nil), g.Render(0, 64)...)
	second := g.Render(0, 64)
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("re-rendering the same block changed sample %d", i)
		}
	}
	third := g.Render(64, 64)
	if first[0] == third[0] && first[1] == third[1] && first[2] == third[2] {
		t.Error("next block looks identical to the first, stream did not advance")
	}
}

func TestOscSine(t *testing.T) {
	o := &Osc{Wave: WaveSine, Freq: NewParam(sampleRate / 4)}
	buf := o.Render(0, 8)
	want := []float64{0, 1, 0, -1, 0, 1, 0, -1}
	for i, w := range want {
		if math.Abs(float64(buf[i])-w) > 1e-6 {
			t.Errorf("sample %d = %v, want %v", i, buf[i], w)
		}
	}
}

func TestOscPulseAtZeroFreq(t *testing.T) {
	o := &Osc{Wave: WavePulse, Freq: NewParam(0)}
	buf := o.Render(0, 32)
	for i, v := range buf {
		if v != 1 {
			t.Fatalf("sample %d = %v, want 1", i, v)
		}
	}
}

func TestOscStartPhase(t *testing.T) {
	o := &Osc{Wave: WaveSaw, Freq: NewParam(100), StartPhase: 0.5}
	buf := o.Render(0, 1)
	if math.Abs(float64(buf[0])) > 1e-6 {
		t.Errorf("saw at phase 0.5 should start at 0, got %v", buf[0])
	}
}

func TestGainAppliesEnvelope(t *testing.T) {
	env := NewParam(0)
	env.SetValueAt(0, 0)
	env.LinearRampTo(4, 1)
	g := &Gain{In: &constNode{v: 2}, Env: env}
	buf := g.Render(0, 8)
	want := []float64{0, 0.5, 1, 1.5, 2, 2, 2, 2}
	for i, w := range want {
		if math.Abs(float64(buf[i])-w) > 1e-6 {
			t.Errorf("sample %d = %v, want %v", i, buf[i], w)
		}
	}
}

func TestMixSumsWithGains(t *testing.T) {
	m := &Mix{
		Inputs: []Node{&constNode{v: 1}, &constNode{v: 1}, &constNode{v: 1}},
		Gains:  []float32{0.25, 0.5, 0},
	}
	buf := m.Render(0, 16)
	for i, v := range buf {
		if math.Abs(float64(v)-0.75) > 1e-6 {
			t.Fatalf("sample %d = %v, want 0.75", i, v)
		}
	}
}

func TestShaperCurveCacheShared(t *testing.T) {
	a := NewShaper(&constNode{v: 0}, 0.4)
	b := NewShaper(&constNode{v: 0}, 0.4)
	if a.curve != b.curve {
		t.Error("equal drive amounts should share one curve table")
	}
	c := NewShaper(&constNode{v: 0}, 0.8)
	if a.curve == c.curve {
		t.Error("different drive amounts should not share a curve table")
	}
}

func TestShaperSilenceAndBounds(t *testing.T) {
	s := NewShaper(&constNode{v: 0}, 0.7)
	for _, v := range s.Render(0, 16) {
		if math.Abs(float64(v)) > 1e-3 {
			t.Fatalf("silence should stay silent through the shaper, got %v", v)
		}
	}
	hot := NewShaper(&Gain{In: NewNoise(3), Env: NewParam(2)}, 0.9)
	for i, v := range hot.Render(0, 1024) {
		if v < -1.001 || v > 1.001 {
			t.Fatalf("shaped sample %d out of range: %v", i, v)
		}
	}
}

func TestSVFResponses(t *testing.T) {
	dc := &constNode{v: 1}
	low := &SVF{In: dc, Freq: NewParam(1000), Low: 1}
	buf := low.Render(0, 4410)
	if got := float64(buf[len(buf)-1]); math.Abs(got-1) > 0.05 {
		t.Errorf("lowpass should pass DC, settled at %v", got)
	}
	high := &SVF{In: &constNode{v: 1}, Freq: NewParam(1000), High: 1}
	buf = high.Render(0, 4410)
	if got := float64(buf[len(buf)-1]); math.Abs(got) > 0.05 {
		t.Errorf("highpass should block DC, settled at %v", got)
	}
}

func TestModalBankRingsAndDecays(t *testing.T) {
	bank := &ModalBank{
		In:    &Burst{Shape: BurstImpulse, Len: 0.001, Seed: 1},
		Modes: []Mode{{Freq: 200, Decay: 0.2, Gain: 1}},
	}
	early := peak(append([]float32(nil), bank.Render(0, 4410)...))
	var late float64
	for start := int64(4410); start < 4*4410; start += 4410 {
		late = peak(bank.Render(start, 4410))
	}
	if early == 0 {
		t.Fatal("impulse should ring the mode")
	}
	if late >= early*0.1 {
		t.Errorf("mode should have decayed well below the strike: early %v, late %v", early, late)
	}
}

func TestPluckDecays(t *testing.T) {
	p := &Pluck{Freq: 220, Damp: 0.3, Decay: 0.15, Seed: 7}
	early := peak(append([]float32(nil), p.Render(0, 4410)...))
	var late float64
	for start := int64(4410); start < 5*4410; start += 4410 {
		late = peak(p.Render(start, 4410))
	}
	if early == 0 {
		t.Fatal("pluck produced silence")
	}
	if late >= early*0.2 {
		t.Errorf("string should have rung down: early %v, late %v", early, late)
	}
}

func TestGrainGenDeterminism(t *testing.T) {
	mk := func() *GrainGen {
		return &GrainGen{Rate: 100, GrainLen: 0.01, Pitch: 1, TimeJit: 0.5, PitchJit: 0.3, Seed: 11}
	}
	a := mk().Render(0, 4410)
	b := mk().Render(0, 4410)
	nonzero := false
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed diverged at sample %d", i)
		}
		if a[i] != 0 {
			nonzero = true
		}
	}
	if !nonzero {
		t.Error("grain stream at 100 grains/s rendered a silent block")
	}
}

func TestBurstImpulse(t *testing.T) {
	b := &Burst{Shape: BurstImpulse, Len: 0.001, Seed: 1}
	buf := b.Render(0, 64)
	if buf[0] != 1 {
		t.Errorf("first sample = %v, want 1", buf[0])
	}
	for i := 1; i < len(buf); i++ {
		if buf[i] != 0 {
			t.Fatalf("sample %d = %v, want 0", i, buf[i])
		}
	}
	for _, v := range b.Render(64, 64) {
		if v != 0 {
			t.Fatal("impulse burst should be silent past its length")
		}
	}
}

func TestBurstNoiseEnvelope(t *testing.T) {
	b := &Burst{Shape: BurstNoise, Len: 0.1, Seed: 3}
	total := int(0.1 * sampleRate)
	buf := b.Render(0, total)
	head := peak(buf[:total/8])
	tail := peak(buf[total*7/8:])
	if head == 0 {
		t.Fatal("noise burst produced silence")
	}
	if tail >= head*0.3 {
		t.Errorf("burst envelope should fall off: head %v, tail %v", head, tail)
	}
}
