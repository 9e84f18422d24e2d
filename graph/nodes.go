package graph

import (
	"math"
	"sync"

	"github.com/taleva/rumpu"
)

type (
	// Node produces one mono block of output for the absolute sample range
	// [start, start+n). The returned slice is owned by the node and valid
	// until the next Render call. Rendering the same block twice returns the
	// cached result, so stateful nodes can safely fan out.
	Node interface {
		Render(start int64, n int) []float32
	}

	blockCache struct {
		start int64
		n     int
		valid bool
		buf   []float32
	}

	// WaveKind selects an oscillator waveform.
	WaveKind int

	// Osc is a phase-accumulating oscillator with an optional phase-modulation
	// input (used as the FM carrier/modulator) and self-feedback.
	Osc struct {
		blockCache
		Wave       WaveKind
		Freq       *Param
		PhaseMod   Node    // optional, added to phase (radians/2π units)
		ModDepth   *Param  // scales PhaseMod
		Feedback   float64 // self phase feedback, 0..1
		StartPhase float64 // initial phase, 0..1

		phase    float64
		lastOut  float64
		started  bool
		startPos int64
	}

	// NoiseGen is a seeded white-noise source with its own stream, so the
	// order in which voices render cannot perturb each other.
	NoiseGen struct {
		blockCache
		seed uint32
	}

	// SVF is the state-variable filter of the synth core: low, band and high
	// outputs mixed by fixed coefficients.
	SVF struct {
		blockCache
		In        Node
		Freq      *Param // Hz
		Res       *Param // resonance 0..1 (damping = 1 - res)
		Low, Band, High float32

		low, band float64
	}

	// Gain multiplies its input by an automatable parameter; it is the
	// envelope target of every voice and the handle pools fade when they
	// steal.
	Gain struct {
		blockCache
		In  Node
		Env *Param
	}

	// Mix sums its inputs with per-input static gains.
	Mix struct {
		blockCache
		Inputs []Node
		Gains  []float32
	}

	// Shaper applies the saturation curve of the synth core, with the curve
	// table cached by quantized drive amount.
	Shaper struct {
		blockCache
		In    Node
		curve *[shaperTableSize + 1]float32
	}

	// Mode is one resonance of a modal bank.
	Mode struct {
		Freq  float64 // Hz
		Decay float64 // seconds to -60 dB
		Gain  float64
	}

	// ModalBank runs its excitation input through a bank of two-pole
	// resonators.
	ModalBank struct {
		blockCache
		In    Node
		Modes []Mode

		coefs []modalCoef
		state []modalState
	}

	modalCoef  struct{ b1, b2, a float64 }
	modalState struct{ y1, y2 float64 }

	// Pluck is a Karplus-Strong string: a noise burst circulating in a
	// damped delay line.
	Pluck struct {
		blockCache
		Freq  float64
		Damp  float64 // 0 bright .. 1 dull
		Decay float64 // seconds
		Seed  uint32

		line    []float64
		pos     int
		lowpass float64
		started bool
	}

	// GrainGen emits Hann-windowed noise grains (pulsar synthesis) with
	// independent timing and pitch jitter per grain.
	GrainGen struct {
		blockCache
		Rate      float64 // grains per second
		GrainLen  float64 // seconds
		Pitch     float64 // playback rate multiplier of the grain body
		TimeJit   float64 // 0..1 of the grain period
		PitchJit  float64 // 0..1
		Seed      uint32

		rng       uint32
		nextOnset int64
		grains    []grain
		started   bool
	}

	grain struct {
		onset int64
		len   int
		pitch float64
		seed  uint32
		pos   int
		noise uint32
	}

	// Burst is a shaped noise/impulse excitation: the strike of the modal
	// voices. Shape selects the spectral/temporal character.
	Burst struct {
		blockCache
		Shape BurstShape
		Len   float64 // seconds
		Seed  uint32

		rng uint32
		pos int64
	}

	BurstShape int
)

const (
	WaveSine WaveKind = iota
	WaveTriangle
	WaveSaw
	WavePulse
)

const (
	BurstImpulse BurstShape = iota
	BurstNoise
	BurstStick
	BurstBrush
	BurstMallet
)

const sampleRate = rumpu.SampleRate

func (c *blockCache) begin(start int64, n int) ([]float32, bool) {
	if c.valid && c.start == start && c.n == n {
		return c.buf, true
	}
	if cap(c.buf) < n {
		c.buf = make([]float32, n)
	}
	c.buf = c.buf[:n]
	c.start, c.n, c.valid = start, n, true
	return c.buf, false
}

func noiseStep(state *uint32) float64 {
	*state = *state*16007 + 1
	return float64(int32(*state)) / -2147483648.0
}

func (o *Osc) Render(start int64, n int) []float32 {
	buf, done := o.begin(start, n)
	if done {
		return buf
	}
	if !o.started {
		o.phase = o.StartPhase
		o.started = true
		o.startPos = start
	}
	var mod []float32
	if o.PhaseMod != nil {
		mod = o.PhaseMod.Render(start, n)
	}
	for i := 0; i < n; i++ {
		t := start + int64(i)
		phase := o.phase
		if mod != nil {
			depth := 1.0
			if o.ModDepth != nil {
				depth = o.ModDepth.ValueAt(t)
			}
			phase += float64(mod[i]) * depth
		}
		if o.Feedback > 0 {
			phase += o.lastOut * o.Feedback * 0.25
		}
		phase -= math.Floor(phase)
		var v float64
		switch o.Wave {
		case WaveTriangle:
			if phase < 0.5 {
				v = phase*4 - 1
			} else {
				v = 3 - phase*4
			}
		case WaveSaw:
			v = phase*2 - 1
		case WavePulse:
			if phase < 0.5 {
				v = 1
			} else {
				v = -1
			}
		default:
			v = math.Sin(2 * math.Pi * phase)
		}
		o.lastOut = v
		buf[i] = float32(v)
		o.phase += o.Freq.ValueAt(t) / sampleRate
		o.phase -= math.Floor(o.phase)
	}
	return buf
}

// NewNoise returns a noise generator with its own deterministic stream.
func NewNoise(seed uint32) *NoiseGen {
	if seed == 0 {
		seed = 1
	}
	return &NoiseGen{seed: seed}
}

func (g *NoiseGen) Render(start int64, n int) []float32 {
	buf, done := g.begin(start, n)
	if done {
		return buf
	}
	for i := range buf {
		buf[i] = float32(noiseStep(&g.seed))
	}
	return buf
}

func (f *SVF) Render(start int64, n int) []float32 {
	buf, done := f.begin(start, n)
	if done {
		return buf
	}
	in := f.In.Render(start, n)
	for i := 0; i < n; i++ {
		t := start + int64(i)
		freq := f.Freq.ValueAt(t)
		res := 0.0
		if f.Res != nil {
			res = f.Res.ValueAt(t)
		}
		g := 2 * math.Sin(math.Pi*math.Min(freq, sampleRate*0.22)/sampleRate)
		damp := 2 * (1 - math.Min(res, 0.98))
		low := f.low + g*f.band
		high := float64(in[i]) - low - damp*f.band
		band := f.band + g*high
		f.low, f.band = low, band
		buf[i] = f.Low*float32(low) + f.Band*float32(band) + f.High*float32(high)
	}
	return buf
}

func (g *Gain) Render(start int64, n int) []float32 {
	buf, done := g.begin(start, n)
	if done {
		return buf
	}
	in := g.In.Render(start, n)
	for i := 0; i < n; i++ {
		buf[i] = in[i] * float32(g.Env.ValueAt(start+int64(i)))
	}
	return buf
}

func (m *Mix) Render(start int64, n int) []float32 {
	buf, done := m.begin(start, n)
	if done {
		return buf
	}
	for i := range buf {
		buf[i] = 0
	}
	for j, in := range m.Inputs {
		gain := float32(1)
		if j < len(m.Gains) {
			gain = m.Gains[j]
		}
		if gain == 0 {
			continue
		}
		src := in.Render(start, n)
		for i := 0; i < n; i++ {
			buf[i] += src[i] * gain
		}
	}
	return buf
}

const shaperTableSize = 1024

var (
	shaperMu    sync.Mutex
	shaperCache = map[int]*[shaperTableSize + 1]float32{}
)

// NewShaper builds a waveshaper for the given drive, reusing curve tables
// cached by quantized drive amount.
func NewShaper(in Node, drive float64) *Shaper {
	q := int(rumpuClamp(drive, 0, 0.99) * 100)
	shaperMu.Lock()
	curve, ok := shaperCache[q]
	if !ok {
		curve = new([shaperTableSize + 1]float32)
		amount := 0.5 + float64(q)/200 // waveshape amount 0.5..~1
		for i := range curve {
			x := float64(i)/shaperTableSize*2 - 1
			curve[i] = waveshape(float32(x), float32(amount))
		}
		shaperCache[q] = curve
	}
	shaperMu.Unlock()
	return &Shaper{In: in, curve: curve}
}

func waveshape(value, amount float32) float32 {
	absVal := value
	if absVal < 0 {
		absVal = -absVal
	}
	return value * amount / (1 - amount + (2*amount-1)*absVal)
}

func rumpuClamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}

func (s *Shaper) Render(start int64, n int) []float32 {
	buf, done := s.begin(start, n)
	if done {
		return buf
	}
	in := s.In.Render(start, n)
	for i := 0; i < n; i++ {
		x := in[i]
		if x < -1 {
			x = -1
		} else if x > 1 {
			x = 1
		}
		idx := (x + 1) / 2 * shaperTableSize
		i0 := int(idx)
		if i0 >= shaperTableSize {
			i0 = shaperTableSize - 1
		}
		frac := idx - float32(i0)
		buf[i] = s.curve[i0]*(1-frac) + s.curve[i0+1]*frac
	}
	return buf
}

func (m *ModalBank) Render(start int64, n int) []float32 {
	buf, done := m.begin(start, n)
	if done {
		return buf
	}
	if m.coefs == nil {
		m.coefs = make([]modalCoef, len(m.Modes))
		m.state = make([]modalState, len(m.Modes))
		for i, mode := range m.Modes {
			freq := math.Min(mode.Freq, sampleRate*0.45)
			// pole radius from the -60 dB decay time
			r := math.Exp(-6.907755278982137 / (mode.Decay * sampleRate))
			w := 2 * math.Pi * freq / sampleRate
			m.coefs[i] = modalCoef{
				b1: 2 * r * math.Cos(w),
				b2: -r * r,
				a:  (1 - r) * mode.Gain,
			}
		}
	}
	in := m.In.Render(start, n)
	for i := range buf {
		buf[i] = 0
	}
	for j := range m.coefs {
		c := m.coefs[j]
		st := &m.state[j]
		for i := 0; i < n; i++ {
			y := c.a*float64(in[i]) + c.b1*st.y1 + c.b2*st.y2
			st.y2, st.y1 = st.y1, y
			buf[i] += float32(y)
		}
	}
	return buf
}

func (p *Pluck) Render(start int64, n int) []float32 {
	buf, done := p.begin(start, n)
	if done {
		return buf
	}
	if !p.started {
		length := int(sampleRate / math.Max(p.Freq, 20))
		if length < 2 {
			length = 2
		}
		p.line = make([]float64, length)
		rng := p.Seed
		if rng == 0 {
			rng = 1
		}
		for i := range p.line {
			p.line[i] = noiseStep(&rng)
		}
		p.started = true
	}
	// per-sample loss to hit roughly -60 dB at Decay
	loss := math.Pow(0.001, 1/(math.Max(p.Decay, 0.01)*sampleRate))
	damp := rumpuClamp(p.Damp, 0, 1)*0.45 + 0.5
	for i := 0; i < n; i++ {
		cur := p.line[p.pos]
		next := p.line[(p.pos+1)%len(p.line)]
		avg := (cur*damp + next*(1-damp)) * loss
		p.lowpass = p.lowpass*0.2 + avg*0.8
		p.line[p.pos] = p.lowpass
		p.pos = (p.pos + 1) % len(p.line)
		buf[i] = float32(cur)
	}
	return buf
}

func (g *GrainGen) Render(start int64, n int) []float32 {
	buf, done := g.begin(start, n)
	if done {
		return buf
	}
	if !g.started {
		g.rng = g.Seed
		if g.rng == 0 {
			g.rng = 1
		}
		g.nextOnset = start
		g.started = true
	}
	for i := range buf {
		buf[i] = 0
	}
	end := start + int64(n)
	period := sampleRate / math.Max(g.Rate, 0.1)
	for g.nextOnset < end {
		jit := noiseStep(&g.rng) * g.TimeJit * period * 0.5
		pitch := g.Pitch * (1 + noiseStep(&g.rng)*g.PitchJit*0.5)
		g.grains = append(g.grains, grain{
			onset: g.nextOnset + int64(jit),
			len:   int(math.Max(g.GrainLen*sampleRate, 8)),
			pitch: math.Max(pitch, 0.05),
			noise: g.rng | 1,
		})
		g.rng = g.rng*16007 + 1
		g.nextOnset += int64(period)
	}
	live := g.grains[:0]
	for gi := range g.grains {
		gr := &g.grains[gi]
		finished := gr.addInto(buf, start)
		if !finished {
			live = append(live, *gr)
		}
	}
	g.grains = live
	return buf
}

// addInto renders the grain's overlap with the block and reports whether the
// grain has finished.
func (gr *grain) addInto(buf []float32, start int64) bool {
	for ; gr.pos < gr.len; gr.pos++ {
		idx := gr.onset + int64(float64(gr.pos)/gr.pitch) - start
		if idx < 0 {
			continue
		}
		if idx >= int64(len(buf)) {
			return false
		}
		window := 0.5 - 0.5*math.Cos(2*math.Pi*float64(gr.pos)/float64(gr.len))
		buf[idx] += float32(noiseStep(&gr.noise) * window)
	}
	return true
}

func (b *Burst) Render(start int64, n int) []float32 {
	buf, done := b.begin(start, n)
	if done {
		return buf
	}
	if b.rng == 0 {
		b.rng = b.Seed | 1
	}
	total := int64(math.Max(b.Len*sampleRate, 1))
	for i := 0; i < n; i++ {
		pos := b.pos
		b.pos++
		if pos >= total {
			buf[i] = 0
			continue
		}
		t := float64(pos) / float64(total)
		switch b.Shape {
		case BurstImpulse:
			if pos == 0 {
				buf[i] = 1
			} else {
				buf[i] = 0
			}
		case BurstStick:
			// two sharp spikes with a breath of noise between
			env := math.Exp(-18 * t)
			v := noiseStep(&b.rng) * env
			if pos == 0 || pos == total/3 {
				v += 0.8
			}
			buf[i] = float32(v)
		case BurstBrush:
			env := math.Sin(math.Pi * t) // slow swell and fade
			buf[i] = float32(noiseStep(&b.rng) * env * 0.7)
		case BurstMallet:
			// soft raised-cosine thump, little noise
			env := 0.5 - 0.5*math.Cos(2*math.Pi*math.Min(t*2, 1))
			buf[i] = float32(env + noiseStep(&b.rng)*0.05*env)
		default: // BurstNoise
			env := math.Exp(-9 * t)
			buf[i] = float32(noiseStep(&b.rng) * env)
		}
	}
	return buf
}
