package synth

import (
	"math"

	"github.com/taleva/rumpu/graph"
)

// nodeSeed derives an independent noise stream for the n-th noise consumer of
// a trigger, so adding a layer to one voice never shifts another's stream.
func (c *trig) nodeSeed(n uint32) uint32 {
	s := c.seed*2654435761 + n*40503
	if s == 0 {
		s = 1
	}
	return s
}

// pitchEnv schedules the classic strike pitch sweep on a frequency param:
// start at base*mult, fall exponentially to base over decay seconds.
func (c *trig) pitchEnv(base, mult, decay float64) *graph.Param {
	p := graph.NewParam(base)
	if mult <= 1.001 || decay <= 0 {
		return p
	}
	p.SetValueAt(c.at, base*mult)
	p.ExpRampTo(c.at+int64(decay*sampleRate), base)
	return p
}

// lfoRamp pre-renders a triangle LFO as piecewise-linear automation over dur
// seconds: one ramp per quarter cycle through +depth, base, -depth, base.
// Params cannot host live modulators, but an envelope-length LFO is fully
// known at schedule time.
func (c *trig) lfoRamp(p *graph.Param, base, depth, rate, dur float64) {
	if depth <= 0 || rate <= 0 || dur <= 0 {
		return
	}
	quarter := sampleRate / (4 * rate)
	steps := int(dur * sampleRate / quarter)
	if steps > 128 {
		steps = 128
	}
	targets := [4]float64{base + depth, base, base - depth, base}
	p.SetValueAt(c.at, base)
	for i := 1; i <= steps; i++ {
		p.LinearRampTo(c.at+int64(float64(i)*quarter), targets[(i-1)%4])
	}
}

// equalPower returns the constant-power gain pair for a 0..1 blend.
func equalPower(blend float64) (a, b float32) {
	blend = clamp(blend, 0, 1)
	return float32(math.Cos(blend * math.Pi / 2)), float32(math.Sin(blend * math.Pi / 2))
}
