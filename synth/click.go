package synth

import (
	"math"

	"github.com/taleva/rumpu"
	"github.com/taleva/rumpu/graph"
)

// buildClick produces the short transient voice. Discrete modes pick one
// excitation (impulse, filtered noise, pitched, multigrain); with the color
// control active, a single scalar crossfades across the impulse, noise and
// pitched spectral characters instead.
func buildClick(c *trig, p rumpu.ClickParams) (graph.Node, float64) {
	t := c.dist.T
	freq := c.pitch(p.Freq) * c.dist.Brightness
	decay := c.decay(p.Decay)
	peak := c.peak(p.Level)

	var wImpulse, wNoise, wPitched, wGrain float64
	if p.UseColor {
		// equal-spaced crossfade points at 0, 0.5 and 1
		wImpulse = math.Max(0, 1-p.Color*2)
		wNoise = 1 - math.Abs(p.Color*2-1)
		wPitched = math.Max(0, p.Color*2-1)
	} else {
		switch p.Mode {
		case 0:
			wImpulse = 1
		case 2:
			wPitched = 1
		case 3:
			wGrain = 1
		default:
			wNoise = 1
		}
	}

	var inputs []graph.Node
	var gains []float32
	add := func(n graph.Node, w float64) {
		if w < 0.01 {
			return
		}
		env := graph.NewParam(0)
		c.ampEnv(env, peak*w, 0, decay)
		inputs = append(inputs, &graph.Gain{In: n, Env: env})
		gains = append(gains, 1)
	}

	res := clamp(0.5+p.Brightness*c.vr.Brightness*0.45, 0, 0.95)
	add(&graph.SVF{
		In:   &graph.Burst{Shape: graph.BurstImpulse, Len: 0.001, Seed: c.nodeSeed(1)},
		Freq: graph.NewParam(freq),
		Res:  graph.NewParam(res),
		Band: 12, // the impulse ping needs make-up gain
	}, wImpulse)
	add(&graph.SVF{
		In:   graph.NewNoise(c.nodeSeed(2)),
		Freq: graph.NewParam(freq),
		Res:  graph.NewParam(res * 0.8),
		Band: 2,
	}, wNoise)
	add(&graph.Osc{Wave: graph.WaveSine, Freq: graph.NewParam(freq)}, wPitched)
	if wGrain >= 0.01 {
		density := rumpu.CoupleParam(rumpu.Click, "density", p.Density*c.vr.Excite, t)
		add(&graph.GrainGen{
			Rate:     math.Max(density, 1) / decay,
			GrainLen: 0.004,
			Pitch:    freq / 2500,
			TimeJit:  0.4,
			PitchJit: 0.2,
			Seed:     c.nodeSeed(3),
		}, wGrain)
	}
	if len(inputs) == 0 {
		return nil, 0
	}
	return &graph.Mix{Inputs: inputs, Gains: gains}, decay
}
