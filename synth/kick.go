package synth

import (
	"github.com/taleva/rumpu"
	"github.com/taleva/rumpu/graph"
)

// buildKick layers a pitch-swept sine with an optional high-frequency click
// transient, a filtered body resonance and a noise tail, each with its own
// envelope, then runs the sum through the saturation stage.
func buildKick(c *trig, p rumpu.KickParams) (graph.Node, float64) {
	t := c.dist.T
	freq := c.pitch(p.Freq)
	decay := c.decay(p.Decay)
	peak := c.peak(p.Level)

	sweep := &graph.Osc{Wave: graph.WaveSine, Freq: c.pitchEnv(freq, p.Sweep*c.dist.Transient, p.SweepTime)}
	sweepEnv := graph.NewParam(0)
	tail := c.ampEnv(sweepEnv, peak, c.attack(0.0005), decay)

	inputs := []graph.Node{&graph.Gain{In: sweep, Env: sweepEnv}}
	gains := []float32{1}

	click := rumpu.CoupleParam(rumpu.Kick, "click", p.Click*c.vr.Excite*c.dist.Transient, t)
	if click > 0.01 {
		hiss := &graph.SVF{
			In:   graph.NewNoise(c.nodeSeed(1)),
			Freq: graph.NewParam(p.ClickFreq * c.vr.Brightness),
			Res:  graph.NewParam(0.4),
			High: 1,
		}
		clickEnv := graph.NewParam(0)
		c.ampEnv(clickEnv, peak*clamp(click, 0, 1), 0, 0.008)
		inputs = append(inputs, &graph.Gain{In: hiss, Env: clickEnv})
		gains = append(gains, 1)
	}

	body := rumpu.CoupleParam(rumpu.Kick, "body", p.Body*c.dist.Body, t)
	if body > 0.01 {
		reso := &graph.SVF{
			In:   &graph.Osc{Wave: graph.WaveTriangle, Freq: graph.NewParam(c.pitch(p.BodyFreq))},
			Freq: graph.NewParam(p.BodyFreq * 2),
			Res:  graph.NewParam(0.5),
			Low:  1,
		}
		bodyEnv := graph.NewParam(0)
		bt := c.ampEnv(bodyEnv, peak*clamp(body, 0, 1)*0.7, c.attack(0.002), decay*0.8)
		if bt > tail {
			tail = bt
		}
		inputs = append(inputs, &graph.Gain{In: reso, Env: bodyEnv})
		gains = append(gains, 1)
	}

	if p.Tail > 0.01 {
		hush := &graph.SVF{
			In:   graph.NewNoise(c.nodeSeed(2)),
			Freq: graph.NewParam(freq * 10 * c.dist.Brightness),
			Res:  graph.NewParam(0.2),
			Low:  1,
		}
		tailEnv := graph.NewParam(0)
		tt := c.ampEnv(tailEnv, peak*p.Tail*0.5, c.attack(0.005), c.decay(p.TailDecay))
		if tt > tail {
			tail = tt
		}
		inputs = append(inputs, &graph.Gain{In: hush, Env: tailEnv})
		gains = append(gains, 1)
	}

	var out graph.Node = &graph.Mix{Inputs: inputs, Gains: gains}
	if p.Drive > 0.01 {
		out = graph.NewShaper(out, p.Drive)
	}
	return out, tail
}
