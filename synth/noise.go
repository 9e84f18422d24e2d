package synth

import (
	"math"

	"github.com/taleva/rumpu"
	"github.com/taleva/rumpu/graph"
)

// buildNoise is the textural voice: a noise body (continuous, or pulsar
// grains at low density) through an enveloped filter and a formant pair, with
// a breath wobble on the output and an optional leading ratchet burst
// sequence before the main body.
func buildNoise(c *trig, p rumpu.NoiseParams) (graph.Node, float64) {
	t := c.dist.T
	decay := c.decay(p.Decay)
	attack := c.attack(p.Attack)
	peak := c.peak(p.Level)

	var src graph.Node
	if p.Density >= 0.5 {
		src = graph.NewNoise(c.nodeSeed(1))
	} else {
		src = &graph.GrainGen{
			Rate:     8 + p.Density*120,
			GrainLen: 0.02,
			Pitch:    p.GrainPitch * c.vr.Pitch,
			TimeJit:  p.GrainJitter,
			PitchJit: p.GrainJitter * 0.5,
			Seed:     c.nodeSeed(1),
		}
	}

	ff := clamp(p.FilterFreq*c.vr.Brightness*c.dist.Brightness, 100, 16000)
	freq := graph.NewParam(ff)
	if p.FilterEnv > 0.01 {
		freq.SetValueAt(c.at, ff*(1+p.FilterEnv*c.dist.Transient))
		freq.ExpRampTo(c.at+int64(p.FilterDecay*sampleRate), ff)
	}
	body := &graph.SVF{
		In:   src,
		Freq: freq,
		Res:  graph.NewParam(clamp(p.FilterQ/20, 0, 0.9)),
		Low:  0.3,
		Band: 1,
	}

	inputs := []graph.Node{body}
	gains := []float32{1}
	if p.Formant > 0.01 {
		fq := rumpu.CoupleParam(rumpu.Noise, "formantq", p.FormantQ, t)
		res := graph.NewParam(clamp(fq/30, 0, 0.95))
		for _, ffreq := range [2]float64{400 + p.Formant*800, 900 + p.Formant*2400} {
			inputs = append(inputs, &graph.SVF{
				In:   src,
				Freq: graph.NewParam(ffreq),
				Res:  res,
				Band: 2,
			})
			gains = append(gains, float32(p.Formant*0.6))
		}
	}
	var out graph.Node = &graph.Mix{Inputs: inputs, Gains: gains}

	// the main body starts after the ratchet burst sequence, when one is set
	main := *c
	offset := 0.0
	if p.Ratchet > 0 {
		offset = float64(p.Ratchet) * p.RatchetTime
		main.at += int64(offset * sampleRate)
	}
	env := graph.NewParam(0)
	tail := offset + main.ampEnv(env, peak, attack, decay)
	var shaped graph.Node = &graph.Gain{In: out, Env: env}

	breath := rumpu.CoupleParam(rumpu.Noise, "breath", p.Breath, t)
	if breath > 0.01 {
		wob := graph.NewParam(1)
		c.lfoRamp(wob, 1, breath*0.5, p.BreathRate, tail)
		shaped = &graph.Gain{In: shaped, Env: wob}
	}

	if p.Ratchet > 0 {
		burst := &graph.SVF{
			In:   graph.NewNoise(c.nodeSeed(2)),
			Freq: graph.NewParam(ff),
			Res:  graph.NewParam(0.5),
			Band: 1.5,
		}
		spikes := graph.NewParam(0)
		step := int64(p.RatchetTime * sampleRate)
		for i := 0; i < p.Ratchet; i++ {
			// later bursts louder, leading into the body
			level := peak * 0.6 * math.Pow(0.75, float64(p.Ratchet-1-i))
			on := c.at + int64(i)*step
			spikes.SetValueAt(on, level)
			spikes.ExpRampTo(on+step*9/10, level*1e-3)
		}
		spikes.SetValueAt(main.at, 0)
		shaped = &graph.Mix{
			Inputs: []graph.Node{shaped, &graph.Gain{In: burst, Env: spikes}},
			Gains:  []float32{1, 1},
		}
	}
	return shaped, tail
}
