package synth

import (
	"github.com/taleva/rumpu"
	"github.com/taleva/rumpu/graph"
)

// buildSub is the bass voice: a selectable-waveform oscillator with an
// exponential pitch sweep, optional 2nd-harmonic and sub-octave layers, and a
// saturation stage.
func buildSub(c *trig, p rumpu.SubParams) (graph.Node, float64) {
	t := c.dist.T
	freq := c.pitch(p.Freq)
	decay := c.decay(p.Decay)
	attack := c.attack(p.Attack)

	wave := graph.WaveSine
	switch p.Wave {
	case 1:
		wave = graph.WaveTriangle
	case 2:
		wave = graph.WaveSaw
	}

	sweep := 1 + p.PitchEnv*c.dist.Transient
	main := &graph.Osc{Wave: wave, Freq: c.pitchEnv(freq, sweep, p.PitchDecay)}

	inputs := []graph.Node{main}
	gains := []float32{1}

	harmonic := rumpu.CoupleParam(rumpu.Sub, "harmonic", p.Harmonic, t) * c.vr.Brightness * c.dist.Brightness
	if harmonic > 0.01 {
		h := &graph.Osc{Wave: graph.WaveSine, Freq: c.pitchEnv(freq*2, sweep, p.PitchDecay)}
		inputs = append(inputs, h)
		gains = append(gains, float32(clamp(harmonic, 0, 1)*0.5))
	}
	if p.SubOctave > 0.01 {
		sub := &graph.Osc{Wave: graph.WaveSine, Freq: c.pitchEnv(freq*0.5, sweep, p.PitchDecay)}
		inputs = append(inputs, sub)
		gains = append(gains, float32(p.SubOctave*c.dist.Body*0.6))
	}

	var body graph.Node = &graph.Mix{Inputs: inputs, Gains: gains}
	drive := rumpu.CoupleParam(rumpu.Sub, "drive", p.Drive*c.vr.Excite, t)
	if drive > 0.01 {
		body = graph.NewShaper(body, drive)
	}

	env := graph.NewParam(0)
	tail := c.ampEnv(env, c.peak(p.Level), attack, decay)
	return &graph.Gain{In: body, Env: env}, tail
}
