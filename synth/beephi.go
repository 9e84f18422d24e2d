package synth

import (
	"math"

	"github.com/taleva/rumpu"
	"github.com/taleva/rumpu/graph"
)

// buildBeepHi is the bell-like high voice: an additive partial bank with
// inharmonic stretch, brightness rolloff and pair-detune shimmer, plus an FM
// layer with its own index contour and optional noise in the modulator path.
func buildBeepHi(c *trig, p rumpu.BeepHiParams) (graph.Node, float64) {
	t := c.dist.T
	freq := c.pitch(p.Freq)
	decay := c.decay(p.Decay)
	attack := c.attack(p.Attack)
	peak := c.peak(p.Level)
	bright := clamp(p.Brightness*c.vr.Brightness*c.dist.Brightness, 0.02, 1)
	inharm := rumpu.CoupleParam(rumpu.BeepHi, "inharmonicity", p.Inharmonicity, t)

	var inputs []graph.Node
	var gains []float32
	tail := 0.0

	for n := 1; n <= p.Partials; n++ {
		// stiff-string stretch, higher partials sharpen with inharmonicity
		fn := freq * float64(n) * math.Sqrt(1+inharm*0.004*float64(n*n))
		if fn > sampleRate*0.45 {
			break
		}
		amp := math.Pow(bright, float64(n-1)) / math.Sqrt(float64(n))
		if amp < 0.003 {
			break
		}
		env := graph.NewParam(0)
		pt := c.ampEnv(env, peak*amp, attack, decay*math.Pow(0.82, float64(n-1)))
		if pt > tail {
			tail = pt
		}
		var osc graph.Node = &graph.Osc{Wave: graph.WaveSine, Freq: graph.NewParam(fn)}
		if p.Shimmer > 0.01 {
			// a detuned twin beats against the partial at ShimmerRate
			twin := &graph.Osc{Wave: graph.WaveSine, Freq: graph.NewParam(fn + p.ShimmerRate)}
			osc = &graph.Mix{
				Inputs: []graph.Node{osc, twin},
				Gains:  []float32{1, float32(p.Shimmer)},
			}
		}
		inputs = append(inputs, &graph.Gain{In: osc, Env: env})
		gains = append(gains, 1)
	}

	index := rumpu.CoupleParam(rumpu.BeepHi, "fmindex", p.FMIndex*c.vr.Excite, t)
	if index > 0.01 {
		var mod graph.Node = &graph.Osc{
			Wave:       graph.WaveSine,
			Freq:       graph.NewParam(freq*p.FMRatio + p.FMDetune),
			StartPhase: p.FMPhase,
			Feedback:   p.FMFeedback,
		}
		if p.FMNoise > 0.01 {
			mod = &graph.Mix{
				Inputs: []graph.Node{mod, graph.NewNoise(c.nodeSeed(1))},
				Gains:  []float32{1, float32(p.FMNoise * 0.5)},
			}
		}
		// attack-decay-sustain contour on the modulation index
		depth := graph.NewParam(0)
		depth.SetValueAt(c.at, 0)
		atk := int64(math.Max(p.FMAttack, 0.001) * sampleRate)
		depth.LinearRampTo(c.at+atk, index*0.15)
		depth.ExpRampTo(c.at+atk+int64(p.FMDecay*sampleRate), math.Max(index*0.15*p.FMSustain, 1e-5))
		carrier := &graph.Osc{
			Wave:     graph.WaveSine,
			Freq:     graph.NewParam(freq),
			PhaseMod: mod,
			ModDepth: depth,
		}
		env := graph.NewParam(0)
		ft := c.ampEnv(env, peak*0.7, attack, decay)
		if ft > tail {
			tail = ft
		}
		inputs = append(inputs, &graph.Gain{In: carrier, Env: env})
		gains = append(gains, 1)
	}
	if len(inputs) == 0 {
		return nil, 0
	}
	return &graph.Mix{Inputs: inputs, Gains: gains}, tail
}
