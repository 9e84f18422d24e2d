package synth

import (
	"math"

	"github.com/taleva/rumpu"
	"github.com/taleva/rumpu/graph"
)

type material struct {
	name   string
	ratios []float64 // mode frequencies as multiples of the fundamental
	decays []float64 // per-mode decay scale
	gains  []float64
}

// The membrane material table. Ratios are measured-drumhead inharmonic
// series; the materials differ in stiffness (ratio stretch), damping and
// spectral balance.
var materials = [rumpu.NumMaterials]material{
	{
		name:   "mylar",
		ratios: []float64{1, 1.59, 2.14, 2.30, 2.65, 2.92, 3.16, 3.50},
		decays: []float64{1, 0.72, 0.55, 0.50, 0.42, 0.36, 0.31, 0.27},
		gains:  []float64{1, 0.62, 0.45, 0.40, 0.30, 0.24, 0.18, 0.14},
	},
	{
		name:   "calfskin",
		ratios: []float64{1, 1.50, 1.98, 2.23, 2.49, 2.80, 3.05},
		decays: []float64{1, 0.60, 0.44, 0.38, 0.30, 0.25, 0.20},
		gains:  []float64{1, 0.72, 0.50, 0.38, 0.26, 0.18, 0.12},
	},
	{
		name:   "kevlar",
		ratios: []float64{1, 1.68, 2.28, 2.55, 2.98, 3.35, 3.68, 4.02},
		decays: []float64{1, 0.80, 0.68, 0.62, 0.55, 0.47, 0.41, 0.36},
		gains:  []float64{1, 0.55, 0.42, 0.38, 0.32, 0.26, 0.22, 0.17},
	},
	{
		name:   "metal",
		ratios: []float64{1, 2.00, 2.76, 3.51, 4.16, 4.85, 5.42},
		decays: []float64{1, 0.95, 0.88, 0.80, 0.74, 0.66, 0.58},
		gains:  []float64{1, 0.68, 0.60, 0.52, 0.44, 0.36, 0.28},
	},
}

// buildMembrane excites a material-table modal bank with the selected strike
// and layers the optional sympathetic wire buzz on top.
func buildMembrane(c *trig, p rumpu.MembraneParams) (graph.Node, float64) {
	t := c.dist.T
	freq := c.pitch(p.Freq)
	decay := c.decay(p.Decay) * c.dist.Body
	peak := c.peak(p.Level)
	mat := materials[p.Material]
	spread := rumpu.CoupleParam(rumpu.Membrane, "modespread", p.ModeSpread, t)

	modes := make([]graph.Mode, len(mat.ratios))
	for i := range mat.ratios {
		ratio := 1 + (mat.ratios[i]-1)*(1+spread*0.6)
		gain := mat.gains[i]
		if i > 0 {
			gain *= c.dist.Brightness
		}
		modes[i] = graph.Mode{
			Freq:  freq * ratio,
			Decay: math.Max(decay*mat.decays[i], 0.01),
			Gain:  gain,
		}
	}
	strike := &graph.Burst{
		Shape: graph.BurstShape(p.Exciter),
		Len:   0.004 * c.vr.Excite * c.dist.Transient,
		Seed:  c.nodeSeed(1),
	}
	bank := &graph.ModalBank{In: strike, Modes: modes}

	env := graph.NewParam(0)
	tail := c.ampEnv(env, peak, c.attack(0.0008), decay)
	var out graph.Node = &graph.Gain{In: bank, Env: env}

	buzz := rumpu.CoupleParam(rumpu.Membrane, "wirebuzz", p.WireBuzz*c.vr.Excite, t)
	if buzz > 0.01 {
		// dense short grains read as the snare-wire rattle
		rattle := &graph.SVF{
			In: &graph.GrainGen{
				Rate:     90,
				GrainLen: 0.006,
				Pitch:    2,
				TimeJit:  0.6,
				PitchJit: 0.4,
				Seed:     c.nodeSeed(2),
			},
			Freq: graph.NewParam(2500 * c.dist.Brightness),
			Res:  graph.NewParam(0.3),
			High: 1,
			Band: 0.5,
		}
		buzzEnv := graph.NewParam(0)
		bt := c.ampEnv(buzzEnv, peak*clamp(buzz, 0, 1)*0.6, 0.001, c.decay(p.WireDecay))
		if bt > tail {
			tail = bt
		}
		out = &graph.Mix{
			Inputs: []graph.Node{out, &graph.Gain{In: rattle, Env: buzzEnv}},
			Gains:  []float32{1, 1},
		}
	}
	return out, tail
}
