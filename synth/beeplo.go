package synth

import (
	"math"

	"github.com/taleva/rumpu"
	"github.com/taleva/rumpu/graph"
)

// Mode frequency ratio tables for the blend's modal half. The bell set is the
// inharmonic series of a struck idiophone; ModeRatio interpolates between
// them.
var (
	harmonicRatios = [6]float64{1, 2, 3, 4, 5, 6}
	bellRatios     = [6]float64{1, 2.32, 3.85, 5.11, 6.37, 7.72}
)

// buildBeepLo crossfades a Karplus-Strong pluck against a six-mode resonator
// bank with equal power. Spread pushes the upper modes apart, Warp bends the
// whole series and Tilt shifts energy between the low and high modes.
func buildBeepLo(c *trig, p rumpu.BeepLoParams) (graph.Node, float64) {
	t := c.dist.T
	freq := c.pitch(p.Freq)
	decay := c.decay(p.Decay)
	peak := c.peak(p.Level)
	warp := rumpu.CoupleParam(rumpu.BeepLo, "warp", p.Warp, t)
	tilt := rumpu.CoupleParam(rumpu.BeepLo, "tilt", p.Tilt, t) * c.vr.Brightness

	pluckGain, modalGain := equalPower(p.Blend)

	var inputs []graph.Node
	var gains []float32
	if pluckGain > 0.01 {
		inputs = append(inputs, &graph.Pluck{
			Freq:  freq,
			Damp:  p.PluckDamp / c.dist.Brightness,
			Decay: decay,
			Seed:  c.nodeSeed(1),
		})
		gains = append(gains, pluckGain)
	}
	if modalGain > 0.01 {
		modes := make([]graph.Mode, 0, len(harmonicRatios))
		for i := range harmonicRatios {
			ratio := harmonicRatios[i] + (bellRatios[i]-harmonicRatios[i])*p.ModeRatio
			ratio = 1 + (ratio-1)*(1+p.Spread*0.5)
			ratio = math.Pow(ratio, 1+warp*0.25)
			gain := math.Pow(0.78, float64(i))
			if tilt > 0 {
				gain *= 1 + tilt*float64(i)*0.3
			} else {
				gain *= math.Pow(1+(-tilt)*0.5, -float64(i))
			}
			modes = append(modes, graph.Mode{
				Freq:  freq * ratio,
				Decay: decay * math.Pow(0.7, float64(i)) * c.dist.Body,
				Gain:  gain,
			})
		}
		inputs = append(inputs, &graph.ModalBank{
			In: &graph.Burst{
				Shape: graph.BurstMallet,
				Len:   0.004 * c.vr.Excite,
				Seed:  c.nodeSeed(2),
			},
			Modes: modes,
		})
		gains = append(gains, modalGain)
	}
	if len(inputs) == 0 {
		return nil, 0
	}
	env := graph.NewParam(0)
	tail := c.ampEnv(env, peak, c.attack(0.001), decay)
	return &graph.Gain{In: &graph.Mix{Inputs: inputs, Gains: gains}, Env: env}, tail
}
