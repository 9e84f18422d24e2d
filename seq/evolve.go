package seq

import (
	"github.com/taleva/rumpu"
)

// evolveLane mutates one lane at a bar boundary. Nine strategies, each
// individually toggleable and scaled by the config's intensity, write
// straight into the live lane fields the next steps read. Everything here is
// reversible through the lane's home snapshot.
func (s *Scheduler) evolveLane(l *rumpu.Lane) {
	cfg := l.Evolve
	in := cfg.Intensity
	if in <= 0 {
		return
	}
	r := s.rand

	if cfg.Rotation && r.Float() < in {
		l.Rotation = mod(l.Rotation+stepDelta(r), l.Steps)
		l.Regenerate()
	}
	if cfg.HitCount && r.Float() < in*0.6 {
		l.Hits = clampInt(l.Hits+stepDelta(r), 1, l.Steps)
		l.Regenerate()
	}
	if cfg.Velocity {
		// breathing: the whole expression contour swells or sinks together
		breath := 1 + r.Triangular()*0.15*in
		ensureSubLane(&l.Expression, l.Steps, 1)
		for i := range l.Expression.Values {
			l.Expression.Values[i] = clamp(l.Expression.Values[i]*breath, 0.1, 1)
		}
	}
	if cfg.Swing {
		l.Swing = clamp(l.Swing+r.Triangular()*0.08*in, 0, 0.75)
	}
	if cfg.Probability {
		l.Probability = clamp(l.Probability+r.Triangular()*0.12*in, 0.05, 1)
	}
	if cfg.Morph {
		if len(l.Morph.Values) > 0 {
			drift := r.Triangular() * 0.1 * in
			for i := range l.Morph.Values {
				l.Morph.Values[i] = clamp(l.Morph.Values[i]+drift, 0, 1)
			}
		} else if l.Morph.Steps > 0 {
			s.morphDraw[l.ID] = clamp(s.morphDraw[l.ID]+r.Triangular()*0.2*in, 0, 1)
		}
	}
	if cfg.GhostNotes && r.Float() < in {
		// a quiet extra hit on a silent step
		step := r.Intn(l.Steps)
		for i := 0; i < l.Steps; i++ {
			probe := (step + i) % l.Steps
			if !l.Pattern.Get(probe) {
				l.Pattern.Set(probe, true)
				if probe < len(l.StepProb) {
					l.StepProb[probe] = 0.35
				}
				break
			}
		}
	}
	if cfg.Ratchet && r.Float() < in*0.7 {
		step := r.Intn(l.Steps)
		if step < len(l.StepRatchet) {
			if l.StepRatchet[step] > 1 {
				l.StepRatchet[step] = 0
			} else {
				l.StepRatchet[step] = 2 + r.Intn(2)
			}
		}
	}
	if cfg.PitchWalk {
		ensureSubLane(&l.Pitch, 4, 0)
		walk := float64(stepDelta(r)) * in
		for i := range l.Pitch.Values {
			l.Pitch.Values[i] = clamp(l.Pitch.Values[i]+walk, -12, 12)
		}
	}
}

// ensureSubLane gives an empty sub-lane a flat value array so a strategy has
// something to mutate.
func ensureSubLane(sl *rumpu.SubLane, steps int, fill float64) {
	if len(sl.Values) > 0 {
		return
	}
	if sl.Steps <= 0 {
		sl.Steps = steps
	}
	sl.Values = make([]float64, sl.Steps)
	for i := range sl.Values {
		sl.Values[i] = fill
	}
}

// stepDelta draws -1 or +1.
func stepDelta(r *rumpu.Rand) int {
	if r.Float() < 0.5 {
		return -1
	}
	return 1
}

func mod(v, n int) int {
	v %= n
	if v < 0 {
		v += n
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
