package rumpu

import "math"

type (
	// VariationProfile is the correlated per-trigger micro-jitter applied
	// across the synthesis parameters of one trigger. All six coefficients are
	// derived from a single triangular draw, so they co-vary: a slightly
	// louder hit is also slightly snappier and brighter, the way a human
	// player drifts.
	VariationProfile struct {
		Level      float64
		Decay      float64
		Pitch      float64
		Brightness float64
		Attack     float64
		Excite     float64
	}

	// DistanceProfile is the strike-position macro: t < 0 pulls towards the
	// center of the struck surface (warmer, longer), t > 0 towards the edge
	// (brighter, shorter).
	DistanceProfile struct {
		T          float64 // bipolar position, 0 = neutral
		Level      float64
		Decay      float64
		Brightness float64
		Attack     float64
		Transient  float64
		Body       float64
	}

	// CouplingMode selects how ApplyCenterEdge combines the coefficient with
	// the base value.
	CouplingMode int

	// Coupling is one tunable parameter's bespoke response to strike
	// position: how much it loosens when struck at the center and dampens at
	// the edge. Tables of these, indexed by VoiceType, replace the per-voice
	// conditional soup of the usual approach; new couplings are added to the
	// table, not to the synthesis code.
	Coupling struct {
		Center float64
		Edge   float64
		Mode   CouplingMode
	}
)

const (
	CoupleMul CouplingMode = iota
	CoupleAdd
)

var identityVariation = VariationProfile{Level: 1, Decay: 1, Pitch: 1, Brightness: 1, Attack: 1, Excite: 1}

// ComputeVariation draws one correlated offset from r and spreads it over the
// six variation coefficients, scaled by amount (0..1). Amounts below 0.001
// return the identity profile without consuming a draw, so a disabled
// variation knob does not perturb the random stream.
func ComputeVariation(amount float64, r *Rand) VariationProfile {
	if amount < 0.001 {
		return identityVariation
	}
	offset := r.Triangular() * amount
	return VariationProfile{
		Level:      1 + offset*0.25,
		Decay:      1 + offset*0.35,
		Pitch:      1 + offset*0.05,
		Brightness: 1 + offset*0.4,
		Attack:     1 - offset*0.3, // louder hits start snappier
		Excite:     1 + offset*0.5,
	}
}

var identityDistance = DistanceProfile{Level: 1, Decay: 1, Brightness: 1, Attack: 1, Transient: 1, Body: 1}

// ComputeDistance maps a strike position in [0,1] (0.5 = neutral center of
// the control, not of the surface) to a DistanceProfile. Positions within 1%
// of neutral return the identity profile. The brightness curve is
// log-compressed so extreme edge strikes do not run the filters away.
func ComputeDistance(position float64) DistanceProfile {
	t := (clampFloat(position, 0, 1) - 0.5) * 2
	if math.Abs(t) < 0.01 {
		return identityDistance
	}
	center := math.Max(0, -t)
	edge := math.Max(0, t)
	brightEdge := math.Log1p(edge*2.2) / math.Log1p(2.2)
	return DistanceProfile{
		T:          t,
		Level:      1 - edge*0.25 + center*0.1,
		Decay:      1 + center*0.45 - edge*0.35,
		Brightness: 1 - center*0.3 + brightEdge*0.85,
		Attack:     1 + center*0.4 - edge*0.25,
		Transient:  1 + edge*0.6 - center*0.35,
		Body:       1 + center*0.5 - edge*0.4,
	}
}

// ApplyCenterEdge is the one primitive every voice uses for its per-parameter
// distance coupling. Center pull is max(0,-t), edge pull max(0,t); the two
// coefficients weigh the pulls and Mode decides whether the result scales or
// shifts the base value.
func ApplyCenterEdge(value, t float64, c Coupling) float64 {
	center := math.Max(0, -t)
	edge := math.Max(0, t)
	amount := center*c.Center + edge*c.Edge
	if c.Mode == CoupleAdd {
		return value + amount
	}
	return value * (1 + amount)
}

// DistanceCouplings lists, per voice, the extra parameter couplings beyond
// the shared DistanceProfile: drive, body resonance, filter Q and the like.
// Keys match the parameter struct field names in lowercase.
var DistanceCouplings = [NumVoiceTypes]map[string]Coupling{
	Sub: {
		"drive":    {Center: 0.3, Edge: -0.2, Mode: CoupleMul},
		"harmonic": {Center: -0.25, Edge: 0.4, Mode: CoupleMul},
	},
	Kick: {
		"click": {Center: -0.5, Edge: 0.9, Mode: CoupleMul},
		"body":  {Center: 0.4, Edge: -0.3, Mode: CoupleMul},
	},
	Click: {
		"density": {Center: -0.2, Edge: 0.35, Mode: CoupleMul},
	},
	BeepHi: {
		"inharmonicity": {Center: -0.1, Edge: 0.25, Mode: CoupleAdd},
		"fmindex":       {Center: -0.3, Edge: 0.5, Mode: CoupleMul},
	},
	BeepLo: {
		"warp": {Center: -0.15, Edge: 0.3, Mode: CoupleAdd},
		"tilt": {Center: 0.2, Edge: -0.35, Mode: CoupleAdd},
	},
	Noise: {
		"formantq": {Center: 0.35, Edge: -0.25, Mode: CoupleMul},
		"breath":   {Center: 0.3, Edge: -0.2, Mode: CoupleMul},
	},
	Membrane: {
		"wirebuzz": {Center: -0.4, Edge: 0.6, Mode: CoupleMul},
		"modespread": {
			Center: -0.1, Edge: 0.2, Mode: CoupleAdd,
		},
	},
}

// CoupleParam applies the voice's table-driven coupling for the named
// parameter, returning the value unchanged when the voice has no coupling for
// it.
func CoupleParam(voice VoiceType, name string, value, t float64) float64 {
	c, ok := DistanceCouplings[voice][name]
	if !ok {
		return value
	}
	return ApplyCenterEdge(value, t, c)
}
