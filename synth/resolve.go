package synth

import "github.com/taleva/rumpu"

// The resolve functions overlay a morphed parameter map on the direct
// parameter values. A nil map, or any missing key, leaves the direct value in
// place; the maps are then clamped by the same rules as slider input. Keys
// match the yaml names of the parameter structs.

func resolveSub(p rumpu.SubParams, m rumpu.ParamMap) rumpu.SubParams {
	if m != nil {
		p.Wave = int(m.Get("wave", float64(p.Wave)))
		p.Freq = m.Get("freq", p.Freq)
		p.PitchEnv = m.Get("pitchenv", p.PitchEnv)
		p.PitchDecay = m.Get("pitchdecay", p.PitchDecay)
		p.Attack = m.Get("attack", p.Attack)
		p.Decay = m.Get("decay", p.Decay)
		p.Harmonic = m.Get("harmonic", p.Harmonic)
		p.SubOctave = m.Get("suboctave", p.SubOctave)
		p.Drive = m.Get("drive", p.Drive)
		p.Clamp()
	}
	return p
}

func resolveKick(p rumpu.KickParams, m rumpu.ParamMap) rumpu.KickParams {
	if m != nil {
		p.Freq = m.Get("freq", p.Freq)
		p.Sweep = m.Get("sweep", p.Sweep)
		p.SweepTime = m.Get("sweeptime", p.SweepTime)
		p.Decay = m.Get("decay", p.Decay)
		p.Click = m.Get("click", p.Click)
		p.ClickFreq = m.Get("clickfreq", p.ClickFreq)
		p.Body = m.Get("body", p.Body)
		p.BodyFreq = m.Get("bodyfreq", p.BodyFreq)
		p.Tail = m.Get("tail", p.Tail)
		p.TailDecay = m.Get("taildecay", p.TailDecay)
		p.Drive = m.Get("drive", p.Drive)
		p.Clamp()
	}
	return p
}

func resolveClick(p rumpu.ClickParams, m rumpu.ParamMap) rumpu.ClickParams {
	if m != nil {
		p.Mode = int(m.Get("mode", float64(p.Mode)))
		if _, ok := m["color"]; ok {
			p.UseColor = true
		}
		p.Color = m.Get("color", p.Color)
		p.Freq = m.Get("freq", p.Freq)
		p.Decay = m.Get("decay", p.Decay)
		p.Density = m.Get("density", p.Density)
		p.Brightness = m.Get("brightness", p.Brightness)
		p.Clamp()
	}
	return p
}

func resolveBeepHi(p rumpu.BeepHiParams, m rumpu.ParamMap) rumpu.BeepHiParams {
	if m != nil {
		p.Freq = m.Get("freq", p.Freq)
		p.Partials = int(m.Get("partials", float64(p.Partials)))
		p.Inharmonicity = m.Get("inharmonicity", p.Inharmonicity)
		p.Brightness = m.Get("brightness", p.Brightness)
		p.Shimmer = m.Get("shimmer", p.Shimmer)
		p.ShimmerRate = m.Get("shimmerrate", p.ShimmerRate)
		p.Attack = m.Get("attack", p.Attack)
		p.Decay = m.Get("decay", p.Decay)
		p.FMRatio = m.Get("fmratio", p.FMRatio)
		p.FMDetune = m.Get("fmdetune", p.FMDetune)
		p.FMPhase = m.Get("fmphase", p.FMPhase)
		p.FMFeedback = m.Get("fmfeedback", p.FMFeedback)
		p.FMIndex = m.Get("fmindex", p.FMIndex)
		p.FMAttack = m.Get("fmattack", p.FMAttack)
		p.FMDecay = m.Get("fmdecay", p.FMDecay)
		p.FMSustain = m.Get("fmsustain", p.FMSustain)
		p.FMNoise = m.Get("fmnoise", p.FMNoise)
		p.Clamp()
	}
	return p
}

func resolveBeepLo(p rumpu.BeepLoParams, m rumpu.ParamMap) rumpu.BeepLoParams {
	if m != nil {
		p.Freq = m.Get("freq", p.Freq)
		p.Blend = m.Get("blend", p.Blend)
		p.PluckDamp = m.Get("pluckdamp", p.PluckDamp)
		p.ModeRatio = m.Get("moderatio", p.ModeRatio)
		p.Spread = m.Get("spread", p.Spread)
		p.Warp = m.Get("warp", p.Warp)
		p.Tilt = m.Get("tilt", p.Tilt)
		p.Decay = m.Get("decay", p.Decay)
		p.Clamp()
	}
	return p
}

func resolveNoise(p rumpu.NoiseParams, m rumpu.ParamMap) rumpu.NoiseParams {
	if m != nil {
		p.FilterFreq = m.Get("filterfreq", p.FilterFreq)
		p.FilterQ = m.Get("filterq", p.FilterQ)
		p.FilterEnv = m.Get("filterenv", p.FilterEnv)
		p.FilterDecay = m.Get("filterdecay", p.FilterDecay)
		p.Formant = m.Get("formant", p.Formant)
		p.FormantQ = m.Get("formantq", p.FormantQ)
		p.Breath = m.Get("breath", p.Breath)
		p.BreathRate = m.Get("breathrate", p.BreathRate)
		p.Density = m.Get("density", p.Density)
		p.GrainPitch = m.Get("grainpitch", p.GrainPitch)
		p.GrainJitter = m.Get("grainjitter", p.GrainJitter)
		p.Ratchet = int(m.Get("ratchet", float64(p.Ratchet)))
		p.RatchetTime = m.Get("ratchettime", p.RatchetTime)
		p.Attack = m.Get("attack", p.Attack)
		p.Decay = m.Get("decay", p.Decay)
		p.Clamp()
	}
	return p
}

func resolveMembrane(p rumpu.MembraneParams, m rumpu.ParamMap) rumpu.MembraneParams {
	if m != nil {
		p.Material = int(m.Get("material", float64(p.Material)))
		p.Freq = m.Get("freq", p.Freq)
		p.Exciter = int(m.Get("exciter", float64(p.Exciter)))
		p.ModeSpread = m.Get("modespread", p.ModeSpread)
		p.WireBuzz = m.Get("wirebuzz", p.WireBuzz)
		p.WireDecay = m.Get("wiredecay", p.WireDecay)
		p.Decay = m.Get("decay", p.Decay)
		p.Clamp()
	}
	return p
}
