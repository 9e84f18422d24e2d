package rumpu

type (
	// VoiceCommon holds the parameters every voice shares. Levels and sends
	// are 0..1 linear gains; Variation is the micro-jitter amount and Distance
	// the default strike position (0.5 = neutral) used when a trigger carries
	// no override.
	VoiceCommon struct {
		Level      float64 `yaml:"level"`
		Variation  float64 `yaml:"variation,omitempty"`
		Distance   float64 `yaml:"distance"`
		DelaySend  float64 `yaml:"delaysend,omitempty"`
		ReverbSend float64 `yaml:"reverbsend,omitempty"`
	}

	// SubParams: selectable-waveform bass with exponential pitch envelope,
	// optional 2nd-harmonic and sub-octave layers and a saturation stage.
	SubParams struct {
		VoiceCommon `yaml:",inline"`
		Wave        int     `yaml:"wave"` // 0 sine, 1 triangle, 2 saw
		Freq        float64 `yaml:"freq"` // Hz, 20..200
		PitchEnv    float64 `yaml:"pitchenv,omitempty"`
		PitchDecay  float64 `yaml:"pitchdecay,omitempty"`
		Attack      float64 `yaml:"attack,omitempty"`
		Decay       float64 `yaml:"decay"`
		Harmonic    float64 `yaml:"harmonic,omitempty"`
		SubOctave   float64 `yaml:"suboctave,omitempty"`
		Drive       float64 `yaml:"drive,omitempty"`
	}

	// KickParams: pitch-swept sine with optional click transient, filtered
	// body layer and noise tail.
	KickParams struct {
		VoiceCommon `yaml:",inline"`
		Freq        float64 `yaml:"freq"`
		Sweep       float64 `yaml:"sweep"` // sweep start multiple of Freq
		SweepTime   float64 `yaml:"sweeptime"`
		Decay       float64 `yaml:"decay"`
		Click       float64 `yaml:"click,omitempty"`
		ClickFreq   float64 `yaml:"clickfreq,omitempty"`
		Body        float64 `yaml:"body,omitempty"`
		BodyFreq    float64 `yaml:"bodyfreq,omitempty"`
		Tail        float64 `yaml:"tail,omitempty"`
		TailDecay   float64 `yaml:"taildecay,omitempty"`
		Drive       float64 `yaml:"drive,omitempty"`
	}

	// ClickParams: four discrete excitation modes, or a continuous exciter
	// color crossfading the spectral characters when UseColor is set.
	ClickParams struct {
		VoiceCommon `yaml:",inline"`
		Mode        int     `yaml:"mode"` // 0 impulse, 1 filtered noise, 2 pitched, 3 multigrain
		UseColor    bool    `yaml:"usecolor,omitempty"`
		Color       float64 `yaml:"color,omitempty"` // 0..1 across the spectral characters
		Freq        float64 `yaml:"freq"`
		Decay       float64 `yaml:"decay"`
		Density     float64 `yaml:"density,omitempty"` // grains in multigrain mode
		Brightness  float64 `yaml:"brightness,omitempty"`
	}

	// BeepHiParams: additive partial bank plus an FM layer.
	BeepHiParams struct {
		VoiceCommon   `yaml:",inline"`
		Freq          float64 `yaml:"freq"`
		Partials      int     `yaml:"partials"`
		Inharmonicity float64 `yaml:"inharmonicity,omitempty"`
		Brightness    float64 `yaml:"brightness"`
		Shimmer       float64 `yaml:"shimmer,omitempty"`
		ShimmerRate   float64 `yaml:"shimmerrate,omitempty"`
		Attack        float64 `yaml:"attack,omitempty"`
		Decay         float64 `yaml:"decay"`
		FMRatio       float64 `yaml:"fmratio,omitempty"`
		FMDetune      float64 `yaml:"fmdetune,omitempty"`
		FMPhase       float64 `yaml:"fmphase,omitempty"`
		FMFeedback    float64 `yaml:"fmfeedback,omitempty"`
		FMIndex       float64 `yaml:"fmindex,omitempty"`
		FMAttack      float64 `yaml:"fmattack,omitempty"`
		FMDecay       float64 `yaml:"fmdecay,omitempty"`
		FMSustain     float64 `yaml:"fmsustain,omitempty"`
		FMNoise       float64 `yaml:"fmnoise,omitempty"`
	}

	// BeepLoParams: equal-power blend of a Karplus-Strong pluck and a 6-mode
	// modal resonator bank.
	BeepLoParams struct {
		VoiceCommon `yaml:",inline"`
		Freq        float64 `yaml:"freq"`
		Blend       float64 `yaml:"blend"` // 0 pluck .. 1 modal
		PluckDamp   float64 `yaml:"pluckdamp,omitempty"`
		ModeRatio   float64 `yaml:"moderatio"` // 0 harmonic .. 1 bell-like
		Spread      float64 `yaml:"spread,omitempty"`
		Warp        float64 `yaml:"warp,omitempty"`
		Tilt        float64 `yaml:"tilt,omitempty"` // spectral tilt, -1..1
		Decay       float64 `yaml:"decay"`
	}

	// NoiseParams: filtered noise body with formant bank, breath LFO, filter
	// envelope, pulsar grains at low density and an optional leading ratchet
	// burst.
	NoiseParams struct {
		VoiceCommon `yaml:",inline"`
		FilterFreq  float64 `yaml:"filterfreq"`
		FilterQ     float64 `yaml:"filterq,omitempty"`
		FilterEnv   float64 `yaml:"filterenv,omitempty"`
		FilterDecay float64 `yaml:"filterdecay,omitempty"`
		Formant     float64 `yaml:"formant,omitempty"`
		FormantQ    float64 `yaml:"formantq,omitempty"`
		Breath      float64 `yaml:"breath,omitempty"`
		BreathRate  float64 `yaml:"breathrate,omitempty"`
		Density     float64 `yaml:"density"` // < 0.5 switches to grains
		GrainPitch  float64 `yaml:"grainpitch,omitempty"`
		GrainJitter float64 `yaml:"grainjitter,omitempty"`
		Ratchet     int     `yaml:"ratchet,omitempty"`
		RatchetTime float64 `yaml:"ratchettime,omitempty"`
		Attack      float64 `yaml:"attack,omitempty"`
		Decay       float64 `yaml:"decay"`
	}

	// MembraneParams: modal bank derived from a material table, excited by a
	// selectable exciter, with an optional sympathetic wire-buzz layer.
	MembraneParams struct {
		VoiceCommon `yaml:",inline"`
		Material    int     `yaml:"material"` // index into the material table
		Freq        float64 `yaml:"freq"`
		Exciter     int     `yaml:"exciter"` // 0 impulse, 1 noise, 2 stick, 3 brush, 4 mallet
		ModeSpread  float64 `yaml:"modespread,omitempty"`
		WireBuzz    float64 `yaml:"wirebuzz,omitempty"`
		WireDecay   float64 `yaml:"wiredecay,omitempty"`
		Decay       float64 `yaml:"decay"`
	}

	// VoiceParams is the fixed per-voice-type parameter table. Indexing is by
	// struct field, giving compile-time exhaustiveness over VoiceType.
	VoiceParams struct {
		Sub      SubParams      `yaml:"sub"`
		Kick     KickParams     `yaml:"kick"`
		Click    ClickParams    `yaml:"click"`
		BeepHi   BeepHiParams   `yaml:"beephi"`
		BeepLo   BeepLoParams   `yaml:"beeplo"`
		Noise    NoiseParams    `yaml:"noise"`
		Membrane MembraneParams `yaml:"membrane"`
	}
)

// Clamp forces every numeric parameter into its documented range. Out-of-range
// values are never an error: live parameter streams must not interrupt audio.
func (p *VoiceParams) Clamp() {
	p.Sub.Clamp()
	p.Kick.Clamp()
	p.Click.Clamp()
	p.BeepHi.Clamp()
	p.BeepLo.Clamp()
	p.Noise.Clamp()
	p.Membrane.Clamp()
}

func (c *VoiceCommon) Clamp() {
	c.Level = clampFloat(c.Level, 0, 1)
	c.Variation = clampFloat(c.Variation, 0, 1)
	c.Distance = clampFloat(c.Distance, 0, 1)
	c.DelaySend = clampFloat(c.DelaySend, 0, 1)
	c.ReverbSend = clampFloat(c.ReverbSend, 0, 1)
}

func (p *SubParams) Clamp() {
	p.VoiceCommon.Clamp()
	p.Wave = clampInt(p.Wave, 0, 2)
	p.Freq = clampFloat(p.Freq, 20, 200)
	p.PitchEnv = clampFloat(p.PitchEnv, 0, 4)
	p.PitchDecay = clampFloat(p.PitchDecay, 0.005, 1)
	p.Attack = clampFloat(p.Attack, 0, 0.25)
	p.Decay = clampFloat(p.Decay, 0.02, 8)
	p.Harmonic = clampFloat(p.Harmonic, 0, 1)
	p.SubOctave = clampFloat(p.SubOctave, 0, 1)
	p.Drive = clampFloat(p.Drive, 0, 1)
}

func (p *KickParams) Clamp() {
	p.VoiceCommon.Clamp()
	p.Freq = clampFloat(p.Freq, 25, 120)
	p.Sweep = clampFloat(p.Sweep, 1, 12)
	p.SweepTime = clampFloat(p.SweepTime, 0.005, 0.5)
	p.Decay = clampFloat(p.Decay, 0.02, 4)
	p.Click = clampFloat(p.Click, 0, 1)
	p.ClickFreq = clampFloat(p.ClickFreq, 500, 8000)
	p.Body = clampFloat(p.Body, 0, 1)
	p.BodyFreq = clampFloat(p.BodyFreq, 40, 400)
	p.Tail = clampFloat(p.Tail, 0, 1)
	p.TailDecay = clampFloat(p.TailDecay, 0.02, 2)
	p.Drive = clampFloat(p.Drive, 0, 1)
}

func (p *ClickParams) Clamp() {
	p.VoiceCommon.Clamp()
	p.Mode = clampInt(p.Mode, 0, 3)
	p.Color = clampFloat(p.Color, 0, 1)
	p.Freq = clampFloat(p.Freq, 200, 8000)
	p.Decay = clampFloat(p.Decay, 0.002, 0.5)
	p.Density = clampFloat(p.Density, 1, 16)
	p.Brightness = clampFloat(p.Brightness, 0, 1)
}

func (p *BeepHiParams) Clamp() {
	p.VoiceCommon.Clamp()
	p.Freq = clampFloat(p.Freq, 200, 5000)
	p.Partials = clampInt(p.Partials, 1, 16)
	p.Inharmonicity = clampFloat(p.Inharmonicity, 0, 1)
	p.Brightness = clampFloat(p.Brightness, 0, 1)
	p.Shimmer = clampFloat(p.Shimmer, 0, 1)
	p.ShimmerRate = clampFloat(p.ShimmerRate, 0.05, 20)
	p.Attack = clampFloat(p.Attack, 0, 0.5)
	p.Decay = clampFloat(p.Decay, 0.02, 8)
	p.FMRatio = clampFloat(p.FMRatio, 0.25, 12)
	p.FMDetune = clampFloat(p.FMDetune, -50, 50)
	p.FMPhase = clampFloat(p.FMPhase, 0, 1)
	p.FMFeedback = clampFloat(p.FMFeedback, 0, 1)
	p.FMIndex = clampFloat(p.FMIndex, 0, 8)
	p.FMAttack = clampFloat(p.FMAttack, 0, 1)
	p.FMDecay = clampFloat(p.FMDecay, 0.005, 4)
	p.FMSustain = clampFloat(p.FMSustain, 0, 1)
	p.FMNoise = clampFloat(p.FMNoise, 0, 1)
}

func (p *BeepLoParams) Clamp() {
	p.VoiceCommon.Clamp()
	p.Freq = clampFloat(p.Freq, 60, 1200)
	p.Blend = clampFloat(p.Blend, 0, 1)
	p.PluckDamp = clampFloat(p.PluckDamp, 0, 1)
	p.ModeRatio = clampFloat(p.ModeRatio, 0, 1)
	p.Spread = clampFloat(p.Spread, 0, 1)
	p.Warp = clampFloat(p.Warp, -1, 1)
	p.Tilt = clampFloat(p.Tilt, -1, 1)
	p.Decay = clampFloat(p.Decay, 0.05, 10)
}

func (p *NoiseParams) Clamp() {
	p.VoiceCommon.Clamp()
	p.FilterFreq = clampFloat(p.FilterFreq, 100, 12000)
	p.FilterQ = clampFloat(p.FilterQ, 0.1, 20)
	p.FilterEnv = clampFloat(p.FilterEnv, 0, 4)
	p.FilterDecay = clampFloat(p.FilterDecay, 0.005, 2)
	p.Formant = clampFloat(p.Formant, 0, 1)
	p.FormantQ = clampFloat(p.FormantQ, 0.5, 30)
	p.Breath = clampFloat(p.Breath, 0, 1)
	p.BreathRate = clampFloat(p.BreathRate, 0.05, 20)
	p.Density = clampFloat(p.Density, 0, 1)
	p.GrainPitch = clampFloat(p.GrainPitch, 0.25, 4)
	p.GrainJitter = clampFloat(p.GrainJitter, 0, 1)
	p.Ratchet = clampInt(p.Ratchet, 0, 8)
	p.RatchetTime = clampFloat(p.RatchetTime, 0.005, 0.25)
	p.Attack = clampFloat(p.Attack, 0, 0.5)
	p.Decay = clampFloat(p.Decay, 0.02, 6)
}

func (p *MembraneParams) Clamp() {
	p.VoiceCommon.Clamp()
	p.Material = clampInt(p.Material, 0, NumMaterials-1)
	p.Freq = clampFloat(p.Freq, 40, 600)
	p.Exciter = clampInt(p.Exciter, 0, 4)
	p.ModeSpread = clampFloat(p.ModeSpread, 0, 1)
	p.WireBuzz = clampFloat(p.WireBuzz, 0, 1)
	p.WireDecay = clampFloat(p.WireDecay, 0.02, 2)
	p.Decay = clampFloat(p.Decay, 0.05, 8)
}

// NumMaterials is the size of the membrane material table; the table itself
// lives with the membrane voice.
const NumMaterials = 4

// DefaultVoiceParams returns a musically sensible starting kit.
func DefaultVoiceParams() VoiceParams {
	return VoiceParams{
		Sub: SubParams{
			VoiceCommon: VoiceCommon{Level: 0.8, Distance: 0.5, ReverbSend: 0.1},
			Wave:        0, Freq: 45, PitchEnv: 1.5, PitchDecay: 0.06, Decay: 0.8, Drive: 0.2,
		},
		Kick: KickParams{
			VoiceCommon: VoiceCommon{Level: 0.9, Distance: 0.5},
			Freq:        50, Sweep: 4, SweepTime: 0.03, Decay: 0.45,
			Click: 0.4, ClickFreq: 3000, Body: 0.5, BodyFreq: 120, Tail: 0.15, TailDecay: 0.25, Drive: 0.25,
		},
		Click: ClickParams{
			VoiceCommon: VoiceCommon{Level: 0.6, Distance: 0.5, DelaySend: 0.2},
			Mode:        1, Freq: 2500, Decay: 0.04, Density: 4, Brightness: 0.7,
		},
		BeepHi: BeepHiParams{
			VoiceCommon: VoiceCommon{Level: 0.5, Distance: 0.5, DelaySend: 0.3, ReverbSend: 0.35},
			Freq:        1320, Partials: 6, Inharmonicity: 0.08, Brightness: 0.6,
			Decay: 1.2, FMRatio: 3.51, FMIndex: 1.2, FMDecay: 0.3, FMSustain: 0.1,
		},
		BeepLo: BeepLoParams{
			VoiceCommon: VoiceCommon{Level: 0.55, Distance: 0.5, ReverbSend: 0.4},
			Freq:        220, Blend: 0.5, PluckDamp: 0.4, ModeRatio: 0.35, Spread: 0.3, Decay: 1.8,
		},
		Noise: NoiseParams{
			VoiceCommon: VoiceCommon{Level: 0.45, Distance: 0.5, ReverbSend: 0.25},
			FilterFreq:  3200, FilterQ: 1.2, FilterEnv: 1.5, FilterDecay: 0.12,
			Formant: 0.3, FormantQ: 6, Breath: 0.2, BreathRate: 0.7,
			Density: 1, GrainPitch: 1, Decay: 0.5,
		},
		Membrane: MembraneParams{
			VoiceCommon: VoiceCommon{Level: 0.65, Distance: 0.5, ReverbSend: 0.3},
			Material:    1, Freq: 140, Exciter: 4, ModeSpread: 0.25, WireBuzz: 0.2, WireDecay: 0.3, Decay: 1.1,
		},
	}
}
