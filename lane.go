package rumpu

type (
	// Direction is the step-advance mode of a sub-lane.
	Direction int

	// TrigCondition gates a step to fire only on the N-th visit of every Of
	// visits. The zero value means "always fire". Visit counters increment
	// every time the step is reached and are never reset, so the gate keeps
	// its phase across pattern edits.
	TrigCondition struct {
		N  int `yaml:"n"`
		Of int `yaml:"of"`
	}

	// SubLaneConfig is the persisted shape of a secondary per-lane sequence
	// (pitch, expression, morph or distance). It advances on its own step
	// count and direction, decoupled from the trigger pattern.
	SubLaneConfig struct {
		Steps     int       `yaml:"steps"`
		Direction Direction `yaml:"direction,omitempty"`
		Values    []float64 `yaml:"values,flow,omitempty"`
	}

	// EvolveConfig controls the bar-boundary mutation of one lane.
	EvolveConfig struct {
		Enabled   bool    `yaml:"enabled,omitempty"`
		EveryBars int     `yaml:"everybars,omitempty"`
		Intensity float64 `yaml:"intensity,omitempty"`

		Rotation    bool `yaml:"rotation,omitempty"`
		Velocity    bool `yaml:"velocity,omitempty"`
		Swing       bool `yaml:"swing,omitempty"`
		Probability bool `yaml:"probability,omitempty"`
		Morph       bool `yaml:"morph,omitempty"`
		GhostNotes  bool `yaml:"ghostnotes,omitempty"`
		Ratchet     bool `yaml:"ratchet,omitempty"`
		HitCount    bool `yaml:"hitcount,omitempty"`
		PitchWalk   bool `yaml:"pitchwalk,omitempty"`
	}

	// LaneConfig is the persisted shape of one of the four sequencer lanes.
	// Division is in steps per beat: 1 = quarter notes, 2 = eighths, 3 =
	// eighth triplets and so on; fractional values are allowed and give the
	// slow polyrhythms their drift.
	LaneConfig struct {
		Steps       int          `yaml:"steps"`
		Hits        int          `yaml:"hits"`
		Rotation    int          `yaml:"rotation,omitempty"`
		Division    float64      `yaml:"division"`
		Swing       float64      `yaml:"swing,omitempty"`
		Probability float64      `yaml:"probability"`
		Voices      []VoiceType  `yaml:"voices,flow"`
		VoiceCycle  bool         `yaml:"voicecycle,omitempty"` // true: cycle through Voices; false: random pick
		Evolve      EvolveConfig `yaml:"evolve,omitempty"`

		Pitch      SubLaneConfig `yaml:"pitch,omitempty"`
		Expression SubLaneConfig `yaml:"expression,omitempty"`
		Morph      SubLaneConfig `yaml:"morph,omitempty"`
		Distance   SubLaneConfig `yaml:"distance,omitempty"`
	}

	// SubLane is the live state of a secondary sequence.
	SubLane struct {
		Steps     int
		Direction Direction
		Values    []float64

		index   int
		pingDir int // +1 or -1, pingpong only
	}

	// StepOverrides is the per-lane override set supplied by the sequencing
	// UI layer. Toggles XOR individual generated pattern bits; the optional
	// arrays, when present, fully replace the corresponding generated array.
	StepOverrides struct {
		Toggles     []bool
		Probability []float64
		Ratchet     []int
		TrigConds   []TrigCondition

		Pitch      *SubLaneConfig
		Expression *SubLaneConfig
		Morph      *SubLaneConfig
		Distance   *SubLaneConfig
	}

	// HomeSnapshot is the immutable pre-evolution copy of a lane, captured on
	// scheduler start or explicit reset and used to undo evolution drift
	// losslessly.
	HomeSnapshot struct {
		Steps       int
		Hits        int
		Rotation    int
		Swing       float64
		Probability float64
		Pattern     Pattern
		StepProb    []float64
		StepRatchet []int
		Pitch       SubLane
		Expression  SubLane
		Morph       SubLane
		Distance    SubLane
	}

	// Lane is the live state of one sequencer lane. It is created when the
	// scheduler starts, mutated in place on every tick and every evolve
	// event, and dropped when the scheduler stops. All access is owned by the
	// scheduler goroutine.
	Lane struct {
		ID          int
		Steps       int
		Hits        int
		Rotation    int
		Division    float64
		Swing       float64
		Probability float64
		Voices      []VoiceType
		VoiceCycle  bool
		Evolve      EvolveConfig

		Pattern     Pattern
		StepProb    []float64 // per-step probability, 1 = always
		StepRatchet []int     // per-step ratchet count, 0/1 = single hit

		Pitch      SubLane
		Expression SubLane
		Morph      SubLane
		Distance   SubLane

		StepIndex    int
		NextFireTime float64
		TotalSteps   int // lifetime step visits, drives trig conditions
		HitCount     int // lifetime fired hits, drives voice cycling
		BarCount     int
		MorphPhase   float64 // random-mode morph cycle accumulator

		visits []int // per-step visit counters for trig conditions
		Home   *HomeSnapshot
	}
)

const (
	Forward Direction = iota
	Reverse
	PingPong
)

// ShouldFire reports whether a step with this condition fires on its visits'th
// visit (1-based). The zero condition always fires.
func (c TrigCondition) ShouldFire(visits int) bool {
	if c.Of <= 1 {
		return true
	}
	n := clampInt(c.N, 1, c.Of)
	return (visits-1)%c.Of+1 == n
}

// Clamp forces the lane config into its documented ranges and guarantees a
// non-empty voice set.
func (c *LaneConfig) Clamp() {
	c.Steps = clampInt(c.Steps, 2, 32)
	c.Hits = clampInt(c.Hits, 0, c.Steps)
	c.Rotation = clampInt(c.Rotation, 0, 31)
	c.Division = clampFloat(c.Division, 0.125, 8)
	c.Swing = clampFloat(c.Swing, 0, 0.75)
	c.Probability = clampFloat(c.Probability, 0, 1)
	if len(c.Voices) == 0 {
		c.Voices = []VoiceType{Kick}
	}
	c.Evolve.EveryBars = clampInt(c.Evolve.EveryBars, 1, 64)
	c.Evolve.Intensity = clampFloat(c.Evolve.Intensity, 0, 1)
	c.Pitch.clamp()
	c.Expression.clamp()
	c.Morph.clamp()
	c.Distance.clamp()
}

func (c *SubLaneConfig) clamp() {
	if c.Steps == 0 {
		c.Steps = len(c.Values)
	}
	c.Steps = clampInt(c.Steps, 0, 32)
	if c.Direction < Forward || c.Direction > PingPong {
		c.Direction = Forward
	}
}

// NewLane builds the live lane state from its config. The config should be
// clamped first.
func NewLane(id int, c LaneConfig) *Lane {
	l := &Lane{
		ID:          id,
		Steps:       c.Steps,
		Hits:        c.Hits,
		Rotation:    c.Rotation,
		Division:    c.Division,
		Swing:       c.Swing,
		Probability: c.Probability,
		Voices:      append([]VoiceType(nil), c.Voices...),
		VoiceCycle:  c.VoiceCycle,
		Evolve:      c.Evolve,
		Pattern:     Euclidean(c.Steps, c.Hits, c.Rotation),
		StepProb:    fillSlice(c.Steps, 1.0),
		StepRatchet: make([]int, c.Steps),
		Pitch:       NewSubLane(c.Pitch),
		Expression:  NewSubLane(c.Expression),
		Morph:       NewSubLane(c.Morph),
		Distance:    NewSubLane(c.Distance),
		visits:      make([]int, 32),
	}
	l.CaptureHome()
	return l
}

// NewSubLane builds the live state of a secondary sequence from its config.
func NewSubLane(c SubLaneConfig) SubLane {
	return SubLane{
		Steps:     c.Steps,
		Direction: c.Direction,
		Values:    append([]float64(nil), c.Values...),
		pingDir:   1,
	}
}

func fillSlice(n int, v float64) []float64 {
	s := make([]float64, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// Regenerate rebuilds the trigger pattern from the lane's current
// steps/hits/rotation, resizing the per-step arrays while keeping their
// existing values.
func (l *Lane) Regenerate() {
	l.Pattern = Euclidean(l.Steps, l.Hits, l.Rotation)
	for len(l.StepProb) < l.Steps {
		l.StepProb = append(l.StepProb, 1)
	}
	l.StepProb = l.StepProb[:l.Steps]
	for len(l.StepRatchet) < l.Steps {
		l.StepRatchet = append(l.StepRatchet, 0)
	}
	l.StepRatchet = l.StepRatchet[:l.Steps]
}

// Visit increments and returns the 1-based visit count of the given step.
func (l *Lane) Visit(step int) int {
	for len(l.visits) <= step {
		l.visits = append(l.visits, 0)
	}
	l.visits[step]++
	return l.visits[step]
}

// Value returns the sub-lane's current value, or def when the sub-lane is
// empty.
func (s *SubLane) Value(def float64) float64 {
	if s.Steps == 0 || len(s.Values) == 0 {
		return def
	}
	i := s.index
	if i >= len(s.Values) {
		i = i % len(s.Values)
	}
	return s.Values[i]
}

// Advance moves the sub-lane to its next step according to its direction
// mode. Steps of 0 or 1 stay put.
func (s *SubLane) Advance() {
	if s.Steps <= 1 {
		return
	}
	switch s.Direction {
	case Reverse:
		s.index--
		if s.index < 0 {
			s.index = s.Steps - 1
		}
	case PingPong:
		if s.pingDir == 0 {
			s.pingDir = 1
		}
		next := s.index + s.pingDir
		if next < 0 || next >= s.Steps {
			s.pingDir = -s.pingDir
			next = s.index + s.pingDir
		}
		s.index = next
	default:
		s.index = (s.index + 1) % s.Steps
	}
}

func (s *SubLane) copy() SubLane {
	out := *s
	out.Values = append([]float64(nil), s.Values...)
	return out
}

// CaptureHome snapshots the lane's pattern state so that evolution can later
// be undone exactly.
func (l *Lane) CaptureHome() {
	l.Home = &HomeSnapshot{
		Steps:       l.Steps,
		Hits:        l.Hits,
		Rotation:    l.Rotation,
		Swing:       l.Swing,
		Probability: l.Probability,
		Pattern:     l.Pattern.Copy(),
		StepProb:    append([]float64(nil), l.StepProb...),
		StepRatchet: append([]int(nil), l.StepRatchet...),
		Pitch:       l.Pitch.copy(),
		Expression:  l.Expression.copy(),
		Morph:       l.Morph.copy(),
		Distance:    l.Distance.copy(),
	}
}

// ResetToHome restores everything CaptureHome recorded. Step indices and
// visit counters are left alone: restoring is a musical undo, not a transport
// reset.
func (l *Lane) ResetToHome() {
	h := l.Home
	if h == nil {
		return
	}
	l.Steps = h.Steps
	l.Hits = h.Hits
	l.Rotation = h.Rotation
	l.Swing = h.Swing
	l.Probability = h.Probability
	l.Pattern = h.Pattern.Copy()
	l.StepProb = append([]float64(nil), h.StepProb...)
	l.StepRatchet = append([]int(nil), h.StepRatchet...)
	restoreSubLane(&l.Pitch, h.Pitch)
	restoreSubLane(&l.Expression, h.Expression)
	restoreSubLane(&l.Morph, h.Morph)
	restoreSubLane(&l.Distance, h.Distance)
}

func restoreSubLane(dst *SubLane, src SubLane) {
	idx, dir := dst.index, dst.pingDir
	*dst = src.copy()
	dst.index, dst.pingDir = idx, dir
	if dst.Steps > 0 {
		dst.index %= dst.Steps
	}
}

// MergedStep evaluates the lane's step with overrides applied: toggles XOR
// pattern bits, override arrays fully replace generated ones.
func (l *Lane) MergedStep(o *StepOverrides, step int) (on bool, prob float64, ratchet int, cond TrigCondition) {
	on = l.Pattern.Get(step)
	prob = 1
	if step < len(l.StepProb) {
		prob = l.StepProb[step]
	}
	if step < len(l.StepRatchet) {
		ratchet = l.StepRatchet[step]
	}
	if o != nil {
		if step < len(o.Toggles) && o.Toggles[step] {
			on = !on
		}
		if o.Probability != nil {
			prob = 1
			if step < len(o.Probability) {
				prob = o.Probability[step]
			}
		}
		if o.Ratchet != nil {
			ratchet = 0
			if step < len(o.Ratchet) {
				ratchet = o.Ratchet[step]
			}
		}
		if o.TrigConds != nil && step < len(o.TrigConds) {
			cond = o.TrigConds[step]
		}
	}
	return on, clampFloat(prob, 0, 1), clampInt(ratchet, 0, 8), cond
}
