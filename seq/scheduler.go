package seq

import (
	"fmt"
	"math"
	"time"

	"github.com/taleva/rumpu"
	"github.com/taleva/rumpu/synth"
)

type (
	// Scheduler owns the four live lanes and drives the synthesis engine. It
	// runs as one goroutine (Run); the lanes, the pool and the RNG stream are
	// touched by nothing else, so lane state needs no locking. Wall-clock
	// tick jitter never reaches the audio: every trigger is scheduled ahead
	// on the renderer's sample clock.
	Scheduler struct {
		broker *Broker
		engine *synth.Engine
		rand   *rumpu.Rand

		kit     rumpu.Kit
		running bool

		lanes     [rumpu.NumLanes]*rumpu.Lane
		overrides [rumpu.NumLanes]laneOverride
		morphDraw [rumpu.NumLanes]float64 // random-mode morph, redrawn once per cycle

		backoffUntil time.Time
	}

	// laneOverride is one lane's installed override set plus the live state
	// of its replacement sub-lanes. A non-nil replacement fully shadows the
	// lane's own sequence; the lane keeps advancing underneath, so clearing
	// the overrides resumes it where it would have been.
	laneOverride struct {
		set        *rumpu.StepOverrides
		pitch      *rumpu.SubLane
		expression *rumpu.SubLane
		morph      *rumpu.SubLane
		distance   *rumpu.SubLane
	}
)

const (
	tickInterval = 50 * time.Millisecond
	lookAhead    = 0.1  // seconds of renderer time scheduled ahead per tick
	startDelay   = 0.05 // first step lands this far after starting
	backoffDelay = 500 * time.Millisecond
)

// NewScheduler builds a scheduler around the engine. The kit decides the
// initial lanes and, through its Enabled flag, whether they start running on
// the first UpdateParams. The engine's RNG is the single random stream of the
// session; the scheduler draws from the same stream so that runs are
// reproducible from one seed.
func NewScheduler(broker *Broker, engine *synth.Engine, kit rumpu.Kit) *Scheduler {
	kit.Clamp()
	s := &Scheduler{
		broker: broker,
		engine: engine,
		rand:   engine.Rand,
		kit:    kit,
	}
	engine.SetParams(kit.Voices)
	return s
}

// Run is the scheduler goroutine: a fixed ticker interleaved with host
// messages, until CloseScheduler. Closure force-releases every live voice.
func (s *Scheduler) Run() {
	defer close(s.broker.FinishedScheduler)
	if s.kit.Enabled {
		s.start()
	}
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.broker.CloseScheduler:
			s.stop()
			s.engine.DisposeAll()
			return
		case msg := <-s.broker.ToScheduler:
			s.handleMessage(msg)
		case <-ticker.C:
			s.safeTick()
		}
	}
}

func (s *Scheduler) handleMessage(msg any) {
	switch m := msg.(type) {
	case TriggerVoiceMsg:
		s.engine.Trigger(rumpu.TriggerRequest{Voice: m.Voice, Velocity: m.Velocity, When: m.When})
		TrySend(s.broker.ToHost, MsgToHost{HasTrigger: true, Trigger: TriggerInfo{
			Voice: m.Voice, Velocity: m.Velocity, When: m.When,
		}})
	case UpdateParamsMsg:
		s.applyKit(m.Kit)
	case SetStepOverridesMsg:
		if m.Lane >= 0 && m.Lane < rumpu.NumLanes {
			s.overrides[m.Lane] = newLaneOverride(m.Overrides)
		}
	case SetEvolveConfigMsg:
		if m.Lane >= 0 && m.Lane < rumpu.NumLanes {
			s.kit.Lanes[m.Lane].Evolve = m.Config
			if l := s.lanes[m.Lane]; l != nil {
				l.Evolve = m.Config
			}
		}
	case ResetLaneMsg:
		if m.Lane >= 0 && m.Lane < rumpu.NumLanes {
			if l := s.lanes[m.Lane]; l != nil {
				l.ResetToHome()
			}
		}
	case StopMsg:
		s.kit.Enabled = false
		s.stop()
	}
}

// applyKit installs a new kit snapshot. Voice parameters always apply; lanes
// whose pattern shape the host actually edited are rebuilt, the rest keep
// their evolution drift and only take the performance fields.
func (s *Scheduler) applyKit(kit rumpu.Kit) {
	kit.Clamp()
	s.engine.SetParams(kit.Voices)
	wasRunning := s.running
	s.kit.BPM = kit.BPM
	s.kit.Seed = kit.Seed
	s.kit.Voices = kit.Voices
	s.kit.Enabled = kit.Enabled
	for i := range kit.Lanes {
		s.kit.Lanes[i] = kit.Lanes[i]
		if l := s.lanes[i]; l != nil && wasRunning {
			s.updateLane(l, kit.Lanes[i])
		}
	}
	if kit.Enabled && !s.running {
		s.start()
	} else if !kit.Enabled && s.running {
		s.stop()
	}
}

// updateLane reconciles a live lane with an edited config. An edit to the
// pattern shape (compared against the lane's home snapshot, so evolution
// drift does not read as a host edit) rebuilds the lane; everything else is
// a performance field updated in place.
func (s *Scheduler) updateLane(l *rumpu.Lane, c rumpu.LaneConfig) {
	h := l.Home
	if h != nil && (h.Steps != c.Steps || h.Hits != c.Hits || h.Rotation != c.Rotation) {
		fresh := rumpu.NewLane(l.ID, c)
		fresh.NextFireTime = l.NextFireTime
		fresh.TotalSteps = l.TotalSteps
		fresh.BarCount = l.BarCount
		fresh.HitCount = l.HitCount
		*l = *fresh
		return
	}
	l.Division = c.Division
	l.Swing = c.Swing
	l.Probability = c.Probability
	l.Voices = append(l.Voices[:0], c.Voices...)
	l.VoiceCycle = c.VoiceCycle
	l.Evolve = c.Evolve
}

// newLaneOverride materializes the live sub-lane state of an override set.
// The configured replacement sequences start from their first step when the
// set is installed.
func newLaneOverride(o *rumpu.StepOverrides) laneOverride {
	lo := laneOverride{set: o}
	if o == nil {
		return lo
	}
	materialize := func(c *rumpu.SubLaneConfig) *rumpu.SubLane {
		if c == nil {
			return nil
		}
		sl := rumpu.NewSubLane(*c)
		return &sl
	}
	lo.pitch = materialize(o.Pitch)
	lo.expression = materialize(o.Expression)
	lo.morph = materialize(o.Morph)
	lo.distance = materialize(o.Distance)
	return lo
}

// advance moves every replacement sub-lane one step, in lockstep with the
// lane's own sequences.
func (o *laneOverride) advance() {
	for _, sl := range []*rumpu.SubLane{o.pitch, o.expression, o.morph, o.distance} {
		if sl != nil {
			sl.Advance()
		}
	}
}

// subLaneOr returns the replacement sub-lane when one is installed, the
// lane's own otherwise.
func subLaneOr(override, own *rumpu.SubLane) *rumpu.SubLane {
	if override != nil {
		return override
	}
	return own
}

func (s *Scheduler) start() {
	now := s.engine.Renderer.Now()
	for i := range s.lanes {
		l := rumpu.NewLane(i, s.kit.Lanes[i])
		l.NextFireTime = now + startDelay
		s.lanes[i] = l
		s.morphDraw[i] = s.rand.Float()
	}
	s.running = true
}

// stop synchronously clears all lane state. Triggers already handed to the
// renderer play out; nothing new is scheduled.
func (s *Scheduler) stop() {
	s.running = false
	s.lanes = [rumpu.NumLanes]*rumpu.Lane{}
}

// safeTick runs one scheduling pass with a crash barrier: a fault in a step
// is alerted through the broker and the loop backs off instead of dying.
func (s *Scheduler) safeTick() {
	if !s.running || time.Now().Before(s.backoffUntil) {
		return
	}
	defer func() {
		if err := recover(); err != nil {
			s.backoffUntil = time.Now().Add(backoffDelay)
			TrySend(s.broker.ToHost, MsgToHost{Data: Alert{
				Name:     "Scheduler",
				Message:  fmt.Sprintf("tick fault: %v", err),
				Priority: Error,
				Duration: defaultAlertDuration,
			}})
		}
	}()
	s.tick(s.engine.Renderer.Now())
}

// tick fires every step whose fire time falls inside the look-ahead window.
func (s *Scheduler) tick(now float64) {
	horizon := now + lookAhead
	for _, l := range s.lanes {
		if l == nil {
			continue
		}
		// after a stall, resume from the present instead of replaying
		if l.NextFireTime < now-1 {
			l.NextFireTime = now
		}
		for l.NextFireTime < horizon {
			s.fireStep(l)
		}
	}
}

func (s *Scheduler) stepDuration(l *rumpu.Lane) float64 {
	return 60 / s.kit.BPM / l.Division
}

// fireStep evaluates and advances one step of one lane.
func (s *Scheduler) fireStep(l *rumpu.Lane) {
	step := l.StepIndex
	stepDur := s.stepDuration(l)

	if step == 0 && l.TotalSteps > 0 {
		l.BarCount++
		every := l.Evolve.EveryBars
		if every < 1 {
			every = 1
		}
		if l.Evolve.Enabled && l.BarCount%every == 0 {
			s.evolveLane(l)
			TrySend(s.broker.ToHost, MsgToHost{HasEvolve: true, EvolveLane: l.ID})
		}
	}

	fireTime := l.NextFireTime
	if step%2 == 1 {
		fireTime += stepDur * l.Swing * 0.5
	}

	visits := l.Visit(step)
	o := &s.overrides[l.ID]
	on, prob, ratchet, cond := l.MergedStep(o.set, step)
	TrySend(s.broker.ToHost, MsgToHost{HasStep: true, Step: StepInfo{
		Lane: l.ID, Step: step, HitCount: l.HitCount,
	}})

	if on && cond.ShouldFire(visits) && s.rand.Float() <= l.Probability*prob {
		s.fireTriggers(l, fireTime, stepDur, ratchet)
	}

	l.StepIndex = (step + 1) % l.Steps
	l.TotalSteps++
	l.NextFireTime += stepDur
	l.Pitch.Advance()
	l.Expression.Advance()
	l.Distance.Advance()
	s.advanceMorph(l, subLaneOr(o.morph, &l.Morph))
	o.advance()
}

// fireTriggers issues the 1..n trigger requests of a firing step. Ratchet
// repeats fall off at 0.7 per repeat and get their decay capped to fit the
// sub-window.
func (s *Scheduler) fireTriggers(l *rumpu.Lane, at, stepDur float64, ratchet int) {
	o := &s.overrides[l.ID]
	vel := clamp(subLaneOr(o.expression, &l.Expression).Value(1), 0, 1)
	var voice rumpu.VoiceType
	if l.VoiceCycle {
		voice = l.Voices[l.HitCount%len(l.Voices)]
	} else {
		voice = l.Voices[s.rand.Intn(len(l.Voices))]
	}
	var morphPtr *float64
	morph, hasMorph := s.morphValue(l, subLaneOr(o.morph, &l.Morph))
	if hasMorph {
		morphPtr = &morph
	}
	var distPtr *float64
	if dist := subLaneOr(o.distance, &l.Distance); dist.Steps > 0 && len(dist.Values) > 0 {
		d := clamp(dist.Value(0.5), 0, 1)
		distPtr = &d
	}
	pitch := subLaneOr(o.pitch, &l.Pitch).Value(0)

	count := ratchet
	if count < 1 {
		count = 1
	}
	sub := stepDur / float64(count)
	for r := 0; r < count; r++ {
		req := rumpu.TriggerRequest{
			Voice:            voice,
			Velocity:         vel * math.Pow(0.7, float64(r)),
			When:             at + float64(r)*sub,
			MorphOverride:    morphPtr,
			DistanceOverride: distPtr,
			PitchOffset:      pitch,
		}
		if count > 1 {
			req.DecayCap = sub * 0.9
		}
		s.engine.Trigger(req)
		TrySend(s.broker.ToHost, MsgToHost{HasTrigger: true, Trigger: TriggerInfo{
			Voice: voice, Velocity: req.Velocity, When: req.When,
			Morph: morph, HasMorph: hasMorph,
		}})
	}
	l.HitCount++
}

// morphValue resolves the lane's effective morph sub-lane. One with values
// is a plain sequence; one with steps but no values is random mode, holding
// one drawn value per phase cycle.
func (s *Scheduler) morphValue(l *rumpu.Lane, m *rumpu.SubLane) (float64, bool) {
	if m.Steps <= 0 {
		return 0, false
	}
	if len(m.Values) > 0 {
		return clamp(m.Value(0), 0, 1), true
	}
	return s.morphDraw[l.ID], true
}

// advanceMorph steps the lane's own morph sub-lane and, when the effective
// one is in random mode, accumulates its phase: a new value is drawn exactly
// once per completed cycle.
func (s *Scheduler) advanceMorph(l *rumpu.Lane, m *rumpu.SubLane) {
	l.Morph.Advance()
	if m.Steps <= 0 || len(m.Values) > 0 {
		return
	}
	l.MorphPhase += 1 / float64(m.Steps)
	if l.MorphPhase >= 1 {
		l.MorphPhase -= 1
		s.morphDraw[l.ID] = s.rand.Float()
	}
}

// Bounce renders the kit offline for the given number of 4-beat bars,
// driving the scheduler and the renderer in lockstep instead of from the
// goroutine and an audio device. Identical seeds and kits bounce identical
// audio. Must not be used while Run is active.
func (s *Scheduler) Bounce(bars int) rumpu.AudioBuffer {
	if !s.running {
		s.start()
	}
	frames := int(float64(bars) * 4 * 60 / s.kit.BPM * rumpu.SampleRate)
	buffer := make(rumpu.AudioBuffer, frames)
	const block = 1024
	for pos := 0; pos < frames; pos += block {
		s.tick(s.engine.Renderer.Now())
		end := pos + block
		if end > frames {
			end = frames
		}
		s.engine.Renderer.Render(buffer[pos:end])
	}
	s.stop()
	return buffer
}

// Host surface. All of these hand a message to the scheduler goroutine and
// return immediately.

// TriggerVoice plays one voice manually, bypassing the lanes. A when of 0
// plays as soon as possible.
func (s *Scheduler) TriggerVoice(voice rumpu.VoiceType, velocity, when float64) {
	TrySend(s.broker.ToScheduler, any(TriggerVoiceMsg{Voice: voice, Velocity: velocity, When: when}))
}

// UpdateParams applies a full kit snapshot; the scheduler starts or stops
// based on the kit's Enabled flag.
func (s *Scheduler) UpdateParams(kit rumpu.Kit) {
	TrySend(s.broker.ToScheduler, any(UpdateParamsMsg{Kit: kit}))
}

func (s *Scheduler) SetStepOverrides(lane int, o *rumpu.StepOverrides) {
	TrySend(s.broker.ToScheduler, any(SetStepOverridesMsg{Lane: lane, Overrides: o}))
}

func (s *Scheduler) SetEvolveConfig(lane int, cfg rumpu.EvolveConfig) {
	TrySend(s.broker.ToScheduler, any(SetEvolveConfigMsg{Lane: lane, Config: cfg}))
}

// ResetLaneToHome undoes a lane's evolution drift back to its captured
// snapshot.
func (s *Scheduler) ResetLaneToHome(lane int) {
	TrySend(s.broker.ToScheduler, any(ResetLaneMsg{Lane: lane}))
}

// Stop halts scheduling without closing the goroutine; already-scheduled
// audio plays out.
func (s *Scheduler) Stop() {
	TrySend(s.broker.ToScheduler, any(StopMsg{}))
}

// Close shuts the scheduler goroutine down and force-releases every live
// voice, waiting up to a few seconds for the cleanup to finish.
func (s *Scheduler) Close() {
	TrySend(s.broker.CloseScheduler, struct{}{})
	TimeoutReceive(s.broker.FinishedScheduler, 3*time.Second)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
