package seq

import (
	"math"
	"testing"
	"time"

	"github.com/taleva/rumpu"
	"github.com/taleva/rumpu/graph"
	"github.com/taleva/rumpu/synth"
)

// silentLane is a lane that never fires, used to pad the kit so tests only
// hear the lane under test.
func silentLane() rumpu.LaneConfig {
	return rumpu.LaneConfig{
		Steps: 4, Hits: 0, Division: 1, Probability: 1,
		Voices: []rumpu.VoiceType{rumpu.Kick},
	}
}

func testKit(lane rumpu.LaneConfig) rumpu.Kit {
	kit := rumpu.DefaultKit()
	kit.BPM = 120
	kit.Enabled = true
	for i := range kit.Lanes {
		kit.Lanes[i] = silentLane()
	}
	kit.Lanes[0] = lane
	return kit
}

func newTestScheduler(kit rumpu.Kit, seed uint32) *Scheduler {
	engine := synth.NewEngine(graph.NewRenderer(), rumpu.NewRand(seed), nil)
	return NewScheduler(NewBroker(), engine, kit)
}

// runTicks drives the scheduler clock directly, 50 ms at a time, without
// rendering any audio.
func runTicks(s *Scheduler, until float64) {
	for now := 0.0; now < until; now += 0.05 {
		s.tick(now)
	}
}

func drainTriggers(b *Broker) []TriggerInfo {
	var out []TriggerInfo
	for {
		select {
		case msg := <-b.ToHost:
			if msg.HasTrigger {
				out = append(out, msg.Trigger)
			}
		default:
			return out
		}
	}
}

func drainEvolves(b *Broker) []int {
	var out []int
	for {
		select {
		case msg := <-b.ToHost:
			if msg.HasEvolve {
				out = append(out, msg.EvolveLane)
			}
		default:
			return out
		}
	}
}

func TestLaneFiresEuclideanPattern(t *testing.T) {
	s := newTestScheduler(testKit(rumpu.LaneConfig{
		Steps: 8, Hits: 3, Division: 1, Probability: 1,
		Voices: []rumpu.VoiceType{rumpu.Kick}, VoiceCycle: true,
	}), 1)
	s.start()
	runTicks(s, 3.5)

	got := drainTriggers(s.broker)
	// tresillo: hits on steps 0, 3 and 6, half a second apart at 120 BPM
	want := []float64{0.05, 1.55, 3.05}
	if len(got) != len(want) {
		t.Fatalf("fired %d triggers, want %d", len(got), len(want))
	}
	for i, tr := range got {
		if math.Abs(tr.When-want[i]) > 1e-9 {
			t.Errorf("trigger %d at %v, want %v", i, tr.When, want[i])
		}
		if tr.Voice != rumpu.Kick {
			t.Errorf("trigger %d voice = %v, want Kick", i, tr.Voice)
		}
		if tr.Velocity != 1 {
			t.Errorf("trigger %d velocity = %v, want 1", i, tr.Velocity)
		}
	}
}

func TestSwingDelaysOffbeats(t *testing.T) {
	s := newTestScheduler(testKit(rumpu.LaneConfig{
		Steps: 4, Hits: 4, Division: 1, Swing: 0.5, Probability: 1,
		Voices: []rumpu.VoiceType{rumpu.Click}, VoiceCycle: true,
	}), 1)
	s.start()
	runTicks(s, 1.6)

	got := drainTriggers(s.broker)
	// even steps on the half-second grid, odd steps pushed late by
	// stepDur * swing / 2 = 125 ms
	want := []float64{0.05, 0.675, 1.05, 1.675}
	if len(got) != len(want) {
		t.Fatalf("fired %d triggers, want %d", len(got), len(want))
	}
	for i, tr := range got {
		if math.Abs(tr.When-want[i]) > 1e-9 {
			t.Errorf("trigger %d at %v, want %v", i, tr.When, want[i])
		}
	}
}

func TestStepOverrideRatchet(t *testing.T) {
	s := newTestScheduler(testKit(rumpu.LaneConfig{
		Steps: 2, Hits: 1, Division: 1, Probability: 1,
		Voices: []rumpu.VoiceType{rumpu.Noise}, VoiceCycle: true,
	}), 1)
	s.handleMessage(SetStepOverridesMsg{Lane: 0, Overrides: &rumpu.StepOverrides{
		Ratchet: []int{3, 0},
	}})
	s.start()
	runTicks(s, 0.5)

	got := drainTriggers(s.broker)
	if len(got) != 3 {
		t.Fatalf("ratchet of 3 fired %d triggers", len(got))
	}
	sub := 0.5 / 3
	for r, tr := range got {
		if wantWhen := 0.05 + float64(r)*sub; math.Abs(tr.When-wantWhen) > 1e-9 {
			t.Errorf("repeat %d at %v, want %v", r, tr.When, wantWhen)
		}
		if wantVel := math.Pow(0.7, float64(r)); math.Abs(tr.Velocity-wantVel) > 1e-9 {
			t.Errorf("repeat %d velocity = %v, want %v", r, tr.Velocity, wantVel)
		}
	}
}

func TestTrigConditionOverride(t *testing.T) {
	s := newTestScheduler(testKit(rumpu.LaneConfig{
		Steps: 2, Hits: 1, Division: 1, Probability: 1,
		Voices: []rumpu.VoiceType{rumpu.Sub}, VoiceCycle: true,
	}), 1)
	s.handleMessage(SetStepOverridesMsg{Lane: 0, Overrides: &rumpu.StepOverrides{
		TrigConds: []rumpu.TrigCondition{{N: 2, Of: 4}},
	}})
	s.start()
	runTicks(s, 7.5)

	got := drainTriggers(s.broker)
	// the step is visited once a second; 2:4 fires on the 2nd and 6th visit
	want := []float64{1.05, 5.05}
	if len(got) != len(want) {
		t.Fatalf("fired %d triggers, want %d", len(got), len(want))
	}
	for i, tr := range got {
		if math.Abs(tr.When-want[i]) > 1e-9 {
			t.Errorf("trigger %d at %v, want %v", i, tr.When, want[i])
		}
	}
}

func TestSubLaneOverridesReplaceLaneSequences(t *testing.T) {
	s := newTestScheduler(testKit(rumpu.LaneConfig{
		Steps: 4, Hits: 4, Division: 1, Probability: 1,
		Voices:     []rumpu.VoiceType{rumpu.Kick}, VoiceCycle: true,
		Expression: rumpu.SubLaneConfig{Steps: 4, Values: []float64{1, 1, 1, 1}},
		Morph:      rumpu.SubLaneConfig{Steps: 4, Values: []float64{0.1, 0.1, 0.1, 0.1}},
	}), 1)
	s.handleMessage(SetStepOverridesMsg{Lane: 0, Overrides: &rumpu.StepOverrides{
		Expression: &rumpu.SubLaneConfig{Steps: 2, Values: []float64{0.25, 0.5}},
		Morph:      &rumpu.SubLaneConfig{Steps: 4, Values: []float64{0.9, 0.9, 0.9, 0.9}},
	}})
	s.start()
	runTicks(s, 2.0)

	got := drainTriggers(s.broker)
	if len(got) != 4 {
		t.Fatalf("fired %d triggers, want 4", len(got))
	}
	// the replacement expression sequence cycles its own two steps
	wantVel := []float64{0.25, 0.5, 0.25, 0.5}
	for i, tr := range got {
		if math.Abs(tr.Velocity-wantVel[i]) > 1e-9 {
			t.Errorf("trigger %d velocity = %v, want %v from the expression override", i, tr.Velocity, wantVel[i])
		}
		if !tr.HasMorph || tr.Morph != 0.9 {
			t.Errorf("trigger %d morph = %v (%v), want 0.9 from the morph override", i, tr.Morph, tr.HasMorph)
		}
	}

	// clearing the overrides resumes the lane's own sequences
	s.handleMessage(SetStepOverridesMsg{Lane: 0, Overrides: nil})
	for now := 2.0; now < 4.0; now += 0.05 {
		s.tick(now)
	}
	got = drainTriggers(s.broker)
	if len(got) == 0 {
		t.Fatal("no triggers after clearing the overrides")
	}
	for i, tr := range got {
		if tr.Velocity != 1 {
			t.Errorf("post-clear trigger %d velocity = %v, want the lane's own 1", i, tr.Velocity)
		}
		if !tr.HasMorph || tr.Morph != 0.1 {
			t.Errorf("post-clear trigger %d morph = %v, want the lane's own 0.1", i, tr.Morph)
		}
	}
}

func TestPitchOverrideReachesTriggers(t *testing.T) {
	base := func(override *rumpu.StepOverrides) rumpu.AudioBuffer {
		s := newTestScheduler(testKit(rumpu.LaneConfig{
			Steps: 2, Hits: 1, Division: 1, Probability: 1,
			Voices: []rumpu.VoiceType{rumpu.Sub}, VoiceCycle: true,
		}), 21)
		s.handleMessage(SetStepOverridesMsg{Lane: 0, Overrides: override})
		return s.Bounce(1)
	}
	plain := base(nil)
	up := base(&rumpu.StepOverrides{
		Pitch: &rumpu.SubLaneConfig{Steps: 1, Values: []float64{12}},
	})
	same := true
	for i := range plain {
		if plain[i] != up[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("a pitch override sub-lane did not change the rendered audio")
	}
}

func TestVoiceCycling(t *testing.T) {
	voices := []rumpu.VoiceType{rumpu.Kick, rumpu.Sub, rumpu.Noise}
	s := newTestScheduler(testKit(rumpu.LaneConfig{
		Steps: 4, Hits: 4, Division: 1, Probability: 1,
		Voices: voices, VoiceCycle: true,
	}), 1)
	s.start()
	runTicks(s, 3.0)

	got := drainTriggers(s.broker)
	if len(got) < 6 {
		t.Fatalf("fired only %d triggers", len(got))
	}
	for i, tr := range got {
		if want := voices[i%len(voices)]; tr.Voice != want {
			t.Errorf("trigger %d voice = %v, want %v", i, tr.Voice, want)
		}
	}
}

func TestSameSeedSameTriggerStream(t *testing.T) {
	lane := rumpu.LaneConfig{
		Steps: 16, Hits: 7, Division: 2, Probability: 0.7,
		Voices: []rumpu.VoiceType{rumpu.Kick, rumpu.Click, rumpu.BeepHi},
		Morph:  rumpu.SubLaneConfig{Steps: 8},
		Evolve: rumpu.EvolveConfig{
			Enabled: true, EveryBars: 1, Intensity: 0.8,
			Rotation: true, Velocity: true, Swing: true, Probability: true, Morph: true,
		},
	}
	run := func() []TriggerInfo {
		s := newTestScheduler(testKit(lane), 99)
		s.start()
		runTicks(s, 20)
		return drainTriggers(s.broker)
	}
	a, b := run(), run()
	if len(a) == 0 {
		t.Fatal("no triggers fired")
	}
	if len(a) != len(b) {
		t.Fatalf("runs diverged in length: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs diverged at trigger %d: %+v vs %+v", i, a[i], b[i])
		}
	}
}

func TestEvolveTelemetryAndReset(t *testing.T) {
	s := newTestScheduler(testKit(rumpu.LaneConfig{
		Steps: 4, Hits: 2, Division: 1, Probability: 1,
		Voices: []rumpu.VoiceType{rumpu.Membrane}, VoiceCycle: true,
		Evolve: rumpu.EvolveConfig{
			Enabled: true, EveryBars: 1, Intensity: 1,
			Rotation: true, Swing: true, Probability: true,
		},
	}), 5)
	s.start()
	runTicks(s, 10)

	if evolves := drainEvolves(s.broker); len(evolves) < 3 {
		t.Fatalf("expected an evolve event per bar, got %d", len(evolves))
	}
	l := s.lanes[0]
	if got := l.Pattern.Hits(); got != l.Hits {
		t.Errorf("rotation drift changed the hit count: pattern has %d, lane says %d", got, l.Hits)
	}

	s.handleMessage(ResetLaneMsg{Lane: 0})
	if l.Rotation != 0 || l.Swing != 0 || l.Probability != 1 {
		t.Errorf("reset did not restore the lane: rotation %d, swing %v, probability %v",
			l.Rotation, l.Swing, l.Probability)
	}
	if l.Pattern.Hits() != l.Hits {
		t.Error("reset did not restore the pattern")
	}
}

func TestStopHaltsScheduling(t *testing.T) {
	s := newTestScheduler(testKit(rumpu.LaneConfig{
		Steps: 4, Hits: 4, Division: 1, Probability: 1,
		Voices: []rumpu.VoiceType{rumpu.Kick}, VoiceCycle: true,
	}), 1)
	s.start()
	runTicks(s, 1.0)
	if len(drainTriggers(s.broker)) == 0 {
		t.Fatal("no triggers before stopping")
	}
	s.handleMessage(StopMsg{})
	if s.running {
		t.Error("still running after StopMsg")
	}
	runTicks(s, 5.0)
	if got := drainTriggers(s.broker); len(got) != 0 {
		t.Errorf("%d triggers fired after stopping", len(got))
	}
}

func TestUpdateLanePreservesDrift(t *testing.T) {
	kit := testKit(rumpu.LaneConfig{
		Steps: 8, Hits: 3, Division: 1, Probability: 1,
		Voices: []rumpu.VoiceType{rumpu.Kick}, VoiceCycle: true,
	})
	s := newTestScheduler(kit, 1)
	s.start()
	runTicks(s, 2.0)
	l := s.lanes[0]
	total := l.TotalSteps
	if total == 0 {
		t.Fatal("lane did not advance")
	}

	// a performance edit keeps the live lane, counters included
	edited := kit
	edited.Lanes[0].Swing = 0.4
	s.applyKit(edited)
	if s.lanes[0] != l {
		t.Fatal("performance edit rebuilt the lane")
	}
	if l.Swing != 0.4 {
		t.Errorf("swing not applied: %v", l.Swing)
	}
	if l.TotalSteps != total {
		t.Errorf("performance edit reset the step counter")
	}

	// a pattern-shape edit rebuilds the pattern but keeps the transport
	edited.Lanes[0].Steps = 16
	edited.Lanes[0].Hits = 5
	s.applyKit(edited)
	l = s.lanes[0]
	if l.Steps != 16 || l.Hits != 5 {
		t.Fatalf("structural edit not applied: steps %d, hits %d", l.Steps, l.Hits)
	}
	if l.TotalSteps != total {
		t.Errorf("structural edit reset the step counter")
	}
}

func TestCatchUpAfterStall(t *testing.T) {
	s := newTestScheduler(testKit(rumpu.LaneConfig{
		Steps: 4, Hits: 4, Division: 1, Probability: 1,
		Voices: []rumpu.VoiceType{rumpu.Kick}, VoiceCycle: true,
	}), 1)
	s.start()
	s.tick(0)
	drainTriggers(s.broker)

	// the clock jumps far ahead, as after a blocked audio device; the lane
	// resumes from the present instead of replaying the gap
	s.tick(60)
	got := drainTriggers(s.broker)
	for _, tr := range got {
		if tr.When < 60 {
			t.Fatalf("replayed a stale step at %v", tr.When)
		}
	}
	if len(got) == 0 {
		t.Error("lane did not resume after the stall")
	}
}

func TestBounceIsDeterministic(t *testing.T) {
	kit := testKit(rumpu.LaneConfig{
		Steps: 8, Hits: 5, Division: 2, Probability: 0.9,
		Voices: []rumpu.VoiceType{rumpu.Kick, rumpu.Click},
	})
	mk := func() rumpu.AudioBuffer {
		return newTestScheduler(kit, 77).Bounce(1)
	}
	a := mk()
	if want := int(4 * 60 / kit.BPM * rumpu.SampleRate); len(a) != want {
		t.Fatalf("bounced %d frames, want %d", len(a), want)
	}
	b := mk()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("bounces diverged at frame %d", i)
		}
	}
	silent := true
	for _, frame := range a {
		if frame[0] != 0 {
			silent = false
			break
		}
	}
	if silent {
		t.Error("bounce rendered silence")
	}
}

func TestRunAndClose(t *testing.T) {
	kit := testKit(silentLane())
	kit.Enabled = false
	s := newTestScheduler(kit, 1)
	go s.Run()

	s.TriggerVoice(rumpu.BeepLo, 0.8, 0)
	deadline := time.Now().Add(2 * time.Second)
	var seen bool
	for !seen && time.Now().Before(deadline) {
		if msg, ok := TimeoutReceive(s.broker.ToHost, 100*time.Millisecond); ok && msg.HasTrigger {
			seen = msg.Trigger.Voice == rumpu.BeepLo && msg.Trigger.Velocity == 0.8
		}
	}
	if !seen {
		t.Error("manual trigger never reported back")
	}

	s.Close()
	select {
	case <-s.broker.FinishedScheduler:
	default:
		t.Error("Close returned before the scheduler finished")
	}
}
