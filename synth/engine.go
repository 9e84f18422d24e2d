// Package synth builds the transient signal graphs for the seven percussion
// voices. Each trigger resolves its parameter set, applies the variation and
// distance profiles, constructs a short-lived node graph with envelopes
// scheduled against the absolute render clock, and registers everything in
// one resource group that the pool and renderer manage from then on.
package synth

import (
	"math"

	"github.com/taleva/rumpu"
	"github.com/taleva/rumpu/graph"
)

type (
	// Engine is the explicitly owned context of the synthesis side: the
	// current parameter snapshot, the session RNG, the morph resolver and
	// the pool. There is no package-level state; two engines never interact.
	Engine struct {
		Params   rumpu.VoiceParams
		Rand     *rumpu.Rand
		Morph    rumpu.MorphResolver
		Renderer *graph.Renderer

		pool Pool
	}

	// trig is the per-trigger context threaded through a voice builder: the
	// resolved request plus the two modulation profiles. It replaces any
	// notion of "current trigger" scratch state.
	trig struct {
		at       int64 // absolute sample of the strike
		vel      float64
		vr       rumpu.VariationProfile
		dist     rumpu.DistanceProfile
		decayCap float64 // seconds, 0 = uncapped
		seed     uint32
	}
)

const sampleRate = rumpu.SampleRate

func NewEngine(renderer *graph.Renderer, rnd *rumpu.Rand, morph rumpu.MorphResolver) *Engine {
	e := &Engine{
		Params:   rumpu.DefaultVoiceParams(),
		Rand:     rnd,
		Morph:    morph,
		Renderer: renderer,
	}
	e.pool.renderer = renderer
	return e
}

// SetParams replaces the parameter snapshot. The snapshot is clamped; voices
// triggered from here on resolve against the new values.
func (e *Engine) SetParams(p rumpu.VoiceParams) {
	p.Clamp()
	e.Params = p
}

// Trigger synthesizes one voice hit. It never fails: bad values are clamped,
// a full pool steals its oldest entry, and an unresolvable morph falls back
// to the direct parameters.
func (e *Engine) Trigger(req rumpu.TriggerRequest) {
	if req.Voice < 0 || int(req.Voice) >= rumpu.NumVoiceTypes {
		return
	}
	now := e.Renderer.Now()
	when := req.When
	if when < now {
		when = now
	}
	var morph rumpu.ParamMap
	if req.MorphOverride != nil && e.Morph != nil {
		morph = e.Morph.Resolve(req.Voice, *req.MorphOverride)
	}
	common := e.commonFor(req.Voice, morph)
	distPos := common.Distance
	if req.DistanceOverride != nil {
		distPos = *req.DistanceOverride
	}
	c := &trig{
		at:       int64(when * sampleRate),
		vel:      clamp(req.Velocity, 0, 1),
		vr:       rumpu.ComputeVariation(common.Variation, e.Rand),
		dist:     rumpu.ComputeDistance(distPos),
		decayCap: req.DecayCap,
		seed:     uint32(e.Rand.Intn(1 << 30)),
	}
	if req.PitchOffset != 0 {
		c.vr.Pitch *= math.Pow(2, clamp(req.PitchOffset, -24, 24)/12)
	}
	var (
		root graph.Node
		tail float64
	)
	switch req.Voice {
	case rumpu.Sub:
		root, tail = buildSub(c, resolveSub(e.Params.Sub, morph))
	case rumpu.Kick:
		root, tail = buildKick(c, resolveKick(e.Params.Kick, morph))
	case rumpu.Click:
		root, tail = buildClick(c, resolveClick(e.Params.Click, morph))
	case rumpu.BeepHi:
		root, tail = buildBeepHi(c, resolveBeepHi(e.Params.BeepHi, morph))
	case rumpu.BeepLo:
		root, tail = buildBeepLo(c, resolveBeepLo(e.Params.BeepLo, morph))
	case rumpu.Noise:
		root, tail = buildNoise(c, resolveNoise(e.Params.Noise, morph))
	case rumpu.Membrane:
		root, tail = buildMembrane(c, resolveMembrane(e.Params.Membrane, morph))
	}
	if root == nil {
		return
	}
	expiry := when + tail + 0.05
	g := &graph.Group{
		ID:         graph.NewGroupID(),
		Out:        root,
		StartAt:    when,
		ExpiresAt:  expiry,
		DelaySend:  float32(common.DelaySend),
		ReverbSend: float32(common.ReverbSend),
	}
	e.pool.Admit(req.Voice, now)
	e.pool.Register(req.Voice, g.ID, expiry)
	e.Renderer.Start(g)
}

// DisposeAll force-releases every pooled voice and live resource group,
// regardless of expiry. Shutdown only.
func (e *Engine) DisposeAll() {
	e.pool.DisposeAll()
}

// PoolLive reports the number of live pool entries for a voice type.
func (e *Engine) PoolLive(v rumpu.VoiceType) int { return e.pool.Live(v) }

// commonFor returns the voice's shared parameters, with morph keys applied
// when present.
func (e *Engine) commonFor(v rumpu.VoiceType, m rumpu.ParamMap) rumpu.VoiceCommon {
	var c rumpu.VoiceCommon
	switch v {
	case rumpu.Sub:
		c = e.Params.Sub.VoiceCommon
	case rumpu.Kick:
		c = e.Params.Kick.VoiceCommon
	case rumpu.Click:
		c = e.Params.Click.VoiceCommon
	case rumpu.BeepHi:
		c = e.Params.BeepHi.VoiceCommon
	case rumpu.BeepLo:
		c = e.Params.BeepLo.VoiceCommon
	case rumpu.Noise:
		c = e.Params.Noise.VoiceCommon
	case rumpu.Membrane:
		c = e.Params.Membrane.VoiceCommon
	}
	c.Level = clamp(m.Get("level", c.Level), 0, 1)
	c.Distance = clamp(m.Get("distance", c.Distance), 0, 1)
	c.DelaySend = clamp(m.Get("delaysend", c.DelaySend), 0, 1)
	c.ReverbSend = clamp(m.Get("reverbsend", c.ReverbSend), 0, 1)
	return c
}

// peak is the final envelope peak of a trigger: velocity, voice level and the
// level components of both profiles.
func (c *trig) peak(level float64) float64 {
	return clamp(c.vel*level*c.vr.Level*c.dist.Level, 0, 1.5)
}

// attack scales an attack time by the profiles (louder = snappier, edge =
// snappier).
func (c *trig) attack(a float64) float64 {
	return math.Max(a*c.vr.Attack*c.dist.Attack, 0)
}

// decay scales a decay time by the profiles and applies the ratchet decay
// cap when one was requested.
func (c *trig) decay(d float64) float64 {
	d *= c.vr.Decay * c.dist.Decay
	if c.decayCap > 0 && d > c.decayCap {
		d = c.decayCap
	}
	return math.Max(d, 0.002)
}

// pitch applies the variation pitch wobble to a frequency.
func (c *trig) pitch(f float64) float64 { return f * c.vr.Pitch }

// ampEnv schedules the standard strike envelope on a gain param: silence at
// the strike, a linear attack to the peak and an exponential decay tail.
// Returns the tail length in seconds.
func (c *trig) ampEnv(p *graph.Param, peak, attack, decay float64) float64 {
	p.SetValueAt(c.at, 0)
	attackSamples := int64(attack * sampleRate)
	if attackSamples < 1 {
		p.SetValueAt(c.at, peak)
	} else {
		p.LinearRampTo(c.at+attackSamples, peak)
	}
	p.ExpRampTo(c.at+attackSamples+int64(decay*sampleRate), peak*1e-4)
	p.SetValueAt(c.at+attackSamples+int64(decay*sampleRate), 0)
	return attack + decay
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
