package graph

import (
	"sync/atomic"

	"github.com/viterin/vek/vek32"

	"github.com/taleva/rumpu"
)

type (
	// Group is one trigger's transient resource group: every node a
	// synthesis call allocates is reachable from Out, and the whole group is
	// released in bulk once ExpiresAt passes. Groups are immutable after
	// scheduling.
	Group struct {
		ID        uint64
		Out       Node
		StartAt   float64 // seconds; the group is silent before this
		ExpiresAt float64 // seconds; never released before this

		DelaySend  float32
		ReverbSend float32
	}

	commandKind int

	command struct {
		kind  commandKind
		group *Group
		id    uint64
		at    float64 // seconds
		dur   float64 // seconds
	}

	activeGroup struct {
		g       *Group
		fadeAt  float64 // seconds; < 0 when not fading
		fadeDur float64
	}

	// Renderer owns the live groups and the sample clock. Groups and fade
	// commands arrive over a channel, one way, scheduler to renderer; the
	// renderer never calls back. Render is driven either by the realtime
	// audio loop or by an offline bounce; either way the clock only advances
	// here.
	Renderer struct {
		commands  chan command
		samplePos atomic.Int64
		groups    []activeGroup
		nextSweep int64

		// Delay and Reverb are the external mix sinks voice outputs fan
		// into. Either may be nil.
		Delay  rumpu.MixSink
		Reverb rumpu.MixSink

		scratch []float32
	}
)

const (
	cmdStart commandKind = iota
	cmdFade
	cmdKill
	cmdKillAll
)

// sweepInterval is how often expired groups are reclaimed, in samples.
const sweepInterval = 2 * sampleRate

var groupIDCounter atomic.Uint64

// NewGroupID returns a process-unique group ID.
func NewGroupID() uint64 { return groupIDCounter.Add(1) }

func NewRenderer() *Renderer {
	return &Renderer{commands: make(chan command, 1024)}
}

// Now returns the current render clock in seconds. Safe from any goroutine.
func (r *Renderer) Now() float64 {
	return float64(r.samplePos.Load()) / sampleRate
}

// trySend posts a command without ever blocking; when the queue is full the
// command is dropped, which degrades to a skipped voice, never to a stalled
// scheduler.
func (r *Renderer) trySend(c command) bool {
	select {
	case r.commands <- c:
		return true
	default:
		return false
	}
}

// Start hands a scheduled group to the renderer.
func (r *Renderer) Start(g *Group) bool { return r.trySend(command{kind: cmdStart, group: g}) }

// Fade schedules a short linear fade of the group's output starting at the
// given time, after which the group is disconnected. Used by the voice pool
// when stealing.
func (r *Renderer) Fade(id uint64, at, dur float64) bool {
	return r.trySend(command{kind: cmdFade, id: id, at: at, dur: dur})
}

// Kill disconnects the group immediately.
func (r *Renderer) Kill(id uint64) bool { return r.trySend(command{kind: cmdKill, id: id}) }

// KillAll force-releases every live group, regardless of expiry. Full
// shutdown only.
func (r *Renderer) KillAll() bool { return r.trySend(command{kind: cmdKillAll}) }

func (r *Renderer) drainCommands() {
	for {
		select {
		case c := <-r.commands:
			switch c.kind {
			case cmdStart:
				r.groups = append(r.groups, activeGroup{g: c.group, fadeAt: -1})
			case cmdFade:
				for i := range r.groups {
					if r.groups[i].g.ID == c.id && r.groups[i].fadeAt < 0 {
						r.groups[i].fadeAt = c.at
						r.groups[i].fadeDur = c.dur
					}
				}
			case cmdKill:
				for i := len(r.groups) - 1; i >= 0; i-- {
					if r.groups[i].g.ID == c.id {
						r.groups = append(r.groups[:i], r.groups[i+1:]...)
					}
				}
			case cmdKillAll:
				r.groups = r.groups[:0]
			}
		default:
			return
		}
	}
}

// Render mixes all live groups into the stereo buffer and advances the
// clock. It must only ever be called from one goroutine.
func (r *Renderer) Render(buffer rumpu.AudioBuffer) {
	r.drainCommands()
	n := len(buffer)
	if n == 0 {
		return
	}
	start := r.samplePos.Load()
	now := float64(start) / sampleRate
	if cap(r.scratch) < n {
		r.scratch = make([]float32, n)
	}
	mix := vek32.Zeros_Into(r.scratch[:n], n)
	for i := range r.groups {
		ag := &r.groups[i]
		if ag.g.StartAt >= now+float64(n)/sampleRate {
			continue
		}
		out := ag.g.Out.Render(start, n)
		if ag.fadeAt >= 0 {
			applyFade(out, start, ag.fadeAt, ag.fadeDur)
		}
		if r.Delay != nil && ag.g.DelaySend > 0 {
			r.Delay.Mix(out, ag.g.DelaySend)
		}
		if r.Reverb != nil && ag.g.ReverbSend > 0 {
			r.Reverb.Mix(out, ag.g.ReverbSend)
		}
		vek32.Add_Inplace(mix, out)
	}
	for i := 0; i < n; i++ {
		v := mix[i]
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		buffer[i][0] = v
		buffer[i][1] = v
	}
	r.samplePos.Store(start + int64(n))
	if start+int64(n) >= r.nextSweep {
		r.sweep(float64(start+int64(n)) / sampleRate)
		r.nextSweep = start + int64(n) + sweepInterval
	}
}

// sweep releases groups whose expiry has elapsed, and never any other: a
// long-decay voice is not cut short by housekeeping.
func (r *Renderer) sweep(now float64) {
	for i := len(r.groups) - 1; i >= 0; i-- {
		ag := &r.groups[i]
		expired := ag.g.ExpiresAt <= now
		faded := ag.fadeAt >= 0 && ag.fadeAt+ag.fadeDur <= now
		if expired || faded {
			r.groups = append(r.groups[:i], r.groups[i+1:]...)
		}
	}
}

// LiveGroups reports how many groups are currently held. Render-goroutine
// only; exposed for tests.
func (r *Renderer) LiveGroups() int { return len(r.groups) }

func applyFade(buf []float32, start int64, fadeAt, fadeDur float64) {
	fadeStart := fadeAt * sampleRate
	fadeSamples := fadeDur * sampleRate
	if fadeSamples < 1 {
		fadeSamples = 1
	}
	for i := range buf {
		pos := float64(start+int64(i)) - fadeStart
		if pos <= 0 {
			continue
		}
		gain := 1 - pos/fadeSamples
		if gain < 0 {
			gain = 0
		}
		buf[i] *= float32(gain)
	}
}
