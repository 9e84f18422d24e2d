package synth

import (
	"github.com/taleva/rumpu"
	"github.com/taleva/rumpu/graph"
)

type (
	poolEntry struct {
		id     uint64
		expiry float64
	}

	// Pool enforces the per-voice-type polyphony ceilings. Entries are
	// appended in trigger order, so the oldest entry is always first.
	// Overflow steals: the oldest entry is faded over a few milliseconds and
	// disconnected, never hard-cut, and the trigger itself never fails.
	Pool struct {
		entries  [rumpu.NumVoiceTypes][]poolEntry
		renderer *graph.Renderer
	}
)

// stealFade is the fade length applied to a stolen voice.
const stealFade = 0.005

// Admit makes room for one new entry of the given voice type: expired
// entries are swept out, and if the pool is still at capacity, the oldest
// entry is stolen.
func (p *Pool) Admit(v rumpu.VoiceType, now float64) {
	live := p.entries[v][:0]
	for _, e := range p.entries[v] {
		if e.expiry <= now {
			p.renderer.Kill(e.id)
			continue
		}
		live = append(live, e)
	}
	p.entries[v] = live
	if len(live) >= rumpu.MaxPolyphony[v] {
		oldest := live[0]
		p.renderer.Fade(oldest.id, now, stealFade)
		p.entries[v] = append(live[:0], live[1:]...)
	}
}

// Register records the new entry with its real expiry, known only after the
// voice algorithm has scheduled its envelopes.
func (p *Pool) Register(v rumpu.VoiceType, id uint64, expiry float64) {
	p.entries[v] = append(p.entries[v], poolEntry{id: id, expiry: expiry})
}

// Live reports the number of live entries for a voice type.
func (p *Pool) Live(v rumpu.VoiceType) int { return len(p.entries[v]) }

// DisposeAll force-releases everything unconditionally.
func (p *Pool) DisposeAll() {
	for v := range p.entries {
		p.entries[v] = nil
	}
	p.renderer.KillAll()
}
