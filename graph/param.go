// Package graph models the short-lived signal graphs the voices build for
// every trigger. Nodes process float32 blocks addressed by absolute sample
// index, parameters carry automation events scheduled against the same
// absolute clock, and groups of nodes are released in bulk when their expiry
// passes. Graphs are immutable after scheduling; only the render goroutine
// touches node state.
package graph

import "math"

type (
	eventKind int

	autoEvent struct {
		time  int64 // absolute sample index
		kind  eventKind
		value float64
		tau   float64 // samples, eventTarget only
	}

	// Param is an automatable scalar. All scheduling happens before the
	// group is handed to the renderer; evaluation is strictly forward in
	// time, so a cursor into the event list suffices.
	Param struct {
		events []autoEvent
		cursor int
		value  float64 // current value, updated as events pass
	}
)

const (
	eventSet eventKind = iota
	eventLinearRamp
	eventExpRamp
	eventTarget
)

// NewParam returns a Param with the given initial value.
func NewParam(value float64) *Param {
	return &Param{value: value}
}

// SetValueAt schedules an instantaneous jump. Events must be scheduled in
// nondecreasing time order.
func (p *Param) SetValueAt(t int64, v float64) {
	p.events = append(p.events, autoEvent{time: t, kind: eventSet, value: v})
}

// LinearRampTo schedules a linear ramp from the previous event's end value,
// reaching v at time t.
func (p *Param) LinearRampTo(t int64, v float64) {
	p.events = append(p.events, autoEvent{time: t, kind: eventLinearRamp, value: v})
}

// ExpRampTo schedules an exponential ramp reaching v at time t. Values are
// floored away from zero, as a true zero cannot be reached exponentially.
func (p *Param) ExpRampTo(t int64, v float64) {
	if math.Abs(v) < 1e-6 {
		v = math.Copysign(1e-6, v)
	}
	p.events = append(p.events, autoEvent{time: t, kind: eventExpRamp, value: v})
}

// TargetAt schedules an exponential approach towards v starting at time t
// with the given time constant in seconds (at the given sample rate).
func (p *Param) TargetAt(t int64, v, tauSeconds float64, sampleRate int) {
	tau := tauSeconds * float64(sampleRate)
	if tau < 1 {
		tau = 1
	}
	p.events = append(p.events, autoEvent{time: t, kind: eventTarget, value: v, tau: tau})
}

// EndValue returns the value the parameter settles at after all scheduled
// events; targets count as reached.
func (p *Param) EndValue() float64 {
	if len(p.events) == 0 {
		return p.value
	}
	return p.events[len(p.events)-1].value
}

// ValueAt evaluates the parameter at the absolute sample t. Calls must be
// monotonic in t; that is the only access pattern the renderer has.
func (p *Param) ValueAt(t int64) float64 {
	// pass all events that have fully begun
	for p.cursor < len(p.events) && p.events[p.cursor].time <= t {
		e := p.events[p.cursor]
		if e.kind != eventTarget {
			// ramps are evaluated below while in flight; once their end time
			// passes, their end value becomes the current value
			if next := p.cursor + 1; next >= len(p.events) || p.events[next].time > t {
				// this is the active event
				break
			}
		} else {
			break
		}
		p.value = e.value
		p.cursor++
	}
	if p.cursor >= len(p.events) {
		return p.value
	}
	e := p.events[p.cursor]
	switch e.kind {
	case eventSet:
		if t >= e.time {
			p.value = e.value
			p.cursor++
			return p.value
		}
		return p.value
	case eventLinearRamp:
		if t >= e.time {
			p.value = e.value
			p.cursor++
			return p.value
		}
		span := float64(e.time - p.prevTime())
		if span <= 0 {
			return e.value
		}
		frac := float64(t-p.prevTime()) / span
		if frac < 0 {
			frac = 0
		}
		return p.value + (e.value-p.value)*frac
	case eventExpRamp:
		if t >= e.time {
			p.value = e.value
			p.cursor++
			return p.value
		}
		span := float64(e.time - p.prevTime())
		if span <= 0 {
			return e.value
		}
		frac := float64(t-p.prevTime()) / span
		if frac < 0 {
			frac = 0
		}
		from := p.value
		if math.Abs(from) < 1e-6 {
			from = math.Copysign(1e-6, e.value)
		}
		return from * math.Pow(e.value/from, frac)
	case eventTarget:
		if t < e.time {
			return p.value
		}
		dt := float64(t - e.time)
		cur := e.value + (p.value-e.value)*math.Exp(-dt/e.tau)
		// a later event supersedes the target
		if next := p.cursor + 1; next < len(p.events) && p.events[next].time <= t {
			p.value = cur
			p.cursor++
			return p.ValueAt(t)
		}
		return cur
	}
	return p.value
}

func (p *Param) prevTime() int64 {
	if p.cursor == 0 {
		return math.MinInt64 / 2
	}
	return p.events[p.cursor-1].time
}
