// Package seq is the rhythm side of the engine: four independently clocked
// lanes generating Euclidean patterns, a look-ahead scheduler goroutine that
// turns due steps into trigger requests against the renderer clock, and an
// evolve engine mutating the live lanes at bar boundaries. The host talks to
// the scheduler only through the broker.
package seq

import (
	"time"

	"github.com/taleva/rumpu"
)

type (
	// Broker carries the messages between the host and the scheduler
	// goroutine. It is one channel per recipient; all sends are non-blocking
	// via TrySend, so a slow or absent reader only loses telemetry, never
	// stalls scheduling.
	//
	// CloseScheduler has a capacity of 1, so requesting closure never blocks;
	// a full channel means someone already asked. FinishedScheduler is closed
	// by the scheduler goroutine when it has cleaned up.
	Broker struct {
		ToScheduler chan any
		ToHost      chan MsgToHost

		CloseScheduler    chan struct{}
		FinishedScheduler chan struct{}
	}

	// MsgToHost is the fire-and-forget telemetry stream. The frequent kinds
	// (trigger, step position) are unboxed fields to avoid allocations; rare
	// messages ride in Data.
	MsgToHost struct {
		HasTrigger bool
		Trigger    TriggerInfo

		HasStep bool
		Step    StepInfo

		HasEvolve  bool
		EvolveLane int

		Data any
	}

	// TriggerInfo reports one issued trigger, with the morph position when
	// the trigger was morph-resolved.
	TriggerInfo struct {
		Voice    rumpu.VoiceType
		Velocity float64
		When     float64 // seconds on the renderer clock
		Morph    float64
		HasMorph bool
	}

	// StepInfo reports a lane's step advance.
	StepInfo struct {
		Lane     int
		Step     int
		HitCount int
	}

	// Alert is a scheduling fault or notice surfaced to the host, sent boxed
	// in MsgToHost.Data.
	Alert struct {
		Name     string
		Message  string
		Priority AlertPriority
		Duration time.Duration
	}

	AlertPriority int

	// Messages the host sends to the scheduler. Each is handled between
	// ticks; none of them block the caller.

	// TriggerVoiceMsg is a manual one-shot trigger bypassing the lanes.
	TriggerVoiceMsg struct {
		Voice    rumpu.VoiceType
		Velocity float64
		When     float64 // 0 = as soon as possible
	}

	// UpdateParamsMsg replaces the whole kit snapshot. The scheduler starts
	// or stops its lanes based on the kit's Enabled flag.
	UpdateParamsMsg struct{ Kit rumpu.Kit }

	// SetStepOverridesMsg installs (or with nil clears) a lane's override
	// set. The scheduler reads the snapshot on every tick.
	SetStepOverridesMsg struct {
		Lane      int
		Overrides *rumpu.StepOverrides
	}

	SetEvolveConfigMsg struct {
		Lane   int
		Config rumpu.EvolveConfig
	}

	ResetLaneMsg struct{ Lane int }

	StopMsg struct{}
)

const (
	Info AlertPriority = iota
	Warning
	Error
)

const defaultAlertDuration = 3 * time.Second

func NewBroker() *Broker {
	return &Broker{
		ToScheduler:       make(chan any, 1024),
		ToHost:            make(chan MsgToHost, 1024),
		CloseScheduler:    make(chan struct{}, 1),
		FinishedScheduler: make(chan struct{}),
	}
}

// TrySend is a helper function to send a value to a channel if it is not
// full. It is guaranteed to be non-blocking. Returns true if the value was
// sent.
func TrySend[T any](c chan<- T, v T) bool {
	select {
	case c <- v:
	default:
		return false
	}
	return true
}

// TimeoutReceive blocks until a value is received from the channel or the
// timeout passes; ok is false on timeout or a closed channel.
func TimeoutReceive[T any](c <-chan T, t time.Duration) (v T, ok bool) {
	select {
	case v, ok = <-c:
		return v, ok
	case <-time.After(t):
		return v, false
	}
}
