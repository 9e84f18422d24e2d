package rumpu

import (
	"fmt"
)

type (
	// VoiceType enumerates the seven percussion voices of the engine. The set
	// is closed: all per-voice tables in this package are arrays indexed by
	// VoiceType, so adding a voice is a compile-time affair, never a runtime
	// one.
	VoiceType int

	// TriggerRequest asks the synthesis engine to play one voice at an
	// absolute time on the renderer clock. It is built by the scheduler (or by
	// a manual TriggerVoice call) and consumed immediately; it is never
	// stored.
	TriggerRequest struct {
		Voice    VoiceType
		Velocity float64 // 0..1
		When     float64 // seconds on the renderer clock

		// MorphOverride, when set, resolves the voice parameters through the
		// MorphResolver at the given position instead of using the direct
		// parameter values.
		MorphOverride *float64

		// DistanceOverride, when set, replaces the voice's own strike-position
		// setting for this trigger only.
		DistanceOverride *float64

		// PitchOffset transposes the voice's tuned frequencies, in semitones.
		PitchOffset float64

		// DecayCap, when > 0, limits all envelope tails of this trigger to at
		// most this many seconds, so that ratchet repeats fit in their
		// sub-window.
		DecayCap float64
	}

	// ParamMap is a resolved set of voice parameters, keyed by the same names
	// the parameter structs marshal to. Integer-valued choices (waveforms,
	// exciter modes) are carried as their numeric index.
	ParamMap map[string]float64

	// MorphResolver resolves the parameters of a voice at a morph position
	// between presets. The engine treats it as pure: same inputs, same map,
	// no side effects. A nil map means "no morph data", in which case the
	// engine falls back to the direct parameters.
	MorphResolver interface {
		Resolve(voice VoiceType, position float64) ParamMap
	}
)

const (
	Sub VoiceType = iota
	Kick
	Click
	BeepHi
	BeepLo
	Noise
	Membrane

	NumVoiceTypes = int(Membrane) + 1
)

var voiceTypeNames = [NumVoiceTypes]string{"sub", "kick", "click", "beephi", "beeplo", "noise", "membrane"}

func (v VoiceType) String() string {
	if v < 0 || int(v) >= NumVoiceTypes {
		return fmt.Sprintf("voicetype(%d)", int(v))
	}
	return voiceTypeNames[v]
}

// VoiceTypeForName returns the VoiceType marshaling to the given lowercase
// name, or an error if there is none.
func VoiceTypeForName(name string) (VoiceType, error) {
	for i, n := range voiceTypeNames {
		if n == name {
			return VoiceType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown voice type %q", name)
}

func (v VoiceType) MarshalYAML() (any, error) { return v.String(), nil }

func (v *VoiceType) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	t, err := VoiceTypeForName(name)
	if err != nil {
		return err
	}
	*v = t
	return nil
}

// MaxPolyphony is the pool size for each voice type. Short clicky voices get
// by with two simultaneous instances; the long-ringing ones get more so that
// ratchets do not steal their own tails.
var MaxPolyphony = [NumVoiceTypes]int{
	Sub:      2,
	Kick:     2,
	Click:    3,
	BeepHi:   4,
	BeepLo:   4,
	Noise:    3,
	Membrane: 4,
}

// Get returns the float value for key, or def if the key is absent. Used when
// resolving morphed parameter maps, where a missing key falls back to the
// direct parameter value.
func (p ParamMap) Get(key string, def float64) float64 {
	if p == nil {
		return def
	}
	if v, ok := p[key]; ok {
		return v
	}
	return def
}

func clampFloat(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

func clampInt(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
