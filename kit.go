package rumpu

import (
	"encoding/json"
	"fmt"
	"hash/fnv"

	"gopkg.in/yaml.v3"
)

// NumLanes is the number of independently clocked sequencer lanes.
const NumLanes = 4

// Kit is the whole persisted state of the engine: per-voice synthesis
// parameters, the four lane configs, tempo and the session seed. It is a
// plain document of numeric and enum fields; marshals to YAML or JSON.
type Kit struct {
	BPM     float64              `yaml:"bpm"`
	Seed    uint32               `yaml:"seed,omitempty"` // 0: derive from time bucket + kit hash
	Enabled bool                 `yaml:"enabled"`
	Voices  VoiceParams          `yaml:"voices"`
	Lanes   [NumLanes]LaneConfig `yaml:"lanes"`
}

// Clamp forces every numeric field of the kit into its documented range.
// Out-of-range input is silently corrected, never rejected.
func (k *Kit) Clamp() {
	k.BPM = clampFloat(k.BPM, 20, 300)
	k.Voices.Clamp()
	for i := range k.Lanes {
		k.Lanes[i].Clamp()
	}
}

// Hash returns a stable hash of the kit's marshaled form, used to derive the
// session seed when none is set explicitly.
func (k *Kit) Hash() uint32 {
	b, err := yaml.Marshal(k)
	if err != nil {
		return 0
	}
	h := fnv.New32a()
	h.Write(b)
	return h.Sum32()
}

// ParseKit parses a kit from bytes, trying json first and yaml second, like
// the usual song loaders. The parsed kit is clamped before returning.
func ParseKit(data []byte) (Kit, error) {
	var kit Kit
	if errJSON := json.Unmarshal(data, &kit); errJSON != nil {
		if errYaml := yaml.Unmarshal(data, &kit); errYaml != nil {
			return Kit{}, fmt.Errorf("kit could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	kit.Clamp()
	return kit, nil
}

// MarshalKit marshals the kit as YAML.
func MarshalKit(k Kit) ([]byte, error) {
	return yaml.Marshal(k)
}

// DefaultKit returns a four-lane ambient percussion setup: a slow kick/sub
// pulse, an off-grid membrane lane, a sparse beep lane and a noise texture
// lane.
func DefaultKit() Kit {
	return Kit{
		BPM:     96,
		Enabled: true,
		Voices:  DefaultVoiceParams(),
		Lanes: [NumLanes]LaneConfig{
			{
				Steps: 16, Hits: 4, Division: 2, Probability: 1,
				Voices: []VoiceType{Kick, Sub}, VoiceCycle: true,
				Expression: SubLaneConfig{Steps: 4, Values: []float64{1, 0.7, 0.85, 0.6}},
			},
			{
				Steps: 12, Hits: 5, Rotation: 2, Division: 1.5, Swing: 0.12, Probability: 0.9,
				Voices: []VoiceType{Membrane, BeepLo}, VoiceCycle: true,
				Distance: SubLaneConfig{Steps: 3, Direction: PingPong, Values: []float64{0.3, 0.5, 0.8}},
			},
			{
				Steps: 16, Hits: 3, Rotation: 5, Division: 2, Probability: 0.7,
				Voices: []VoiceType{BeepHi, Click},
				Morph:  SubLaneConfig{Steps: 5, Values: []float64{0, 0.25, 0.5, 0.75, 1}},
			},
			{
				Steps: 8, Hits: 2, Division: 0.5, Probability: 0.8,
				Voices: []VoiceType{Noise},
				Evolve: EvolveConfig{
					Enabled: true, EveryBars: 2, Intensity: 0.4,
					Rotation: true, Probability: true, GhostNotes: true,
				},
			},
		},
	}
}
