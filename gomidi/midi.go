// Package gomidi lets a MIDI keyboard or pad controller jam on top of the
// running engine: note-ons become manual voice triggers, mapped roughly along
// the General MIDI drum layout.
package gomidi

import (
	"errors"
	"fmt"
	"strings"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/taleva/rumpu"
	"github.com/taleva/rumpu/seq"
)

type RTMIDIContext struct {
	driver    *rtmididrv.Driver
	currentIn drivers.In
	scheduler *seq.Scheduler
}

// NewContext opens the rtmidi driver. A failed driver is not an error; the
// context simply has no devices to offer.
func NewContext(scheduler *seq.Scheduler) *RTMIDIContext {
	m := &RTMIDIContext{scheduler: scheduler}
	m.driver, _ = rtmididrv.New()
	return m
}

// TryToOpenBy opens the first input whose name starts with namePrefix, or
// just the first input when takeFirst is set.
func (c *RTMIDIContext) TryToOpenBy(namePrefix string, takeFirst bool) error {
	if c.driver == nil {
		return errors.New("no MIDI driver available")
	}
	if namePrefix == "" && !takeFirst {
		return nil
	}
	ins, err := c.driver.Ins()
	if err != nil {
		return fmt.Errorf("listing MIDI inputs failed: %w", err)
	}
	for _, in := range ins {
		if takeFirst || strings.HasPrefix(in.String(), namePrefix) {
			return c.open(in)
		}
	}
	return fmt.Errorf("no MIDI input matching %q", namePrefix)
}

func (c *RTMIDIContext) open(in drivers.In) error {
	if c.currentIn != nil && c.currentIn.IsOpen() {
		c.currentIn.Close()
	}
	if err := in.Open(); err != nil {
		return fmt.Errorf("opening MIDI input failed: %w", err)
	}
	c.currentIn = in
	if _, err := midi.ListenTo(in, c.handleMessage); err != nil {
		in.Close()
		c.currentIn = nil
		return fmt.Errorf("listening to MIDI input failed: %w", err)
	}
	return nil
}

func (c *RTMIDIContext) handleMessage(msg midi.Message, timestampms int32) {
	var channel, key, velocity uint8
	if !msg.GetNoteOn(&channel, &key, &velocity) || velocity == 0 {
		return
	}
	c.scheduler.TriggerVoice(VoiceForNote(key), float64(velocity)/127, 0)
}

// VoiceForNote maps a MIDI note to a voice, following the General MIDI drum
// map where one applies and folding the rest over the whole voice set.
func VoiceForNote(note uint8) rumpu.VoiceType {
	switch note {
	case 35, 36:
		return rumpu.Kick
	case 38, 40, 39:
		return rumpu.Noise
	case 41, 43, 45, 47, 48, 50:
		return rumpu.Membrane
	case 42, 44, 46:
		return rumpu.Click
	case 56, 67, 68:
		return rumpu.BeepHi
	case 61, 64:
		return rumpu.BeepLo
	case 33, 34:
		return rumpu.Sub
	}
	return rumpu.VoiceType(int(note) % rumpu.NumVoiceTypes)
}

func (c *RTMIDIContext) HasDeviceOpen() bool {
	return c.currentIn != nil && c.currentIn.IsOpen()
}

func (c *RTMIDIContext) Close() {
	if c.driver == nil {
		return
	}
	if c.currentIn != nil && c.currentIn.IsOpen() {
		c.currentIn.Close()
	}
	c.driver.Close()
}
