// Package oto adapts the ebitengine/oto audio backend to the engine's
// AudioContext interface.
package oto

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/taleva/rumpu"
)

type (
	OtoContext struct {
		context *oto.Context
	}

	OtoPlayer struct {
		player *oto.Player
	}
)

// NewContext creates an audio context for the engine's fixed format: 44100
// Hz, stereo, 16-bit. It blocks until the backend is ready.
func NewContext() (*OtoContext, error) {
	op := &oto.NewContextOptions{
		SampleRate:   rumpu.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
	}
	context, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	<-ready
	return &OtoContext{context: context}, nil
}

// Play starts playing the 16-bit LE stereo stream from r and returns a handle
// to stop or wait on it.
func (c *OtoContext) Play(r io.Reader) rumpu.CloserWaiter {
	player := c.context.NewPlayer(r)
	player.Play()
	return OtoPlayer{player: player}
}

func (c *OtoContext) Close() error {
	// the oto context has no close; stopping all players is all there is
	return nil
}

func (p OtoPlayer) Close() error {
	if err := p.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}

// Wait returns once the player has consumed and played its whole stream.
func (p OtoPlayer) Wait() {
	for p.player.IsPlaying() {
		time.Sleep(10 * time.Millisecond)
	}
}
