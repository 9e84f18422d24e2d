package rumpu

import (
	"io"
)

type (
	// AudioBuffer is a buffer of stereo audio samples.
	AudioBuffer [][2]float32

	// AudioContext is the audio environment the engine outputs into. Play
	// starts playing the given audio stream and returns a CloserWaiter to
	// stop or wait for it.
	AudioContext interface {
		Play(r io.Reader) CloserWaiter
		Close() error
	}

	// CloserWaiter is a handle to ongoing playback.
	CloserWaiter interface {
		Close() error
		Wait()
	}

	// MixSink accepts audio connections from voice outputs. The engine only
	// ever connects outputs to sinks; delay and reverb internals live
	// elsewhere. Mix adds gain-weighted samples of one rendered block into
	// the sink.
	MixSink interface {
		Mix(block []float32, gain float32)
	}
)

// SampleRate is the fixed rendering rate of the engine.
const SampleRate = 44100
