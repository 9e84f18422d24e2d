package graph

import (
	"github.com/taleva/rumpu"
)

// Stream exposes the renderer as an endless 16-bit LE stereo PCM stream, the
// form the audio backend consumes. Read drives the renderer clock; it must be
// the only thing doing so.
type Stream struct {
	renderer *Renderer
	buffer   rumpu.AudioBuffer
	bytes    []byte
	offset   int
}

const streamBlockFrames = 1024

func NewStream(r *Renderer) *Stream {
	return &Stream{
		renderer: r,
		buffer:   make(rumpu.AudioBuffer, streamBlockFrames),
		bytes:    make([]byte, streamBlockFrames*4),
		offset:   streamBlockFrames * 4,
	}
}

func (s *Stream) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		if s.offset >= len(s.bytes) {
			s.renderer.Render(s.buffer)
			for i, frame := range s.buffer {
				l := int16(clamp32(frame[0]) * 32767)
				r := int16(clamp32(frame[1]) * 32767)
				s.bytes[i*4] = byte(l)
				s.bytes[i*4+1] = byte(uint16(l) >> 8)
				s.bytes[i*4+2] = byte(r)
				s.bytes[i*4+3] = byte(uint16(r) >> 8)
			}
			s.offset = 0
		}
		n := copy(p[total:], s.bytes[s.offset:])
		s.offset += n
		total += n
	}
	return total, nil
}

func clamp32(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
