// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"time"
)

// maxStalls bounds how many consecutive empty, error-free reads a source may
// return before it is considered stuck.
const maxStalls = 64

// Buffer is decoded PCM audio held in memory, one slice per channel.
// Samples are float32 in [-1, 1]. Every channel has the same length.
type Buffer struct {
	SampleRate int
	Channels   [][]float32
}

// NewBuffer validates and wraps channel data. The slices are not copied.
func NewBuffer(sampleRate int, channels ...[]float32) (*Buffer, error) {
	if sampleRate <= 0 {
		return nil, ErrInvalidSampleRate
	}
	if len(channels) == 0 {
		return nil, ErrNoChannels
	}
	for i := 1; i < len(channels); i++ {
		if len(channels[i]) != len(channels[0]) {
			return nil, fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d",
				ErrChannelLenMismatch, i, len(channels[i]), len(channels[0]))
		}
	}

	return &Buffer{SampleRate: sampleRate, Channels: channels}, nil
}

func (b *Buffer) NumChannels() int {
	if b == nil {
		return 0
	}
	return len(b.Channels)
}

// Len returns the number of frames, i.e. samples per channel.
func (b *Buffer) Len() int {
	if b.NumChannels() == 0 {
		return 0
	}
	return len(b.Channels[0])
}

// Channel returns the samples of channel i, or nil when i is out of range.
func (b *Buffer) Channel(i int) []float32 {
	if i < 0 || i >= b.NumChannels() {
		return nil
	}
	return b.Channels[i]
}

func (b *Buffer) Duration() time.Duration {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Len()) * time.Second / time.Duration(b.SampleRate)
}

// Source returns an interleaved Source reading from the buffer.
func (b *Buffer) Source() Source {
	return &bufferSource{buf: b}
}

type bufferSource struct {
	buf *Buffer
	pos int // next frame
}

func (s *bufferSource) SampleRate() int { return s.buf.SampleRate }
func (s *bufferSource) Channels() int   { return s.buf.NumChannels() }
func (s *bufferSource) BufSize() int    { return 4096 }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	channels := s.buf.NumChannels()
	if channels == 0 || s.pos >= s.buf.Len() {
		return 0, io.EOF
	}

	frames := min(len(dst)/channels, s.buf.Len()-s.pos)
	for f := range frames {
		for c := range channels {
			dst[f*channels+c] = s.buf.Channels[c][s.pos+f]
		}
	}
	s.pos += frames

	if s.pos >= s.buf.Len() {
		return frames * channels, io.EOF
	}
	return frames * channels, nil
}

// ReadBuffer drains src and deinterleaves it into a Buffer. A trailing
// partial frame is dropped. src is not closed.
func ReadBuffer(src Source) (*Buffer, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrNoChannels
	}
	if src.SampleRate() <= 0 {
		return nil, ErrInvalidSampleRate
	}

	size := src.BufSize()
	if size < channels {
		size = 4096
	}
	size -= size % channels
	if size == 0 {
		size = channels
	}

	chunk := make([]float32, size)
	var interleaved []float32
	stalls := 0

	for {
		n, err := src.ReadSamples(chunk)
		if n > 0 {
			interleaved = append(interleaved, chunk[:n]...)
			stalls = 0
		}

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if n == 0 {
			stalls++
			if stalls > maxStalls {
				return nil, io.ErrNoProgress
			}
		}
	}

	frames := len(interleaved) / channels
	out := make([][]float32, channels)
	for c := range out {
		out[c] = make([]float32, frames)
	}
	for f := range frames {
		base := f * channels
		for c := range channels {
			out[c][f] = interleaved[base+c]
		}
	}

	return &Buffer{SampleRate: src.SampleRate(), Channels: out}, nil
}
