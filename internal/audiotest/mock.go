// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds fixtures shared by the package tests: generated
// sources and sample slices, and a scripted block encoder.
//
// It imports none of the module's packages so that any of them can use it
// from internal tests.
package audiotest

import (
	"io"
	"math"
)

// Waveform returns the value of sample i on channel ch.
type Waveform func(i int, ch int) float32

// MockSource generates interleaved audio from a Waveform. It satisfies
// audio.Source.
type MockSource struct {
	sampleRate int
	channels   int
	frames     int // frames to generate
	pos        int // frames generated so far
	wave       Waveform

	// MaxRead caps how many values a single ReadSamples call returns, which
	// lets tests hand out frames split across reads. Zero means no cap.
	MaxRead int
	// Closed records whether Close was called.
	Closed bool
}

func NewMockSource(sampleRate, channels, frames int, wave Waveform) *MockSource {
	return &MockSource{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     frames,
		wave:       wave,
	}
}

func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return 0 })
}

// NewSineSource generates the same sine on every channel.
func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(i int, _ int) float32 {
		return float32(math.Sin(2 * math.Pi * frequency * float64(i) / float64(sampleRate)))
	})
}

func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

// NewRampSource writes i*channels+ch, handy for checking interleaving.
func NewRampSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(i int, ch int) float32 {
		return float32(i*channels + ch)
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }

func (m *MockSource) Close() error {
	m.Closed = true
	return nil
}

// Reset rewinds the generator.
func (m *MockSource) Reset() {
	m.pos = 0
}

// ReadSamples writes whole values in generation order. With MaxRead set a
// read may end in the middle of a frame; the next read continues from there.
func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	total := m.frames * m.channels
	if m.pos >= total {
		return 0, io.EOF
	}

	n := min(len(dst), total-m.pos)
	if m.MaxRead > 0 {
		n = min(n, m.MaxRead)
	}

	for k := range n {
		v := m.pos + k
		dst[k] = m.wave(v/m.channels, v%m.channels)
	}
	m.pos += n

	if m.pos >= total {
		return n, io.EOF
	}
	return n, nil
}

// Silence returns n zero samples.
func Silence(n int) []float32 {
	return make([]float32, n)
}

// Sine returns n samples of a sine at frequency Hz scaled by amplitude.
func Sine(n, sampleRate int, frequency float64, amplitude float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = amplitude * float32(math.Sin(2*math.Pi*frequency*float64(i)/float64(sampleRate)))
	}
	return out
}

// Ramp returns n samples counting up from 0, so block boundaries can be
// read back from the values.
func Ramp(n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = float32(i)
	}
	return out
}
