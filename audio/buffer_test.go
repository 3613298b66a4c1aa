// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/muhammadfauzanis/compressing-image-audio/internal/audiotest"
)

func TestNewBuffer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rate     int
		channels [][]float32
		wantErr  error
	}{
		{"mono", 44100, [][]float32{{0, 1}}, nil},
		{"stereo", 8000, [][]float32{{0, 1}, {1, 0}}, nil},
		{"empty channel", 8000, [][]float32{{}}, nil},
		{"zero rate", 0, [][]float32{{0}}, ErrInvalidSampleRate},
		{"negative rate", -1, [][]float32{{0}}, ErrInvalidSampleRate},
		{"no channels", 8000, nil, ErrNoChannels},
		{"ragged", 8000, [][]float32{{0, 1}, {0}}, ErrChannelLenMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			buf, err := NewBuffer(tt.rate, tt.channels...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("NewBuffer() error = %v, want %v", err, tt.wantErr)
			}
			if err == nil && buf.NumChannels() != len(tt.channels) {
				t.Errorf("NumChannels() = %d, want %d", buf.NumChannels(), len(tt.channels))
			}
		})
	}
}

func TestBuffer_Accessors(t *testing.T) {
	t.Parallel()

	left := audiotest.Ramp(22050)
	right := audiotest.Silence(22050)
	buf, err := NewBuffer(44100, left, right)
	if err != nil {
		t.Fatalf("NewBuffer() error = %v", err)
	}

	if buf.Len() != 22050 {
		t.Errorf("Len() = %d, want 22050", buf.Len())
	}
	if got := buf.Duration(); got != 500*time.Millisecond {
		t.Errorf("Duration() = %v, want 500ms", got)
	}
	if got := buf.Channel(0); &got[0] != &left[0] {
		t.Error("Channel(0) does not alias the input slice")
	}
	if buf.Channel(2) != nil || buf.Channel(-1) != nil {
		t.Error("Channel() out of range should be nil")
	}
}

func TestBuffer_NilSafe(t *testing.T) {
	t.Parallel()

	var buf *Buffer
	if buf.NumChannels() != 0 || buf.Len() != 0 || buf.Duration() != 0 {
		t.Error("nil Buffer should report zero size")
	}
	if buf.Channel(0) != nil {
		t.Error("nil Buffer Channel(0) should be nil")
	}
}

func TestBuffer_SourceInterleaves(t *testing.T) {
	t.Parallel()

	buf, _ := NewBuffer(8000, []float32{0, 2, 4}, []float32{1, 3, 5})
	src := buf.Source()

	if src.Channels() != 2 || src.SampleRate() != 8000 {
		t.Fatalf("Source() = %d ch @ %d Hz, want 2 @ 8000", src.Channels(), src.SampleRate())
	}

	// odd dst length: only whole frames are written
	dst := make([]float32, 5)
	n, err := src.ReadSamples(dst)
	if err != nil || n != 4 {
		t.Fatalf("ReadSamples() = %d, %v, want 4, nil", n, err)
	}
	if want := []float32{0, 1, 2, 3}; !slices.Equal(dst[:n], want) {
		t.Errorf("first read = %v, want %v", dst[:n], want)
	}

	n, err = src.ReadSamples(dst)
	if err != io.EOF || n != 2 {
		t.Fatalf("ReadSamples() = %d, %v, want 2, EOF", n, err)
	}
	if want := []float32{4, 5}; !slices.Equal(dst[:n], want) {
		t.Errorf("second read = %v, want %v", dst[:n], want)
	}

	if n, err = src.ReadSamples(dst); n != 0 || err != io.EOF {
		t.Errorf("read after end = %d, %v, want 0, EOF", n, err)
	}
}

func TestReadBuffer_Deinterleaves(t *testing.T) {
	t.Parallel()

	src := audiotest.NewRampSource(16000, 3, 5000)
	src.MaxRead = 7

	buf, err := ReadBuffer(src)
	if err != nil {
		t.Fatalf("ReadBuffer() error = %v", err)
	}

	if buf.SampleRate != 16000 || buf.NumChannels() != 3 || buf.Len() != 5000 {
		t.Fatalf("ReadBuffer() = %d ch x %d @ %d, want 3 x 5000 @ 16000",
			buf.NumChannels(), buf.Len(), buf.SampleRate)
	}

	for c := range 3 {
		for i := range buf.Len() {
			if want := float32(i*3 + c); buf.Channels[c][i] != want {
				t.Fatalf("Channels[%d][%d] = %v, want %v", c, i, buf.Channels[c][i], want)
			}
		}
	}
}

func TestReadBuffer_RoundTrip(t *testing.T) {
	t.Parallel()

	orig, _ := NewBuffer(44100,
		audiotest.Sine(3000, 44100, 440, 0.8),
		audiotest.Sine(3000, 44100, 220, 0.3))

	got, err := ReadBuffer(orig.Source())
	if err != nil {
		t.Fatalf("ReadBuffer() error = %v", err)
	}

	for c := range orig.Channels {
		if !slices.Equal(got.Channels[c], orig.Channels[c]) {
			t.Errorf("channel %d differs after round trip", c)
		}
	}
}

func TestReadBuffer_Empty(t *testing.T) {
	t.Parallel()

	buf, err := ReadBuffer(audiotest.NewSilentSource(8000, 2, 0))
	if err != nil {
		t.Fatalf("ReadBuffer() error = %v", err)
	}
	if buf.NumChannels() != 2 || buf.Len() != 0 {
		t.Errorf("ReadBuffer() = %d ch x %d, want 2 x 0", buf.NumChannels(), buf.Len())
	}
}

func TestReadBuffer_InvalidSource(t *testing.T) {
	t.Parallel()

	if _, err := ReadBuffer(audiotest.NewSilentSource(8000, 0, 10)); !errors.Is(err, ErrNoChannels) {
		t.Errorf("zero channels: error = %v, want %v", err, ErrNoChannels)
	}
	if _, err := ReadBuffer(audiotest.NewSilentSource(0, 1, 10)); !errors.Is(err, ErrInvalidSampleRate) {
		t.Errorf("zero rate: error = %v, want %v", err, ErrInvalidSampleRate)
	}
}

type stuckSource struct{}

func (stuckSource) SampleRate() int                    { return 8000 }
func (stuckSource) Channels() int                      { return 1 }
func (stuckSource) BufSize() int                       { return 64 }
func (stuckSource) Close() error                       { return nil }
func (stuckSource) ReadSamples([]float32) (int, error) { return 0, nil }

func TestReadBuffer_Stall(t *testing.T) {
	t.Parallel()

	if _, err := ReadBuffer(stuckSource{}); !errors.Is(err, io.ErrNoProgress) {
		t.Errorf("ReadBuffer() error = %v, want %v", err, io.ErrNoProgress)
	}
}

var errBroken = errors.New("broken")

type failingSource struct{ stuckSource }

func (failingSource) ReadSamples([]float32) (int, error) { return 0, errBroken }

func TestReadBuffer_PropagatesError(t *testing.T) {
	t.Parallel()

	if _, err := ReadBuffer(failingSource{}); !errors.Is(err, errBroken) {
		t.Errorf("ReadBuffer() error = %v, want %v", err, errBroken)
	}
}
