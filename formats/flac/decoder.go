// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"

	"github.com/muhammadfauzanis/compressing-image-audio/audio"
	"github.com/muhammadfauzanis/compressing-image-audio/utils"
)

// frameReader is the part of flac.Stream the source uses, to allow testing
type frameReader interface {
	ParseNext() (*frame.Frame, error)
}

type source struct {
	dec        frameReader
	closer     io.Closer
	sampleRate int
	channels   int
	bitDepth   int

	// current frame and the next frame index to hand out
	cur *frame.Frame
	pos int
	eof bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 }

func (s *source) Close() error {
	if s.closer == nil {
		return nil
	}
	if err := s.closer.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples interleaves subframes into dst. A frame larger than dst is
// handed out over several calls.
func (s *source) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / s.channels
	written := 0

	for written < frames {
		if s.cur == nil || s.pos >= int(s.cur.BlockSize) {
			if s.eof {
				break
			}
			if err := s.next(); err != nil {
				return written * s.channels, err
			}
			continue
		}

		n := min(frames-written, int(s.cur.BlockSize)-s.pos)
		for i := range n {
			base := (written + i) * s.channels
			for c := range s.channels {
				dst[base+c] = utils.IntToFloat32(int(s.cur.Subframes[c].Samples[s.pos+i]), s.bitDepth)
			}
		}
		s.pos += n
		written += n
	}

	if s.eof && (s.cur == nil || s.pos >= int(s.cur.BlockSize)) {
		return written * s.channels, io.EOF
	}

	return written * s.channels, nil
}

func (s *source) next() error {
	f, err := s.dec.ParseNext()
	if err == io.EOF {
		s.eof = true
		s.cur = nil
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	if len(f.Subframes) != s.channels {
		return fmt.Errorf("%w: %d subframes, want %d", ErrFrameMismatch, len(f.Subframes), s.channels)
	}
	for c, sub := range f.Subframes {
		if len(sub.Samples) < int(f.BlockSize) {
			return fmt.Errorf("%w: subframe %d has %d samples, block size %d",
				ErrFrameMismatch, c, len(sub.Samples), f.BlockSize)
		}
	}

	s.cur, s.pos = f, 0

	return nil
}

type Decoder struct{}

// Decode parses the stream header and returns a source over the frames.
// Bit depths up to 32 are scaled to [-1, 1].
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	info := stream.Info
	bitDepth := int(info.BitsPerSample)
	if bitDepth < 1 || bitDepth > 32 {
		stream.Close()
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, bitDepth)
	}
	if info.NChannels == 0 {
		stream.Close()
		return nil, audio.ErrNoChannels
	}

	return &source{
		dec:        stream,
		closer:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		bitDepth:   bitDepth,
	}, nil
}
