// SPDX-License-Identifier: EPL-2.0

package encoder

import (
	"bytes"
	"fmt"
	"io"
	"slices"

	lamemp3 "github.com/lizc2003/audio-mp3"
	"github.com/orcaman/writerseeker"

	"github.com/muhammadfauzanis/compressing-image-audio/formats/wav"
	"github.com/muhammadfauzanis/compressing-image-audio/utils"
)

// lameQuality is the LAME algorithm preset, 0 best and 9 fastest.
const lameQuality = 3

// mpegSampleRates are the rates MPEG-1, 2 and 2.5 Layer III can carry.
var mpegSampleRates = []int{8000, 11025, 12000, 16000, 22050, 24000, 32000, 44100, 48000}

type lameEncoder struct {
	sampleRate int
	pcm        []int16
	flushed    bool
}

// NewLAME returns the LAME-backed BlockEncoder. It accepts the mono 32 kbps
// preset at any MPEG sample rate.
//
// The library encodes a whole stream per call, so blocks are buffered as
// 16-bit PCM and every frame comes out of Flush.
func NewLAME(cfg Config) (BlockEncoder, error) {
	if cfg.Channels != Channels {
		return nil, fmt.Errorf("%w: %w: %d", ErrEncoderInit, ErrUnsupportedChannels, cfg.Channels)
	}
	if cfg.Bitrate != Bitrate {
		return nil, fmt.Errorf("%w: %w: %d kbps", ErrEncoderInit, ErrUnsupportedBitrate, cfg.Bitrate)
	}
	if !slices.Contains(mpegSampleRates, cfg.SampleRate) {
		return nil, fmt.Errorf("%w: %w: %d Hz", ErrEncoderInit, ErrUnsupportedSampleRate, cfg.SampleRate)
	}

	return &lameEncoder{sampleRate: cfg.SampleRate}, nil
}

func (e *lameEncoder) EncodeBlock(block []float32) ([]byte, error) {
	if e.flushed {
		return nil, ErrEncoderClosed
	}

	start := len(e.pcm)
	e.pcm = slices.Grow(e.pcm, len(block))[:start+len(block)]
	utils.Float32ToInt16Slice(e.pcm[start:], block)

	return nil, nil
}

func (e *lameEncoder) Flush() ([]byte, error) {
	if e.flushed {
		return nil, ErrEncoderClosed
	}
	e.flushed = true

	if len(e.pcm) == 0 {
		return nil, nil
	}

	pcm, err := wav.EncodePCM16(e.sampleRate, e.pcm)
	if err != nil {
		return nil, fmt.Errorf("lame: staging pcm: %w", err)
	}
	e.pcm = nil

	out := &writerseeker.WriterSeeker{}
	_, _, _, err = lamemp3.EncodeFromWav(bytes.NewReader(pcm), out, &lamemp3.EncoderConfig{
		Bitrate: Bitrate,
		Quality: lameQuality,
	})
	if err != nil {
		return nil, fmt.Errorf("lame: %w", err)
	}

	return io.ReadAll(out.Reader())
}
