// SPDX-License-Identifier: EPL-2.0

package encoder

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/muhammadfauzanis/compressing-image-audio/audio"
)

// Pipeline splits PCM into blocks, feeds a fresh BlockEncoder and collects
// the MP3 output. A Pipeline holds no per-call state and is safe for
// concurrent use.
type Pipeline struct {
	factory Factory
	log     zerolog.Logger
}

type Option func(*Pipeline)

// WithFactory replaces the LAME backend.
func WithFactory(f Factory) Option {
	return func(p *Pipeline) {
		if f != nil {
			p.factory = f
		}
	}
}

func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		factory: NewLAME,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}

	return p
}

var defaultPipeline = New()

// Encode compresses channel 0 of buf to mono 32 kbps MP3 with the default
// pipeline.
func Encode(buf *audio.Buffer) ([]byte, error) {
	return defaultPipeline.Encode(buf)
}

// Encode compresses channel 0 of buf. Other channels are ignored. Blocks go
// to the encoder strictly in order, empty chunks are dropped and the flush
// tail comes last. On any error the result is nil.
func (p *Pipeline) Encode(buf *audio.Buffer) ([]byte, error) {
	if err := validateBuffer(buf); err != nil {
		return nil, err
	}

	enc, err := p.open(buf.SampleRate)
	if err != nil {
		return nil, err
	}

	samples := buf.Channels[0]
	out := make([]byte, 0, estimateSize(len(samples), buf.SampleRate))
	blocks := 0

	for start := 0; start < len(samples); start += BlockSize {
		end := min(start+BlockSize, len(samples))

		// capped so an encoder appending to the block cannot reach past it
		chunk, err := enc.EncodeBlock(samples[start:end:end])
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %w", ErrEncodingFailure, blocks, err)
		}
		out = append(out, chunk...)
		blocks++
	}

	out, err = p.finish(enc, out)
	if err != nil {
		return nil, err
	}

	p.log.Debug().
		Int("sample_rate", buf.SampleRate).
		Int("samples", len(samples)).
		Int("blocks", blocks).
		Int("bytes", len(out)).
		Msg("encoded buffer")

	return out, nil
}

func (p *Pipeline) open(sampleRate int) (BlockEncoder, error) {
	cfg := Config{Channels: Channels, SampleRate: sampleRate, Bitrate: Bitrate}

	enc, err := p.factory(cfg)
	if err != nil {
		if errors.Is(err, ErrEncoderInit) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrEncoderInit, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: factory returned no encoder", ErrEncoderInit)
	}

	return enc, nil
}

func (p *Pipeline) finish(enc BlockEncoder, out []byte) ([]byte, error) {
	tail, err := enc.Flush()
	if err != nil {
		return nil, fmt.Errorf("%w: flush: %w", ErrEncodingFailure, err)
	}

	return append(out, tail...), nil
}

func validateBuffer(buf *audio.Buffer) error {
	switch {
	case buf == nil:
		return fmt.Errorf("%w: nil buffer", ErrInvalidInput)
	case buf.NumChannels() == 0:
		return fmt.Errorf("%w: %w", ErrInvalidInput, audio.ErrNoChannels)
	case buf.SampleRate <= 0:
		return fmt.Errorf("%w: %w: %d", ErrInvalidInput, audio.ErrInvalidSampleRate, buf.SampleRate)
	}

	return nil
}

// estimateSize guesses the output length from the bitrate, plus a frame of
// slack for headers and padding.
func estimateSize(samples, sampleRate int) int {
	if sampleRate <= 0 {
		return 0
	}
	return samples*Bitrate*1000/8/sampleRate + 1024
}
