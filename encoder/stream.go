// SPDX-License-Identifier: EPL-2.0

package encoder

import (
	"errors"
	"fmt"
	"io"

	"github.com/muhammadfauzanis/compressing-image-audio/audio"
)

// maxStalls bounds consecutive empty reads from a source.
const maxStalls = 64

// EncodeSource is Encode for a streaming source: channel 0 is read block by
// block without building a Buffer. src is not closed.
//
// Read failures are reported as ErrInvalidInput, since the input could not
// be consumed.
func (p *Pipeline) EncodeSource(src audio.Source) ([]byte, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: nil source", ErrInvalidInput)
	}
	if src.Channels() <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, audio.ErrNoChannels)
	}
	if src.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: %w: %d", ErrInvalidInput, audio.ErrInvalidSampleRate, src.SampleRate())
	}

	mono, err := audio.NewChannelSelector(src, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	enc, err := p.open(src.SampleRate())
	if err != nil {
		return nil, err
	}

	var out []byte
	block := make([]float32, BlockSize)
	blocks, samples := 0, 0

	for {
		n, done, err := readBlock(mono, block)
		if err != nil {
			return nil, fmt.Errorf("%w: reading block %d: %w", ErrInvalidInput, blocks, err)
		}

		if n > 0 {
			chunk, err := enc.EncodeBlock(block[:n:n])
			if err != nil {
				return nil, fmt.Errorf("%w: block %d: %w", ErrEncodingFailure, blocks, err)
			}
			out = append(out, chunk...)
			blocks++
			samples += n
		}

		if done {
			break
		}
	}

	out, err = p.finish(enc, out)
	if err != nil {
		return nil, err
	}

	p.log.Debug().
		Int("sample_rate", src.SampleRate()).
		Int("samples", samples).
		Int("blocks", blocks).
		Int("bytes", len(out)).
		Msg("encoded stream")

	return out, nil
}

// readBlock fills block completely unless the source ends first, in which
// case done is true and n may be short.
func readBlock(src audio.Source, block []float32) (n int, done bool, err error) {
	stalls := 0

	for n < len(block) {
		got, err := src.ReadSamples(block[n:])
		n += got

		if errors.Is(err, io.EOF) {
			return n, true, nil
		}
		if err != nil {
			return 0, false, err
		}

		if got == 0 {
			stalls++
			if stalls > maxStalls {
				return 0, false, io.ErrNoProgress
			}
			continue
		}
		stalls = 0
	}

	return n, false, nil
}
