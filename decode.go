// SPDX-License-Identifier: EPL-2.0

package compress

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/muhammadfauzanis/compressing-image-audio/audio"
	"github.com/muhammadfauzanis/compressing-image-audio/encoder"
)

// DefaultContextSampleRate is the rate decoded audio is brought to when the
// caller does not choose one, matching a default audio context.
const DefaultContextSampleRate = 44100

// OutputFilename is the suggested name for compressed output.
const OutputFilename = "compressed_audio" + encoder.FileExtension

type DecodeOptions struct {
	// Format is a registry key such as "wav". Empty means sniff the input.
	Format string
	// SampleRate to resample to; 0 keeps the native rate.
	SampleRate int
	// Registry of decoders; nil means DefaultRegistry.
	Registry *audio.Registry
}

// DefaultDecodeOptions sniffs the format and resamples to
// DefaultContextSampleRate.
func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{SampleRate: DefaultContextSampleRate}
}

// Open picks a decoder for r and returns an interleaved source at the
// requested rate, along with the format key used. The caller closes the
// source.
func Open(r io.Reader, opts DecodeOptions) (audio.Source, string, error) {
	br := bufio.NewReader(r)

	header, err := br.Peek(SniffLen)
	if len(header) == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return nil, "", ErrEmptyInput
		}
		return nil, "", fmt.Errorf("reading input: %w", err)
	}

	format := opts.Format
	if format == "" {
		sniffed, ok := Sniff(header)
		if !ok {
			return nil, "", fmt.Errorf("%w: unrecognized header", ErrUnsupportedFormat)
		}
		format = sniffed
	}

	reg := opts.Registry
	if reg == nil {
		reg = DefaultRegistry()
	}

	dec, ok := reg.Get(format)
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	src, err := dec.Decode(br)
	if err != nil {
		return nil, "", fmt.Errorf("decoding %s: %w", format, err)
	}

	return audio.NewResampler(src, opts.SampleRate), format, nil
}

// Decode reads the whole input into a Buffer, one slice per channel.
func Decode(r io.Reader, opts DecodeOptions) (*audio.Buffer, error) {
	src, format, err := Open(r, opts)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	buf, err := audio.ReadBuffer(src)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", format, err)
	}

	return buf, nil
}

// CompressAudio decodes r and encodes it with the default pipeline.
func CompressAudio(r io.Reader, opts DecodeOptions) ([]byte, error) {
	buf, err := Decode(r, opts)
	if err != nil {
		return nil, err
	}

	return encoder.Encode(buf)
}
