// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/go-audio/riff"
	"github.com/go-audio/wav"

	"github.com/muhammadfauzanis/compressing-image-audio/audio"
	"github.com/muhammadfauzanis/compressing-image-audio/internal/membuf"
	"github.com/muhammadfauzanis/compressing-image-audio/internal/pcmsource"
)

// WAVE format tags
const (
	formatPCM        = 1
	formatExtensible = 0xFFFE
)

type Decoder struct{}

// Decode reads the WAV header and returns a source over the data chunk.
// Input that cannot seek is read into memory first.
func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, err := membuf.ReadSeeker(r)
	if err != nil {
		return nil, err
	}

	if err := checkMagic(rs); err != nil {
		return nil, err
	}

	code, err := formatCode(rs)
	if err != nil {
		return nil, err
	}
	if code != formatPCM {
		return nil, fmt.Errorf("%w: format %d", ErrUnsupportedEncoding, code)
	}

	dec := wav.NewDecoder(rs)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}

	switch dec.BitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	src, err := pcmsource.New(dec, int(dec.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}

	return src, nil
}

// checkMagic verifies the RIFF/WAVE preamble and rewinds rs.
func checkMagic(rs io.ReadSeeker) error {
	header := make([]byte, 12)
	if _, err := io.ReadFull(rs, header); err != nil {
		return fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}

	if !bytes.Equal(header[:4], []byte("RIFF")) || !bytes.Equal(header[8:12], []byte("WAVE")) {
		return ErrNotWavFile
	}

	if _, err := rs.Seek(-int64(len(header)), io.SeekCurrent); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// formatCode returns the fmt chunk's format tag, or the sub-format for
// WAVE_FORMAT_EXTENSIBLE, and rewinds rs.
func formatCode(rs io.ReadSeeker) (uint16, error) {
	start, err := rs.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("%w", err)
	}

	p := riff.New(rs)
	if err := p.ParseHeaders(); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNotWavFile, err)
	}

	var body []byte
	for body == nil {
		ch, err := p.NextChunk()
		if err != nil {
			return 0, fmt.Errorf("%w: no fmt chunk: %w", ErrNotWavFile, err)
		}
		if ch.ID != riff.FmtID {
			ch.Drain()
			continue
		}

		body = make([]byte, ch.Size)
		if _, err := io.ReadFull(ch.R, body); err != nil {
			return 0, fmt.Errorf("%w: fmt chunk: %w", ErrNotWavFile, err)
		}
	}

	if len(body) < 2 {
		return 0, fmt.Errorf("%w: fmt chunk too short", ErrNotWavFile)
	}

	// cbSize, valid bits and the channel mask precede the sub-format GUID,
	// whose first two bytes carry the format code.
	code := binary.LittleEndian.Uint16(body)
	if code == formatExtensible {
		if len(body) < 26 {
			return 0, fmt.Errorf("%w: extensible fmt chunk too short", ErrNotWavFile)
		}
		code = binary.LittleEndian.Uint16(body[24:26])
	}

	if _, err := rs.Seek(start, io.SeekStart); err != nil {
		return 0, fmt.Errorf("%w", err)
	}

	return code, nil
}
