// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-audio/aiff"

	"github.com/muhammadfauzanis/compressing-image-audio/audio"
	"github.com/muhammadfauzanis/compressing-image-audio/internal/membuf"
	"github.com/muhammadfauzanis/compressing-image-audio/internal/pcmsource"
)

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	// go-audio requires io.ReadSeeker
	rs, err := membuf.ReadSeeker(r)
	if err != nil {
		return nil, fmt.Errorf("reading aiff data: %w", err)
	}

	if !hasMagic(rs) {
		return nil, ErrNotAiffFile
	}

	dec := aiff.NewDecoder(rs)
	if !dec.IsValidFile() {
		return nil, ErrNotAiffFile
	}
	dec.ReadInfo()

	switch dec.BitDepth {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	src, err := pcmsource.New(dec, int(dec.BitDepth))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotAiffFile, err)
	}

	return src, nil
}

// hasMagic checks for FORM....AIFF or FORM....AIFC and rewinds rs.
func hasMagic(rs io.ReadSeeker) bool {
	header := make([]byte, 12)
	n, _ := io.ReadFull(rs, header)
	if _, err := rs.Seek(-int64(n), io.SeekCurrent); err != nil || n < len(header) {
		return false
	}

	if !bytes.Equal(header[:4], []byte("FORM")) {
		return false
	}
	form := string(header[8:12])

	return form == "AIFF" || form == "AIFC"
}
