// SPDX-License-Identifier: EPL-2.0

package compress

import (
	"bytes"
	"path/filepath"
	"strings"

	"github.com/muhammadfauzanis/compressing-image-audio/formats/mp3"
)

// SniffLen is the number of leading bytes Sniff needs.
const SniffLen = 12

// Sniff identifies the container from its magic bytes and returns the
// registry key for it.
func Sniff(header []byte) (string, bool) {
	switch {
	case len(header) >= 12 && bytes.HasPrefix(header, []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")):
		return "wav", true
	case len(header) >= 12 && bytes.HasPrefix(header, []byte("FORM")) &&
		(bytes.Equal(header[8:12], []byte("AIFF")) || bytes.Equal(header[8:12], []byte("AIFC"))):
		return "aiff", true
	case bytes.HasPrefix(header, []byte("OggS")):
		return "ogg", true
	case bytes.HasPrefix(header, []byte("fLaC")):
		return "flac", true
	case bytes.HasPrefix(header, []byte("ID3")):
		return "mp3", true
	}

	if _, err := mp3.ParseFrameHeader(header); err == nil {
		return "mp3", true
	}

	return "", false
}

// FormatFromFilename returns the lower-cased extension of name without the
// dot, or "" when there is none.
func FormatFromFilename(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}
