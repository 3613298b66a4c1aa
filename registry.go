// SPDX-License-Identifier: EPL-2.0

package compress

import (
	"github.com/muhammadfauzanis/compressing-image-audio/audio"
	"github.com/muhammadfauzanis/compressing-image-audio/formats/aiff"
	"github.com/muhammadfauzanis/compressing-image-audio/formats/flac"
	"github.com/muhammadfauzanis/compressing-image-audio/formats/mp3"
	"github.com/muhammadfauzanis/compressing-image-audio/formats/vorbis"
	"github.com/muhammadfauzanis/compressing-image-audio/formats/wav"
)

// DefaultRegistry returns a registry holding every built-in decoder, keyed
// by format name and common file extensions.
func DefaultRegistry() *audio.Registry {
	reg := audio.NewRegistry()

	reg.Register("wav", wav.Decoder{})
	reg.Register("wave", wav.Decoder{})
	reg.Register("aiff", aiff.Decoder{})
	reg.Register("aif", aiff.Decoder{})
	reg.Register("aifc", aiff.Decoder{})
	reg.Register("mp3", mp3.Decoder{})
	reg.Register("ogg", vorbis.Decoder{})
	reg.Register("oga", vorbis.Decoder{})
	reg.Register("flac", flac.Decoder{})

	return reg
}
