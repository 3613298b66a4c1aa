// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio using
// github.com/jfreymuth/oggvorbis.
//
// Samples come out interleaved as float32 in [-1, 1] at the stream's own
// rate and channel count:
//
//	src, err := vorbis.Decoder{}.Decode(file)
//	buf, err := audio.ReadBuffer(src)
//
// Only the first logical stream of a chained file is read.
package vorbis
