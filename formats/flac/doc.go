// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC audio using github.com/mewkiz/flac.
//
// Frames are parsed lazily as samples are read. Any bit depth from 1 to 32
// is normalized to float32 in [-1, 1] and channels are interleaved:
//
//	src, err := flac.Decoder{}.Decode(file)
//	defer src.Close()
package flac
