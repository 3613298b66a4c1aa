// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF (Audio Interchange File Format) using
// github.com/go-audio/aiff.
//
// Integer PCM at 16, 24 or 32 bits per sample is supported, with any channel
// count and sample rate. AIFF stores samples big-endian and its sample rate
// as an 80-bit float; go-audio deals with both. Samples come out as float32
// in [-1, 1]:
//
//	src, err := aiff.Decoder{}.Decode(file)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    // not FORM/AIFF
//	}
//
// Input that cannot seek is buffered in memory, since go-audio seeks
// between chunks.
package aiff
