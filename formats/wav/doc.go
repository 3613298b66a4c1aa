// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and writes WAV audio using github.com/go-audio/wav.
//
// # Decoding
//
// Decoder accepts integer PCM at 16, 24 or 32 bits per sample, in the plain
// or WAVE_FORMAT_EXTENSIBLE layout, with any channel count and sample rate.
// Chunks other than fmt and data are skipped. Samples come out as float32 in
// [-1, 1]:
//
//	src, err := wav.Decoder{}.Decode(file)
//	if errors.Is(err, wav.ErrNotWavFile) {
//	    // not RIFF/WAVE
//	}
//
// go-audio needs to seek, so a reader without Seek is buffered in memory.
//
// # Writing
//
// WritePCM16 writes mono 16-bit PCM through the go-audio encoder, which
// patches the RIFF and data sizes when it closes. EncodePCM16 does the same
// into a byte slice. The MP3 encoder backend uses it to hand PCM to the
// library encoder.
package wav
