// SPDX-License-Identifier: EPL-2.0

// Package compress turns audio files into small mono MP3s.
//
// It is the decode step in front of the encoder package: the input format
// is sniffed (or given), decoded through an audio.Registry, resampled to a
// context rate and collected into an audio.Buffer, which encoder.Encode
// compresses to 32 kbps mono MP3.
//
// # Supported Formats
//
//   - WAV, PCM 16/24/32-bit, via formats/wav
//   - AIFF, PCM 16/24/32-bit, via formats/aiff
//   - MP3 via formats/mp3
//   - Ogg Vorbis via formats/vorbis
//   - FLAC via formats/flac
//
// # Quick Start
//
//	f, _ := os.Open("voice-memo.wav")
//	mp3Data, err := compress.CompressAudio(f, compress.DefaultDecodeOptions())
//	if err != nil {
//	    // errors.Is against compress.ErrUnsupportedFormat, encoder.ErrEncoderInit, ...
//	}
//	os.WriteFile(compress.OutputFilename, mp3Data, 0o644)
//
// Decoded audio is resampled to DefaultContextSampleRate (44100 Hz) unless
// DecodeOptions.SampleRate says otherwise; 0 keeps the file's own rate.
//
// For large inputs, Open returns the decoded stream as an audio.Source that
// encoder.Pipeline.EncodeSource consumes without building a full buffer.
package compress
