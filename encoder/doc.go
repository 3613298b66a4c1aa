// SPDX-License-Identifier: EPL-2.0

// Package encoder compresses decoded PCM audio to MP3.
//
// The output preset is fixed: one channel at 32 kbps, at the sample rate of
// the input. Only channel 0 of the input is encoded; other channels are
// ignored, not mixed down.
//
// # Pipeline
//
// Encode splits channel 0 into blocks of BlockSize samples (the last block
// may be shorter), hands each block in order to a fresh BlockEncoder, drops
// empty chunks, flushes the encoder once and concatenates the results:
//
//	buf, _ := audio.NewBuffer(44100, samples)
//	mp3Data, err := encoder.Encode(buf)
//	switch {
//	case errors.Is(err, encoder.ErrInvalidInput):
//	case errors.Is(err, encoder.ErrEncoderInit):
//	case errors.Is(err, encoder.ErrEncodingFailure):
//	}
//
// No partial output is returned when any step fails. An empty channel is
// valid input and yields at most the flush tail.
//
// A Pipeline built with New carries options such as a logger or a different
// backend:
//
//	p := encoder.New(encoder.WithLogger(log), encoder.WithFactory(myFactory))
//
// EncodeSource does the same from an audio.Source without materializing
// the whole buffer.
//
// # Backend
//
// NewLAME is the default Factory, backed by github.com/lizc2003/audio-mp3.
// It accepts the MPEG sample rates 8000 through 48000 Hz; anything else is
// an ErrEncoderInit.
package encoder
