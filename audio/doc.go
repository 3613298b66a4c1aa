// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM primitives the compressor is built on.
//
//   - Source, the streaming interface every decoder returns
//   - Buffer, decoded audio held in memory with one slice per channel
//   - Resampler for sample rate conversion
//   - ChannelSelector for picking a single channel out of interleaved audio
//   - Registry for looking decoders up by format key
//
// # Source Interface
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// Samples are interleaved float32 values in [-1.0, 1.0]. ReadSamples returns
// io.EOF once the stream is exhausted; it may return data together with
// io.EOF.
//
// # Buffers
//
// ReadBuffer drains a Source into a Buffer, which is what the MP3 encoder
// consumes:
//
//	src, _ := wav.Decoder{}.Decode(file)
//	buf, err := audio.ReadBuffer(audio.NewResampler(src, 44100))
//	left := buf.Channel(0)
//
// A Buffer can be turned back into a Source with Buffer.Source.
//
// # Resampling
//
//	resampler := audio.NewResampler(source, 44100)
//
// The resampler uses Catmull-Rom interpolation. A target rate of zero, or
// the source's own rate, passes samples through untouched.
//
// # Channel Selection
//
// Only the first channel of an upload is encoded. ChannelSelector exposes
// that channel of an interleaved stream without buffering the rest:
//
//	first, err := audio.NewChannelSelector(source, 0)
//
// # Format Registry
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, ok := registry.Get(".WAV")
//
// Keys are matched case-insensitively and a leading dot is ignored.
package audio
