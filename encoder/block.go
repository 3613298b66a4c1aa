// SPDX-License-Identifier: EPL-2.0

package encoder

const (
	// BlockSize is the number of samples submitted per EncodeBlock call,
	// one MPEG-1 Layer III frame.
	BlockSize = 1152
	// Bitrate of the output in kbps.
	Bitrate = 32
	// Channels of the output; only channel 0 of the input is encoded.
	Channels = 1

	MediaType     = "audio/mp3"
	FileExtension = ".mp3"
)

// BlockEncoder turns consecutive sample blocks into MP3 bytes.
//
// EncodeBlock may return an empty chunk when it buffers internally. Flush
// emits whatever is still pending and is called exactly once, after the
// last block. Implementations must not retain or modify the block slice.
type BlockEncoder interface {
	EncodeBlock(block []float32) ([]byte, error)
	Flush() ([]byte, error)
}

// Config is the preset a BlockEncoder is built for.
type Config struct {
	Channels   int
	SampleRate int
	Bitrate    int // kbps
}

// Factory builds a fresh BlockEncoder for one encode call.
type Factory func(cfg Config) (BlockEncoder, error)
