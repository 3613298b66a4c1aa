// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"

	"github.com/muhammadfauzanis/compressing-image-audio/audio"
)

// WritePCM16 writes samples as a mono 16-bit PCM WAV. The header sizes are
// patched on completion, hence the io.WriteSeeker.
func WritePCM16(w io.WriteSeeker, sampleRate int, samples []int16) error {
	if sampleRate <= 0 {
		return audio.ErrInvalidSampleRate
	}

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}

	enc := wav.NewEncoder(w, sampleRate, 16, 1, formatPCM)
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: 16,
	}

	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav header: %w", err)
	}

	return nil
}

// EncodePCM16 is WritePCM16 into memory.
func EncodePCM16(sampleRate int, samples []int16) ([]byte, error) {
	out := &writerseeker.WriterSeeker{}
	if err := WritePCM16(out, sampleRate, samples); err != nil {
		return nil, err
	}

	return io.ReadAll(out.Reader())
}
