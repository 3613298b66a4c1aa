// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"

	"github.com/muhammadfauzanis/compressing-image-audio/audio"
)

type chunk struct {
	id   string
	data []byte
}

// buildWAV lays out RIFF/WAVE with a fmt chunk, any extra chunks, then data.
func buildWAV(formatTag, channels, sampleRate, bits int, data []byte, extra ...chunk) []byte {
	blockAlign := channels * bits / 8

	fmtChunk := new(bytes.Buffer)
	binary.Write(fmtChunk, binary.LittleEndian, uint16(formatTag))
	binary.Write(fmtChunk, binary.LittleEndian, uint16(channels))
	binary.Write(fmtChunk, binary.LittleEndian, uint32(sampleRate))
	binary.Write(fmtChunk, binary.LittleEndian, uint32(sampleRate*blockAlign))
	binary.Write(fmtChunk, binary.LittleEndian, uint16(blockAlign))
	binary.Write(fmtChunk, binary.LittleEndian, uint16(bits))

	chunks := append([]chunk{{"fmt ", fmtChunk.Bytes()}}, extra...)
	chunks = append(chunks, chunk{"data", data})

	body := new(bytes.Buffer)
	body.WriteString("WAVE")
	for _, c := range chunks {
		body.WriteString(c.id)
		binary.Write(body, binary.LittleEndian, uint32(len(c.data)))
		body.Write(c.data)
	}

	out := new(bytes.Buffer)
	out.WriteString("RIFF")
	binary.Write(out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())

	return out.Bytes()
}

// buildExtensibleWAV is buildWAV with a WAVE_FORMAT_EXTENSIBLE fmt chunk
// carrying subFormat in its GUID.
func buildExtensibleWAV(subFormat, channels, sampleRate, bits int, data []byte) []byte {
	out := buildWAV(formatExtensible, channels, sampleRate, bits, nil)
	fmtBody := out[20:36]

	ext := new(bytes.Buffer)
	ext.Write(fmtBody)
	binary.Write(ext, binary.LittleEndian, uint16(22))
	binary.Write(ext, binary.LittleEndian, uint16(bits))
	binary.Write(ext, binary.LittleEndian, uint32(0))
	binary.Write(ext, binary.LittleEndian, uint16(subFormat))
	ext.Write([]byte{0x00, 0x00, 0x00, 0x00, 0x10, 0x00, 0x80, 0x00, 0x00, 0xAA, 0x00, 0x38, 0x9B, 0x71})

	body := new(bytes.Buffer)
	body.WriteString("WAVE")
	for _, c := range []chunk{{"fmt ", ext.Bytes()}, {"data", data}} {
		body.WriteString(c.id)
		binary.Write(body, binary.LittleEndian, uint32(len(c.data)))
		body.Write(c.data)
	}

	wav := new(bytes.Buffer)
	wav.WriteString("RIFF")
	binary.Write(wav, binary.LittleEndian, uint32(body.Len()))
	wav.Write(body.Bytes())

	return wav.Bytes()
}

func pcm16(samples ...int16) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.LittleEndian, samples)
	return buf.Bytes()
}

func pcm24(samples ...int32) []byte {
	out := make([]byte, 0, 3*len(samples))
	for _, s := range samples {
		out = append(out, byte(s), byte(s>>8), byte(s>>16))
	}
	return out
}

func decodeAll(t *testing.T, data []byte) *audio.Buffer {
	t.Helper()

	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	buf, err := audio.ReadBuffer(src)
	if err != nil {
		t.Fatalf("ReadBuffer() error = %v", err)
	}

	return buf
}

func TestDecoder_Mono16(t *testing.T) {
	t.Parallel()

	buf := decodeAll(t, buildWAV(formatPCM, 1, 8000, 16, pcm16(0, 16384, -16384, -32768)))

	if buf.SampleRate != 8000 || buf.NumChannels() != 1 {
		t.Fatalf("got %d ch @ %d Hz, want 1 @ 8000", buf.NumChannels(), buf.SampleRate)
	}

	want := []float32{0, 0.5, -0.5, -1}
	for i, v := range buf.Channels[0] {
		if v != want[i] {
			t.Errorf("sample %d = %v, want %v", i, v, want[i])
		}
	}
}

func TestDecoder_Stereo16(t *testing.T) {
	t.Parallel()

	buf := decodeAll(t, buildWAV(formatPCM, 2, 44100, 16, pcm16(100, -100, 200, -200, 300, -300)))

	if buf.NumChannels() != 2 || buf.Len() != 3 {
		t.Fatalf("got %d ch x %d, want 2 x 3", buf.NumChannels(), buf.Len())
	}
	for i := range 3 {
		if buf.Channels[0][i] != -buf.Channels[1][i] || buf.Channels[0][i] <= 0 {
			t.Errorf("frame %d = %v/%v, want mirrored", i, buf.Channels[0][i], buf.Channels[1][i])
		}
	}
}

func TestDecoder_Mono24(t *testing.T) {
	t.Parallel()

	buf := decodeAll(t, buildWAV(formatPCM, 1, 48000, 24, pcm24(4194304, -8388608)))

	if buf.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", buf.Len())
	}
	if buf.Channels[0][0] != 0.5 || buf.Channels[0][1] != -1 {
		t.Errorf("samples = %v, want [0.5 -1]", buf.Channels[0])
	}
}

func TestDecoder_SkipsUnknownChunks(t *testing.T) {
	t.Parallel()

	data := buildWAV(formatPCM, 1, 16000, 16, pcm16(1000, 2000),
		chunk{"JUNK", []byte{0, 0, 0, 0}})

	if buf := decodeAll(t, data); buf.Len() != 2 {
		t.Errorf("Len() = %d, want 2", buf.Len())
	}
}

func TestDecoder_ExtensiblePCM(t *testing.T) {
	t.Parallel()

	buf := decodeAll(t, buildExtensibleWAV(formatPCM, 1, 48000, 16, pcm16(16384, -32768)))

	if buf.SampleRate != 48000 || buf.Len() != 2 {
		t.Fatalf("decoded %d samples @ %d Hz, want 2 @ 48000", buf.Len(), buf.SampleRate)
	}
	if buf.Channels[0][0] != 0.5 || buf.Channels[0][1] != -1 {
		t.Errorf("samples = %v, want [0.5 -1]", buf.Channels[0])
	}
}

func TestDecoder_NonSeekableInput(t *testing.T) {
	t.Parallel()

	data := buildWAV(formatPCM, 1, 22050, 16, pcm16(1, 2, 3, 4))
	src, err := Decoder{}.Decode(struct{ io.Reader }{bytes.NewReader(data)})
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	buf, err := audio.ReadBuffer(src)
	if err != nil || buf.Len() != 4 {
		t.Errorf("ReadBuffer() = %d samples, %v, want 4, nil", buf.Len(), err)
	}
}

func TestDecoder_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"garbage", []byte("NOT A WAV FILE DATA"), ErrNotWavFile},
		{"truncated", []byte("RIFF\x00"), ErrNotWavFile},
		{"empty", nil, ErrNotWavFile},
		{"wrong form type", append([]byte("RIFF\x04\x00\x00\x00NOPE"), make([]byte, 32)...), ErrNotWavFile},
		{"8 bit", buildWAV(formatPCM, 1, 8000, 8, []byte{128, 129}), ErrUnsupportedBitDepth},
		{"float", buildWAV(3, 1, 8000, 32, make([]byte, 8)), ErrUnsupportedEncoding},
		{"a-law", buildWAV(6, 1, 8000, 8, make([]byte, 8)), ErrUnsupportedEncoding},
		{"extensible float", buildExtensibleWAV(3, 1, 8000, 32, make([]byte, 8)), ErrUnsupportedEncoding},
		{"extensible a-law", buildExtensibleWAV(6, 1, 8000, 16, make([]byte, 8)), ErrUnsupportedEncoding},
		{"extensible short fmt", buildWAV(formatExtensible, 1, 8000, 16, make([]byte, 8)), ErrNotWavFile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Decode() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestDecoder_VariousSampleRates(t *testing.T) {
	t.Parallel()

	for _, rate := range []int{8000, 11025, 16000, 22050, 32000, 44100, 48000, 96000} {
		src, err := Decoder{}.Decode(bytes.NewReader(buildWAV(formatPCM, 1, rate, 16, pcm16(0, 1))))
		if err != nil {
			t.Fatalf("rate %d: Decode() error = %v", rate, err)
		}
		if src.SampleRate() != rate {
			t.Errorf("SampleRate() = %d, want %d", src.SampleRate(), rate)
		}
	}
}

func BenchmarkDecoder_Decode(b *testing.B) {
	data := buildWAV(formatPCM, 2, 44100, 16, make([]byte, 4*44100))

	for b.Loop() {
		src, err := Decoder{}.Decode(bytes.NewReader(data))
		if err != nil {
			b.Fatal(err)
		}
		if _, err := audio.ReadBuffer(src); err != nil {
			b.Fatal(err)
		}
	}
}
