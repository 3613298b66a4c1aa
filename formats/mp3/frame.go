// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// Version is the MPEG audio version, valued as in the header bits.
type Version uint8

const (
	MPEG25 Version = 0
	MPEG2  Version = 2
	MPEG1  Version = 3
)

func (v Version) String() string {
	switch v {
	case MPEG1:
		return "MPEG-1"
	case MPEG2:
		return "MPEG-2"
	case MPEG25:
		return "MPEG-2.5"
	default:
		return fmt.Sprintf("Version(%d)", uint8(v))
	}
}

// ChannelMode values from the header.
const (
	ModeStereo      = 0
	ModeJointStereo = 1
	ModeDualChannel = 2
	ModeMono        = 3
)

const (
	headerLen = 4
	id3v2Len  = 10
	id3v1Len  = 128
)

// Layer III bitrates in kbps by index; 0 is free format, 15 is invalid.
var (
	bitratesV1 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
	bitratesV2 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}
)

var sampleRates = map[Version][3]int{
	MPEG1:  {44100, 48000, 32000},
	MPEG2:  {22050, 24000, 16000},
	MPEG25: {11025, 12000, 8000},
}

// FrameHeader is a decoded MPEG audio Layer III frame header.
type FrameHeader struct {
	Version     Version
	Bitrate     int // kbps
	SampleRate  int
	Padding     bool
	CRC         bool
	ChannelMode int
}

// ParseFrameHeader decodes the 4-byte header at the start of b. Only Layer
// III is accepted, and free-format bitrates are rejected.
func ParseFrameHeader(b []byte) (FrameHeader, error) {
	if len(b) < headerLen {
		return FrameHeader{}, fmt.Errorf("%w: need %d bytes, have %d", ErrInvalidFrameHeader, headerLen, len(b))
	}

	h := binary.BigEndian.Uint32(b)
	if h>>21 != 0x7FF {
		return FrameHeader{}, fmt.Errorf("%w: no sync", ErrInvalidFrameHeader)
	}

	version := Version(h >> 19 & 0x3)
	rates, ok := sampleRates[version]
	if !ok {
		return FrameHeader{}, fmt.Errorf("%w: reserved version", ErrInvalidFrameHeader)
	}

	if layer := h >> 17 & 0x3; layer != 0x1 {
		return FrameHeader{}, fmt.Errorf("%w: not layer III", ErrInvalidFrameHeader)
	}

	brIndex := h >> 12 & 0xF
	bitrate := bitratesV2[brIndex]
	if version == MPEG1 {
		bitrate = bitratesV1[brIndex]
	}
	if bitrate == 0 {
		return FrameHeader{}, fmt.Errorf("%w: bitrate index %d", ErrInvalidFrameHeader, brIndex)
	}

	srIndex := h >> 10 & 0x3
	if srIndex == 3 {
		return FrameHeader{}, fmt.Errorf("%w: reserved sample rate", ErrInvalidFrameHeader)
	}

	return FrameHeader{
		Version:     version,
		Bitrate:     bitrate,
		SampleRate:  rates[srIndex],
		Padding:     h>>9&0x1 == 1,
		CRC:         h>>16&0x1 == 0,
		ChannelMode: int(h >> 6 & 0x3),
	}, nil
}

// Size is the frame length in bytes, header included.
func (h FrameHeader) Size() int {
	coef := 144
	if h.Version != MPEG1 {
		coef = 72
	}

	size := coef * h.Bitrate * 1000 / h.SampleRate
	if h.Padding {
		size++
	}

	return size
}

// Samples is the number of samples per channel in the frame.
func (h FrameHeader) Samples() int {
	if h.Version == MPEG1 {
		return 1152
	}
	return 576
}

func (h FrameHeader) Channels() int {
	if h.ChannelMode == ModeMono {
		return 1
	}
	return 2
}

// sideInfoLen is the Layer III side information size following the header.
func (h FrameHeader) sideInfoLen() int {
	mono := h.ChannelMode == ModeMono
	switch {
	case h.Version == MPEG1 && mono:
		return 17
	case h.Version == MPEG1:
		return 32
	case mono:
		return 9
	default:
		return 17
	}
}

// StreamInfo summarizes a scanned MP3 stream.
type StreamInfo struct {
	Version    Version
	SampleRate int
	Channels   int
	Bitrate    int // kbps of the first audio frame
	Frames     int // audio frames, excluding a Xing/Info frame
	Samples    int // per channel
	Duration   time.Duration

	ID3v2Size int  // bytes of a leading ID3v2 tag
	ID3v1     bool // trailing 128-byte TAG present
	InfoFrame bool // first frame is a Xing/Info header
}

// Scan walks the frames of an MP3 byte stream. A leading ID3v2 tag and a
// trailing ID3v1 tag are skipped. Frames must be contiguous and share
// version and sample rate.
func Scan(data []byte) (StreamInfo, error) {
	var info StreamInfo

	pos := id3v2Size(data)
	info.ID3v2Size = pos

	end := len(data)
	if end-pos >= id3v1Len && bytes.Equal(data[end-id3v1Len:end-id3v1Len+3], []byte("TAG")) {
		end -= id3v1Len
		info.ID3v1 = true
	}

	first := true
	for pos < end {
		h, err := ParseFrameHeader(data[pos:end])
		if err != nil {
			if info.Frames == 0 && !info.InfoFrame {
				return info, fmt.Errorf("%w: %w", ErrNoFrames, err)
			}
			return info, fmt.Errorf("at offset %d: %w", pos, err)
		}

		size := h.Size()
		if pos+size > end {
			return info, fmt.Errorf("%w: frame at %d needs %d bytes, %d left", ErrTruncatedFrame, pos, size, end-pos)
		}

		if first {
			info.Version = h.Version
			info.SampleRate = h.SampleRate
			info.Channels = h.Channels()
		} else if h.Version != info.Version || h.SampleRate != info.SampleRate {
			return info, fmt.Errorf("%w: frame at %d is %s %d Hz", ErrInconsistentStream, pos, h.Version, h.SampleRate)
		}

		if first && isInfoFrame(data[pos:pos+size], h) {
			info.InfoFrame = true
		} else {
			if info.Frames == 0 {
				info.Bitrate = h.Bitrate
			}
			info.Frames++
			info.Samples += h.Samples()
		}

		first = false
		pos += size
	}

	if info.Frames == 0 && !info.InfoFrame {
		return info, ErrNoFrames
	}

	info.Duration = time.Duration(info.Samples) * time.Second / time.Duration(info.SampleRate)

	return info, nil
}

// id3v2Size returns the length of an ID3v2 tag at the start of data, or 0.
func id3v2Size(data []byte) int {
	if len(data) < id3v2Len || !bytes.Equal(data[:3], []byte("ID3")) {
		return 0
	}

	// syncsafe: 7 bits per byte
	size := int(data[6]&0x7F)<<21 | int(data[7]&0x7F)<<14 | int(data[8]&0x7F)<<7 | int(data[9]&0x7F)
	size += id3v2Len
	if data[5]&0x10 != 0 { // footer present
		size += id3v2Len
	}

	return min(size, len(data))
}

func isInfoFrame(frame []byte, h FrameHeader) bool {
	off := headerLen + h.sideInfoLen()
	if h.CRC {
		off += 2
	}
	if off+4 > len(frame) {
		return false
	}

	tag := string(frame[off : off+4])

	return tag == "Xing" || tag == "Info"
}
