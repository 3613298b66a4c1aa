// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 audio and inspects Layer III frame headers.
//
// # Decoding
//
// Decoder wraps github.com/hajimehoshi/go-mp3. go-mp3 always produces
// 16-bit stereo, so the returned source reports two channels even for a
// mono stream, with both channels equal:
//
//	src, err := mp3.Decoder{}.Decode(file)
//	left, _ := audio.NewChannelSelector(src, 0)
//
// MPEG-1, MPEG-2 and MPEG-2.5 Layer III streams are supported.
//
// # Frame Scanning
//
// ParseFrameHeader decodes a single 4-byte header and Scan walks a whole
// stream without decoding audio. Scan skips a leading ID3v2 tag and a
// trailing ID3v1 tag, recognizes a Xing/Info first frame, and requires the
// frames to be contiguous:
//
//	info, err := mp3.Scan(data)
//	fmt.Println(info.Version, info.SampleRate, info.Frames, info.Duration)
//
// The HTTP service uses it to report frame count and duration of encoded
// output, and the encoder tests use it to check LAME output.
package mp3
