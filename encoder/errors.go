// SPDX-License-Identifier: EPL-2.0

package encoder

import "errors"

// Error kinds returned by the pipeline. Causes are wrapped underneath, so
// match with errors.Is.
var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrEncoderInit     = errors.New("encoder initialization failed")
	ErrEncodingFailure = errors.New("encoding failed")
)

// LAME backend errors.
var (
	ErrEncoderClosed         = errors.New("encoder already flushed")
	ErrUnsupportedSampleRate = errors.New("unsupported MP3 sample rate")
	ErrUnsupportedChannels   = errors.New("unsupported channel count")
	ErrUnsupportedBitrate    = errors.New("unsupported bitrate")
)
