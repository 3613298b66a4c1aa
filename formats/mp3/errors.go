// SPDX-License-Identifier: EPL-2.0

package mp3

import "errors"

var (
	ErrNoFrames           = errors.New("mp3: no Layer III frames found")
	ErrInvalidFrameHeader = errors.New("mp3: invalid frame header")
	ErrTruncatedFrame     = errors.New("mp3: truncated frame")
	ErrInconsistentStream = errors.New("mp3: frames differ in version or sample rate")
)
