// SPDX-License-Identifier: EPL-2.0

package flac

import "errors"

var (
	ErrUnsupportedBitDepth = errors.New("flac: bit depth must be 1-32")
	ErrFrameMismatch       = errors.New("flac: frame does not match stream info")
)
