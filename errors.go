// SPDX-License-Identifier: EPL-2.0

package compress

import "errors"

var (
	ErrUnsupportedFormat = errors.New("unsupported audio format")
	ErrEmptyInput        = errors.New("empty audio input")
)
