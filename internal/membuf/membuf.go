// SPDX-License-Identifier: EPL-2.0

// Package membuf adapts plain readers for codecs that need to seek.
package membuf

import (
	"bytes"
	"fmt"
	"io"
)

// ReadSeeker returns an io.ReadSeeker for r. If r already seeks it is
// returned as is, otherwise r is read to the end and served from memory.
func ReadSeeker(r io.Reader) (io.ReadSeeker, error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, nil
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("membuf: read: %w", err)
	}

	return bytes.NewReader(data), nil
}
