// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"slices"
)

// ErrScripted is returned by RecordingEncoder when told to fail.
var ErrScripted = errors.New("audiotest: scripted failure")

// RecordingEncoder is a scripted block encoder. It records every call and
// returns whatever Chunk and Tail say.
type RecordingEncoder struct {
	// Chunk produces the output for block i. A nil Chunk emits nothing.
	Chunk func(i int, block []float32) []byte
	// Tail is returned by Flush.
	Tail []byte
	// FailBlock makes EncodeBlock fail on that block index; -1 disables it.
	FailBlock int
	// FailFlush makes Flush fail.
	FailFlush bool

	Blocks  [][]float32
	Flushes int
	Calls   []string
}

func NewRecordingEncoder() *RecordingEncoder {
	return &RecordingEncoder{FailBlock: -1}
}

func (e *RecordingEncoder) EncodeBlock(block []float32) ([]byte, error) {
	i := len(e.Blocks)
	e.Blocks = append(e.Blocks, slices.Clone(block))
	e.Calls = append(e.Calls, "block")

	if i == e.FailBlock {
		return nil, ErrScripted
	}
	if e.Chunk == nil {
		return nil, nil
	}
	return e.Chunk(i, block), nil
}

func (e *RecordingEncoder) Flush() ([]byte, error) {
	e.Flushes++
	e.Calls = append(e.Calls, "flush")

	if e.FailFlush {
		return nil, ErrScripted
	}
	return e.Tail, nil
}

// Tagged emits one byte per block holding the block index, so output order
// can be compared with submission order.
func Tagged(i int, _ []float32) []byte {
	return []byte{byte(i)}
}

// EveryNth emits a tagged chunk for every n-th block only, the way an
// encoder with internal buffering does.
func EveryNth(n int) func(int, []float32) []byte {
	return func(i int, block []float32) []byte {
		if (i+1)%n != 0 {
			return []byte{}
		}
		return Tagged(i, block)
	}
}
