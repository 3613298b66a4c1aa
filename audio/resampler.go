// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/muhammadfauzanis/compressing-image-audio/utils"
)

// Resampler converts an interleaved source to another sample rate using
// cubic interpolation. Channel count is preserved. When downsampling a
// one-pole low-pass filter runs ahead of the interpolator.
//
// A non-positive target rate, or one equal to the source rate, makes the
// resampler a pass-through.
type Resampler struct {
	src         Source
	dstRate     int
	channels    int
	step        float64 // source frames per output frame
	passthrough bool

	// window[1] and window[2] bracket the output position, window[0] and
	// window[3] are the outer spline points
	window [4][]float32
	valid  [4]bool
	primed bool
	frac   float64

	in     []float32
	inPos  int
	inLen  int
	eof    bool
	stalls int

	lowpass bool
	alpha   float32
	state   []float32
	warm    bool
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	srcRate := src.SampleRate()

	r := &Resampler{
		src:      src,
		dstRate:  dstRate,
		channels: channels,
	}

	if dstRate <= 0 || dstRate == srcRate || srcRate <= 0 || channels <= 0 {
		r.passthrough = true
		if dstRate <= 0 {
			r.dstRate = srcRate
		}
		return r
	}

	r.step = float64(srcRate) / float64(dstRate)
	r.lowpass = r.step > 1.0
	if r.lowpass {
		// crude, a proper FIR would track the target Nyquist frequency
		r.alpha = 0.5
		r.state = make([]float32, channels)
	}

	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	size := max(src.BufSize(), 1024)
	r.in = make([]float32, size-size%channels)

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// ReadSamples fills dst with samples at the target rate. len(dst) must be
// a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if r.channels <= 0 {
		return 0, ErrNoChannels
	}
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if r.passthrough {
		return r.src.ReadSamples(dst)
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0

	for written < frames {
		for r.frac >= 1.0 {
			r.frac -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.valid[2] {
			if written == 0 {
				return 0, io.EOF
			}
			return written * r.channels, io.EOF
		}

		outer := r.window[3]
		if !r.valid[3] {
			outer = r.window[2]
		}

		t := float32(r.frac)
		base := written * r.channels
		for c := range r.channels {
			dst[base+c] = utils.CubicInterpolate(r.window[0][c], r.window[1][c], r.window[2][c], outer[c], t)
		}

		written++
		r.frac += r.step
	}

	return written * r.channels, nil
}

// prime loads the first frames. The first frame doubles as the point
// before it so output starts exactly on source frame 0.
func (r *Resampler) prime() error {
	ok, err := r.readFrame(r.window[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	copy(r.window[0], r.window[1])
	r.valid[0], r.valid[1] = true, true

	for i := 2; i < len(r.window); i++ {
		ok, err := r.readFrame(r.window[i])
		if err != nil {
			return err
		}
		r.valid[i] = ok
		if !ok {
			break
		}
	}

	if !r.valid[2] {
		// single-frame source: hold it so it is emitted once
		copy(r.window[2], r.window[1])
		r.valid[2] = true
	}

	r.primed = true

	return nil
}

// advance slides the window one source frame forward.
func (r *Resampler) advance() error {
	recycled := r.window[0]
	r.window[0], r.window[1], r.window[2] = r.window[1], r.window[2], r.window[3]
	r.window[3] = recycled
	r.valid[0], r.valid[1], r.valid[2] = r.valid[1], r.valid[2], r.valid[3]

	if !r.valid[2] {
		r.valid[3] = false
		return nil
	}

	ok, err := r.readFrame(r.window[3])
	if err != nil {
		return err
	}
	r.valid[3] = ok

	return nil
}

// readFrame copies the next complete frame into dst. It reports false once
// the source is exhausted; a trailing partial frame is dropped.
func (r *Resampler) readFrame(dst []float32) (bool, error) {
	for i := range dst {
		for r.inPos >= r.inLen {
			if r.eof {
				return false, nil
			}
			if err := r.fill(); err != nil {
				return false, err
			}
		}
		dst[i] = r.in[r.inPos]
		r.inPos++
	}

	if r.lowpass {
		if !r.warm {
			copy(r.state, dst)
			r.warm = true
		}
		for c := range dst {
			dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.state[c]
			r.state[c] = dst[c]
		}
	}

	return true, nil
}

func (r *Resampler) fill() error {
	n, err := r.src.ReadSamples(r.in)
	r.inPos, r.inLen = 0, n

	switch {
	case err == io.EOF:
		r.eof = true
	case err != nil:
		return fmt.Errorf("%w", err)
	case n == 0:
		r.stalls++
		if r.stalls > maxStalls {
			return io.ErrNoProgress
		}
	default:
		r.stalls = 0
	}

	return nil
}
