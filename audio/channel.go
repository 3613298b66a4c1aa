// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelSelector exposes one channel of an interleaved source as a mono
// source. The other channels are read and discarded.
type ChannelSelector struct {
	src     Source
	channel int

	// tmp[:held] carries samples of a frame the source split across reads
	tmp  []float32
	held int
}

func NewChannelSelector(src Source, channel int) (*ChannelSelector, error) {
	if channel < 0 || channel >= src.Channels() {
		return nil, fmt.Errorf("%w: %d of %d", ErrChannelOutOfRange, channel, src.Channels())
	}

	return &ChannelSelector{
		src:     src,
		channel: channel,
		tmp:     make([]float32, 4096),
	}, nil
}

func (s *ChannelSelector) SampleRate() int { return s.src.SampleRate() }
func (s *ChannelSelector) Channels() int   { return 1 }

func (s *ChannelSelector) BufSize() int {
	return max(s.src.BufSize()/s.src.Channels(), 1)
}

func (s *ChannelSelector) Close() error {
	if err := s.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *ChannelSelector) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}

	channels := s.src.Channels()
	if channels == 1 {
		return s.src.ReadSamples(dst)
	}

	need := len(dst) * channels
	if cap(s.tmp) < need {
		grown := make([]float32, max(need, 8192))
		copy(grown, s.tmp[:s.held])
		s.tmp = grown
	}
	s.tmp = s.tmp[:need]

	n, err := s.src.ReadSamples(s.tmp[s.held:need])
	total := s.held + n
	frames := total / channels

	for f := range frames {
		dst[f] = s.tmp[f*channels+s.channel]
	}

	s.held = copy(s.tmp, s.tmp[frames*channels:total])

	return frames, err
}
