package audio

import (
	"errors"
	"fmt"
	log "log/slog"
	"math"
)

var ErrBadConfig = errors.New("invalid segmenter config")

// Stream yields fixed-size frames of 16-bit mono samples.
// A returned frame is only valid until the next Read.
type Stream interface {
	Read() ([]int16, error)
	Close() error
}

// Device opens an input stream. Each Capture call owns its stream exclusively.
type Device interface {
	Open(sampleRate, frameSize int) (Stream, error)
}

type SegmenterConfig struct {
	SampleRate       int
	FrameSize        int
	SilenceThreshold float64 // mean |sample| above which a frame counts as speech
	SilenceLimit     int     // trailing silent frames tolerated after speech
	MaxFrames        int     // hard cap on frames read per capture
}

func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		SampleRate:       16000,
		FrameSize:        1024,
		SilenceThreshold: 900,
		SilenceLimit:     10,
		MaxFrames:        95,
	}
}

func (c SegmenterConfig) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrBadConfig, c.SampleRate)
	case c.FrameSize <= 0:
		return fmt.Errorf("%w: frame size %d", ErrBadConfig, c.FrameSize)
	case c.SilenceThreshold < 0:
		return fmt.Errorf("%w: silence threshold %v", ErrBadConfig, c.SilenceThreshold)
	case c.SilenceLimit < 0:
		return fmt.Errorf("%w: silence limit %d", ErrBadConfig, c.SilenceLimit)
	case c.MaxFrames <= 0:
		return fmt.Errorf("%w: max frames %d", ErrBadConfig, c.MaxFrames)
	}
	return nil
}

// Utterance is one captured span of speech. Samples keep the int16 scale.
type Utterance struct {
	Samples    []float32
	Frames     int
	SampleRate int
	Speech     bool // false when nothing crossed the threshold before the cap
}

func (u Utterance) Duration() float64 {
	if u.SampleRate == 0 {
		return 0
	}
	return float64(len(u.Samples)) / float64(u.SampleRate)
}

type Segmenter struct {
	cfg SegmenterConfig
}

func NewSegmenter(cfg SegmenterConfig) (*Segmenter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Segmenter{cfg: cfg}, nil
}

// Capture reads frames from a freshly opened stream until trailing silence
// follows speech or MaxFrames frames have been read.
func (s *Segmenter) Capture(dev Device) (res Utterance, err error) {
	stream, err := dev.Open(s.cfg.SampleRate, s.cfg.FrameSize)
	if err != nil {
		return Utterance{}, fmt.Errorf("open stream: %w", err)
	}
	defer func() {
		if cerr := stream.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close stream: %w", cerr)
		}
	}()

	var (
		frames  [][]float32
		read    int
		silent  int
		started bool
	)

	for read < s.cfg.MaxFrames {
		frame, err := stream.Read()
		if err != nil {
			return Utterance{}, fmt.Errorf("read frame %d: %w", read, err)
		}
		read++

		if MeanAbs(frame) > s.cfg.SilenceThreshold {
			started = true
			silent = 0
		} else if started {
			silent++
		}

		if started {
			frames = append(frames, toFloat32(frame))
		}

		if started && silent > s.cfg.SilenceLimit {
			break
		}
	}

	if !started {
		log.Debug("No speech detected", "frames", read)
		return Utterance{SampleRate: s.cfg.SampleRate}, nil
	}

	return Utterance{
		Samples:    concat(frames),
		Frames:     len(frames),
		SampleRate: s.cfg.SampleRate,
		Speech:     true,
	}, nil
}

// MeanAbs is the mean absolute sample value, computed in float64.
func MeanAbs(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, v := range frame {
		sum += math.Abs(float64(v))
	}
	return sum / float64(len(frame))
}

func toFloat32(frame []int16) []float32 {
	out := make([]float32, len(frame))
	for i, v := range frame {
		out[i] = float32(v)
	}
	return out
}

func concat(frames [][]float32) []float32 {
	n := 0
	for _, f := range frames {
		n += len(f)
	}
	out := make([]float32, 0, n)
	for _, f := range frames {
		out = append(out, f...)
	}
	return out
}

// Normalize scales samples by their peak so they fall in [-1, 1].
func Normalize(samples []float32) []float32 {
	var peak float64
	for _, v := range samples {
		if a := math.Abs(float64(v)); a > peak {
			peak = a
		}
	}
	out := make([]float32, len(samples))
	div := peak + 1e-7
	for i, v := range samples {
		out[i] = float32(float64(v) / div)
	}
	return out
}
