package audio

import (
	"fmt"

	"vaani/pkg/audioconv"
)

// FileDevice replays a decoded audio file as if it came from a microphone.
// Past the end of the file it yields silent frames, so capture still ends
// through the silence or frame limits.
type FileDevice struct {
	samples []int16
	rate    int
}

func NewFileDevice(path string) (*FileDevice, error) {
	pcm, err := audioconv.DecodeFile(path, audioconv.Options{})
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return &FileDevice{
		samples: audioconv.Float32ToInt16(pcm),
		rate:    audioconv.TargetRate,
	}, nil
}

// NewSampleDevice wraps samples already in memory.
func NewSampleDevice(samples []int16, sampleRate int) *FileDevice {
	return &FileDevice{samples: samples, rate: sampleRate}
}

func (d *FileDevice) Open(sampleRate, frameSize int) (Stream, error) {
	if sampleRate != d.rate {
		return nil, fmt.Errorf("file is %d Hz, capture wants %d Hz", d.rate, sampleRate)
	}
	return &sampleStream{src: d.samples, frame: make([]int16, frameSize)}, nil
}

type sampleStream struct {
	src   []int16
	pos   int
	frame []int16
}

func (s *sampleStream) Read() ([]int16, error) {
	n := copy(s.frame, s.src[min(s.pos, len(s.src)):])
	clear(s.frame[n:])
	s.pos += len(s.frame)
	return s.frame, nil
}

func (s *sampleStream) Close() error { return nil }
