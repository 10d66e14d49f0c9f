package audio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaani/pkg/audioconv"
)

func TestSampleDeviceThroughSegmenter(t *testing.T) {
	const frame = 160

	// 2 silent frames, 3 loud frames, then the file ends
	samples := make([]int16, 5*frame)
	for i := 2 * frame; i < len(samples); i++ {
		samples[i] = 3000
	}

	seg, err := NewSegmenter(SegmenterConfig{
		SampleRate:       16000,
		FrameSize:        frame,
		SilenceThreshold: 900,
		SilenceLimit:     4,
		MaxFrames:        100,
	})
	require.NoError(t, err)

	u, err := seg.Capture(NewSampleDevice(samples, 16000))
	require.NoError(t, err)
	require.True(t, u.Speech)
	assert.Equal(t, 3+5, u.Frames)
	assert.Equal(t, float32(3000), u.Samples[0])
	assert.Equal(t, float32(0), u.Samples[len(u.Samples)-1])
}

func TestSampleDeviceRateMismatch(t *testing.T) {
	_, err := NewSampleDevice(nil, 8000).Open(16000, 160)
	assert.Error(t, err)
}

func TestFileDevice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cmd.wav")

	samples := make([]float32, 4*320)
	for i := 320; i < 2*320; i++ {
		samples[i] = 8000
	}
	require.NoError(t, audioconv.WriteWAV(path, samples, audioconv.TargetRate))

	dev, err := NewFileDevice(path)
	require.NoError(t, err)

	seg, err := NewSegmenter(SegmenterConfig{
		SampleRate:       audioconv.TargetRate,
		FrameSize:        320,
		SilenceThreshold: 900,
		SilenceLimit:     1,
		MaxFrames:        50,
	})
	require.NoError(t, err)

	u, err := seg.Capture(dev)
	require.NoError(t, err)
	require.True(t, u.Speech)
	assert.Equal(t, 3, u.Frames)
	assert.InDelta(t, 8000, u.Samples[0], 2)
}
