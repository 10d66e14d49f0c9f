package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaani/internal/audio"
	"vaani/internal/ipc"
)

func write(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vaani.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, audio.DefaultSegmenterConfig(), cfg.Segmenter())
	assert.Equal(t, "hi", cfg.STT.Language)
	assert.Equal(t, "espeak-ng", cfg.TTS.Binary)
	assert.Equal(t, 150, cfg.TTS.Speed)
	assert.Equal(t, ipc.DefaultSocketPath, cfg.IPC.Socket)
	assert.False(t, cfg.LLM.Enabled)
}

func TestLoadOverridesAndExpandsEnv(t *testing.T) {
	t.Setenv("VAANI_MODEL", "/opt/models/hi.bin")

	cfg, err := Load(write(t, `
audio:
  silence_threshold: 1200
  silence_limit: 15
  max_frames: 200
stt:
  model: ${VAANI_MODEL}
tts:
  voice: hi+f3
duck:
  enabled: true
  fade: 500ms
intents_file: intents.yaml
`))
	require.NoError(t, err)

	seg := cfg.Segmenter()
	assert.Equal(t, 1200.0, seg.SilenceThreshold)
	assert.Equal(t, 15, seg.SilenceLimit)
	assert.Equal(t, 200, seg.MaxFrames)
	assert.Equal(t, 1024, seg.FrameSize)

	assert.Equal(t, "/opt/models/hi.bin", cfg.STT.Model)
	assert.Equal(t, "hi+f3", cfg.Speech().Voice)
	assert.True(t, cfg.Duck.Enabled)
	assert.Equal(t, 500*time.Millisecond, cfg.Ducking().Fade)
	assert.Equal(t, "intents.yaml", cfg.IntentsFile)
}

func TestLoadRejectsBadValues(t *testing.T) {
	_, err := Load(write(t, "audio:\n  max_frames: -1\n"))
	assert.ErrorIs(t, err, audio.ErrBadConfig)

	_, err = Load(write(t, "audio: [1, 2"))
	assert.Error(t, err)
}

func TestLoadKeepsExplicitZeros(t *testing.T) {
	cfg, err := Load(write(t, `
audio:
  silence_threshold: 0
  silence_limit: 0
`))
	require.NoError(t, err)

	seg := cfg.Segmenter()
	assert.Equal(t, 0.0, seg.SilenceThreshold)
	assert.Equal(t, 0, seg.SilenceLimit)
	assert.Equal(t, audio.DefaultSegmenterConfig().MaxFrames, seg.MaxFrames)
}

func TestLoadDecoderOptions(t *testing.T) {
	cfg, err := Load(write(t, `
stt:
  beam_size: 5
  temperature: 0.2
`))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.STT.BeamSize)
	assert.InDelta(t, 0.2, cfg.STT.Temperature, 1e-6)
	assert.Equal(t, "hi", cfg.STT.Language)
}
