package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"vaani/internal/audio"
	"vaani/internal/ipc"
	"vaani/internal/tts"
)

type Config struct {
	Audio       AudioConfig  `yaml:"audio"`
	STT         STTConfig    `yaml:"stt"`
	TTS         TTSConfig    `yaml:"tts"`
	LLM         LLMConfig    `yaml:"llm"`
	Duck        DuckConfig   `yaml:"duck"`
	Notify      NotifyConfig `yaml:"notify"`
	IPC         IPCConfig    `yaml:"ipc"`
	Bus         BusConfig    `yaml:"bus"`
	IntentsFile string       `yaml:"intents_file"`
	DumpDir     string       `yaml:"dump_dir"`
}

type AudioConfig struct {
	Device           string  `yaml:"device"`
	SampleRate       int     `yaml:"sample_rate"`
	FrameSize        int     `yaml:"frame_size"`
	SilenceThreshold float64 `yaml:"silence_threshold"`
	SilenceLimit     int     `yaml:"silence_limit"`
	MaxFrames        int     `yaml:"max_frames"`
}

type STTConfig struct {
	Model         string  `yaml:"model"`
	Language      string  `yaml:"language"`
	Threads       int     `yaml:"threads"`
	InitialPrompt string  `yaml:"initial_prompt"`
	BeamSize      int     `yaml:"beam_size"`   // 0 = greedy
	Temperature   float32 `yaml:"temperature"` // 0 = model default
}

type TTSConfig struct {
	Binary string `yaml:"binary"`
	Voice  string `yaml:"voice"`
	Speed  int    `yaml:"speed"`
}

type LLMConfig struct {
	Enabled bool   `yaml:"enabled"`
	Model   string `yaml:"model"`
	Proxy   string `yaml:"proxy"`
}

type DuckConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Factor    float64       `yaml:"factor"`
	MinVolume int           `yaml:"min_volume"`
	Fade      time.Duration `yaml:"fade"`
}

type NotifyConfig struct {
	Beep    string `yaml:"beep"`
	Desktop bool   `yaml:"desktop"`
}

type IPCConfig struct {
	Socket string `yaml:"socket"`
}

type BusConfig struct {
	URL   string `yaml:"url"`
	Shard string `yaml:"shard"`
}

// Load reads a YAML file with ${VAR} expansion. A missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	// Zero is a valid threshold and silence limit, so the audio section
	// starts from its defaults instead of being filled in afterwards.
	def := audio.DefaultSegmenterConfig()
	cfg := Config{
		Audio: AudioConfig{
			SampleRate:       def.SampleRate,
			FrameSize:        def.FrameSize,
			SilenceThreshold: def.SilenceThreshold,
			SilenceLimit:     def.SilenceLimit,
			MaxFrames:        def.MaxFrames,
		},
	}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.setDefaults()

	if err := cfg.Segmenter().Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.STT.Model == "" {
		c.STT.Model = "models/ggml-medium.bin"
	}
	if c.STT.Language == "" {
		c.STT.Language = "hi"
	}
	speech := tts.DefaultConfig()
	if c.TTS.Binary == "" {
		c.TTS.Binary = speech.Binary
	}
	if c.TTS.Voice == "" {
		c.TTS.Voice = speech.Voice
	}
	if c.TTS.Speed == 0 {
		c.TTS.Speed = speech.Speed
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-5-nano"
	}
	if c.Duck.Factor == 0 {
		c.Duck.Factor = 0.3
	}
	if c.Duck.MinVolume == 0 {
		c.Duck.MinVolume = 10
	}
	if c.Duck.Fade == 0 {
		c.Duck.Fade = 200 * time.Millisecond
	}
	if c.IPC.Socket == "" {
		c.IPC.Socket = ipc.DefaultSocketPath
	}
	if c.Bus.URL == "" {
		c.Bus.URL = "ws://localhost:8092/ws"
	}
	if c.Bus.Shard == "" {
		c.Bus.Shard = "vaani"
	}
}

func (c *Config) Segmenter() audio.SegmenterConfig {
	return audio.SegmenterConfig{
		SampleRate:       c.Audio.SampleRate,
		FrameSize:        c.Audio.FrameSize,
		SilenceThreshold: c.Audio.SilenceThreshold,
		SilenceLimit:     c.Audio.SilenceLimit,
		MaxFrames:        c.Audio.MaxFrames,
	}
}

func (c *Config) Speech() tts.Config {
	return tts.Config{Binary: c.TTS.Binary, Voice: c.TTS.Voice, Speed: c.TTS.Speed}
}

func (c *Config) Ducking() audio.DuckConfig {
	return audio.DuckConfig{
		SelfNames: []string{"espeak-ng", "espeak", "vaani"},
		Factor:    c.Duck.Factor,
		MinVolume: c.Duck.MinVolume,
		Fade:      c.Duck.Fade,
	}
}
