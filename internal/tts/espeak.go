package tts

import (
	"bytes"
	"context"
	"fmt"
	log "log/slog"
	"os/exec"
	"strconv"
	"strings"
)

type Config struct {
	Binary string // espeak-ng by default
	Voice  string
	Speed  int // words per minute
}

func DefaultConfig() Config {
	return Config{
		Binary: "espeak-ng",
		Voice:  "hi",
		Speed:  150,
	}
}

// Espeak speaks through an external espeak-ng process and blocks until
// playback finishes.
type Espeak struct {
	cfg Config
}

func NewEspeak(cfg Config) *Espeak {
	def := DefaultConfig()
	if cfg.Binary == "" {
		cfg.Binary = def.Binary
	}
	if cfg.Voice == "" {
		cfg.Voice = def.Voice
	}
	if cfg.Speed <= 0 {
		cfg.Speed = def.Speed
	}
	return &Espeak{cfg: cfg}
}

// Args never carries the text itself: it goes in on stdin so that a reply
// starting with '-' is not taken for an option.
func (e *Espeak) Args() []string {
	return []string{"-v", e.cfg.Voice, "-s", strconv.Itoa(e.cfg.Speed), "--stdin"}
}

func (e *Espeak) Speak(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	log.Info("Assistant", "say", text)

	cmd := exec.CommandContext(ctx, e.cfg.Binary, e.Args()...)
	cmd.Stdin = strings.NewReader(text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w (%s)", e.cfg.Binary, err, strings.TrimSpace(stderr.String()))
	}

	return nil
}
