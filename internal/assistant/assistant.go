// Package assistant runs the listen, transcribe, match and speak cycle.
package assistant

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"vaani/internal/audio"
	"vaani/internal/intent"
	"vaani/internal/respond"
	"vaani/pkg/audioconv"
)

type Transcriber interface {
	Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error)
}

type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Answerer supplies a free-form reply for transcripts no keyword matched.
type Answerer interface {
	Answer(ctx context.Context, transcript string) (string, error)
}

type Cue interface {
	Beep() error
}

type Ducker interface {
	Duck(ctx context.Context) error
	Unduck(ctx context.Context) error
}

type Config struct {
	Segmenter   *audio.Segmenter
	Device      audio.Device
	Transcriber Transcriber
	Table       intent.Table
	Responder   *respond.Responder
	Speaker     Speaker

	// optional
	Fallback Answerer
	Cue      Cue
	Ducker   Ducker
	DumpDir  string
}

// Turn is the outcome of one cycle.
type Turn struct {
	Speech  bool // false when capture heard nothing
	Heard   string
	Label   string
	Keyword string
	Reply   respond.Reply
}

type Assistant struct {
	cfg Config
	now func() time.Time
}

func New(cfg Config) (*Assistant, error) {
	var missing []string
	if cfg.Segmenter == nil {
		missing = append(missing, "segmenter")
	}
	if cfg.Device == nil {
		missing = append(missing, "device")
	}
	if cfg.Transcriber == nil {
		missing = append(missing, "transcriber")
	}
	if cfg.Speaker == nil {
		missing = append(missing, "speaker")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("assistant: missing %s", strings.Join(missing, ", "))
	}

	if cfg.Table == nil {
		cfg.Table = intent.Default()
	}
	if err := cfg.Table.Validate(); err != nil {
		return nil, err
	}
	if cfg.Responder == nil {
		cfg.Responder = respond.New()
	}

	return &Assistant{cfg: cfg, now: time.Now}, nil
}

// Run greets the user and serves cycles until an exit intent, ctx
// cancellation, or a capture or transcription failure.
func (a *Assistant) Run(ctx context.Context) error {
	a.say(ctx, respond.Greeting)

	for {
		if ctx.Err() != nil {
			return nil
		}

		turn, err := a.Once(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		if turn.Reply.Exit {
			log.Info("Session finished")
			return nil
		}
	}
}

// Once captures one utterance and answers it.
func (a *Assistant) Once(ctx context.Context) (Turn, error) {
	if a.cfg.Cue != nil {
		if err := a.cfg.Cue.Beep(); err != nil {
			log.Warn("Cue failed", "err", err)
		}
	}

	log.Info("Listening")

	utt, err := a.cfg.Segmenter.Capture(a.cfg.Device)
	if err != nil {
		return Turn{}, fmt.Errorf("capture: %w", err)
	}
	if !utt.Speech {
		log.Debug("Nothing heard")
		return Turn{}, nil
	}

	log.Info("Recorded", "frames", utt.Frames, "seconds", utt.Duration())
	a.dump(utt)

	text, err := a.cfg.Transcriber.Transcribe(ctx, audio.Normalize(utt.Samples), utt.SampleRate)
	if err != nil {
		return Turn{Speech: true}, fmt.Errorf("transcribe: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		log.Debug("Empty transcript")
		return Turn{Speech: true}, nil
	}

	turn := a.HandleText(ctx, text)
	turn.Speech = true

	a.say(ctx, turn.Reply.Text)

	return turn, nil
}

// HandleText classifies text and builds the reply without speaking it.
func (a *Assistant) HandleText(ctx context.Context, text string) Turn {
	label, kw := intent.MatchKeyword(text, a.cfg.Table)

	log.Info("USER", "text", text, "intent", label, "keyword", kw)

	reply := a.cfg.Responder.Respond(label, text)

	if label == intent.Unknown && a.cfg.Fallback != nil {
		answer, err := a.cfg.Fallback.Answer(ctx, text)
		if err != nil {
			log.Warn("Fallback failed", "err", err)
		} else {
			reply.Text = answer
		}
	}

	return Turn{Heard: text, Label: label, Keyword: kw, Reply: reply}
}

// say never fails the session; a broken speaker only shows up in the log.
func (a *Assistant) say(ctx context.Context, text string) {
	if a.cfg.Ducker != nil {
		if err := a.cfg.Ducker.Duck(ctx); err != nil {
			log.Debug("Duck failed", "err", err)
		}
		defer func() {
			if err := a.cfg.Ducker.Unduck(context.WithoutCancel(ctx)); err != nil {
				log.Debug("Unduck failed", "err", err)
			}
		}()
	}

	if err := a.cfg.Speaker.Speak(ctx, text); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Failed to voice out", "err", err)
	}
}

func (a *Assistant) dump(utt audio.Utterance) {
	if a.cfg.DumpDir == "" {
		return
	}

	if err := os.MkdirAll(a.cfg.DumpDir, 0o755); err != nil {
		log.Warn("Dump dir", "err", err)
		return
	}

	name := "utt-" + a.now().Format("20060102-150405.000") + ".wav"
	path := filepath.Join(a.cfg.DumpDir, name)
	if err := audioconv.WriteWAV(path, utt.Samples, utt.SampleRate); err != nil {
		log.Warn("Dump failed", "path", path, "err", err)
		return
	}
	log.Debug("Dumped utterance", "path", path)
}
