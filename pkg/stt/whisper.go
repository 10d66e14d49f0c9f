package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	log "log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"

	"vaani/pkg/audioconv"
)

// SampleRate is the only rate the model accepts.
const SampleRate = 16000

type Options struct {
	Language      string // "hi" for the assistant, "auto" to detect
	Threads       int    // <=0 => NumCPU()
	InitialPrompt string // biases decoding toward expected vocabulary
	BeamSize      int    // 0 = greedy
	Temperature   float32
}

type Segment struct {
	Text     string
	StartSec float64
	EndSec   float64
}

type Result struct {
	Text     string
	Segments []Segment
	Language string
}

var ErrNoAudio = errors.New("no audio samples provided")

type Transcriber struct {
	mu    sync.Mutex // a model runs one context at a time
	model whisper.Model
	opt   Options
}

func NewTranscriber(modelPath string, opt Options) (*Transcriber, error) {
	if modelPath == "" {
		return nil, errors.New("empty model path")
	}
	m, err := whisper.New(modelPath)
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}
	if opt.Language == "" {
		opt.Language = "hi"
	}
	return &Transcriber{model: m, opt: opt}, nil
}

func (t *Transcriber) Close() error {
	if t.model == nil {
		return nil
	}
	return t.model.Close()
}

// Transcribe takes peak-normalized mono samples at any rate and returns the
// joined transcript.
func (t *Transcriber) Transcribe(ctx context.Context, samples []float32, sampleRate int) (string, error) {
	if sampleRate != SampleRate {
		samples = audioconv.Resample(samples, sampleRate, SampleRate)
	}
	res, err := t.TranscribePCM(ctx, samples)
	if err != nil {
		return "", err
	}

	var spoken float64
	if n := len(res.Segments); n > 0 {
		spoken = res.Segments[n-1].EndSec - res.Segments[0].StartSec
	}
	log.Debug("Transcribed", "segments", len(res.Segments), "seconds", spoken, "lang", res.Language)

	if res.Language != "" && t.opt.Language != "auto" && res.Language != t.opt.Language {
		log.Warn("Transcript language differs from configured", "want", t.opt.Language, "got", res.Language)
	}
	return res.Text, nil
}

// pcm16k must be mono @ 16 kHz, float32 in [-1, 1]
func (t *Transcriber) TranscribePCM(ctx context.Context, pcm16k []float32) (Result, error) {
	if t.model == nil {
		return Result{}, errors.New("nil model")
	}
	if len(pcm16k) == 0 {
		return Result{}, ErrNoAudio
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	wctx, err := t.model.NewContext()
	if err != nil {
		return Result{}, fmt.Errorf("new context: %w", err)
	}

	if err := wctx.SetLanguage(t.opt.Language); err != nil {
		return Result{}, fmt.Errorf("set language %q: %w", t.opt.Language, err)
	}
	wctx.SetTranslate(false)

	threads := t.opt.Threads
	if threads <= 0 {
		threads = runtime.NumCPU()
	}
	wctx.SetThreads(uint(threads))

	if t.opt.BeamSize > 0 {
		wctx.SetBeamSize(t.opt.BeamSize)
	}
	if t.opt.InitialPrompt != "" {
		wctx.SetInitialPrompt(t.opt.InitialPrompt)
	}
	if t.opt.Temperature != 0 {
		wctx.SetTemperature(t.opt.Temperature)
	}

	if err := wctx.Process(pcm16k, nil, nil, nil); err != nil {
		return Result{}, fmt.Errorf("process: %w", err)
	}

	var (
		segs  []Segment
		texts []string
	)
	for {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		s, err := wctx.NextSegment()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Result{}, fmt.Errorf("next segment: %w", err)
		}
		segs = append(segs, Segment{
			Text:     s.Text,
			StartSec: s.Start.Seconds(),
			EndSec:   s.End.Seconds(),
		})
		if txt := strings.TrimSpace(s.Text); txt != "" {
			texts = append(texts, txt)
		}
	}

	lang := wctx.DetectedLanguage()
	if lang == "" {
		lang = wctx.Language()
	}

	return Result{
		Text:     strings.Join(texts, " "),
		Segments: segs,
		Language: lang,
	}, nil
}
