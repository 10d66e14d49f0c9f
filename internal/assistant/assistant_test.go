package assistant

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaani/internal/audio"
	"vaani/internal/intent"
	"vaani/internal/respond"
)

const frame = 160

type scriptedSTT struct {
	texts []string
	err   error
	calls int
	rates []int
	peaks []float32
}

func (s *scriptedSTT) Transcribe(_ context.Context, samples []float32, rate int) (string, error) {
	s.calls++
	s.rates = append(s.rates, rate)
	var peak float32
	for _, v := range samples {
		peak = max(peak, v, -v)
	}
	s.peaks = append(s.peaks, peak)

	if s.err != nil {
		return "", s.err
	}
	if len(s.texts) == 0 {
		return "", nil
	}
	text := s.texts[0]
	s.texts = s.texts[1:]
	return text, nil
}

type recordingSpeaker struct {
	said []string
	err  error
}

func (r *recordingSpeaker) Speak(_ context.Context, text string) error {
	r.said = append(r.said, text)
	return r.err
}

type fixedAnswer struct {
	answer string
	err    error
	asked  []string
}

func (f *fixedAnswer) Answer(_ context.Context, text string) (string, error) {
	f.asked = append(f.asked, text)
	return f.answer, f.err
}

type countingDucker struct{ duck, unduck int }

func (c *countingDucker) Duck(context.Context) error   { c.duck++; return nil }
func (c *countingDucker) Unduck(context.Context) error { c.unduck++; return nil }

type countingCue struct{ n int }

func (c *countingCue) Beep() error { c.n++; return nil }

func speech() audio.Device {
	samples := make([]int16, 3*frame)
	for i := range samples {
		samples[i] = 3000
	}
	return audio.NewSampleDevice(samples, 16000)
}

func silence() audio.Device {
	return audio.NewSampleDevice(make([]int16, 10*frame), 16000)
}

func newAssistant(t *testing.T, dev audio.Device, stt Transcriber, spk Speaker, mod func(*Config)) *Assistant {
	t.Helper()

	seg, err := audio.NewSegmenter(audio.SegmenterConfig{
		SampleRate:       16000,
		FrameSize:        frame,
		SilenceThreshold: 900,
		SilenceLimit:     2,
		MaxFrames:        40,
	})
	require.NoError(t, err)

	cfg := Config{
		Segmenter:   seg,
		Device:      dev,
		Transcriber: stt,
		Speaker:     spk,
		Responder: respond.New().WithClock(func() time.Time {
			return time.Date(2026, time.January, 26, 14, 5, 0, 0, time.Local)
		}),
	}
	if mod != nil {
		mod(&cfg)
	}

	a, err := New(cfg)
	require.NoError(t, err)
	return a
}

func TestNewRequiresCollaborators(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "segmenter")
	assert.Contains(t, err.Error(), "speaker")
}

func TestNewRejectsBadTable(t *testing.T) {
	seg, err := audio.NewSegmenter(audio.DefaultSegmenterConfig())
	require.NoError(t, err)

	_, err = New(Config{
		Segmenter:   seg,
		Device:      silence(),
		Transcriber: &scriptedSTT{},
		Speaker:     &recordingSpeaker{},
		Table:       intent.Table{{Label: "A"}},
	})
	assert.ErrorIs(t, err, intent.ErrInvalidTable)
}

func TestOnceAnswersTime(t *testing.T) {
	stt := &scriptedSTT{texts: []string{"मुझे अभी समय बताओ"}}
	spk := &recordingSpeaker{}
	a := newAssistant(t, speech(), stt, spk, nil)

	turn, err := a.Once(context.Background())
	require.NoError(t, err)

	assert.True(t, turn.Speech)
	assert.Equal(t, "TIME", turn.Label)
	assert.Equal(t, "समय", turn.Keyword)
	assert.Equal(t, []string{"अभी दोपहर के 2 बजकर 5 मिनट हुए हैं"}, spk.said)

	require.Equal(t, 1, stt.calls)
	assert.Equal(t, 16000, stt.rates[0])
	assert.InDelta(t, 1, stt.peaks[0], 1e-6, "samples are peak-normalized")
}

func TestOnceSkipsSilence(t *testing.T) {
	stt := &scriptedSTT{texts: []string{"समय"}}
	spk := &recordingSpeaker{}
	a := newAssistant(t, silence(), stt, spk, nil)

	turn, err := a.Once(context.Background())
	require.NoError(t, err)
	assert.False(t, turn.Speech)
	assert.Zero(t, stt.calls)
	assert.Empty(t, spk.said)
}

func TestOnceSkipsBlankTranscript(t *testing.T) {
	spk := &recordingSpeaker{}
	a := newAssistant(t, speech(), &scriptedSTT{texts: []string{"  "}}, spk, nil)

	turn, err := a.Once(context.Background())
	require.NoError(t, err)
	assert.True(t, turn.Speech)
	assert.Empty(t, turn.Label)
	assert.Empty(t, spk.said)
}

func TestOnceTranscribeError(t *testing.T) {
	boom := errors.New("model gone")
	a := newAssistant(t, speech(), &scriptedSTT{err: boom}, &recordingSpeaker{}, nil)

	_, err := a.Once(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestOnceSpeakerErrorIsNotFatal(t *testing.T) {
	spk := &recordingSpeaker{err: errors.New("espeak-ng: exit status 1")}
	a := newAssistant(t, speech(), &scriptedSTT{texts: []string{"नमस्ते"}}, spk, nil)

	turn, err := a.Once(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GREETING", turn.Label)
	assert.Len(t, spk.said, 1)
}

func TestOnceUnknownUsesFallback(t *testing.T) {
	ans := &fixedAnswer{answer: "मुझे नहीं पता, फिर से कहिए।"}
	spk := &recordingSpeaker{}
	a := newAssistant(t, speech(), &scriptedSTT{texts: []string{"xyz"}}, spk, func(c *Config) {
		c.Fallback = ans
	})

	turn, err := a.Once(context.Background())
	require.NoError(t, err)
	assert.Equal(t, intent.Unknown, turn.Label)
	assert.Equal(t, []string{"xyz"}, ans.asked)
	assert.Equal(t, []string{ans.answer}, spk.said)
}

func TestOnceFallbackErrorKeepsCannedReply(t *testing.T) {
	ans := &fixedAnswer{err: errors.New("offline")}
	spk := &recordingSpeaker{}
	a := newAssistant(t, speech(), &scriptedSTT{texts: []string{"xyz"}}, spk, func(c *Config) {
		c.Fallback = ans
	})

	_, err := a.Once(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{respond.Fallback("xyz")}, spk.said)
}

func TestOnceKnownIntentSkipsFallback(t *testing.T) {
	ans := &fixedAnswer{answer: "never"}
	a := newAssistant(t, speech(), &scriptedSTT{texts: []string{"नमस्ते"}}, &recordingSpeaker{}, func(c *Config) {
		c.Fallback = ans
	})

	_, err := a.Once(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ans.asked)
}

func TestOnceHooks(t *testing.T) {
	dir := t.TempDir()
	duck := &countingDucker{}
	cue := &countingCue{}
	a := newAssistant(t, speech(), &scriptedSTT{texts: []string{"धन्यवाद"}}, &recordingSpeaker{}, func(c *Config) {
		c.Ducker = duck
		c.Cue = cue
		c.DumpDir = dir
	})

	_, err := a.Once(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, cue.n)
	assert.Equal(t, 1, duck.duck)
	assert.Equal(t, 1, duck.unduck)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), ".wav")
}

func TestRunStopsOnExit(t *testing.T) {
	stt := &scriptedSTT{texts: []string{"मुझे अभी समय बताओ", "बंद करो और अलविदा", "नमस्ते"}}
	spk := &recordingSpeaker{}
	a := newAssistant(t, speech(), stt, spk, nil)

	require.NoError(t, a.Run(context.Background()))

	assert.Equal(t, []string{
		respond.Greeting,
		"अभी दोपहर के 2 बजकर 5 मिनट हुए हैं",
		respond.Farewell,
	}, spk.said)
	assert.Equal(t, 2, stt.calls)
}

func TestRunReturnsFatalError(t *testing.T) {
	boom := errors.New("model gone")
	a := newAssistant(t, speech(), &scriptedSTT{err: boom}, &recordingSpeaker{}, nil)

	assert.ErrorIs(t, a.Run(context.Background()), boom)
}

func TestRunHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stt := &scriptedSTT{}
	a := newAssistant(t, speech(), stt, &recordingSpeaker{}, nil)

	require.NoError(t, a.Run(ctx))
	assert.Zero(t, stt.calls)
}

func TestHandleText(t *testing.T) {
	a := newAssistant(t, silence(), &scriptedSTT{}, &recordingSpeaker{}, nil)

	turn := a.HandleText(context.Background(), "  बंद करो  ")
	assert.Equal(t, "EXIT", turn.Label)
	assert.True(t, turn.Reply.Exit)

	turn = a.HandleText(context.Background(), "")
	assert.Equal(t, intent.Unknown, turn.Label)
	assert.False(t, turn.Reply.Exit)
}
