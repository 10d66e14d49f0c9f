package notify

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// Beeper plays a short cue before each capture. The mp3 is decoded once.
type Beeper struct {
	once sync.Once
	path string
	buf  *beep.Buffer
	err  error
}

func NewBeeper(path string) *Beeper {
	return &Beeper{path: path}
}

func (b *Beeper) load() {
	f, err := os.Open(b.path)
	if err != nil {
		b.err = fmt.Errorf("open cue: %w", err)
		return
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		b.err = fmt.Errorf("decode cue: %w", err)
		return
	}
	defer streamer.Close()

	b.buf = beep.NewBuffer(format)
	b.buf.Append(streamer)

	if err := speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10)); err != nil {
		b.err = fmt.Errorf("init speaker: %w", err)
	}
}

// Beep blocks until the cue has played.
func (b *Beeper) Beep() error {
	b.once.Do(b.load)
	if b.err != nil {
		return b.err
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(b.buf.Streamer(0, b.buf.Len()), beep.Callback(func() {
		close(done)
	})))
	<-done

	return nil
}
