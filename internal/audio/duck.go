package audio

import (
	"context"
	"fmt"
	log "log/slog"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

const maxVolume = 150

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

type sinkInput struct {
	ID      int
	Volume  int
	AppName string
}

type fade struct {
	id   int
	from int
	to   int
}

// Mixer is the slice of pactl the ducker needs.
type Mixer interface {
	SinkInputs(ctx context.Context) (string, error)
	SetVolume(ctx context.Context, id, percent int) error
}

type DuckConfig struct {
	SelfNames []string // application.name values that are never ducked
	Factor    float64
	MinVolume int
	Fade      time.Duration
}

// Ducker lowers every other playback stream while the assistant talks
// and restores them afterwards.
type Ducker struct {
	mu       sync.Mutex
	cfg      DuckConfig
	mixer    Mixer
	active   bool
	original map[int]int
	sleep    func(time.Duration)
}

func NewDucker(cfg DuckConfig, mixer Mixer) *Ducker {
	cfg.MinVolume = max(0, min(cfg.MinVolume, maxVolume))
	if cfg.Factor <= 0 || cfg.Factor > 1 {
		cfg.Factor = 0.3
	}
	if mixer == nil {
		mixer = Pactl{}
	}

	return &Ducker{
		cfg:      cfg,
		mixer:    mixer,
		original: make(map[int]int),
		sleep:    time.Sleep,
	}
}

// Duck fades foreign streams down to current*Factor, never below MinVolume.
func (d *Ducker) Duck(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return nil
	}

	inputs, err := d.list(ctx)
	if err != nil {
		return err
	}

	d.original = make(map[int]int)

	var fades []fade
	for _, in := range inputs {
		target := float64(in.Volume) * d.cfg.Factor
		target = math.Max(target, float64(d.cfg.MinVolume))
		target = math.Min(target, maxVolume)

		d.original[in.ID] = in.Volume
		fades = append(fades, fade{id: in.ID, from: in.Volume, to: int(math.Round(target))})
	}

	if err := d.apply(ctx, fades); err != nil {
		return err
	}

	log.Debug("Ducked streams", "count", len(fades))
	d.active = true

	return nil
}

// Unduck fades ducked streams back. Streams that appeared after Duck are
// left alone.
func (d *Ducker) Unduck(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}

	inputs, err := d.list(ctx)
	if err != nil {
		return err
	}

	var fades []fade
	for _, in := range inputs {
		orig, ok := d.original[in.ID]
		if !ok {
			continue
		}
		fades = append(fades, fade{id: in.ID, from: in.Volume, to: orig})
	}

	if err := d.apply(ctx, fades); err != nil {
		return err
	}

	d.original = make(map[int]int)
	d.active = false

	return nil
}

func (d *Ducker) list(ctx context.Context) ([]sinkInput, error) {
	out, err := d.mixer.SinkInputs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sink inputs: %w", err)
	}

	var res []sinkInput
	for _, in := range parseSinkInputs(out) {
		if !d.isSelf(in) {
			res = append(res, in)
		}
	}
	return res, nil
}

func (d *Ducker) isSelf(in sinkInput) bool {
	for _, name := range d.cfg.SelfNames {
		if in.AppName == name {
			return true
		}
	}
	return false
}

// apply steps every target from its start to its end volume over cfg.Fade.
func (d *Ducker) apply(ctx context.Context, fades []fade) error {
	if len(fades) == 0 {
		return nil
	}

	const minStep = 10 * time.Millisecond

	steps := max(1, int(d.cfg.Fade/minStep))
	if d.cfg.Fade <= 0 {
		steps = 0
	}
	var stepDur time.Duration
	if steps > 0 {
		stepDur = d.cfg.Fade / time.Duration(steps)
	}

	for i := 0; i <= steps; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		frac := 1.0
		if steps > 0 {
			frac = float64(i) / float64(steps)
		}

		for _, f := range fades {
			v := int(math.Round(float64(f.from) + float64(f.to-f.from)*frac))
			if err := d.mixer.SetVolume(ctx, f.id, v); err != nil {
				return fmt.Errorf("set volume id=%d: %w", f.id, err)
			}
		}

		if i < steps {
			d.sleep(stepDur)
		}
	}

	return nil
}

func parseSinkInputs(text string) []sinkInput {
	blocks := strings.Split(text, "Sink Input #")
	if len(blocks) <= 1 {
		return nil
	}

	var res []sinkInput
	for _, block := range blocks[1:] {
		head, body, ok := strings.Cut(block, "\n")
		if !ok {
			continue
		}
		id, err := strconv.Atoi(strings.TrimSpace(head))
		if err != nil {
			continue
		}

		in := sinkInput{ID: id}
		for _, line := range strings.Split(body, "\n") {
			line = strings.TrimSpace(line)

			if strings.HasPrefix(line, "Volume:") && in.Volume == 0 {
				if m := percentRe.FindStringSubmatch(line); len(m) >= 2 {
					if v, err := strconv.Atoi(m[1]); err == nil {
						in.Volume = v
					}
				}
			}

			// application.name = "Firefox"
			if strings.HasPrefix(line, "application.name =") && in.AppName == "" {
				if _, rest, ok := strings.Cut(line, `"`); ok {
					in.AppName, _, _ = strings.Cut(rest, `"`)
				}
			}
		}

		if in.Volume == 0 && in.AppName == "" {
			continue
		}
		res = append(res, in)
	}

	return res
}

// Pactl drives PulseAudio/PipeWire through the pactl binary.
type Pactl struct{}

func (Pactl) SinkInputs(ctx context.Context) (string, error) {
	out, err := exec.CommandContext(ctx, "pactl", "list", "sink-inputs").Output()
	if err != nil {
		return "", fmt.Errorf("pactl list sink-inputs: %w", err)
	}
	return string(out), nil
}

func (Pactl) SetVolume(ctx context.Context, id, percent int) error {
	percent = max(0, min(percent, maxVolume))
	arg := fmt.Sprintf("%d%%", percent)
	return exec.CommandContext(ctx, "pactl", "set-sink-input-volume", strconv.Itoa(id), arg).Run()
}
