package mic

import (
	"errors"
	"fmt"
	log "log/slog"
	"strings"

	"github.com/gordonklaus/portaudio"

	"vaani/internal/audio"
)

// Recorder owns the portaudio library lifetime and hands out one input
// stream per capture.
type Recorder struct {
	deviceName string
}

func NewRecorder(deviceName string) *Recorder { return &Recorder{deviceName: deviceName} }

func (r *Recorder) Init() error {
	return portaudio.Initialize()
}

func (r *Recorder) Close() {
	portaudio.Terminate()
}

func (r *Recorder) Open(sampleRate, frameSize int) (audio.Stream, error) {
	dev, err := r.inputDevice()
	if err != nil {
		return nil, err
	}

	params := portaudio.LowLatencyParameters(dev, nil)
	params.Input.Channels = 1
	params.Output.Channels = 0
	params.SampleRate = float64(sampleRate)
	params.FramesPerBuffer = frameSize

	buf := make([]int16, frameSize)

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", dev.Name, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return nil, fmt.Errorf("start %q: %w", dev.Name, err)
	}

	log.Debug("Opened input stream", "device", dev.Name, "rate", sampleRate, "frame", frameSize)

	return &inputStream{s: stream, buf: buf}, nil
}

func (r *Recorder) inputDevice() (*portaudio.DeviceInfo, error) {
	if r.deviceName == "" {
		return portaudio.DefaultInputDevice()
	}

	devs, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("list devices: %w", err)
	}
	for _, d := range devs {
		if d.MaxInputChannels > 0 && strings.Contains(d.Name, r.deviceName) {
			return d, nil
		}
	}

	return nil, fmt.Errorf("no input device matching %q", r.deviceName)
}

// Devices describes every device that can record.
func Devices() ([]string, error) {
	devs, err := portaudio.Devices()
	if err != nil {
		return nil, err
	}

	var out []string
	for i, d := range devs {
		if d.MaxInputChannels == 0 {
			continue
		}
		out = append(out, fmt.Sprintf("#%d %s (%s, %.0f Hz, %d ch)",
			i, d.Name, d.HostApi.Name, d.DefaultSampleRate, d.MaxInputChannels))
	}
	return out, nil
}

type inputStream struct {
	s   *portaudio.Stream
	buf []int16
}

func (in *inputStream) Read() ([]int16, error) {
	if err := in.s.Read(); err != nil {
		// overflow only means we lost samples; the frame is still usable
		if !errors.Is(err, portaudio.InputOverflowed) {
			return nil, err
		}
		log.Debug("Input overflowed")
	}
	return in.buf, nil
}

func (in *inputStream) Close() error {
	stopErr := in.s.Stop()
	closeErr := in.s.Close()
	return errors.Join(stopErr, closeErr)
}
