package audioconv

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	popus "github.com/pekim/opus"
)

// TargetRate is the rate every decoder resamples to.
const TargetRate = 16000

var ErrUnsupported = errors.New("unsupported audio format")

type Options struct {
	MaxSamples int // 0 = no limit
}

type decoder func(io.ReadSeeker) ([]float32, int, error)

var byExt = map[string][]decoder{
	".wav": {decodeWAV},
	".mp3": {decodeMP3},
	".ogg": {decodeVorbis, decodeOpus},
	".oga": {decodeVorbis, decodeOpus},
}

var byMagic = map[string][]decoder{
	"RIFF":    {decodeWAV},
	"OggS":    {decodeVorbis, decodeOpus},
	"ID3\x03": {decodeMP3},
	"ID3\x04": {decodeMP3},
}

// DecodeFile returns mono float32 samples in [-1, 1] at TargetRate.
func DecodeFile(path string, opt Options) ([]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	decs, ok := byExt[strings.ToLower(filepath.Ext(path))]
	if !ok {
		magic, _ := bufio.NewReader(f).Peek(4)
		if decs, ok = byMagic[string(magic)]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupported, filepath.Base(path))
		}
	}

	var errs []error
	for _, dec := range decs {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		x, rate, err := dec(f)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		x = Resample(x, rate, TargetRate)
		if opt.MaxSamples > 0 && len(x) > opt.MaxSamples {
			x = x[:opt.MaxSamples]
		}
		return x, nil
	}

	return nil, fmt.Errorf("decode %s: %w", filepath.Base(path), errors.Join(errs...))
}

func decodeWAV(r io.ReadSeeker) ([]float32, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, errors.New("invalid wav")
	}
	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}
	if pb == nil || len(pb.Data) == 0 {
		return nil, 0, errors.New("empty wav")
	}

	bd := int(dec.BitDepth)
	if bd == 0 {
		bd = 16
	}
	ch, rate := 1, int(dec.SampleRate)
	if pb.Format != nil {
		if pb.Format.NumChannels > 0 {
			ch = pb.Format.NumChannels
		}
		if pb.Format.SampleRate > 0 {
			rate = pb.Format.SampleRate
		}
	}
	if rate <= 0 {
		rate = 44100
	}

	return Downmix(IntToFloat32(pb.Data, bd), ch), rate, nil
}

func decodeMP3(r io.ReadSeeker) ([]float32, int, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, 0, err
	}
	var raw bytes.Buffer
	if _, err := io.Copy(&raw, dec); err != nil {
		return nil, 0, err
	}
	ints := make([]int16, raw.Len()/2)
	if err := binary.Read(bytes.NewReader(raw.Bytes()), binary.LittleEndian, &ints); err != nil {
		return nil, 0, err
	}

	rate := dec.SampleRate()
	if rate <= 0 {
		rate = 44100
	}
	// go-mp3 always decodes to interleaved stereo
	return Downmix(Int16ToFloat32(ints), 2), rate, nil
}

func decodeVorbis(r io.ReadSeeker) ([]float32, int, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, 0, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, 0, errors.New("invalid ogg/vorbis stream")
	}
	return Downmix(pcm, format.Channels), format.SampleRate, nil
}

func decodeOpus(r io.ReadSeeker) ([]float32, int, error) {
	dec, err := popus.NewDecoder(r)
	if err != nil {
		return nil, 0, err
	}
	defer dec.Destroy()

	ch := dec.ChannelCount()
	if ch <= 0 {
		ch = 1
	}

	// opus always decodes at 48 kHz
	var (
		pcm []float32
		buf = make([]int16, 48_000*ch/2)
	)
	for {
		n, err := dec.Read(buf)
		if n > 0 {
			pcm = append(pcm, Int16ToFloat32(buf[:n*ch])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, err
		}
	}

	if len(pcm) == 0 {
		return nil, 0, errors.New("empty opus stream")
	}
	return Downmix(pcm, ch), 48_000, nil
}
