package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// Info describes a recording.
type Info struct {
	Path       string
	Duration   time.Duration
	SampleRate int
	Channels   int
	BitDepth   int
	Format     string
	Created    time.Time // From container tags when available
}

// ReadInfo reads duration and format. WAV files are decoded directly; other
// formats go through ffprobe.
func ReadInfo(ctx context.Context, path string) (*Info, error) {
	if !strings.EqualFold(filepath.Ext(path), ".wav") {
		return ReadMetadataFFprobe(ctx, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	dur, err := pcmDuration(d)
	if err != nil {
		return nil, fmt.Errorf("reading WAV duration: %w", err)
	}

	return &Info{
		Path:       path,
		Duration:   dur,
		SampleRate: int(d.SampleRate),
		Channels:   int(d.NumChans),
		BitDepth:   int(d.BitDepth),
		Format:     "wav",
	}, nil
}

// pcmDuration measures the data chunk rather than the RIFF container so
// trailing metadata chunks written by detectors do not inflate the length.
func pcmDuration(d *wav.Decoder) (time.Duration, error) {
	if err := d.FwdToPCM(); err != nil {
		return 0, err
	}
	bytesPerSec := int(d.SampleRate) * int(d.NumChans) * int(d.BitDepth) / 8
	if d.PCMSize <= 0 || bytesPerSec <= 0 {
		return d.Duration()
	}
	return time.Duration(float64(d.PCMSize) / float64(bytesPerSec) * float64(time.Second)), nil
}

// ReadSamples decodes a PCM WAV file into mono samples normalised to [-1, 1].
func ReadSamples(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()

	d := wav.NewDecoder(f)
	if !d.IsValidFile() {
		return nil, 0, fmt.Errorf("invalid WAV file: %s", path)
	}
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("reading PCM data: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, 0, errors.New("no samples in WAV file")
	}

	return toMono(buf, int(d.BitDepth)), int(d.SampleRate), nil
}

// toMono averages interleaved channels and scales by the source bit depth.
func toMono(buf *goaudio.IntBuffer, bitDepth int) []float64 {
	channels := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	if bitDepth <= 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(int64(1)<<(uint(bitDepth)-1))

	frames := len(buf.Data) / channels
	out := make([]float64, frames)
	for i := 0; i < frames; i++ {
		var sum float64
		for c := 0; c < channels; c++ {
			sum += float64(buf.Data[i*channels+c])
		}
		out[i] = sum / float64(channels) * scale
	}
	return out
}

// Slice returns the samples between two offsets, clamped to the buffer.
func Slice(samples []float64, sampleRate int, start, end time.Duration) []float64 {
	if sampleRate <= 0 || end <= start {
		return nil
	}
	from := int(start.Seconds() * float64(sampleRate))
	to := int(end.Seconds() * float64(sampleRate))
	if from < 0 {
		from = 0
	}
	if to > len(samples) {
		to = len(samples)
	}
	if from >= to {
		return nil
	}
	return samples[from:to]
}
