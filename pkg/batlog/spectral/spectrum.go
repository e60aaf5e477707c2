// Package spectral measures the dominant frequency of labelled intervals and
// renders spectrogram images of recordings.
package spectral

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

const (
	WindowSize    = 1024
	HopSize       = 256
	minWindowSize = 64
)

// Hamming returns an n-point Hamming window.
func Hamming(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}

// MagnitudeSpectrum returns |X[k]| for the non-negative frequency bins.
func MagnitudeSpectrum(spectrum []complex128) []float64 {
	half := len(spectrum) / 2
	mag := make([]float64, half)
	for i := 0; i < half; i++ {
		mag[i] = cmplx.Abs(spectrum[i])
	}
	return mag
}

// STFT computes windowed magnitude frames.
func STFT(samples []float64, windowSize, hopSize int, window []float64) ([][]float64, error) {
	if len(window) != windowSize {
		return nil, errors.New("window length must equal windowSize")
	}
	if len(samples) < windowSize {
		return nil, errors.New("input shorter than window size")
	}

	frames := make([][]float64, 0, (len(samples)-windowSize)/hopSize+1)
	frame := make([]float64, windowSize)
	for start := 0; start+windowSize <= len(samples); start += hopSize {
		for i := 0; i < windowSize; i++ {
			frame[i] = samples[start+i] * window[i]
		}
		frames = append(frames, MagnitudeSpectrum(fft.FFTReal(frame)))
	}
	return frames, nil
}

// PeakFrequency returns the frequency in Hz with the highest mean magnitude
// across the interval, ignoring bins below minHz. Short intervals use a
// smaller power-of-two window.
func PeakFrequency(samples []float64, sampleRate int, minHz float64) (float64, error) {
	if sampleRate <= 0 {
		return 0, errors.New("sample rate must be positive")
	}
	ws := WindowSize
	for ws > len(samples) && ws > minWindowSize {
		ws /= 2
	}
	if len(samples) < ws {
		return 0, errors.New("interval too short for analysis")
	}
	hop := ws / 4

	frames, err := STFT(samples, ws, hop, Hamming(ws))
	if err != nil {
		return 0, err
	}

	binHz := float64(sampleRate) / float64(ws)
	mean := make([]float64, ws/2)
	for _, f := range frames {
		for k, v := range f {
			mean[k] += v
		}
	}

	best, bestMag := -1, 0.0
	for k := 1; k < len(mean); k++ {
		if float64(k)*binHz < minHz {
			continue
		}
		if mean[k] > bestMag {
			best, bestMag = k, mean[k]
		}
	}
	if best < 0 {
		return 0, errors.New("no energy above minimum frequency")
	}
	return float64(best) * binHz, nil
}
