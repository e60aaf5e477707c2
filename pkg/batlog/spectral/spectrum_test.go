package spectral

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tone(freq float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return out
}

func TestHamming(t *testing.T) {
	w := Hamming(5)
	require.Len(t, w, 5)
	assert.InDelta(t, 0.08, w[0], 1e-9)
	assert.InDelta(t, 1.0, w[2], 1e-9)
	assert.InDelta(t, 0.08, w[4], 1e-9)
}

func TestSTFTValidation(t *testing.T) {
	_, err := STFT(make([]float64, 100), 64, 16, Hamming(32))
	assert.Error(t, err)

	_, err = STFT(make([]float64, 10), 64, 16, Hamming(64))
	assert.Error(t, err)

	frames, err := STFT(make([]float64, 128), 64, 32, Hamming(64))
	require.NoError(t, err)
	assert.Len(t, frames, 3)
	assert.Len(t, frames[0], 32)
}

func TestPeakFrequency(t *testing.T) {
	// 45 kHz tone recorded at 384 kHz, the kind of call a pipistrelle makes
	samples := tone(45000, 384000, 38400)

	peak, err := PeakFrequency(samples, 384000, 15000)
	require.NoError(t, err)
	assert.InDelta(t, 45000, peak, 384000.0/1024)
}

func TestPeakFrequencyShortInterval(t *testing.T) {
	samples := tone(2000, 16000, 200)

	peak, err := PeakFrequency(samples, 16000, 0)
	require.NoError(t, err)
	assert.InDelta(t, 2000, peak, 16000.0/128)
}

func TestPeakFrequencyErrors(t *testing.T) {
	_, err := PeakFrequency(make([]float64, 10), 16000, 0)
	assert.Error(t, err)

	_, err = PeakFrequency(tone(1000, 8000, 2048), 0, 0)
	assert.Error(t, err)

	_, err = PeakFrequency(make([]float64, 2048), 8000, 0)
	assert.Error(t, err, "silence has no peak")
}
