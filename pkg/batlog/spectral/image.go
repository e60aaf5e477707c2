package spectral

import (
	"errors"
	"image"
	"image/draw"

	"github.com/eligwz/spectrogram"
)

// RenderPNG draws a linear-magnitude FFT spectrogram of samples and saves it as PNG.
func RenderPNG(samples []float64, sampleRate int, outPath string, width, height int) error {
	if len(samples) == 0 {
		return errors.New("no samples to render")
	}
	if width <= 0 {
		width = 2048
	}
	if height <= 0 {
		height = 512
	}

	img := spectrogram.NewImage128(image.Rect(0, 0, width, height))
	black := spectrogram.ParseColor("000000")
	draw.Draw(img, img.Bounds(), image.NewUniform(black), image.Point{}, draw.Src)

	// Hamming window, FFT, magnitude, linear scale
	spectrogram.Drawfft(
		img,
		samples,
		uint32(sampleRate),
		uint32(height),
		false,
		false,
		true,
		false,
	)

	return spectrogram.SavePng(img, outPath)
}
