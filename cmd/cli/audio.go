//go:build !js && !wasm
// +build !js,!wasm

package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/himanishpuri/BatLog/pkg/batlog/audio"
	"github.com/himanishpuri/BatLog/pkg/batlog/labels"
	"github.com/himanishpuri/BatLog/pkg/batlog/spectral"
	"github.com/spf13/cobra"
)

// window holds the --start/--end flags shared by the audio commands.
type window struct {
	start, end string
}

func (w *window) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&w.start, "start", "", `Offset to start at, e.g. 12.5 or 1'02.5`)
	cmd.Flags().StringVar(&w.end, "end", "", "Offset to stop at (default: end of file)")
}

// load reads path and cuts it to the window.
func (w *window) load(path string) ([]float64, int, error) {
	samples, rate, err := audio.ReadSamples(path)
	if err != nil {
		return nil, 0, err
	}
	if w.start == "" && w.end == "" {
		return samples, rate, nil
	}

	start := labels.ParseTimeToken(w.start)
	end := time.Duration(len(samples)) * time.Second / time.Duration(rate)
	if w.end != "" {
		end = labels.ParseTimeToken(w.end)
	}
	cut := audio.Slice(samples, rate, start, end)
	if len(cut) == 0 {
		return nil, 0, fmt.Errorf("%w: empty window %s - %s", errUsage, labels.FormatOffset(start), labels.FormatOffset(end))
	}
	return cut, rate, nil
}

func withExt(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

func spectrogramCommand() *cobra.Command {
	var (
		win           window
		output        string
		width, height int
	)
	cmd := &cobra.Command{
		Use:   "spectrogram <file.wav>",
		Short: "Render a spectrogram PNG",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, rate, err := win.load(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = withExt(args[0], ".png")
			}
			if err := spectral.RenderPNG(samples, rate, output, width, height); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s (%s)\n", output, fileSize(output))
			return nil
		},
	}
	win.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG path (default: next to the input)")
	cmd.Flags().IntVar(&width, "width", 2048, "Image width in pixels")
	cmd.Flags().IntVar(&height, "height", 512, "Image height in pixels")
	return cmd
}

func clipCommand() *cobra.Command {
	var (
		win    window
		output string
	)
	cmd := &cobra.Command{
		Use:   "clip <file.wav>",
		Short: "Cut a window of a recording to a new mono WAV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			samples, rate, err := win.load(args[0])
			if err != nil {
				return err
			}
			if output == "" {
				output = withExt(args[0], ".clip.wav")
			}
			if err := audio.WriteWAV(output, samples, rate); err != nil {
				return err
			}
			d := time.Duration(len(samples)) * time.Second / time.Duration(rate)
			fmt.Fprintf(cmd.OutOrStdout(), "✅ Wrote %s (%s, %s)\n", output, labels.FormatDuration(d), fileSize(output))
			return nil
		},
	}
	win.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "WAV path (default: <input>.clip.wav)")
	return cmd
}
