package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/himanishpuri/BatLog/pkg/utils"
)

// ErrNoFFmpeg is returned when the ffmpeg binary is not on PATH.
var ErrNoFFmpeg = errors.New("ffmpeg not found")

// ConvertToMonoWAV transcodes any ffmpeg-readable recording to 16-bit mono
// WAV in outputDir. A zero sampleRate keeps the source rate, which matters for
// ultrasonic recordings made at 256 kHz and above.
func ConvertToMonoWAV(ctx context.Context, inputPath, outputDir string, sampleRate int) (string, error) {
	bin, err := exec.LookPath("ffmpeg")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoFFmpeg, err)
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Minute)
		defer cancel()
	}

	if err := utils.MakeDir(outputDir); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outputPath := filepath.Join(outputDir, base+".wav")
	tmpPath := outputPath + ".tmp.wav"
	defer os.Remove(tmpPath)

	args := []string{"-y", "-v", "quiet", "-i", inputPath, "-ac", "1"}
	if sampleRate > 0 {
		args = append(args, "-ar", fmt.Sprintf("%d", sampleRate))
	}
	args = append(args, "-c:a", "pcm_s16le", tmpPath)

	cmd := exec.CommandContext(ctx, bin, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", fmt.Errorf("converting %s: %v (%s)", filepath.Base(inputPath), err, out)
	}

	if err := utils.MoveFile(tmpPath, outputPath); err != nil {
		return "", err
	}
	return outputPath, nil
}
