package summary

import (
	"fmt"
	"strings"

	"github.com/himanishpuri/BatLog/pkg/batlog/gps"
	"github.com/himanishpuri/BatLog/pkg/utils"
)

const (
	LogExt      = utils.LogSuffix
	ManifestExt = ".manifest"
)

// WriteOutputs saves the report next to base as <base>.log.txt and the list of
// processed inputs as <base>.manifest. A base ending in .txt is trimmed first.
func WriteOutputs(b *BatchReport, base string) (logPath, manifestPath string, err error) {
	base = strings.TrimSuffix(strings.TrimSuffix(base, ".txt"), ".log")
	logPath = base + LogExt
	manifestPath = base + ManifestExt

	if err := utils.WriteLines(logPath, b.Lines()); err != nil {
		return "", "", fmt.Errorf("writing report: %w", err)
	}
	if err := utils.WriteLines(manifestPath, b.Manifest()); err != nil {
		return "", "", fmt.Errorf("writing manifest: %w", err)
	}
	return logPath, manifestPath, nil
}

func positionString(lat, lon float64) string {
	return gps.Fix{Latitude: lat, Longitude: lon}.String()
}
