// Package audio locates the recording that belongs to a label file and reads
// the timing and sample data the summarizer and spectral analysis need.
package audio

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// PairExtensions are the audio extensions tried, in order, when pairing a label file.
var PairExtensions = []string{".wav", ".WAV", ".flac", ".FLAC", ".mp3", ".MP3"}

var recorderStamp = regexp.MustCompile(`(\d{8})[_-](\d{6})`)

// FindPair returns the audio file recorded alongside a label file, or "" when
// there is none. Both "rec.txt" and "rec.wav.txt" pair with "rec.wav".
func FindPair(textPath string) string {
	base := strings.TrimSuffix(textPath, filepath.Ext(textPath))
	if isAudio(base) && fileExists(base) {
		return base
	}
	for _, ext := range PairExtensions {
		if candidate := base + ext; fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

// StartTimeFromName parses recorder-style names such as 20240612_213045.wav
// in the given location.
func StartTimeFromName(name string, loc *time.Location) (time.Time, bool) {
	m := recorderStamp.FindStringSubmatch(filepath.Base(name))
	if m == nil {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation("20060102150405", m[1]+m[2], loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// StartTime returns when a recording began: the timestamp in its name, else
// the file's modification time, else the zero time.
func StartTime(path string) time.Time {
	if t, ok := StartTimeFromName(path, time.Local); ok {
		return t
	}
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

func isAudio(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range PairExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
