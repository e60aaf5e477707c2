package utils

import (
	"iter"
	"os"
	"path/filepath"
	"strings"
)

// LogSuffix marks reports written next to the inputs; they are never re-read as input.
const LogSuffix = ".log.txt"

// IsLabelFile reports whether name looks like a label or notes file.
func IsLabelFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".txt") && !strings.HasSuffix(lower, LogSuffix)
}

// WalkLabelFiles lazily yields label files under root: a directory's own files
// first, then its subdirectories, each in name order. Hidden directories are
// skipped. An unreadable directory yields its path with the error and the walk
// continues unless the consumer stops. Every call starts a fresh walk.
func WalkLabelFiles(root string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		walkDir(root, yield)
	}
}

func walkDir(dir string, yield func(string, error) bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return yield(dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() && IsLabelFile(e.Name()) {
			if !yield(filepath.Join(dir, e.Name()), nil) {
				return false
			}
		}
	}
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			if !walkDir(filepath.Join(dir, e.Name()), yield) {
				return false
			}
		}
	}
	return true
}

// LabelFolders lazily yields each folder under root holding at least one label file.
func LabelFolders(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		last := ""
		for path, err := range WalkLabelFiles(root) {
			if err != nil {
				continue
			}
			dir := filepath.Dir(path)
			if dir == last {
				continue
			}
			last = dir
			if !yield(dir) {
				return
			}
		}
	}
}
