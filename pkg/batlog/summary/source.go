package summary

import (
	"context"

	"github.com/himanishpuri/BatLog/pkg/batlog/audio"
	"github.com/himanishpuri/BatLog/pkg/utils"
)

// DiskSource reads label files from disk and looks for a paired recording
// next to each one. Without a pair the duration and start time stay zero.
type DiskSource struct{}

func (DiskSource) Lines(_ context.Context, path string) ([]string, error) {
	return utils.ReadLines(path)
}

func (DiskSource) Meta(ctx context.Context, path string) Meta {
	meta := Meta{Path: path}
	pair := audio.FindPair(path)
	if pair == "" {
		return meta
	}
	meta.AudioPath = pair
	meta.StartTime = audio.StartTime(pair)

	if info, err := audio.ReadInfo(ctx, pair); err == nil {
		meta.Duration = info.Duration
		if meta.StartTime.IsZero() && !info.Created.IsZero() {
			meta.StartTime = info.Created
		}
	}
	return meta
}
