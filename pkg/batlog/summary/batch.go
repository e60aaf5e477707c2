package summary

import (
	"context"
	"fmt"

	"github.com/himanishpuri/BatLog/pkg/batlog/stats"
	"golang.org/x/sync/errgroup"
)

// BatchReport is the combined result of several files.
type BatchReport struct {
	Title   []string      // optional lines printed before the first file
	Files   []*FileReport // files that produced output, in input order
	Skipped []string      // [SKIP]/[LOG] files
	Failed  []*FileReport // unreadable files
	Totals  *stats.Aggregator
}

func newBatchReport() *BatchReport {
	return &BatchReport{Totals: stats.NewAggregator()}
}

// Manifest lists the files that produced output, in processing order.
func (b *BatchReport) Manifest() []string {
	out := make([]string, 0, len(b.Files))
	for _, f := range b.Files {
		out = append(out, f.Path)
	}
	return out
}

// SummarizeFiles reads and summarizes paths concurrently, then folds the
// results together in input order so the report matches a sequential run.
// An unreadable file is logged and left out; only a cancelled context fails
// the batch.
func (s *Summarizer) SummarizeFiles(ctx context.Context, paths []string) (*BatchReport, error) {
	results := make([]*FileReport, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = s.summarizeFile(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("summarizing files: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("summarizing files: %w", err)
	}

	return s.reduce(results), nil
}

func (s *Summarizer) summarizeFile(ctx context.Context, path string) *FileReport {
	lines, err := s.source.Lines(ctx, path)
	if err != nil {
		s.log.Warnf("skipping %s: %v", path, err)
		s.obs.FileFailed(path, err)
		return &FileReport{Path: path, Err: err, Stats: stats.NewAggregator()}
	}
	meta := s.locate(s.source.Meta(ctx, path))
	return s.SummarizeLines(path, lines, meta)
}

// reduce applies the merge pool and rolls every file's stats into the totals.
// It must run serially.
func (s *Summarizer) reduce(results []*FileReport) *BatchReport {
	b := newBatchReport()
	var pool []string

	for _, r := range results {
		switch {
		case r.Err != nil:
			b.Failed = append(b.Failed, r)
			continue
		case r.Mode == ModeSkip:
			s.log.Debugf("%s: skipped", r.Path)
			b.Skipped = append(b.Skipped, r.Path)
			continue
		}

		if len(pool) > 0 {
			r.Lines = append([]string{pool[0]}, r.Lines...)
			pool = pool[1:]
		}
		pool = append(pool, r.Pool...)

		stats.MergeUpward(r.Stats, b.Totals)
		b.Files = append(b.Files, r)
	}

	if len(pool) > 0 {
		s.log.Infof("%d merge line(s) left without a file to attach to", len(pool))
	}
	return b
}
