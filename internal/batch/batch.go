// Package batch parses several logs concurrently with shared options.
package batch

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/gridlog/internal/gridlog"
)

// Result is the outcome of one log. Err is set instead of Series when the
// log could not be parsed.
type Result struct {
	Path   string
	Series *gridlog.Series
	Stats  gridlog.ScanStats
	Err    error
}

type Batch struct {
	opts    gridlog.Options
	workers int
}

// New returns a Batch running at most workers parses at once; workers below
// 1 means GOMAXPROCS.
func New(opts gridlog.Options, workers int) *Batch {
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Batch{opts: opts, workers: workers}
}

// Run parses every path and returns results in input order. Failures of
// single logs are reported in their Result; Run itself fails only on invalid
// options or when ctx is cancelled.
func (b *Batch) Run(ctx context.Context, paths []string) ([]Result, error) {
	if err := b.opts.Validate(); err != nil {
		return nil, err
	}
	logger := b.opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	results := make([]Result, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)

	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = parseOne(path, b.opts)
			if results[i].Err != nil {
				logger.Warn("parse failed", "path", path, "error", results[i].Err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func parseOne(path string, opts gridlog.Options) Result {
	res := Result{Path: path}
	f, err := os.Open(path)
	if err != nil {
		res.Err = err
		return res
	}
	defer f.Close()

	res.Series, res.Stats, res.Err = gridlog.Scan(f, opts)
	return res
}

// Failed counts results carrying an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
