package gridlog

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Options configures one parse.
type Options struct {
	Height int
	Width  int
	// MaxSteps stops the scan after this many complete grids. Zero means no limit.
	MaxSteps int
	Policy   MarkerPolicy
	// Logger receives one aggregate debug record per scan. Defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) Validate() error {
	if o.Height <= 0 || o.Width <= 0 {
		return fmt.Errorf("%w: grid dimensions %dx%d must be positive", ErrInvalidOptions, o.Height, o.Width)
	}
	if o.MaxSteps < 0 {
		return fmt.Errorf("%w: max steps %d is negative", ErrInvalidOptions, o.MaxSteps)
	}
	return nil
}

// ScanStats holds aggregate counters for one scan.
type ScanStats struct {
	LinesRead     int
	MarkersSeen   int
	BlocksKept    int
	BlocksDropped int
	SkippedLines  int
	CutOff        bool
}

// Parse scans r and returns every complete grid in encounter order.
func Parse(r io.Reader, opts Options) (*Series, error) {
	s, _, err := Scan(r, opts)
	return s, err
}

// ParseFile opens path and parses it. Open errors are returned unchanged.
func ParseFile(path string, opts Options) (*Series, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Parse(f, opts)
}

// Scan is Parse plus the aggregate counters of the pass.
func Scan(r io.Reader, opts Options) (*Series, ScanStats, error) {
	var stats ScanStats
	if err := opts.Validate(); err != nil {
		return nil, stats, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cur := newLineCursor(r)
	s := &Series{Height: opts.Height, Width: opts.Width}

	for {
		line, ok := cur.Next()
		if !ok {
			break
		}
		t, isMarker := MatchMarker(line)
		if !isMarker {
			stats.SkippedLines++
			continue
		}
		stats.MarkersSeen++

		b := extractBlock(cur, opts.Height, opts.Width, opts.Policy)
		stats.SkippedLines += b.noise
		if !b.complete(opts.Height) {
			stats.BlocksDropped++
			continue
		}
		s.append(t, b.rows)
		stats.BlocksKept++

		if opts.MaxSteps > 0 && s.Len() >= opts.MaxSteps {
			stats.CutOff = true
			break
		}
	}
	stats.LinesRead = cur.LinesRead()

	if err := cur.Err(); err != nil {
		return nil, stats, err
	}

	logger.Debug("grid scan finished",
		"lines", stats.LinesRead,
		"markers", stats.MarkersSeen,
		"kept", stats.BlocksKept,
		"dropped", stats.BlocksDropped,
		"skipped", stats.SkippedLines,
		"cutoff", stats.CutOff)

	if s.Len() == 0 {
		return nil, stats, &EmptySeriesError{Height: opts.Height, Width: opts.Width, Stats: stats}
	}
	return s, stats, nil
}
