package gridlog

import (
	"errors"
	"fmt"
)

// Domain errors for grid extraction.
var (
	// ErrEmptySeries indicates that no complete grid was found in the input.
	ErrEmptySeries = errors.New("gridlog: no grids found")

	// ErrInvalidOptions indicates non-positive grid dimensions or a negative cutoff.
	ErrInvalidOptions = errors.New("gridlog: invalid parse options")

	// ErrShapeMismatch indicates data whose length disagrees with T x H x W.
	ErrShapeMismatch = errors.New("gridlog: shape mismatch between timesteps and grid data")

	// ErrIndexOutOfRange indicates a timestep index outside the series.
	ErrIndexOutOfRange = errors.New("gridlog: timestep index out of range")
)

// EmptySeriesError reports the expected input layout when a scan produced
// nothing, so the caller can fix the dimensions or inspect the file.
type EmptySeriesError struct {
	Height int
	Width  int
	Stats  ScanStats
}

func (e *EmptySeriesError) Error() string {
	return fmt.Sprintf("%s: expected 'time = N' markers each followed by %d rows of %d integers (%d lines read, %d markers seen)",
		ErrEmptySeries, e.Height, e.Width, e.Stats.LinesRead, e.Stats.MarkersSeen)
}

func (e *EmptySeriesError) Unwrap() error {
	return ErrEmptySeries
}
