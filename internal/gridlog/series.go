package gridlog

import (
	"fmt"
	"math"
)

// Series is the ordered set of complete grids extracted from one input.
// Data holds the stacked T x Height x Width array in row-major order.
type Series struct {
	Timesteps []int64
	Height    int
	Width     int
	Data      []int64
}

// NewSeries builds a series from parallel arrays and checks the shape.
func NewSeries(timesteps []int64, height, width int, data []int64) (*Series, error) {
	s := &Series{Timesteps: timesteps, Height: height, Width: width, Data: data}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks len(Timesteps) == T and len(Data) == T*H*W.
func (s *Series) Validate() error {
	if s.Height <= 0 || s.Width <= 0 {
		return fmt.Errorf("%w: grid %dx%d", ErrShapeMismatch, s.Height, s.Width)
	}
	t := len(s.Timesteps)
	if s.Width > math.MaxInt/s.Height || (t > 0 && s.Height*s.Width > math.MaxInt/t) {
		return fmt.Errorf("%w: %d timesteps of %dx%d overflow", ErrShapeMismatch, t, s.Height, s.Width)
	}
	want := t * s.Height * s.Width
	if len(s.Data) != want {
		return fmt.Errorf("%w: %d timesteps of %dx%d need %d values, have %d",
			ErrShapeMismatch, len(s.Timesteps), s.Height, s.Width, want, len(s.Data))
	}
	return nil
}

func (s *Series) Len() int { return len(s.Timesteps) }

// Shape returns (T, H, W).
func (s *Series) Shape() (int, int, int) {
	return len(s.Timesteps), s.Height, s.Width
}

func (s *Series) gridSize() int { return s.Height * s.Width }

// Grid returns a view of timestep index i. It panics if i is out of range,
// like a slice index.
func (s *Series) Grid(i int) Grid {
	n := s.gridSize()
	return Grid{Height: s.Height, Width: s.Width, Values: s.Data[i*n : (i+1)*n : (i+1)*n]}
}

// GridAt is Grid with a bounds check.
func (s *Series) GridAt(i int) (Grid, error) {
	if i < 0 || i >= s.Len() {
		return Grid{}, fmt.Errorf("%w: %d not in [0,%d)", ErrIndexOutOfRange, i, s.Len())
	}
	return s.Grid(i), nil
}

// At returns the value at timestep index t, row y, column x.
func (s *Series) At(t, y, x int) int64 {
	return s.Data[t*s.gridSize()+y*s.Width+x]
}

// Subsample keeps every stride-th timestep starting with the first.
// A stride below 2 returns s unchanged.
func (s *Series) Subsample(stride int) *Series {
	if stride <= 1 {
		return s
	}
	n := s.gridSize()
	out := &Series{Height: s.Height, Width: s.Width}
	for i := 0; i < s.Len(); i += stride {
		out.Timesteps = append(out.Timesteps, s.Timesteps[i])
		out.Data = append(out.Data, s.Data[i*n:(i+1)*n]...)
	}
	return out
}

// Equal reports whether both series have the same markers, shape and values.
func (s *Series) Equal(o *Series) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Height != o.Height || s.Width != o.Width ||
		len(s.Timesteps) != len(o.Timesteps) || len(s.Data) != len(o.Data) {
		return false
	}
	for i, t := range s.Timesteps {
		if o.Timesteps[i] != t {
			return false
		}
	}
	for i, v := range s.Data {
		if o.Data[i] != v {
			return false
		}
	}
	return true
}

// append adds one complete block.
func (s *Series) append(t int64, rows [][]int64) {
	s.Timesteps = append(s.Timesteps, t)
	for _, r := range rows {
		s.Data = append(s.Data, r...)
	}
}

// Grid is a read-only H x W view into a Series.
type Grid struct {
	Height int
	Width  int
	Values []int64
}

func (g Grid) At(y, x int) int64 { return g.Values[y*g.Width+x] }

func (g Grid) Row(y int) []int64 { return g.Values[y*g.Width : (y+1)*g.Width] }

// Floats copies the grid into a float64 slice for numeric libraries.
func (g Grid) Floats() []float64 {
	out := make([]float64, len(g.Values))
	for i, v := range g.Values {
		out[i] = float64(v)
	}
	return out
}
