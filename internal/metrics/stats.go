package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/gridlog/internal/gridlog"
)

// Stats summarizes one grid.
type Stats struct {
	Timestep int64   `json:"timestep"`
	Sum      int64   `json:"sum"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"stddev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	// HotX and HotY locate the first cell holding Max.
	HotX int `json:"hot_x"`
	HotY int `json:"hot_y"`
}

// FrameStats computes population statistics over every cell of g.
func FrameStats(g gridlog.Grid) Stats {
	var st Stats
	if len(g.Values) == 0 {
		return st
	}
	for _, v := range g.Values {
		st.Sum += v
	}
	vals := g.Floats()
	st.Mean, st.StdDev = stat.PopMeanStdDev(vals, nil)
	st.Min = floats.Min(vals)
	idx := floats.MaxIdx(vals)
	st.Max = vals[idx]
	st.HotY, st.HotX = idx/g.Width, idx%g.Width
	return st
}

// SeriesStats returns FrameStats for every timestep, tagged with its marker.
func SeriesStats(s *gridlog.Series) []Stats {
	out := make([]Stats, s.Len())
	for i := range out {
		out[i] = FrameStats(s.Grid(i))
		out[i].Timestep = s.Timesteps[i]
	}
	return out
}

// Range returns the smallest and largest cell over the whole series.
func Range(s *gridlog.Series) (lo, hi int64) {
	if len(s.Data) == 0 {
		return 0, 0
	}
	lo, hi = s.Data[0], s.Data[0]
	for _, v := range s.Data[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
