package viz

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/gridlog/internal/gridlog"
	"github.com/san-kum/gridlog/internal/metrics"
)

// TrendPlot draws the grid sum and the peak cell of every timestep against
// its marker.
func TrendPlot(series *gridlog.Series, title string) (*plot.Plot, error) {
	if series == nil || series.Len() == 0 {
		return nil, gridlog.ErrEmptySeries
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Timestep"
	p.Y.Label.Text = "Value"

	stats := metrics.SeriesStats(series)
	sumPts := make(plotter.XYs, len(stats))
	peakPts := make(plotter.XYs, len(stats))
	for i, st := range stats {
		sumPts[i] = plotter.XY{X: float64(st.Timestep), Y: float64(st.Sum)}
		peakPts[i] = plotter.XY{X: float64(st.Timestep), Y: st.Max}
	}

	ramp := palette(ThemeViridis)
	for _, l := range []struct {
		label string
		pts   plotter.XYs
		color color.Color
	}{
		{"grid sum", sumPts, ramp[2]},
		{"peak cell", peakPts, ramp[7]},
	} {
		line, err := plotter.NewLine(l.pts)
		if err != nil {
			return nil, err
		}
		line.Color = l.color
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(l.label, line)
	}

	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// gridXYZ adapts a Grid to plotter.GridXYZ with row 0 drawn at the top.
type gridXYZ struct {
	g gridlog.Grid
}

func (x gridXYZ) Dims() (c, r int)   { return x.g.Width, x.g.Height }
func (x gridXYZ) Z(c, r int) float64 { return float64(x.g.At(x.g.Height-1-r, c)) }
func (x gridXYZ) X(c int) float64    { return float64(c) }
func (x gridXYZ) Y(r int) float64    { return float64(r) }

type rampPalette []color.Color

func (p rampPalette) Colors() []color.Color { return p }

// FramePlot draws one grid as a heatmap with the color scale fixed to
// [lo, hi].
func FramePlot(g gridlog.Grid, timestep, lo, hi int64, theme Theme) (*plot.Plot, error) {
	if len(g.Values) == 0 {
		return nil, gridlog.ErrEmptySeries
	}
	p := plot.New()
	p.Title.Text = fmt.Sprintf("time = %d", timestep)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"

	hm := plotter.NewHeatMap(gridXYZ{g}, rampPalette(palette(theme)))
	hm.Min = float64(lo)
	hm.Max = float64(hi)
	if hi <= lo {
		hm.Max = hm.Min + 1
	}
	p.Add(hm)
	return p, nil
}

// SavePlot writes p to path; the extension picks the format (png, svg, pdf).
func SavePlot(p *plot.Plot, path string) error {
	return p.Save(10*vg.Inch, 5*vg.Inch, path)
}
