package viz

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/san-kum/gridlog/internal/gridlog"
	"github.com/san-kum/gridlog/internal/metrics"
)

const defaultReportSide = 100

// ReportOptions configures the HTML report.
type ReportOptions struct {
	Stride int
	Title  string
	Theme  string
	// MaxSide bounds the cells per axis of each chart; larger grids are
	// block averaged. Zero means 100.
	MaxSide int
}

// BuildReport assembles a page with one heatmap per retained timestep. All
// charts share the visual map range of the whole series.
func BuildReport(series *gridlog.Series, opts ReportOptions) (*components.Page, error) {
	if series == nil || series.Len() == 0 {
		return nil, gridlog.ErrEmptySeries
	}
	s := series.Subsample(opts.Stride)
	title := opts.Title
	if title == "" {
		title = "gridlog report"
	}
	side := opts.MaxSide
	if side <= 0 {
		side = defaultReportSide
	}
	theme := GetTheme(opts.Theme)
	lo, hi := metrics.Range(s)

	page := components.NewPage()
	page.SetPageTitle(title)
	for i := 0; i < s.Len(); i++ {
		page.AddCharts(frameChart(s.Grid(i), s.Timesteps[i], i, lo, hi, side, theme))
	}
	return page, nil
}

func frameChart(g gridlog.Grid, timestep int64, index int, lo, hi int64, side int, theme Theme) *charts.HeatMap {
	fx, fy := 1, 1
	if g.Width > side {
		fx = (g.Width + side - 1) / side
	}
	if g.Height > side {
		fy = (g.Height + side - 1) / side
	}
	cells := Downsample(g, fx, fy)

	xs := make([]string, len(cells[0]))
	for x := range xs {
		xs[x] = strconv.Itoa(x * fx)
	}
	ys := make([]string, len(cells))
	for y := range ys {
		ys[y] = strconv.Itoa(y * fy)
	}

	data := make([]opts.HeatMapData, 0, len(cells)*len(xs))
	for y, row := range cells {
		for x, v := range row {
			data = append(data, opts.HeatMapData{Value: []interface{}{x, y, v}})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			ChartID: fmt.Sprintf("frame_%d", index),
			Width:   "640px",
			Height:  "560px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("time = %d", timestep),
			Subtitle: fmt.Sprintf("%dx%d", g.Height, g.Width),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{
			Type:      "category",
			Data:      xs,
			SplitArea: &opts.SplitArea{Show: opts.Bool(false)},
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type:      "category",
			Data:      ys,
			Inverse:   opts.Bool(true),
			SplitArea: &opts.SplitArea{Show: opts.Bool(false)},
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(lo),
			Max:        float32(hi),
			InRange:    &opts.VisualMapInRange{Color: theme.RampStrings()},
		}),
	)
	hm.AddSeries(fmt.Sprintf("t%d", timestep), data)
	return hm
}

// WriteReport renders the report page as HTML to w.
func WriteReport(w io.Writer, series *gridlog.Series, opts ReportOptions) error {
	page, err := BuildReport(series, opts)
	if err != nil {
		return err
	}
	return page.Render(w)
}

// SaveReport writes the report page to path.
func SaveReport(path string, series *gridlog.Series, opts ReportOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteReport(f, series, opts); err != nil {
		return err
	}
	return f.Close()
}
