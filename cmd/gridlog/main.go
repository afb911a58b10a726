package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/gridlog/internal/batch"
	"github.com/san-kum/gridlog/internal/config"
	"github.com/san-kum/gridlog/internal/export"
	"github.com/san-kum/gridlog/internal/gridlog"
	"github.com/san-kum/gridlog/internal/metrics"
	"github.com/san-kum/gridlog/internal/storage"
	"github.com/san-kum/gridlog/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	logLevel   string
	// Grid layout
	height   int
	width    int
	maxSteps int
	policy   string
	// Outputs
	csvPath      string
	snapshotPath string
	saveRun      bool
	workers      int
	reportOut    string
	gifOut       string
	jsonOut      string
	frameOut     string
	plotOut      string
	// Rendering
	stride   int
	theme    string
	fps      int
	scale    int
	delay    int
	cellSize float64
	index    int
	atTime   int64

	cfg *config.Config
)

func main() {
	rootCmd := &cobra.Command{
		Use:               "gridlog",
		Short:             "extract 2D grid time series from simulation logs",
		SilenceUsage:      true,
		PersistentPreRunE: setup,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".gridlog", "run store directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")

	parseCmd := &cobra.Command{
		Use:   "parse [log]",
		Short: "parse a log into a long CSV and a snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE:  parseLog,
	}
	parseCmd.Flags().IntVar(&height, "height", config.DefaultHeight, "grid rows")
	parseCmd.Flags().IntVar(&width, "width", config.DefaultWidth, "grid columns")
	parseCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "stop after this many timesteps (0 = all)")
	parseCmd.Flags().StringVar(&policy, "policy", "skip", "marker inside a block: skip or restart")
	parseCmd.Flags().StringVar(&csvPath, "csv", config.DefaultLongCSV, "long CSV output")
	parseCmd.Flags().StringVar(&snapshotPath, "snapshot", config.DefaultSnapshot, "snapshot output")
	parseCmd.Flags().BoolVar(&saveRun, "save", false, "also record the run in the store")

	batchCmd := &cobra.Command{
		Use:   "batch [logs...]",
		Short: "parse several logs concurrently into the store",
		Args:  cobra.MinimumNArgs(1),
		RunE:  batchParse,
	}
	batchCmd.Flags().IntVar(&height, "height", config.DefaultHeight, "grid rows")
	batchCmd.Flags().IntVar(&width, "width", config.DefaultWidth, "grid columns")
	batchCmd.Flags().IntVar(&maxSteps, "max-steps", 0, "stop after this many timesteps (0 = all)")
	batchCmd.Flags().StringVar(&policy, "policy", "skip", "marker inside a block: skip or restart")
	batchCmd.Flags().IntVar(&workers, "workers", 0, "concurrent parses (0 = GOMAXPROCS)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	infoCmd := &cobra.Command{
		Use:   "info [snapshot|run_id]",
		Short: "show shape, markers and per-timestep statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showInfo,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [snapshot|run_id]",
		Short: "plot grid sum and peak over time",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotSeries,
	}
	plotCmd.Flags().StringVar(&plotOut, "out", "", "also save the chart (png, svg or pdf)")

	viewCmd := &cobra.Command{
		Use:   "view [snapshot|run_id]",
		Short: "scrub through timesteps in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  viewSeries,
	}
	viewCmd.Flags().IntVar(&stride, "stride", config.DefaultStride, "show every Nth timestep")
	viewCmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme")
	viewCmd.Flags().IntVar(&fps, "fps", 8, "playback frame rate")

	reportCmd := &cobra.Command{
		Use:   "report [snapshot|run_id]",
		Short: "write an HTML page of heatmaps",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeReport,
	}
	reportCmd.Flags().IntVar(&stride, "stride", config.DefaultStride, "show every Nth timestep")
	reportCmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme")
	reportCmd.Flags().StringVar(&reportOut, "out", "report.html", "output file")

	gifCmd := &cobra.Command{
		Use:   "gif [snapshot|run_id]",
		Short: "write the timesteps as an animated GIF",
		Args:  cobra.MaximumNArgs(1),
		RunE:  writeGIF,
	}
	gifCmd.Flags().IntVar(&stride, "stride", config.DefaultStride, "show every Nth timestep")
	gifCmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme")
	gifCmd.Flags().StringVar(&gifOut, "out", "grids.gif", "output file")
	gifCmd.Flags().IntVar(&scale, "scale", 4, "pixels per cell")
	gifCmd.Flags().IntVar(&delay, "delay", 10, "frame delay in 1/100 s")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [snapshot|run_id]",
		Short: "export series and metrics to JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&jsonOut, "out", "", "output file (default stdout)")

	frameCmd := &cobra.Command{
		Use:   "frame [snapshot|run_id]",
		Short: "export one timestep as SVG",
		Args:  cobra.MaximumNArgs(1),
		RunE:  exportFrame,
	}
	frameCmd.Flags().IntVar(&index, "index", 0, "timestep index")
	frameCmd.Flags().Int64Var(&atTime, "time", 0, "select the first timestep with this marker instead of --index")
	frameCmd.Flags().StringVar(&frameOut, "out", "", "output file (default frame_<time>.svg)")
	frameCmd.Flags().Float64Var(&cellSize, "cell", 4, "cell size in pixels")
	frameCmd.Flags().StringVar(&theme, "theme", config.DefaultTheme, "color theme")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tGRID\tMAX STEPS\tSTRIDE")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%dx%d\t%d\t%d\n", name, p.Grid.Height, p.Grid.Width, p.MaxSteps, p.Viz.Stride)
			}
			return w.Flush()
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write the effective configuration as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "gridlog.yaml"
			if len(args) > 0 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	rootCmd.AddCommand(parseCmd, batchCmd, listCmd, infoCmd, plotCmd, viewCmd, reportCmd, gifCmd, exportJSONCmd, frameCmd, presetsCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup resolves the configuration and installs the logger. Values come
// from the preset, then the config file, then explicit flags.
func setup(cmd *cobra.Command, args []string) error {
	c := config.DefaultConfig()
	if preset != "" {
		c = config.GetPreset(preset)
		if c == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		var err error
		c, err = config.Overlay(c, configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("height") {
		c.Grid.Height = height
	}
	if flags.Changed("width") {
		c.Grid.Width = width
	}
	if flags.Changed("max-steps") {
		c.MaxSteps = maxSteps
	}
	if flags.Changed("policy") {
		c.MarkerPolicy = policy
	}
	if flags.Changed("csv") {
		c.Output.LongCSV = csvPath
	}
	if flags.Changed("snapshot") {
		c.Output.Snapshot = snapshotPath
	}
	if flags.Changed("stride") {
		c.Viz.Stride = stride
	}
	if flags.Changed("theme") {
		c.Viz.Theme = theme
	}
	if flags.Changed("log-level") {
		c.LogLevel = logLevel
	}
	if err := c.Validate(); err != nil {
		return err
	}

	level, err := config.ParseLevel(c.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	cfg = c
	return nil
}

func parseLog(cmd *cobra.Command, args []string) error {
	input := cfg.Input
	if len(args) > 0 {
		input = args[0]
	}

	opts, err := cfg.ParseOptions(slog.Default())
	if err != nil {
		return err
	}

	f, err := os.Open(input)
	if err != nil {
		return err
	}
	defer f.Close()

	start := time.Now()
	series, stats, err := gridlog.Scan(f, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	elapsed := time.Since(start)

	if err := export.ExportLongCSV(cfg.Output.LongCSV, series); err != nil {
		return fmt.Errorf("write long csv: %w", err)
	}
	if err := export.SaveSnapshot(cfg.Output.Snapshot, series); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}

	fmt.Printf("parsed %s in %v\n", input, elapsed)
	fmt.Printf("timesteps: %d of %dx%d\n", series.Len(), series.Height, series.Width)
	fmt.Printf("markers: %d .. %d\n", series.Timesteps[0], series.Timesteps[series.Len()-1])
	fmt.Printf("lines: %d read, %d skipped, %d blocks dropped\n", stats.LinesRead, stats.SkippedLines, stats.BlocksDropped)
	if stats.CutOff {
		fmt.Printf("stopped at max steps (%d)\n", opts.MaxSteps)
	}
	fmt.Printf("long csv: %s\n", cfg.Output.LongCSV)
	fmt.Printf("snapshot: %s\n", cfg.Output.Snapshot)

	if saveRun {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(input, opts, series)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	return nil
}

func batchParse(cmd *cobra.Command, args []string) error {
	opts, err := cfg.ParseOptions(slog.Default())
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	start := time.Now()
	results, err := batch.New(opts, workers).Run(context.Background(), args)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LOG\tSTEPS\tMARKERS\tDROPPED\tRUN")
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%s\t-\t-\t-\terror: %v\n", r.Path, r.Err)
			continue
		}
		runID, err := st.Save(r.Path, opts, r.Series)
		if err != nil {
			fmt.Fprintf(w, "%s\t%d\t-\t%d\terror: %v\n", r.Path, r.Series.Len(), r.Stats.BlocksDropped, err)
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%d..%d\t%d\t%s\n",
			r.Path,
			r.Series.Len(),
			r.Series.Timesteps[0],
			r.Series.Timesteps[r.Series.Len()-1],
			r.Stats.BlocksDropped,
			runID,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nparsed %d logs in %v\n", len(results), time.Since(start))
	if n := batch.Failed(results); n > 0 {
		return fmt.Errorf("%d of %d logs failed", n, len(results))
	}
	return nil
}

// loadSeries resolves the optional argument as a snapshot file, then as a
// stored run id, and falls back to the configured snapshot.
func loadSeries(args []string) (*gridlog.Series, string, error) {
	target := cfg.Output.Snapshot
	if len(args) > 0 {
		target = args[0]
	}

	if info, err := os.Stat(target); err == nil && !info.IsDir() {
		s, err := export.LoadSnapshot(target)
		return s, target, err
	}

	st := storage.New(dataDir)
	if _, err := st.Load(target); err == nil {
		s, err := st.LoadSeries(target)
		return s, target, err
	}

	return nil, target, fmt.Errorf("no snapshot or run named %s", target)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSOURCE\tTIME\tGRID\tSTEPS\tMARKERS\tPOLICY")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dx%d\t%d\t%d..%d\t%s\n",
			run.ID,
			filepath.Base(run.Source),
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Height,
			run.Width,
			run.Steps,
			run.FirstTimestep,
			run.LastTimestep,
			run.MarkerPolicy,
		)
	}

	return w.Flush()
}

func showInfo(cmd *cobra.Command, args []string) error {
	s, source, err := loadSeries(args)
	if err != nil {
		return err
	}

	t, h, w := s.Shape()
	fmt.Printf("source: %s\n", source)
	fmt.Printf("shape: %d x %d x %d\n", t, h, w)
	fmt.Printf("markers: %d .. %d\n", s.Timesteps[0], s.Timesteps[t-1])
	fmt.Println("\nmetrics:")
	values := metrics.Evaluate(s, metrics.DefaultMetrics())
	for _, m := range metrics.DefaultMetrics() {
		fmt.Printf("  %s: %.6f\n", m.Name(), values[m.Name()])
	}
	fmt.Println()

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "INDEX\tTIME\tSUM\tMEAN\tSTDDEV\tMIN\tMAX\tHOT (X,Y)\t")
	for i, st := range metrics.SeriesStats(s) {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%.3f\t%.3f\t%.0f\t%.0f\t(%d,%d)\t\n",
			i, st.Timestep, st.Sum, st.Mean, st.StdDev, st.Min, st.Max, st.HotX, st.HotY)
	}
	return tw.Flush()
}

func plotSeries(cmd *cobra.Command, args []string) error {
	s, source, err := loadSeries(args)
	if err != nil {
		return err
	}

	stats := metrics.SeriesStats(s)
	sums := make([]float64, len(stats))
	peaks := make([]float64, len(stats))
	for i, st := range stats {
		sums[i] = float64(st.Sum)
		peaks[i] = st.Max
	}

	fmt.Printf("source: %s\n", source)
	fmt.Printf("samples: %d (time %d .. %d)\n\n", s.Len(), s.Timesteps[0], s.Timesteps[s.Len()-1])

	for _, p := range []struct {
		data    []float64
		caption string
	}{
		{sums, "grid sum vs timestep"},
		{peaks, "peak cell vs timestep"},
	} {
		graph := asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if plotOut != "" {
		p, err := viz.TrendPlot(s, filepath.Base(source))
		if err != nil {
			return err
		}
		if err := viz.SavePlot(p, plotOut); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", plotOut)
	}

	return nil
}

func viewSeries(cmd *cobra.Command, args []string) error {
	s, source, err := loadSeries(args)
	if err != nil {
		return err
	}
	return viz.Run(s, viz.Options{
		Stride: cfg.Viz.Stride,
		Theme:  cfg.Viz.Theme,
		FPS:    fps,
		Source: source,
	})
}

func writeReport(cmd *cobra.Command, args []string) error {
	s, source, err := loadSeries(args)
	if err != nil {
		return err
	}
	err = viz.SaveReport(reportOut, s, viz.ReportOptions{
		Stride: cfg.Viz.Stride,
		Title:  filepath.Base(source),
		Theme:  cfg.Viz.Theme,
	})
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", reportOut)
	return nil
}

func writeGIF(cmd *cobra.Command, args []string) error {
	s, _, err := loadSeries(args)
	if err != nil {
		return err
	}
	err = viz.SaveGIF(gifOut, s, viz.GIFOptions{
		Stride: cfg.Viz.Stride,
		Theme:  cfg.Viz.Theme,
		Scale:  scale,
		Delay:  delay,
	})
	if err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", gifOut)
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	s, source, err := loadSeries(args)
	if err != nil {
		return err
	}
	m := metrics.Evaluate(s, metrics.DefaultMetrics())
	if jsonOut == "" {
		return export.WriteJSON(os.Stdout, source, s, m)
	}
	if err := export.ExportJSON(jsonOut, source, s, m); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", jsonOut)
	return nil
}

func exportFrame(cmd *cobra.Command, args []string) error {
	s, _, err := loadSeries(args)
	if err != nil {
		return err
	}

	i := index
	if cmd.Flags().Changed("time") {
		i = -1
		for j, ts := range s.Timesteps {
			if ts == atTime {
				i = j
				break
			}
		}
		if i < 0 {
			return fmt.Errorf("no timestep with marker %d", atTime)
		}
	}

	g, err := s.GridAt(i)
	if errors.Is(err, gridlog.ErrIndexOutOfRange) {
		return fmt.Errorf("index %d: series has %d timesteps", i, s.Len())
	} else if err != nil {
		return err
	}

	lo, hi := metrics.Range(s)
	th := viz.GetTheme(cfg.Viz.Theme)

	path := frameOut
	if path == "" {
		path = fmt.Sprintf("frame_%d.svg", s.Timesteps[i])
	}

	// plain rect SVG for .svg, gonum/plot heatmap for other formats
	if strings.EqualFold(filepath.Ext(path), ".svg") {
		svg := export.FrameToSVG(g, cellSize, lo, hi, th.RampStrings())
		if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
			return err
		}
	} else {
		p, err := viz.FramePlot(g, s.Timesteps[i], lo, hi, th)
		if err != nil {
			return err
		}
		if err := viz.SavePlot(p, path); err != nil {
			return err
		}
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
