package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/gridlog/internal/gridlog"
	"github.com/san-kum/gridlog/internal/metrics"
)

const (
	defaultCols = 80
	defaultRows = 24
	defaultFPS  = 8
	// columns reserved for the stats panel
	panelWidth = 44
)

var (
	canvasStyle = lipgloss.NewStyle().Padding(1, 2)
	graphStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
)

type TickMsg time.Time

// Options configures the scrubber.
type Options struct {
	// Stride keeps every Stride-th timestep; values below 2 keep all.
	Stride int
	Theme  string
	// FPS is the playback rate in frames per second.
	FPS    int
	Source string
}

// Model is the bubbletea model of the heatmap scrubber.
type Model struct {
	series   *gridlog.Series
	stats    []metrics.Stats
	sums     []float64
	lo, hi   int64
	pos      int
	playing  bool
	fps      int
	theme    Theme
	source   string
	width    int
	height   int
	showHelp bool
}

// NewModel subsamples series by opts.Stride and positions the scrubber on the
// first retained timestep.
func NewModel(series *gridlog.Series, opts Options) Model {
	s := series.Subsample(opts.Stride)
	fps := opts.FPS
	if fps <= 0 {
		fps = defaultFPS
	}

	stats := metrics.SeriesStats(s)
	sums := make([]float64, len(stats))
	for i, st := range stats {
		sums[i] = float64(st.Sum)
	}
	lo, hi := metrics.Range(s)

	return Model{
		series: s,
		stats:  stats,
		sums:   sums,
		lo:     lo,
		hi:     hi,
		fps:    fps,
		theme:  GetTheme(opts.Theme),
		source: opts.Source,
		width:  defaultCols,
		height: defaultRows,
	}
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.fps), func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return m.tick()
}

// Position returns the index of the displayed timestep.
func (m Model) Position() int { return m.pos }

// Timestep returns the marker value of the displayed timestep.
func (m Model) Timestep() int64 { return m.series.Timesteps[m.pos] }

func (m Model) Playing() bool { return m.playing }

func (m Model) Theme() Theme { return m.theme }

// Update handles keys, window resizes and playback ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case " ":
			if !m.playing && m.pos == m.series.Len()-1 {
				m.pos = 0
			}
			m.playing = !m.playing
		case "left", "h", "[":
			m.seek(m.pos - 1)
		case "right", "l", "]":
			m.seek(m.pos + 1)
		case "home", "g":
			m.seek(0)
		case "end", "G":
			m.seek(m.series.Len() - 1)
		case "t":
			names := ThemeNames()
			for i, name := range names {
				if name == m.theme.Name {
					m.theme = GetTheme(names[(i+1)%len(names)])
					break
				}
			}
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case TickMsg:
		if m.playing {
			if m.pos < m.series.Len()-1 {
				m.pos++
			} else {
				m.playing = false
			}
		}
		return m, m.tick()
	}
	return m, nil
}

// seek moves to i, clamped to the series, and pauses playback.
func (m *Model) seek(i int) {
	m.playing = false
	if i < 0 {
		i = 0
	}
	if last := m.series.Len() - 1; i > last {
		i = last
	}
	m.pos = i
}

// View renders the heatmap beside the stats panel.
func (m Model) View() string {
	if m.series.Len() == 0 {
		return "no timesteps\n"
	}
	cols := max(m.width-panelWidth-4, 8)
	rows := max(m.height-4, 4)
	heat := RenderHeatmap(m.series.Grid(m.pos), m.lo, m.hi, m.theme.Ramp, cols, rows)
	canvasView := canvasStyle.Render(heat)

	var s strings.Builder
	title := fmt.Sprintf("time = %d", m.Timestep())
	s.WriteString(GradientText(title, m.theme.Primary, m.theme.Accent) + "\n")
	muted := lipgloss.NewStyle().Foreground(m.theme.Muted)
	if m.source != "" {
		s.WriteString(muted.Render(m.source) + "\n")
	}
	if m.playing {
		s.WriteString(StatusRunning.Render("▶ PLAYING") + "\n\n")
	} else {
		s.WriteString(StatusPaused.Render("❚❚ PAUSED") + "\n\n")
	}

	s.WriteString(ScrubBar(m.pos, m.series.Len(), panelWidth-8, m.theme.Accent) + "\n")
	first, last := m.series.Timesteps[0], m.series.Timesteps[m.series.Len()-1]
	s.WriteString(Subtle.Render(fmt.Sprintf("%-*d%d", panelWidth-8-len(fmt.Sprint(last)), first, last)) + "\n")
	s.WriteString(Subtle.Render(fmt.Sprintf("frame %d/%d", m.pos+1, m.series.Len())) + "\n\n")

	st := m.stats[m.pos]
	s.WriteString(MetricLabel.Render("Sum") + MetricValue.Render(fmt.Sprintf("%d", st.Sum)) + "\n")
	s.WriteString(MetricLabel.Render("Mean") + MetricValue.Render(fmt.Sprintf("%.3f", st.Mean)) + "\n")
	s.WriteString(MetricLabel.Render("StdDev") + MetricValue.Render(fmt.Sprintf("%.3f", st.StdDev)) + "\n")
	s.WriteString(MetricLabel.Render("Min") + MetricValue.Render(fmt.Sprintf("%.0f", st.Min)) + "\n")
	s.WriteString(MetricLabel.Render("Max") + MetricValue.Render(fmt.Sprintf("%.0f @ (%d,%d)", st.Max, st.HotX, st.HotY)) + "\n")
	s.WriteString(MetricLabel.Render("Shape") + MetricValue.Render(fmt.Sprintf("%dx%d", m.series.Height, m.series.Width)) + "\n")

	if len(m.sums) > 1 {
		chart := asciigraph.Plot(m.sums, asciigraph.Height(4), asciigraph.Width(panelWidth-12), asciigraph.Caption("grid sum"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	s.WriteString(Colorbar(m.theme.Ramp, panelWidth-8) + "\n")
	s.WriteString(muted.Render(fmt.Sprintf("%-*d%d", panelWidth-8-len(fmt.Sprint(m.hi)), m.lo, m.hi)) + "\n")
	s.WriteString(helpStyle.Render(KeyHint.Render("←/→ step  space play  t theme  ? help  q quit")))

	statsView := GlassPanel.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  ←/h [   - Previous timestep         ║
║  →/l ]   - Next timestep             ║
║  Home/g  - First timestep            ║
║  End/G   - Last timestep             ║
║  Space   - Play/Pause                ║
║  T       - Cycle themes              ║
║  ?       - Toggle this help          ║
║  Q/Esc   - Quit                      ║
╚══════════════════════════════════════╝
` + "\n" + mainView
	}
	return mainView
}

// Run starts the scrubber on the alternate screen and blocks until it quits.
func Run(series *gridlog.Series, opts Options) error {
	if series == nil || series.Len() == 0 {
		return gridlog.ErrEmptySeries
	}
	p := tea.NewProgram(NewModel(series, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
