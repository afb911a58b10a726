package viz

import (
	"bytes"
	"errors"
	"image/gif"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/gridlog/internal/gridlog"
)

func testSeries(t *testing.T) *gridlog.Series {
	t.Helper()
	data := []int64{
		0, 1, 2, 3,
		4, 5, 6, 7,
		8, 9, 10, 11,
	}
	s, err := gridlog.NewSeries([]int64{10, 20, 30}, 2, 2, data)
	if err != nil {
		t.Fatalf("new series: %v", err)
	}
	return s
}

func key(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "home":
		return tea.KeyMsg{Type: tea.KeyHome}
	case "end":
		return tea.KeyMsg{Type: tea.KeyEnd}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(key(k))
		m = next.(Model)
	}
	return m
}

func TestDownsample(t *testing.T) {
	g := gridlog.Grid{Height: 3, Width: 3, Values: []int64{
		1, 3, 5,
		1, 3, 5,
		7, 7, 9,
	}}

	cells := Downsample(g, 2, 2)
	if len(cells) != 2 || len(cells[0]) != 2 {
		t.Fatalf("expected 2x2 blocks, got %dx%d", len(cells), len(cells[0]))
	}
	want := [][]float64{{2, 5}, {7, 9}}
	for y := range want {
		for x := range want[y] {
			if cells[y][x] != want[y][x] {
				t.Errorf("block (%d,%d): expected %v, got %v", y, x, want[y][x], cells[y][x])
			}
		}
	}

	same := Downsample(g, 1, 1)
	if same[2][2] != 9 {
		t.Errorf("unit factors should keep values, got %v", same[2][2])
	}
}

func TestFitFactors(t *testing.T) {
	tests := []struct {
		h, w, cols, rows int
		fx, fy           int
	}{
		{10, 10, 80, 24, 1, 1},
		{100, 100, 50, 25, 2, 2},
		{500, 500, 80, 24, 7, 11},
		{3, 200, 100, 10, 2, 1},
	}
	for _, tt := range tests {
		fx, fy := fitFactors(tt.h, tt.w, tt.cols, tt.rows)
		if fx != tt.fx || fy != tt.fy {
			t.Errorf("%dx%d into %dx%d: expected (%d,%d), got (%d,%d)", tt.h, tt.w, tt.cols, tt.rows, tt.fx, tt.fy, fx, fy)
		}
	}
}

func TestShade(t *testing.T) {
	if shade(0, 0, 10, 10) != 0 {
		t.Error("low end should map to first slot")
	}
	if shade(10, 0, 10, 10) != 9 {
		t.Error("high end should map to last slot")
	}
	if shade(42, 5, 5, 10) != 0 {
		t.Error("flat range should map to first slot")
	}
	if shade(-3, 0, 10, 10) != 0 || shade(30, 0, 10, 10) != 9 {
		t.Error("out of range values should clamp")
	}
}

func TestRenderHeatmap(t *testing.T) {
	g := gridlog.Grid{Height: 3, Width: 4, Values: make([]int64, 12)}
	out := RenderHeatmap(g, 0, 1, ThemeGray.Ramp, 80, 24)

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines for 3 rows, got %d", len(lines))
	}
	for i, line := range lines {
		if w := lipgloss.Width(line); w != 4 {
			t.Errorf("line %d: expected width 4, got %d", i, w)
		}
	}

	big := gridlog.Grid{Height: 100, Width: 100, Values: make([]int64, 10000)}
	out = RenderHeatmap(big, 0, 1, ThemeGray.Ramp, 50, 10)
	lines = strings.Split(out, "\n")
	if len(lines) > 10 {
		t.Errorf("expected at most 10 lines, got %d", len(lines))
	}
	if w := lipgloss.Width(lines[0]); w > 50 {
		t.Errorf("expected at most 50 columns, got %d", w)
	}

	if RenderHeatmap(gridlog.Grid{}, 0, 1, ThemeGray.Ramp, 80, 24) != "" {
		t.Error("empty grid should render nothing")
	}
}

func TestModelNavigation(t *testing.T) {
	m := NewModel(testSeries(t), Options{})

	if m.Position() != 0 || m.Timestep() != 10 {
		t.Fatalf("expected first timestep, got %d", m.Timestep())
	}

	m = press(m, "right", "right", "right")
	if m.Timestep() != 30 {
		t.Errorf("expected clamp at last timestep, got %d", m.Timestep())
	}

	m = press(m, "left")
	if m.Timestep() != 20 {
		t.Errorf("expected 20, got %d", m.Timestep())
	}

	m = press(m, "home")
	if m.Position() != 0 {
		t.Errorf("home should jump to start, got %d", m.Position())
	}

	m = press(m, "end")
	if m.Position() != 2 {
		t.Errorf("end should jump to last, got %d", m.Position())
	}

	m = press(m, "h")
	if m.Position() != 1 {
		t.Errorf("h should step back, got %d", m.Position())
	}
}

func TestModelStride(t *testing.T) {
	m := NewModel(testSeries(t), Options{Stride: 2})
	m = press(m, "end")
	if m.Timestep() != 30 {
		t.Errorf("expected last retained timestep 30, got %d", m.Timestep())
	}
	m = press(m, "left")
	if m.Timestep() != 10 {
		t.Errorf("expected 10 after stepping back over stride, got %d", m.Timestep())
	}
}

func TestModelPlayback(t *testing.T) {
	m := NewModel(testSeries(t), Options{})

	m = press(m, " ")
	if !m.Playing() {
		t.Fatal("space should start playback")
	}

	for i := 0; i < 5; i++ {
		next, cmd := m.Update(TickMsg{})
		m = next.(Model)
		if cmd == nil {
			t.Fatal("tick should schedule the next tick")
		}
	}
	if m.Playing() {
		t.Error("playback should stop at the last timestep")
	}
	if m.Timestep() != 30 {
		t.Errorf("expected 30, got %d", m.Timestep())
	}

	m = press(m, " ")
	if !m.Playing() || m.Position() != 0 {
		t.Errorf("play at the end should restart from the first timestep")
	}

	m = press(m, "right")
	if m.Playing() {
		t.Error("stepping should pause playback")
	}
}

func TestModelThemeAndQuit(t *testing.T) {
	m := NewModel(testSeries(t), Options{Theme: "viridis"})
	if m.Theme().Name != "viridis" {
		t.Fatalf("expected viridis, got %s", m.Theme().Name)
	}

	m = press(m, "t")
	if m.Theme().Name != "coolwarm" {
		t.Errorf("expected coolwarm after cycling, got %s", m.Theme().Name)
	}

	_, cmd := m.Update(key("q"))
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestModelView(t *testing.T) {
	m := NewModel(testSeries(t), Options{Source: "run.log"})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)

	view := m.View()
	if !strings.Contains(view, "run.log") {
		t.Error("view should name the source")
	}
	if !strings.Contains(view, "PAUSED") {
		t.Error("view should show paused status")
	}
	if !strings.Contains(view, "frame 1/3") {
		t.Error("view should show frame position")
	}

	m = press(m, "?")
	if !strings.Contains(m.View(), "KEYBOARD SHORTCUTS") {
		t.Error("help overlay should be shown")
	}
}

func TestGetTheme(t *testing.T) {
	if GetTheme("nonexistent").Name != "inferno" {
		t.Error("unknown theme should fall back to inferno")
	}
	for _, name := range ThemeNames() {
		th := GetTheme(name)
		if len(th.Ramp) < 2 {
			t.Errorf("theme %s needs a ramp", name)
		}
		if len(th.RampStrings()) != len(th.Ramp) {
			t.Errorf("theme %s: ramp strings mismatch", name)
		}
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, testSeries(t), ReportOptions{Stride: 2, Title: "heat run"}); err != nil {
		t.Fatalf("report failed: %v", err)
	}
	html := buf.String()

	if !strings.Contains(html, "heat run") {
		t.Error("report should carry the page title")
	}
	for _, want := range []string{"time = 10", "time = 30", "frame_0", "frame_1"} {
		if !strings.Contains(html, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(html, "time = 20") {
		t.Error("stride 2 should drop timestep 20")
	}
}

func TestBuildReportEmpty(t *testing.T) {
	_, err := BuildReport(&gridlog.Series{Height: 2, Width: 2}, ReportOptions{})
	if !errors.Is(err, gridlog.ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
}

func TestWriteGIF(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteGIF(&buf, testSeries(t), GIFOptions{Scale: 3}); err != nil {
		t.Fatalf("gif failed: %v", err)
	}

	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(anim.Image) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(anim.Image))
	}
	b := anim.Image[0].Bounds()
	if b.Dx() != 6 || b.Dy() != 6 {
		t.Errorf("expected 6x6 frame, got %dx%d", b.Dx(), b.Dy())
	}

	// the first cell of the first frame is the series minimum
	if anim.Image[0].ColorIndexAt(0, 0) != 0 {
		t.Errorf("expected coldest slot, got %d", anim.Image[0].ColorIndexAt(0, 0))
	}
	last := anim.Image[2]
	if int(last.ColorIndexAt(5, 5)) != len(ThemeInferno.Ramp)-1 {
		t.Errorf("expected hottest slot, got %d", last.ColorIndexAt(5, 5))
	}
}

func TestGradientText(t *testing.T) {
	if GradientText("", "#000000", "#ffffff") != "" {
		t.Error("empty text should stay empty")
	}
	if w := lipgloss.Width(GradientText("time = 5", "#000000", "#ffffff")); w != 8 {
		t.Errorf("expected width 8, got %d", w)
	}
	if r, g, b := parseHex("#1f9e89"); r != 0x1f || g != 0x9e || b != 0x89 {
		t.Errorf("parseHex: got %d %d %d", r, g, b)
	}
	if hexColor(300, -1, 16) != "#ff0010" {
		t.Errorf("hexColor should clamp, got %s", hexColor(300, -1, 16))
	}
}

func TestTrendPlot(t *testing.T) {
	p, err := TrendPlot(testSeries(t), "run")
	if err != nil {
		t.Fatalf("trend plot failed: %v", err)
	}
	if p.Title.Text != "run" {
		t.Errorf("expected title run, got %s", p.Title.Text)
	}

	path := filepath.Join(t.TempDir(), "trend.png")
	if err := SavePlot(p, path); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if info, err := os.Stat(path); err != nil || info.Size() == 0 {
		t.Errorf("expected non-empty png, got %v", err)
	}

	if _, err := TrendPlot(&gridlog.Series{Height: 1, Width: 1}, "empty"); !errors.Is(err, gridlog.ErrEmptySeries) {
		t.Errorf("expected ErrEmptySeries, got %v", err)
	}
}

func TestFramePlot(t *testing.T) {
	s := testSeries(t)
	p, err := FramePlot(s.Grid(1), s.Timesteps[1], 0, 11, ThemeGray)
	if err != nil {
		t.Fatalf("frame plot failed: %v", err)
	}
	if p.Title.Text != "time = 20" {
		t.Errorf("unexpected title %q", p.Title.Text)
	}
	if err := SavePlot(p, filepath.Join(t.TempDir(), "frame.png")); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	xyz := gridXYZ{s.Grid(1)}
	if c, r := xyz.Dims(); c != 2 || r != 2 {
		t.Errorf("expected 2x2 dims, got %dx%d", c, r)
	}
	// plot rows count upwards, so r=1 is grid row 0
	if xyz.Z(0, 1) != 4 || xyz.Z(1, 0) != 7 {
		t.Errorf("unexpected z values %v %v", xyz.Z(0, 1), xyz.Z(1, 0))
	}

	flat, err := FramePlot(s.Grid(0), 10, 5, 5, ThemeGray)
	if err != nil || flat == nil {
		t.Fatalf("flat range should still plot: %v", err)
	}
}
