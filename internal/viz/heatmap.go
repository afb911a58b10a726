package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/gridlog/internal/gridlog"
)

// Downsample averages g over blocks of fy rows by fx columns. Blocks on the
// right and bottom edges may be partial and are averaged over the cells they
// hold.
func Downsample(g gridlog.Grid, fx, fy int) [][]float64 {
	if fx < 1 {
		fx = 1
	}
	if fy < 1 {
		fy = 1
	}
	rows := (g.Height + fy - 1) / fy
	cols := (g.Width + fx - 1) / fx

	out := make([][]float64, rows)
	for by := 0; by < rows; by++ {
		out[by] = make([]float64, cols)
		for bx := 0; bx < cols; bx++ {
			var sum float64
			var n int
			for y := by * fy; y < min((by+1)*fy, g.Height); y++ {
				for x := bx * fx; x < min((bx+1)*fx, g.Width); x++ {
					sum += float64(g.At(y, x))
					n++
				}
			}
			out[by][bx] = sum / float64(n)
		}
	}
	return out
}

// fitFactors picks the smallest block size that fits a height x width grid
// into cols terminal columns and rows terminal lines, two grid rows per line.
func fitFactors(height, width, cols, rows int) (fx, fy int) {
	fx, fy = 1, 1
	if cols > 0 && width > cols {
		fx = (width + cols - 1) / cols
	}
	if rows > 0 && height > 2*rows {
		fy = (height + 2*rows - 1) / (2 * rows)
	}
	return fx, fy
}

// shade maps v onto one of n ramp slots between lo and hi.
func shade(v float64, lo, hi int64, n int) int {
	if hi <= lo || n < 2 {
		return 0
	}
	idx := int((v - float64(lo)) / float64(hi-lo) * float64(n-1))
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}

// RenderHeatmap draws g with half-block glyphs so each terminal cell shows two
// vertically stacked grid cells. Grids larger than cols x rows are block
// averaged first. lo and hi fix the color scale; pass the series range so
// frames stay comparable while scrubbing.
func RenderHeatmap(g gridlog.Grid, lo, hi int64, ramp []lipgloss.Color, cols, rows int) string {
	if len(g.Values) == 0 || len(ramp) == 0 {
		return ""
	}
	fx, fy := fitFactors(g.Height, g.Width, cols, rows)
	cells := Downsample(g, fx, fy)

	// styled glyphs keyed by top and bottom ramp slot; -1 means no bottom
	glyphs := make(map[[2]int]string)
	glyph := func(top, bottom int) string {
		key := [2]int{top, bottom}
		if s, ok := glyphs[key]; ok {
			return s
		}
		st := lipgloss.NewStyle().Foreground(ramp[top])
		if bottom >= 0 {
			st = st.Background(ramp[bottom])
		}
		s := st.Render("▀")
		glyphs[key] = s
		return s
	}

	var sb strings.Builder
	for y := 0; y < len(cells); y += 2 {
		if y > 0 {
			sb.WriteByte('\n')
		}
		for x := range cells[y] {
			top := shade(cells[y][x], lo, hi, len(ramp))
			bottom := -1
			if y+1 < len(cells) {
				bottom = shade(cells[y+1][x], lo, hi, len(ramp))
			}
			sb.WriteString(glyph(top, bottom))
		}
	}
	return sb.String()
}
