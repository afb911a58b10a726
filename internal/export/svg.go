package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/gridlog/internal/gridlog"
)

// DefaultRamp is a viridis-like ramp from cold to hot.
var DefaultRamp = []string{"#440154", "#482777", "#3e4989", "#31688e", "#26828e", "#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725"}

// FrameToSVG renders one grid as a heatmap of square cells. Values are mapped
// onto ramp between lo and hi; pass the series range to keep frames comparable.
func FrameToSVG(g gridlog.Grid, cellSize float64, lo, hi int64, ramp []string) string {
	if len(g.Values) == 0 {
		return ""
	}
	if len(ramp) == 0 {
		ramp = DefaultRamp
	}
	if cellSize <= 0 {
		cellSize = 4
	}

	width := float64(g.Width) * cellSize
	height := float64(g.Height) * cellSize

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f" shape-rendering="crispEdges">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := ramp[rampIndex(g.At(y, x), lo, hi, len(ramp))]
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>
`, float64(x)*cellSize, float64(y)*cellSize, cellSize, cellSize, c))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

func rampIndex(v, lo, hi int64, n int) int {
	if hi <= lo {
		return 0
	}
	idx := int(float64(v-lo) / float64(hi-lo) * float64(n-1))
	if idx < 0 {
		return 0
	}
	if idx >= n {
		return n - 1
	}
	return idx
}
