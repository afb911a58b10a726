package viz

import (
	"image"
	"image/color"
	"image/gif"
	"io"
	"os"

	"github.com/san-kum/gridlog/internal/gridlog"
	"github.com/san-kum/gridlog/internal/metrics"
)

// GIFOptions configures the animation export.
type GIFOptions struct {
	Stride int
	Theme  string
	// Scale is the edge in pixels of one grid cell; zero means 4.
	Scale int
	// Delay between frames in hundredths of a second; zero means 10.
	Delay int
}

// palette converts a theme ramp into a GIF palette in ramp order.
func palette(t Theme) color.Palette {
	p := make(color.Palette, len(t.Ramp))
	for i, c := range t.Ramp {
		r, g, b := parseHex(string(c))
		p[i] = color.RGBA{R: uint8(r), G: uint8(g), B: uint8(b), A: 0xff}
	}
	return p
}

// Frame paints one grid onto a paletted image, scale pixels per cell.
func Frame(g gridlog.Grid, lo, hi int64, pal color.Palette, scale int) *image.Paletted {
	if scale < 1 {
		scale = 1
	}
	img := image.NewPaletted(image.Rect(0, 0, g.Width*scale, g.Height*scale), pal)
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			idx := uint8(shade(float64(g.At(y, x)), lo, hi, len(pal)))
			for py := 0; py < scale; py++ {
				for px := 0; px < scale; px++ {
					img.SetColorIndex(x*scale+px, y*scale+py, idx)
				}
			}
		}
	}
	return img
}

// WriteGIF encodes the retained timesteps as a looping animation.
func WriteGIF(w io.Writer, series *gridlog.Series, opts GIFOptions) error {
	if series == nil || series.Len() == 0 {
		return gridlog.ErrEmptySeries
	}
	scale := opts.Scale
	if scale <= 0 {
		scale = 4
	}
	delay := opts.Delay
	if delay <= 0 {
		delay = 10
	}

	s := series.Subsample(opts.Stride)
	lo, hi := metrics.Range(s)
	pal := palette(GetTheme(opts.Theme))

	anim := gif.GIF{LoopCount: 0}
	for i := 0; i < s.Len(); i++ {
		anim.Image = append(anim.Image, Frame(s.Grid(i), lo, hi, pal, scale))
		anim.Delay = append(anim.Delay, delay)
	}
	return gif.EncodeAll(w, &anim)
}

// SaveGIF writes the animation to path.
func SaveGIF(path string, series *gridlog.Series, opts GIFOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteGIF(f, series, opts); err != nil {
		return err
	}
	return f.Close()
}
