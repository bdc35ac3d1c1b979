package report

import (
	"math"

	"github.com/fatih/color"
	"github.com/lucasb-eyer/go-colorful"
)

// Rank colour stops for a dark background: green for the low end of the
// row, amber in the middle, red at the top.
var (
	shadeLow  = rgb(45, 120, 45)
	shadeMid  = rgb(165, 140, 35)
	shadeHigh = rgb(195, 60, 30)

	// Background is the terminal colour shades are composited over.
	Background = mustParseHex("#1e1e22")
)

func mustParseHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}

func rgb(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// Shade maps a rank t in [0,1] to its colour, then applies intensity as an
// alpha over Background.
func Shade(t, intensity float64) colorful.Color {
	t = math.Max(0, math.Min(1, t))
	var c colorful.Color
	if t < 0.5 {
		c = shadeLow.BlendRgb(shadeMid, t/0.5)
	} else {
		c = shadeMid.BlendRgb(shadeHigh, (t-0.5)/0.5)
	}
	intensity = math.Max(0, math.Min(1, intensity))
	return Background.BlendRgb(c, intensity).Clamped()
}

var glyphs = []rune("▁▂▃▄▅▆▇█")

// Glyph returns a block character whose height tracks h in [0,1].
func Glyph(h float64) string {
	h = math.Max(0, math.Min(1, h))
	i := int(math.Round(h * float64(len(glyphs)-1)))
	return string(glyphs[i])
}

// paint renders s on the shade's background with light text.
func paint(s string, c colorful.Color) string {
	r, g, b := c.RGB255()
	p := color.BgRGB(int(r), int(g), int(b)).AddRGB(235, 235, 235)
	p.EnableColor()
	return p.Sprint(s)
}
