package design

import (
	"github.com/pkg/errors"

	"vdpsim/internal/frame"
)

// Pattern selects the colour generator.
type Pattern string

// Patterns.
const (
	PatternGradient Pattern = "gradient"
	PatternBars     Pattern = "bars"
)

// ParsePattern validates a pattern name.
func ParsePattern(s string) (Pattern, error) {
	switch p := Pattern(s); p {
	case PatternGradient, PatternBars:
		return p, nil
	case "":
		return PatternGradient, nil
	}
	return "", errors.Errorf("unknown pattern %q", s)
}

var bars = [8]frame.Color{
	{R: 0xFF, G: 0xFF, B: 0xFF},
	{R: 0xFF, G: 0xFF, B: 0x00},
	{R: 0x00, G: 0xFF, B: 0xFF},
	{R: 0x00, G: 0xFF, B: 0x00},
	{R: 0xFF, G: 0x00, B: 0xFF},
	{R: 0xFF, G: 0x00, B: 0x00},
	{R: 0x00, G: 0x00, B: 0xFF},
	{R: 0x00, G: 0x00, B: 0x00},
}

// shade computes the colour of a visible pixel. f is the frame counter.
func shade(p Pattern, width, x, y int, f uint16) frame.Color {
	if p == PatternBars {
		i := x * len(bars) / width
		c := bars[i]
		// Scroll a one-line marker down the bars so animation is visible.
		if y == int(f)%256 {
			c = frame.Color{R: ^c.R, G: ^c.G, B: ^c.B}
		}
		return c
	}

	n := int(f)
	return frame.Color{
		R: uint8((x + n) >> 1),
		G: uint8((y + n) >> 2),
		B: uint8(x + y + n),
	}
}

// correctGamma22 approximates a 2.2 gamma curve with a piecewise shift-add
// so that it maps onto a handful of adders in hardware.
func correctGamma22(c uint8) uint8 {
	v := int(c)
	switch {
	case v == 0:
		return 0
	case v <= 11:
		return uint8(v<<2 + 20)
	case v <= 40:
		return uint8(v<<1 + 35)
	case v <= 113:
		return uint8(v + 70)
	default:
		return uint8(v>>1 + 125)
	}
}
