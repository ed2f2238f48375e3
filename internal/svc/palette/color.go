package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// RGB is an 8-bit color, encoded as a [r, g, b] array.
type RGB [3]uint8

// HSL holds the hue in degrees, saturation and lightness in percent.
type HSL struct {
	H float64 `json:"h"`
	S float64 `json:"s"`
	L float64 `json:"l"`
}

func (c RGB) color() colorful.Color {
	return colorful.Color{
		R: float64(c[0]) / 255,
		G: float64(c[1]) / 255,
		B: float64(c[2]) / 255,
	}
}

func ToHSL(c RGB) HSL {
	h, s, l := c.color().Hsl()

	return HSL{H: h, S: s * 100, L: l * 100}
}

// FromHSL converts back to RGB, rounding each channel half-up.
func FromHSL(c HSL) RGB {
	col := colorful.Hsl(c.H, c.S/100, c.L/100)

	return RGB{channel(col.R), channel(col.G), channel(col.B)}
}

func channel(v float64) uint8 {
	v = math.Floor(v*255 + 0.5)

	switch {
	case v < 0:
		return 0
	case v > 255:
		return 255
	}

	return uint8(v)
}

// Adjust shifts the lightness by dl points and scales the saturation by satMul
func Adjust(c RGB, dl, satMul float64) RGB {
	hsl := ToHSL(c)

	return FromHSL(HSL{
		H: hsl.H,
		S: clamp(hsl.S*satMul, 0, 100),
		L: clamp(hsl.L+dl, 0, 100),
	})
}

// NormalizeProblematic pulls purple and magenta hues toward blue or orange,
// tames saturated yellow-greens, then keeps saturation and lightness in a
// range that reads well as a UI accent.
func NormalizeProblematic(c RGB) RGB {
	hsl := ToHSL(c)

	h, s := hsl.H, hsl.S

	if hsl.H >= 270 && hsl.H <= 330 {
		if hsl.H < 300 {
			h = 240
		} else {
			h = 20
		}

		s = math.Min(70, hsl.S*0.8)
	}

	if hsl.H >= 45 && hsl.H <= 75 && hsl.S > 80 {
		s = math.Min(65, hsl.S*0.7)
	}

	return FromHSL(HSL{
		H: h,
		S: clamp(s, 25, 85),
		L: clamp(hsl.L, 20, 75),
	})
}

// Score favors saturated colors of medium lightness. Saturation is taken after
// normalization, lightness from the raw color.
func Score(c RGB) float64 {
	l := ToHSL(c).L
	s := ToHSL(NormalizeProblematic(c)).S

	return (s / 100) * (1 - math.Abs(l-50)/100)
}

// ContrastColor returns a near-white tint for dark colors and a near-black shade for light ones
func ContrastColor(c RGB, dark bool) RGB {
	hsl := ToHSL(c)

	if dark {
		return FromHSL(HSL{H: hsl.H, S: math.Min(70, hsl.S*0.8), L: 92})
	}

	return FromHSL(HSL{H: hsl.H, S: math.Min(80, hsl.S*0.9), L: 8})
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
