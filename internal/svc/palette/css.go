package palette

import (
	"fmt"
	"strconv"
)

type BadgeColors struct {
	Background string `json:"background"`
	Text       string `json:"text"`
}

// FormatCSS renders c as rgb(), or rgba() when alpha is not 1
func FormatCSS(c RGB, alpha float64) string {
	if alpha == 1 {
		return fmt.Sprintf("rgb(%d, %d, %d)", c[0], c[1], c[2])
	}

	return fmt.Sprintf("rgba(%d, %d, %d, %s)", c[0], c[1], c[2], formatAlpha(alpha))
}

func formatAlpha(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}

func GradientBorder(r Result, dark bool, alpha float64) string {
	c1, c2, c3 := r.Secondary, r.Tertiary, r.Primary
	if dark {
		c1, c2, c3 = r.Light, r.Primary, r.Secondary
	}

	return fmt.Sprintf("linear-gradient(135deg, %s, %s, %s)",
		FormatCSS(c1, alpha),
		FormatCSS(c2, alpha*0.7),
		FormatCSS(c3, alpha*0.5),
	)
}

func RadialBackground(r Result, dark bool) string {
	if dark {
		return fmt.Sprintf(
			"radial-gradient(ellipse 200%% 150%% at bottom right, %s 0%%, %s 5%%, %s 12%%, %s 25%%, rgba(10, 10, 15, 0.6) 85%%)",
			FormatCSS(r.Light, 0.45),
			FormatCSS(r.Primary, 0.35),
			FormatCSS(r.Dark, 0.25),
			FormatCSS(r.Dark, 0.15),
		)
	}

	return fmt.Sprintf(
		"linear-gradient(rgba(0, 0, 0, 0.15), rgba(0, 0, 0, 0.05)), radial-gradient(ellipse 200%% 150%% at bottom right, %s 0%%, %s 6%%, %s 15%%, %s 28%%, rgba(250, 250, 255, 0.75) 90%%)",
		FormatCSS(r.Light, 0.55),
		FormatCSS(r.Primary, 0.45),
		FormatCSS(r.Dark, 0.3),
		FormatCSS(r.Dark, 0.2),
	)
}

// Badges re-derives the badge colors from the badge hue at fixed saturation and lightness per theme
func Badges(r Result, dark bool) BadgeColors {
	h := ToHSL(r.BadgeBackground).H

	if dark {
		return BadgeColors{
			Background: FormatCSS(FromHSL(HSL{H: h, S: 70, L: 18}), 0.85),
			Text:       FormatCSS(FromHSL(HSL{H: h, S: 45, L: 88}), 0.95),
		}
	}

	return BadgeColors{
		Background: FormatCSS(FromHSL(HSL{H: h, S: 55, L: 25}), 0.9),
		Text:       FormatCSS(FromHSL(HSL{H: h, S: 50, L: 95}), 1),
	}
}

func EnhancedBackground(r Result, dark bool) string {
	return GradientBorder(r, dark, 0.5) + ", " + RadialBackground(r, dark)
}
