package palette

import (
	"strings"
	"testing"

	"github.com/nxyyspace/api/internal/testutil"
)

func TestFormatCSS(t *testing.T) {
	testutil.Assert(t, "rgb(1, 2, 3)", FormatCSS(RGB{1, 2, 3}, 1), "opaque")
	testutil.Assert(t, "rgba(1, 2, 3, 0.5)", FormatCSS(RGB{1, 2, 3}, 0.5), "translucent")
	testutil.Assert(t, "rgba(1, 2, 3, 0)", FormatCSS(RGB{1, 2, 3}, 0), "transparent")
}

func TestGradientBorder(t *testing.T) {
	alpha := 0.6

	testutil.Assert(t,
		"linear-gradient(135deg, rgba(178, 196, 230, 0.6), rgba(78, 133, 241, 0.42), rgba(143, 126, 231, 0.3))",
		GradientBorder(fallbackResult, true, alpha),
		"dark border",
	)

	testutil.Assert(t,
		"linear-gradient(135deg, rgba(143, 126, 231, 0.6), rgba(153, 217, 229, 0.42), rgba(78, 133, 241, 0.3))",
		GradientBorder(fallbackResult, false, alpha),
		"light border",
	)
}

func TestRadialBackground(t *testing.T) {
	testutil.Assert(t,
		"radial-gradient(ellipse 200% 150% at bottom right, rgba(178, 196, 230, 0.45) 0%, rgba(78, 133, 241, 0.35) 5%, rgba(10, 68, 182, 0.25) 12%, rgba(10, 68, 182, 0.15) 25%, rgba(10, 10, 15, 0.6) 85%)",
		RadialBackground(fallbackResult, true),
		"dark background",
	)

	light := RadialBackground(fallbackResult, false)
	testutil.Assert(t, true, strings.HasPrefix(light, "linear-gradient(rgba(0, 0, 0, 0.15), rgba(0, 0, 0, 0.05)), radial-gradient("), "light overlay")
	testutil.Assert(t, true, strings.HasSuffix(light, "rgba(250, 250, 255, 0.75) 90%)"), "light base")
}

func TestBadges(t *testing.T) {
	testutil.Assert(t, BadgeColors{
		Background: "rgba(14, 36, 78, 0.85)",
		Text:       "rgba(211, 220, 238, 0.95)",
	}, Badges(fallbackResult, true), "dark badge")

	testutil.Assert(t, BadgeColors{
		Background: "rgba(29, 52, 99, 0.9)",
		Text:       "rgb(236, 240, 249)",
	}, Badges(fallbackResult, false), "light badge")
}

func TestEnhancedBackground(t *testing.T) {
	bg := EnhancedBackground(fallbackResult, true)

	testutil.Assert(t, true, strings.HasPrefix(bg, "linear-gradient(135deg, rgba(178, 196, 230, 0.5), rgba(78, 133, 241, 0.35), rgba(143, 126, 231, 0.25)), radial-gradient("), "border then background")
}
