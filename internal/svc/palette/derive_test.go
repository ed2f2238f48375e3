package palette

import (
	"testing"

	"github.com/nxyyspace/api/internal/testutil"
	"github.com/stretchr/testify/require"
)

var fallbackResult = Result{
	Primary:         RGB{78, 133, 241},
	Secondary:       RGB{143, 126, 231},
	Tertiary:        RGB{153, 217, 229},
	Quaternary:      RGB{188, 97, 234},
	Quinary:         RGB{79, 227, 177},
	Light:           RGB{178, 196, 230},
	Dark:            RGB{10, 68, 182},
	Contrast:        RGB{5, 15, 36},
	BadgeBackground: RGB{20, 41, 82},
	BadgeText:       RGB{201, 212, 232},
}

func TestDeriveFallback(t *testing.T) {
	testutil.Assert(t, fallbackResult, Derive(DefaultFallback), "fallback palette")
	testutil.Assert(t, Derive(DefaultFallback), Derive(DefaultFallback), "derivation is deterministic")
}

func TestDeriveUsesRankedColors(t *testing.T) {
	res := Derive(RGB{4, 4, 252}, RGB{252, 4, 4})

	testutil.Assert(t, RGB{20, 20, 236}, res.Primary, "primary")
	testutil.Assert(t, RGB{236, 20, 20}, res.Secondary, "secondary is the normalized second color")
	testutil.Assert(t, RGB{113, 166, 219}, res.Tertiary, "tertiary is derived")
	testutil.Assert(t, RGB{20, 82, 51}, res.BadgeBackground, "badge background from the average hue")
	testutil.Assert(t, RGB{5, 5, 36}, res.Contrast, "light primary gets a dark contrast")
}

func TestFromPalette(t *testing.T) {
	testutil.Assert(t, fallbackResult, FromPalette(nil, DefaultFallback), "empty palette")

	res := FromPalette([]RGB{{128, 128, 128}, {4, 4, 252}, {250, 250, 245}}, DefaultFallback)
	testutil.Assert(t, RGB{20, 20, 236}, res.Primary, "highest score is primary")

	ranked := FromPalette([]RGB{{4, 4, 252}, {252, 4, 4}}, DefaultFallback)
	testutil.Assert(t, Derive(RGB{4, 4, 252}, RGB{252, 4, 4}), ranked, "ties keep palette order")

	many := make([]RGB, 12)
	for i := range many {
		many[i] = RGB{uint8(i * 20), 100, 200}
	}

	require.NotPanics(t, func() {
		FromPalette(many, DefaultFallback)
	})
}
