package palette

import (
	"math"
	"sort"
)

// DefaultFallback is used when an image cannot be loaded or yields no colors
var DefaultFallback = RGB{64, 128, 255}

const roleCandidates = 5

// Result is the set of named color roles derived from one image.
type Result struct {
	Primary         RGB `json:"primary"`
	Secondary       RGB `json:"secondary"`
	Tertiary        RGB `json:"tertiary"`
	Quaternary      RGB `json:"quaternary"`
	Quinary         RGB `json:"quinary"`
	Light           RGB `json:"light"`
	Dark            RGB `json:"dark"`
	Contrast        RGB `json:"contrast"`
	BadgeBackground RGB `json:"badge_background"`
	BadgeText       RGB `json:"badge_text"`
}

// Derive builds every role from base and up to four further ranked colors.
// Ranks that are not supplied are derived from base by rotating its hue.
func Derive(base RGB, ranked ...RGB) Result {
	primary := NormalizeProblematic(base)
	p := ToHSL(primary)

	pick := func(i int, derived HSL) RGB {
		if i < len(ranked) {
			return NormalizeProblematic(ranked[i])
		}

		return FromHSL(derived)
	}

	res := Result{
		Primary: primary,
		Secondary: pick(0, HSL{
			H: math.Mod(p.H+30, 360),
			S: math.Max(25, p.S*0.8),
			L: math.Min(70, p.L+10),
		}),
		Tertiary: pick(1, HSL{
			H: math.Mod(p.H-30+360, 360),
			S: math.Max(20, p.S*0.7),
			L: math.Min(75, p.L+15),
		}),
		Quaternary: pick(2, HSL{
			H: math.Mod(p.H+60, 360),
			S: math.Max(30, p.S*0.9),
			L: math.Min(65, p.L+5),
		}),
		Quinary: pick(3, HSL{
			H: math.Mod(p.H-60+360, 360),
			S: math.Max(35, p.S*0.85),
			L: math.Min(60, p.L),
		}),
		Light: FromHSL(HSL{
			H: p.H,
			S: math.Max(30, p.S*0.6),
			L: math.Min(80, p.L+25),
		}),
		Dark: FromHSL(HSL{
			H: p.H,
			S: math.Min(90, p.S*1.1),
			L: math.Max(20, p.L-25),
		}),
		Contrast: ContrastColor(primary, p.L < 50),
	}

	avgH := (p.H + ToHSL(res.Secondary).H + ToHSL(res.Tertiary).H) / 3

	res.BadgeBackground = FromHSL(HSL{H: avgH, S: 60, L: 20})
	res.BadgeText = FromHSL(HSL{H: avgH, S: 40, L: 85})

	return res
}

// FromPalette ranks quantized colors by Score and derives the roles from the
// best five. An empty palette derives from fallback.
func FromPalette(colors []RGB, fallback RGB) Result {
	if len(colors) == 0 {
		return Derive(fallback)
	}

	type scored struct {
		color RGB
		score float64
	}

	list := make([]scored, len(colors))
	for i, c := range colors {
		list[i] = scored{c, Score(c)}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return list[i].score > list[j].score
	})

	n := len(list)
	if n > roleCandidates {
		n = roleCandidates
	}

	ranked := make([]RGB, 0, n-1)
	for _, s := range list[1:n] {
		ranked = append(ranked, s.color)
	}

	return Derive(list[0].color, ranked...)
}
