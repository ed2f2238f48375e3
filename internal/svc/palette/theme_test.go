package palette

import (
	"context"
	"testing"

	"github.com/nxyyspace/api/internal/svc/presence"
	"github.com/nxyyspace/api/internal/testutil"
)

type recordingEngine struct {
	res        Result
	src, label string
}

func (e *recordingEngine) Extract(ctx context.Context, src, label string) Result {
	e.src, e.label = src, label
	return e.res
}

func (e *recordingEngine) Purge() {}

func (e *recordingEngine) Len() int { return 0 }

var themeResult = Result{
	Light:    RGB{1, 2, 3},
	Dark:     RGB{7, 8, 9},
	Contrast: RGB{4, 5, 6},
}

func TestThemeFromAvatar(t *testing.T) {
	e := &recordingEngine{res: themeResult}

	rec := presence.Record{
		DiscordUser: presence.DiscordUser{ID: "42", Avatar: "abc"},
		Activities:  []presence.Activity{{Name: "Code", Assets: &presence.Assets{LargeImage: "https://example.com/x.png"}}},
	}

	theme := Theme(context.Background(), e, rec, true)

	testutil.Assert(t, "https://cdn.discordapp.com/avatars/42/abc.png?size=256", e.src, "avatar source")
	testutil.Assert(t, "42", e.label, "avatar label")
	testutil.Assert(t, "rgb(1, 2, 3)", theme.Background, "dark background is the light role")
	testutil.Assert(t, "rgba(1,2,3, 0.9)", theme.Color, "dark text color")
	testutil.Assert(t, EnhancedBackground(themeResult, true), theme.EnhancedBackground, "enhanced background")

	theme = Theme(context.Background(), e, rec, false)

	testutil.Assert(t, "rgb(7, 8, 9)", theme.Background, "light background is the dark role")
	testutil.Assert(t, "rgba(4,5,6, 0.95)", theme.Color, "light text color")
}

func TestThemeFromSpotify(t *testing.T) {
	e := &recordingEngine{res: themeResult}

	rec := presence.Record{
		DiscordUser: presence.DiscordUser{ID: "42"},
		Activities: []presence.Activity{
			{Name: "Code"},
			{Name: "Spotify", Assets: &presence.Assets{LargeImage: "spotify:ab67616d0000b273"}},
		},
	}

	theme := Theme(context.Background(), e, rec, true)

	testutil.Assert(t, "https://i.scdn.co/image/ab67616d0000b273", theme.Source, "album art source")
	testutil.Assert(t, "spotify-42", theme.Label, "album art label")

	rec.Activities[1].Assets = nil

	src, label := ThemeSource(rec)
	testutil.Assert(t, "https://cdn.discordapp.com/embed/avatars/0.png", src, "no art falls back to the avatar")
	testutil.Assert(t, "42", label, "avatar label")
}

func TestProjectTheme(t *testing.T) {
	dark := NewProjectTheme(fallbackResult, true)

	testutil.Assert(t, "rgb(178, 196, 230)", dark.Background, "dark background")
	testutil.Assert(t, "rgb(5, 15, 36)", dark.ButtonText, "dark button text")
	testutil.Assert(t, Badges(fallbackResult, true), dark.Badge, "dark badge")

	light := NewProjectTheme(fallbackResult, false)

	testutil.Assert(t, "rgb(10, 68, 182)", light.Background, "light background")
	testutil.Assert(t, "rgb(20, 20, 20)", light.ButtonText, "light button text")
	testutil.Assert(t, "rgb(178, 196, 230)", light.Color, "text uses the light role")
}
