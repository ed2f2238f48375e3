package presence

import (
	"testing"

	"github.com/nxyyspace/api/internal/testutil"
)

func TestSelectActivity(t *testing.T) {
	_, ok := SelectActivity(nil)
	testutil.Assert(t, false, ok, "nothing to select")

	acts := []Activity{{Name: "Zeta"}, {Name: "Apple"}}

	a, ok := SelectActivity(acts)
	testutil.Assert(t, true, ok, "selected")
	testutil.Assert(t, "Apple", a.Name, "smallest name wins")
	testutil.Assert(t, "Zeta", acts[0].Name, "input order untouched")

	a, _ = SelectActivity([]Activity{{Name: "Apple"}, {Name: "Spotify"}})
	testutil.Assert(t, "Spotify", a.Name, "spotify wins")
}

func TestFormatActivity(t *testing.T) {
	text := FormatActivity(Activity{
		Name:   "Spotify",
		State:  "Artist A; Artist B",
		Assets: &Assets{LargeText: "Song"},
	})
	testutil.Assert(t, "Song", text.Primary, "song from large text")
	testutil.Assert(t, "Artist A, Artist B", text.Secondary, "artists joined with commas")

	text = FormatActivity(Activity{Name: "Spotify"})
	testutil.Assert(t, "Unknown Song", text.Primary, "song fallback")
	testutil.Assert(t, "Unknown Artist", text.Secondary, "artist fallback")

	text = FormatActivity(Activity{Name: "Spotify", Details: "Details Song"})
	testutil.Assert(t, "Details Song", text.Primary, "song from details")

	text = FormatActivity(Activity{Name: "Code", State: "Editing"})
	testutil.Assert(t, "Code", text.Primary, "activity name")
	testutil.Assert(t, "Editing", text.Secondary, "state when details are missing")

	text = FormatActivity(Activity{Name: "Code", Details: "main.go", State: "Editing"})
	testutil.Assert(t, "main.go", text.Secondary, "details first")
}

func TestActivityImageURL(t *testing.T) {
	cases := []struct {
		name string
		act  Activity
		url  string
		ok   bool
	}{
		{"no assets", Activity{}, "", false},
		{"media proxy", Activity{Assets: &Assets{LargeImage: "mp:external/abc/https/x.png"}}, "external/abc/https/x.png", true},
		{"spotify", Activity{Assets: &Assets{LargeImage: "spotify:ab67616d0000b273"}}, "https://i.scdn.co/image/ab67616d0000b273", true},
		{"application asset", Activity{ApplicationID: "383226320970055681", Assets: &Assets{LargeImage: "565944799181570048"}}, "https://cdn.discordapp.com/app-assets/383226320970055681/565944799181570048.png", true},
		{"absolute", Activity{Assets: &Assets{LargeImage: "https://example.com/a.png"}}, "https://example.com/a.png", true},
		{"unresolvable", Activity{Assets: &Assets{LargeImage: "abc"}}, "", false},
	}

	for _, c := range cases {
		url, ok := ActivityImageURL(c.act)
		testutil.Assert(t, c.ok, ok, c.name)
		testutil.Assert(t, c.url, url, c.name)
	}
}

func TestAvatarURL(t *testing.T) {
	testutil.Assert(t,
		"https://cdn.discordapp.com/avatars/1/abc.png?size=256",
		AvatarURL(DiscordUser{ID: "1", Avatar: "abc"}),
		"custom avatar",
	)

	testutil.Assert(t,
		"https://cdn.discordapp.com/embed/avatars/1.png",
		AvatarURL(DiscordUser{ID: "7"}),
		"default avatar",
	)

	testutil.Assert(t,
		"https://cdn.discordapp.com/embed/avatars/0.png",
		AvatarURL(DiscordUser{ID: "not-a-number"}),
		"unparsable id",
	)
}

func TestRecordDisplayName(t *testing.T) {
	rec := Record{DiscordUser: DiscordUser{Username: "user", DisplayName: "display", GlobalName: "global"}}
	testutil.Assert(t, "global", rec.DisplayName(), "global name first")

	rec.DiscordUser.GlobalName = ""
	testutil.Assert(t, "display", rec.DisplayName(), "display name second")

	rec.DiscordUser.DisplayName = ""
	testutil.Assert(t, "user", rec.DisplayName(), "username last")

	testutil.Assert(t, true, rec.AvatarRef() == nil, "default avatar has no ref")
}
