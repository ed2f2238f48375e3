package presence

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	SpotifyActivityName = "Spotify"

	discordCDN = "https://cdn.discordapp.com"
	spotifyCDN = "https://i.scdn.co/image"
)

type ActivityText struct {
	Primary   string `json:"primary"`
	Secondary string `json:"secondary"`
}

// SelectActivity picks the activity to display: Spotify when present,
// otherwise the one with the lexicographically smallest name.
func SelectActivity(activities []Activity) (Activity, bool) {
	if len(activities) == 0 {
		return Activity{}, false
	}

	best := activities[0]

	for _, a := range activities {
		if a.Name == SpotifyActivityName {
			return a, true
		}

		if a.Name < best.Name {
			best = a
		}
	}

	return best, true
}

func FormatActivity(a Activity) ActivityText {
	if a.Name == SpotifyActivityName {
		song := "Unknown Song"

		switch {
		case a.Assets != nil && a.Assets.LargeText != "":
			song = a.Assets.LargeText
		case a.Details != "":
			song = a.Details
		}

		artist := a.State
		if artist == "" {
			artist = "Unknown Artist"
		}

		return ActivityText{
			Primary:   song,
			Secondary: strings.ReplaceAll(artist, ";", ","),
		}
	}

	secondary := a.Details
	if secondary == "" {
		secondary = a.State
	}

	return ActivityText{
		Primary:   a.Name,
		Secondary: secondary,
	}
}

// ActivityImageURL resolves the large art asset of an activity into a URL
func ActivityImageURL(a Activity) (string, bool) {
	if a.Assets == nil || a.Assets.LargeImage == "" {
		return "", false
	}

	img := a.Assets.LargeImage

	switch {
	case strings.HasPrefix(img, "mp:"):
		return strings.Replace(img, "mp:", "", 1), true
	case strings.HasPrefix(img, "spotify:"):
		return fmt.Sprintf("%s/%s", spotifyCDN, strings.Split(img, ":")[1]), true
	case a.ApplicationID != "":
		return fmt.Sprintf("%s/app-assets/%s/%s.png", discordCDN, a.ApplicationID, img), true
	case strings.HasPrefix(img, "http"):
		return img, true
	}

	return "", false
}

func AvatarURL(u DiscordUser) string {
	if u.Avatar != "" {
		return fmt.Sprintf("%s/avatars/%s/%s.png?size=256", discordCDN, u.ID, u.Avatar)
	}

	// default avatars are picked by id, ids that don't parse fall back to the first one
	n, _ := strconv.ParseUint(u.ID, 10, 64)

	return fmt.Sprintf("%s/embed/avatars/%d.png", discordCDN, n%6)
}

func AvatarDecorationURL(asset string) string {
	return fmt.Sprintf("%s/avatar-decoration-presets/%s.png?size=96", discordCDN, asset)
}

func GuildBadgeURL(guildID, badge string) string {
	return fmt.Sprintf("%s/guild-tag-badges/%s/%s.webp", discordCDN, guildID, badge)
}

func ProfileURL(id string) string {
	return fmt.Sprintf("https://discord.com/users/%s", id)
}
