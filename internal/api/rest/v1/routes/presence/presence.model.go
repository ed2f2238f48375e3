package presence

import (
	"github.com/nxyyspace/api/internal/svc/presence"
)

type PresenceModel struct {
	ID                  string          `json:"id"`
	DisplayName         string          `json:"display_name"`
	AvatarURL           string          `json:"avatar_url"`
	AvatarDecorationURL *string         `json:"avatar_decoration_url"`
	GuildTag            *GuildTagModel  `json:"guild_tag"`
	ProfileURL          string          `json:"profile_url"`
	Status              presence.Status `json:"status"`
	Activity            *ActivityModel  `json:"activity"`
	Record              presence.Record `json:"record"`
}

type ActivityModel struct {
	Name     string                `json:"name"`
	Text     presence.ActivityText `json:"text"`
	ImageURL *string               `json:"image_url"`
}

type GuildTagModel struct {
	Tag      string  `json:"tag"`
	BadgeURL *string `json:"badge_url"`
}

func NewPresenceModel(rec presence.Record) PresenceModel {
	m := PresenceModel{
		ID:          rec.UserID(),
		DisplayName: rec.DisplayName(),
		AvatarURL:   presence.AvatarURL(rec.DiscordUser),
		ProfileURL:  presence.ProfileURL(rec.UserID()),
		Status:      presence.StatusOffline,
		Record:      rec,
	}

	if rec.DiscordStatus.Valid() {
		m.Status = rec.DiscordStatus
	}

	if d := rec.DiscordUser.AvatarDecorationData; d != nil && d.Asset != "" {
		u := presence.AvatarDecorationURL(d.Asset)
		m.AvatarDecorationURL = &u
	}

	if g := rec.DiscordUser.PrimaryGuild; g != nil && g.IdentityEnabled && g.Tag != nil {
		m.GuildTag = &GuildTagModel{Tag: *g.Tag}

		if g.Badge != nil && g.IdentityGuildID != "" {
			u := presence.GuildBadgeURL(g.IdentityGuildID, *g.Badge)
			m.GuildTag.BadgeURL = &u
		}
	}

	if act, ok := presence.SelectActivity(rec.Activities); ok {
		m.Activity = &ActivityModel{
			Name: act.Name,
			Text: presence.FormatActivity(act),
		}

		if u, ok := presence.ActivityImageURL(act); ok {
			m.Activity.ImageURL = &u
		}
	}

	return m
}
