package presence

// Status represents a user's discord status as published by the gateway.
type Status string

const (
	StatusOnline  Status = "online"
	StatusIdle    Status = "idle"
	StatusDND     Status = "dnd"
	StatusOffline Status = "offline"
)

func (s Status) Valid() bool {
	switch s {
	case StatusOnline, StatusIdle, StatusDND, StatusOffline:
		return true
	}

	return false
}

// Record is the last known presence of a tracked user.
//
// A record is always replaced as a whole, fields of an older record never
// carry over into a newer one.
type Record struct {
	DiscordUser        DiscordUser `json:"discord_user"`
	DiscordStatus      Status      `json:"discord_status"`
	ListeningToSpotify bool        `json:"listening_to_spotify"`
	Spotify            *Spotify    `json:"spotify,omitempty"`
	Activities         []Activity  `json:"activities"`
}

type DiscordUser struct {
	ID                   string                `json:"id"`
	Username             string                `json:"username"`
	GlobalName           string                `json:"global_name"`
	DisplayName          string                `json:"display_name"`
	Avatar               string                `json:"avatar"`
	AvatarDecorationData *AvatarDecorationData `json:"avatar_decoration_data"`
	PrimaryGuild         *PrimaryGuild         `json:"primary_guild,omitempty"`
}

type AvatarDecorationData struct {
	Asset string `json:"asset"`
}

type PrimaryGuild struct {
	Tag             *string `json:"tag"`
	IdentityGuildID string  `json:"identity_guild_id"`
	Badge           *string `json:"badge"`
	IdentityEnabled bool    `json:"identity_enabled"`
}

type Spotify struct {
	TrackID     string     `json:"track_id"`
	Timestamps  Timestamps `json:"timestamps"`
	Song        string     `json:"song"`
	Artist      string     `json:"artist"`
	AlbumArtURL string     `json:"album_art_url"`
	Album       string     `json:"album"`
}

type Timestamps struct {
	Start int64 `json:"start,omitempty"`
	End   int64 `json:"end,omitempty"`
}

// Activity is a single "doing X" entry of a user.
type Activity struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Type          int         `json:"type"`
	State         string      `json:"state,omitempty"`
	Details       string      `json:"details,omitempty"`
	Timestamps    *Timestamps `json:"timestamps,omitempty"`
	Assets        *Assets     `json:"assets,omitempty"`
	ApplicationID string      `json:"application_id,omitempty"`
}

type Assets struct {
	LargeImage string `json:"large_image,omitempty"`
	LargeText  string `json:"large_text,omitempty"`
	SmallImage string `json:"small_image,omitempty"`
	SmallText  string `json:"small_text,omitempty"`
}

func (r Record) UserID() string {
	return r.DiscordUser.ID
}

// DisplayName prefers the global name, then the display name, then the username
func (r Record) DisplayName() string {
	switch {
	case r.DiscordUser.GlobalName != "":
		return r.DiscordUser.GlobalName
	case r.DiscordUser.DisplayName != "":
		return r.DiscordUser.DisplayName
	}

	return r.DiscordUser.Username
}

// AvatarRef returns the avatar hash, or nil when the user has the default avatar
func (r Record) AvatarRef() *string {
	if r.DiscordUser.Avatar == "" {
		return nil
	}

	s := r.DiscordUser.Avatar

	return &s
}

// Clone returns a deep copy, so callers never share memory with the store.
func (r Record) Clone() Record {
	out := r

	if r.DiscordUser.AvatarDecorationData != nil {
		d := *r.DiscordUser.AvatarDecorationData
		out.DiscordUser.AvatarDecorationData = &d
	}

	if r.DiscordUser.PrimaryGuild != nil {
		g := *r.DiscordUser.PrimaryGuild
		if g.Tag != nil {
			tag := *g.Tag
			g.Tag = &tag
		}
		if g.Badge != nil {
			badge := *g.Badge
			g.Badge = &badge
		}
		out.DiscordUser.PrimaryGuild = &g
	}

	if r.Spotify != nil {
		s := *r.Spotify
		out.Spotify = &s
	}

	if r.Activities != nil {
		out.Activities = make([]Activity, len(r.Activities))
		for i, a := range r.Activities {
			out.Activities[i] = a.clone()
		}
	}

	return out
}

func (a Activity) clone() Activity {
	out := a

	if a.Timestamps != nil {
		ts := *a.Timestamps
		out.Timestamps = &ts
	}

	if a.Assets != nil {
		as := *a.Assets
		out.Assets = &as
	}

	return out
}
