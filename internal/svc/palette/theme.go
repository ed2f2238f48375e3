package palette

import (
	"context"
	"fmt"

	"github.com/nxyyspace/api/internal/svc/presence"
)

type CardTheme struct {
	Label              string `json:"label"`
	Source             string `json:"source"`
	Background         string `json:"background"`
	Color              string `json:"color"`
	EnhancedBackground string `json:"enhanced_background"`
	Palette            Result `json:"palette"`
}

type ProjectTheme struct {
	Background         string      `json:"background"`
	Color              string      `json:"color"`
	EnhancedBackground string      `json:"enhanced_background"`
	Badge              BadgeColors `json:"badge"`
	ButtonText         string      `json:"button_text"`
}

var projectButtonLight = RGB{20, 20, 20}

// Theme colors a presence card from the album art of the user's Spotify
// activity, or from their avatar otherwise.
func Theme(ctx context.Context, engine Instance, rec presence.Record, dark bool) CardTheme {
	src, label := ThemeSource(rec)

	res := engine.Extract(ctx, src, label)

	t := CardTheme{
		Label:              label,
		Source:             src,
		EnhancedBackground: EnhancedBackground(res, dark),
		Palette:            res,
	}

	if dark {
		t.Background = FormatCSS(res.Light, 1)
		t.Color = fmt.Sprintf("rgba(%d,%d,%d, 0.9)", res.Light[0], res.Light[1], res.Light[2])
	} else {
		t.Background = FormatCSS(res.Dark, 1)
		t.Color = fmt.Sprintf("rgba(%d,%d,%d, 0.95)", res.Contrast[0], res.Contrast[1], res.Contrast[2])
	}

	return t
}

// ThemeSource picks the image and cache label a presence card is themed from
func ThemeSource(rec presence.Record) (src string, label string) {
	src, label = presence.AvatarURL(rec.DiscordUser), rec.UserID()

	act, ok := presence.SelectActivity(rec.Activities)
	if !ok || act.Name != presence.SpotifyActivityName || act.Assets == nil || act.Assets.LargeImage == "" {
		return src, label
	}

	if u, ok := presence.ActivityImageURL(act); ok {
		return u, "spotify-" + rec.UserID()
	}

	return src, label
}

func NewProjectTheme(res Result, dark bool) ProjectTheme {
	t := ProjectTheme{
		Color:              FormatCSS(res.Light, 1),
		EnhancedBackground: EnhancedBackground(res, dark),
		Badge:              Badges(res, dark),
	}

	if dark {
		t.Background = FormatCSS(res.Light, 1)
		t.ButtonText = FormatCSS(res.Contrast, 1)
	} else {
		t.Background = FormatCSS(res.Dark, 1)
		t.ButtonText = FormatCSS(projectButtonLight, 1)
	}

	return t
}
