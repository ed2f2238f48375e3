package presence

import (
	"github.com/nxyyspace/api/internal/api/rest/rest"
	"github.com/nxyyspace/api/internal/global"
	"github.com/nxyyspace/api/internal/svc/palette"
	"github.com/seventv/common/errors"
)

type userThemeRoute struct {
	Ctx global.Context
}

func newUserTheme(gctx global.Context) rest.Route {
	return &userThemeRoute{gctx}
}

func (r *userThemeRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/{user.id}/theme",
		Method: rest.GET,
	}
}

// Handler colors the user's presence card, ?theme=light|dark (default dark)
func (r *userThemeRoute) Handler(ctx *rest.Ctx) rest.APIError {
	userID, err := ctx.UserValue("user.id").Snowflake()
	if err != nil {
		ctx.SetStatusCode(rest.BadRequest)
		return err
	}

	dark, err := ParseTheme(ctx.Query("theme"))
	if err != nil {
		ctx.SetStatusCode(rest.BadRequest)
		return err
	}

	rec, ok := lookup(r.Ctx, userID)
	if !ok {
		ctx.SetStatusCode(rest.NotFound)
		return errors.ErrUnknownUser()
	}

	return ctx.JSON(rest.OK, palette.Theme(r.Ctx, r.Ctx.Inst().Palette, rec, dark))
}

// ParseTheme reports whether the requested theme is the dark one
func ParseTheme(s string) (bool, rest.APIError) {
	switch s {
	case "", "dark":
		return true, nil
	case "light":
		return false, nil
	}

	return false, errors.ErrInvalidRequest().SetDetail("theme must be light or dark")
}
