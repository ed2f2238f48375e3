package presence

import (
	"github.com/nxyyspace/api/internal/api/rest/rest"
	"github.com/nxyyspace/api/internal/global"
	"github.com/seventv/common/errors"
)

type userPresenceRoute struct {
	Ctx global.Context
}

func newUserPresence(gctx global.Context) rest.Route {
	return &userPresenceRoute{gctx}
}

func (r *userPresenceRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/{user.id}",
		Method: rest.GET,
	}
}

func (r *userPresenceRoute) Handler(ctx *rest.Ctx) rest.APIError {
	userID, err := ctx.UserValue("user.id").Snowflake()
	if err != nil {
		ctx.SetStatusCode(rest.BadRequest)
		return err
	}

	rec, ok := lookup(r.Ctx, userID)
	if !ok {
		ctx.SetStatusCode(rest.NotFound)
		return errors.ErrUnknownUser()
	}

	return ctx.JSON(rest.OK, NewPresenceModel(rec))
}
