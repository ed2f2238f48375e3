package status

import (
	"fmt"

	"github.com/nxyyspace/api/internal/api/rest/middleware"
	"github.com/nxyyspace/api/internal/api/rest/rest"
	"github.com/nxyyspace/api/internal/global"
	"github.com/seventv/common/errors"
)

type upstreamRoute struct {
	Ctx global.Context
}

func newUpstream(gctx global.Context) rest.Route {
	return &upstreamRoute{gctx}
}

func (r *upstreamRoute) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/{name}",
		Method: rest.GET,
		Middleware: []rest.Middleware{
			middleware.SetCacheControl(30, []string{"public"}),
		},
	}
}

// Handler forwards the upstream's JSON body as is.
// Upstream failures answer 500 with the configured message and the cause.
func (r *upstreamRoute) Handler(ctx *rest.Ctx) rest.APIError {
	name, _ := ctx.UserValue("name").String()

	up, ok := r.Ctx.Inst().Upstreams.Lookup(name)
	if !ok {
		ctx.SetStatusCode(rest.NotFound)

		return errors.ErrUnknownRoute().SetDetail(fmt.Sprintf("Unknown upstream %s", name))
	}

	b, err := r.Ctx.Inst().Upstreams.Fetch(r.Ctx, up.Name)
	if err != nil {
		ctx.Response.Header.Set("Cache-Control", "no-store")

		return ctx.JSON(rest.InternalServerError, ErrorResponse{
			Error:   up.ErrorMessage,
			Details: err.Error(),
		})
	}

	return ctx.Raw(rest.OK, b)
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}
