package status

import (
	"github.com/nxyyspace/api/internal/api/rest/middleware"
	"github.com/nxyyspace/api/internal/api/rest/rest"
	"github.com/nxyyspace/api/internal/global"
)

type Route struct {
	Ctx global.Context
}

func New(gCtx global.Context) rest.Route {
	return &Route{gCtx}
}

func (r *Route) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/status",
		Method: rest.GET,
		Children: []rest.Route{
			newUpstream(r.Ctx),
		},
		Middleware: []rest.Middleware{
			middleware.SetCacheControl(300, []string{"public"}),
		},
	}
}

// Handler lists the upstreams that can be proxied
func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	return ctx.JSON(rest.OK, ListResponse{
		Upstreams: r.Ctx.Inst().Upstreams.Names(),
	})
}

type ListResponse struct {
	Upstreams []string `json:"upstreams"`
}
