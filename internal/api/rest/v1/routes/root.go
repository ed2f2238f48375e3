package routes

import (
	"strconv"
	"time"

	"github.com/nxyyspace/api/internal/api/rest/middleware"
	"github.com/nxyyspace/api/internal/api/rest/rest"
	"github.com/nxyyspace/api/internal/api/rest/v1/routes/palette"
	"github.com/nxyyspace/api/internal/api/rest/v1/routes/presence"
	"github.com/nxyyspace/api/internal/api/rest/v1/routes/status"
	"github.com/nxyyspace/api/internal/global"
)

var uptime = time.Now()

type Route struct {
	Ctx global.Context
}

func New(gCtx global.Context) rest.Route {
	return &Route{gCtx}
}

func (r *Route) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/v1" + r.Ctx.Config().Http.VersionSuffix,
		Method: rest.GET,
		Children: []rest.Route{
			status.New(r.Ctx),
			presence.New(r.Ctx),
			palette.New(r.Ctx),
		},
		Middleware: []rest.Middleware{
			middleware.SetCacheControl(30, nil),
		},
	}
}

func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	return ctx.JSON(rest.OK, HealthResponse{
		Online: true,
		Uptime: strconv.Itoa(int(uptime.UnixMilli())),
	})
}

type HealthResponse struct {
	Online bool   `json:"online"`
	Uptime string `json:"uptime"`
}
