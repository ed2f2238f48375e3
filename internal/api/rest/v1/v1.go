package v1

import (
	"github.com/nxyyspace/api/internal/api/rest/rest"
	"github.com/nxyyspace/api/internal/api/rest/v1/routes"
	"github.com/nxyyspace/api/internal/global"
)

func API(gctx global.Context) rest.Route {
	return routes.New(gctx)
}
