package palette

import (
	"fmt"
	"net/url"

	"github.com/nxyyspace/api/internal/api/rest/middleware"
	"github.com/nxyyspace/api/internal/api/rest/rest"
	"github.com/nxyyspace/api/internal/global"
	"github.com/nxyyspace/api/internal/svc/palette"
	"github.com/seventv/common/errors"
)

const defaultLabel = "project"

type Route struct {
	Ctx global.Context
}

func New(gCtx global.Context) rest.Route {
	return &Route{gCtx}
}

func (r *Route) Config() rest.RouteConfig {
	return rest.RouteConfig{
		URI:    "/palette",
		Method: rest.GET,
		Middleware: []rest.Middleware{
			middleware.SetCacheControl(3600, []string{"public"}),
		},
	}
}

// Handler extracts the palette of ?src, cached under ?label
func (r *Route) Handler(ctx *rest.Ctx) rest.APIError {
	src := ctx.Query("src")
	if src == "" {
		ctx.SetStatusCode(rest.BadRequest)
		return errors.ErrInvalidRequest().SetDetail("src is required")
	}

	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		ctx.SetStatusCode(rest.BadRequest)
		return errors.ErrInvalidRequest().SetDetail("src must be an absolute http(s) url")
	}

	if !palette.HostAllowed(r.Ctx.Config().Palette.AllowedHosts, u.Hostname()) {
		ctx.Log().Infow("palette source host rejected", "host", u.Hostname())

		ctx.SetStatusCode(rest.BadRequest)
		return errors.ErrInvalidRequest().SetDetail(fmt.Sprintf("images from %s are not allowed", u.Hostname()))
	}

	label := ctx.Query("label")
	if label == "" {
		label = defaultLabel
	}

	res := r.Ctx.Inst().Palette.Extract(r.Ctx, src, label)

	return ctx.JSON(rest.OK, PaletteModel{
		Label:   label,
		Source:  src,
		Palette: res,
		Dark:    palette.NewProjectTheme(res, true),
		Light:   palette.NewProjectTheme(res, false),
	})
}

type PaletteModel struct {
	Label   string               `json:"label"`
	Source  string               `json:"source"`
	Palette palette.Result       `json:"palette"`
	Dark    palette.ProjectTheme `json:"dark"`
	Light   palette.ProjectTheme `json:"light"`
}
