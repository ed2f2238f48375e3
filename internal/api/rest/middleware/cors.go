package middleware

import (
	"github.com/nxyyspace/api/internal/global"
	"github.com/seventv/common/errors"
	"github.com/seventv/common/utils"
	"github.com/valyala/fasthttp"
)

// CORS reflects whitelisted origins. An empty whitelist allows any origin
func CORS(gctx global.Context) func(ctx *fasthttp.RequestCtx) errors.APIError {
	whitelist := gctx.Config().Http.CorsWhitelist

	return func(ctx *fasthttp.RequestCtx) errors.APIError {
		origin := utils.B2S(ctx.Request.Header.Peek("Origin"))

		ctx.Response.Header.Set("Vary", "Origin")

		if origin == "" {
			return nil
		}

		if len(whitelist) > 0 && !utils.Contains(whitelist, origin) {
			return nil
		}

		ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
		ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding")
		ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET,HEAD,OPTIONS")

		// cache cors
		ctx.Response.Header.Set("Access-Control-Max-Age", "7200")

		return nil
	}
}
