package rest

import (
	"runtime/debug"

	"github.com/nxyyspace/api/internal/api/rest/rest"
	v1 "github.com/nxyyspace/api/internal/api/rest/v1"
	"github.com/nxyyspace/api/internal/global"
	"github.com/seventv/common/errors"
	"github.com/seventv/common/utils"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

func (s *HttpServer) V1(gctx global.Context) {
	s.traverseRoutes(v1.API(gctx), "")
}

func (s *HttpServer) SetupHandlers() {
	// Handle Not Found
	s.router.NotFound = s.getErrorHandler(
		rest.NotFound,
		errors.ErrUnknownRoute().SetFields(errors.Fields{
			"message": "The API endpoint requested does not exist",
		}),
	)

	s.router.MethodNotAllowed = s.getErrorHandler(
		rest.MethodNotAllowed,
		errors.ErrInvalidRequest().SetFields(errors.Fields{
			"message": "The API endpoint does not accept this method",
		}),
	)

	// Handle P A N I C
	s.router.PanicHandler = func(ctx *fasthttp.RequestCtx, i interface{}) {
		err := "Uh oh. Something went horribly wrong"
		switch x := i.(type) {
		case error:
			err += ": " + x.Error()
		case string:
			err += ": " + x
		}

		zap.S().Errorw("panic occured",
			"panic", i,
			"stack", utils.B2S(debug.Stack()),
		)

		s.getErrorHandler(
			rest.InternalServerError,
			errors.ErrInternalServerError().SetFields(errors.Fields{
				"panic": err,
			}),
		)(ctx)
	}
}

func (s *HttpServer) traverseRoutes(r rest.Route, prefix string) {
	c := r.Config()

	// Compose the full request URI (prefixing with parent, if any)
	path := prefix + c.URI

	handlers := make([]rest.Middleware, len(c.Middleware)+1)
	copy(handlers, c.Middleware)
	handlers[len(handlers)-1] = r.Handler

	// Handle requests
	s.router.Handle(string(c.Method), path, func(ctx *fasthttp.RequestCtx) {
		rctx := &rest.Ctx{RequestCtx: ctx}

		for _, h := range handlers {
			if err := h(rctx); err != nil {
				// If the request handler returned an error
				// we will format it into standard API error response
				if ctx.Response.StatusCode() < 400 {
					rctx.SetStatusCode(rest.HttpStatusCode(err.ExpectedHTTPStatus()))
				}

				_ = rctx.JSON(rctx.StatusCode(), &rest.APIErrorResponse{
					Status:     rctx.StatusCode().String(),
					StatusCode: rctx.StatusCode(),
					Error:      err.Message(),
					ErrorCode:  err.Code(),
					Details:    err.GetFields(),
				})

				return
			}
		}
	})

	zap.S().Debugw("route registered",
		"path", path,
		"method", c.Method,
	)

	// activate child routes
	for _, child := range c.Children {
		s.traverseRoutes(child, path)
	}
}

func (s *HttpServer) getErrorHandler(status rest.HttpStatusCode, err rest.APIError) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		rctx := &rest.Ctx{RequestCtx: ctx}

		_ = rctx.JSON(status, &rest.APIErrorResponse{
			Status:     status.String(),
			StatusCode: status,
			Error:      err.Message(),
			ErrorCode:  err.Code(),
			Details:    err.GetFields(),
		})
	}
}
