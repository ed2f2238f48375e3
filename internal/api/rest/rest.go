package rest

import (
	"fmt"
	"net"
	"time"

	"github.com/fasthttp/router"
	"github.com/nxyyspace/api/internal/api/rest/middleware"
	"github.com/nxyyspace/api/internal/api/rest/rest"
	"github.com/nxyyspace/api/internal/global"
	"github.com/seventv/common/utils"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

type HttpServer struct {
	router *router.Router
}

func New(gctx global.Context) error {
	port := gctx.Config().Http.Ports.REST
	if port == 0 {
		port = 80
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", gctx.Config().Http.Addr, port))
	if err != nil {
		return err
	}

	srv := &fasthttp.Server{
		Handler:                      Handler(gctx),
		ReadTimeout:                  time.Second * 30,
		IdleTimeout:                  time.Second * 10,
		ReadBufferSize:               int(32 * 1024), // 32KB
		MaxRequestBodySize:           int(64 * 1024), // 64KB
		DisablePreParseMultipartForm: true,
		CloseOnShutdown:              true,
	}

	zap.S().Infow("rest api listening",
		"addr", listener.Addr().String(),
	)

	// Gracefully exit when the global context is canceled
	go func() {
		<-gctx.Done()

		_ = srv.Shutdown()
	}()

	return srv.Serve(listener)
}

// Handler builds the request handler serving every API version
func Handler(gctx global.Context) fasthttp.RequestHandler {
	s := HttpServer{
		router: router.New(),
	}

	s.SetupHandlers()
	s.V1(gctx)

	doCORS := middleware.CORS(gctx)

	return func(ctx *fasthttp.RequestCtx) {
		start := time.Now()

		defer func() {
			if err := recover(); err != nil {
				zap.S().Errorw("panic in rest request handler",
					"panic", err,
					"status", ctx.Response.StatusCode(),
					"duration", int(time.Since(start)/time.Millisecond),
					"method", utils.B2S(ctx.Method()),
					"path", utils.B2S(ctx.Path()),
					"ip", (&rest.Ctx{RequestCtx: ctx}).ClientIP(),
					"origin", utils.B2S(ctx.Request.Header.Peek("Origin")),
				)

				ctx.ResetBody()
				ctx.SetStatusCode(fasthttp.StatusInternalServerError)
			} else {
				mills := time.Since(start) / time.Millisecond
				status := ctx.Response.StatusCode()

				logFn := zap.S().Debugw
				if mills >= 500 {
					logFn = zap.S().Infow
				}
				if status >= 500 {
					logFn = zap.S().Errorw
				}

				logFn("rest request",
					"status", status,
					"duration", int(mills),
					"method", utils.B2S(ctx.Method()),
					"path", utils.B2S(ctx.Path()),
					"ip", (&rest.Ctx{RequestCtx: ctx}).ClientIP(),
					"origin", utils.B2S(ctx.Request.Header.Peek("Origin")),
				)
			}

			if m := gctx.Inst().Prometheus; m != nil {
				m.ResponseTime(utils.B2S(ctx.Method()), ctx.Response.StatusCode(), time.Since(start))
			}
		}()

		ctx.Response.Header.Set("X-Node-Name", gctx.Config().K8S.NodeName)
		ctx.Response.Header.Set("X-Pod-Name", gctx.Config().K8S.PodName)

		if err := doCORS(ctx); err != nil {
			return
		}

		if ctx.IsOptions() {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}

		// Routing
		ctx.Response.Header.Set("Content-Type", "application/json") // default to JSON

		s.router.Handler(ctx)
	}
}
