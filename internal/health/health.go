package health

import (
	"github.com/nxyyspace/api/internal/global"
	"github.com/nxyyspace/api/internal/svc/presence"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

func New(gCtx global.Context) <-chan struct{} {
	done := make(chan struct{})

	srv := fasthttp.Server{
		Handler: Handler(gCtx),
	}

	go func() {
		defer close(done)
		zap.S().Infow("Health enabled",
			"bind", gCtx.Config().Health.Bind,
		)
		if err := srv.ListenAndServe(gCtx.Config().Health.Bind); err != nil {
			zap.S().Fatalw("failed to bind health",
				"error", err,
			)
		}
	}()

	go func() {
		<-gCtx.Done()
		_ = srv.Shutdown()
	}()

	return done
}

// Handler answers 500 while the presence gateway session is down
func Handler(gCtx global.Context) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		defer func() {
			if err := recover(); err != nil {
				zap.S().Errorw("panic in health",
					"panic", err,
				)
			}
		}()

		var presenceDown bool

		if gCtx.Config().Presence.Enabled && gCtx.Inst().Presence != nil {
			if state := gCtx.Inst().Presence.State(); state != presence.StateConnected {
				presenceDown = true
				zap.S().Warnw("presence gateway is not connected",
					"state", state.String(),
				)
			}
		}

		if presenceDown {
			ctx.SetStatusCode(500)
		}
	}
}
