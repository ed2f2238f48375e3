package pprof

import (
	"net/http"
	"net/http/pprof"

	"github.com/nxyyspace/api/internal/global"
	"go.uber.org/zap"
)

func New(gCtx global.Context) <-chan struct{} {
	done := make(chan struct{})

	srv := &http.Server{
		Addr:    gCtx.Config().PProf.Bind,
		Handler: Mux(),
	}

	go func() {
		defer close(done)
		zap.S().Infow("pprof enabled",
			"bind", srv.Addr,
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zap.S().Fatalw("pprof failed to listen",
				"error", err,
			)
		}
	}()

	go func() {
		<-gCtx.Done()
		_ = srv.Close()
	}()

	return done
}

// Mux serves the profiling endpoints without touching http.DefaultServeMux
func Mux() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return mux
}
