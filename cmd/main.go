package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/bugsnag/panicwrap"
	"github.com/nxyyspace/api/internal/api/rest"
	"github.com/nxyyspace/api/internal/configure"
	"github.com/nxyyspace/api/internal/global"
	"github.com/nxyyspace/api/internal/health"
	"github.com/nxyyspace/api/internal/monitoring"
	"github.com/nxyyspace/api/internal/pprof"
	"github.com/nxyyspace/api/internal/svc/palette"
	"github.com/nxyyspace/api/internal/svc/presence"
	"github.com/nxyyspace/api/internal/svc/prometheus"
	"github.com/nxyyspace/api/internal/svc/upstream"
	"go.uber.org/zap"
)

var (
	Version = "development"
	Unix    = ""
	Time    = "unknown"
	User    = "unknown"
)

func init() {
	if i, err := strconv.Atoi(Unix); err == nil {
		Time = time.Unix(int64(i), 0).Format(time.RFC3339)
	}
}

func main() {
	config := configure.New()

	exitStatus, err := panicwrap.BasicWrap(func(s string) {
		zap.S().Errorw("panic detected",
			"panic", s,
		)
	})
	if err != nil {
		zap.S().Errorw("failed to setup panic handler",
			"error", err,
		)
		os.Exit(2)
	}

	if exitStatus >= 0 {
		os.Exit(exitStatus)
	}

	if !config.NoHeader {
		zap.S().Info("nxyy.space API")
		zap.S().Infof("Version: %s", Version)
		zap.S().Infof("build.Time: %s", Time)
		zap.S().Infof("build.User: %s", User)
	}

	zap.S().Debugf("MaxProcs: %d", runtime.GOMAXPROCS(0))

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	gCtx, cancel := global.WithCancel(global.New(context.Background(), config))

	{
		gCtx.Inst().Prometheus = prometheus.New(prometheus.Options{
			Labels: config.Monitoring.Labels.ToPrometheus(),
		})
	}

	{
		gCtx.Inst().Presence = presence.New(presence.Options{
			GatewayURL:     config.Presence.GatewayURL,
			RestURL:        config.Presence.RestURL,
			ReconnectDelay: config.ReconnectDelay(),
			WriteTimeout:   config.PresenceWriteTimeout(),
			FetchTimeout:   config.PresenceFetchTimeout(),
			ListenerBuffer: config.Presence.EventBuffer,
			Dialer: presence.WebsocketDialer{
				Header: http.Header{"User-Agent": []string{config.UserAgent}},
			},
			Metrics: gCtx.Inst().Prometheus,
		})
	}

	{
		fallback := palette.RGB(config.Palette.FallbackColor)

		gCtx.Inst().Palette, err = palette.New(palette.Options{
			CacheSize: config.Palette.CacheSize,
			MaxColors: config.Palette.MaxColors,
			Fallback:  &fallback,
			Loader: palette.NewHTTPLoader(palette.HTTPLoaderOptions{
				UserAgent:    config.UserAgent,
				Timeout:      config.PaletteFetchTimeout(),
				MaxBytes:     config.Palette.MaxImageBytes,
				AllowedHosts: config.Palette.AllowedHosts,
			}),
			Quantizer: palette.MedianCut{Quality: config.Palette.Quality},
			Metrics:   gCtx.Inst().Prometheus,
		})
		if err != nil {
			zap.S().Fatalw("failed to setup palette engine",
				"error", err,
			)
		}
	}

	{
		ups := make([]upstream.Upstream, len(config.Upstreams))
		for i, u := range config.Upstreams {
			ups[i] = upstream.Upstream{
				Name:         u.Name,
				URL:          u.URL,
				ErrorMessage: u.ErrorMessage,
				CacheTTL:     time.Duration(u.CacheTTLSeconds) * time.Second,
				StatusFormat: u.StatusFormat,
			}
		}

		gCtx.Inst().Upstreams = upstream.New(upstream.Options{
			Upstreams: ups,
			UserAgent: config.UserAgent,
			Metrics:   gCtx.Inst().Prometheus,
		})
	}

	if config.Presence.Enabled {
		gCtx.Inst().Presence.Subscribe(config.Presence.UserIDs)

		go func() {
			lCtx, lCancel := global.WithTimeout(gCtx, time.Second*30)
			defer lCancel()

			found := gCtx.Inst().Presence.FetchAll(lCtx, config.Presence.UserIDs)

			zap.S().Infow("initial presences fetched",
				"requested", len(config.Presence.UserIDs),
				"found", len(found),
			)
		}()
	}

	wg := sync.WaitGroup{}

	if config.Health.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-health.New(gCtx)
		}()
	}

	if config.Monitoring.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-monitoring.New(gCtx)
		}()
	}

	if config.PProf.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-pprof.New(gCtx)
		}()
	}

	done := make(chan struct{})
	go func() {
		<-sig
		cancel()
		go func() {
			select {
			case <-time.After(time.Minute):
			case <-sig:
			}
			zap.S().Fatal("force shutdown")
		}()

		zap.S().Info("shutting down")

		if err := gCtx.Inst().Presence.Close(); err != nil {
			zap.S().Errorw("failed to close presence client",
				"error", err,
			)
		}

		gCtx.Inst().Palette.Purge()

		wg.Wait()

		close(done)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := rest.New(gCtx); err != nil {
			zap.S().Fatalw("rest failed",
				"error", err,
			)
		}
	}()

	zap.S().Info("running")

	<-done

	zap.S().Info("shutdown")
	os.Exit(0)
}
