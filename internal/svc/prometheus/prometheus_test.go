package prometheus

import (
	"testing"
	"time"

	"github.com/nxyyspace/api/internal/svc/palette"
	"github.com/nxyyspace/api/internal/svc/presence"
	"github.com/nxyyspace/api/internal/svc/upstream"
	"github.com/nxyyspace/api/internal/testutil"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
)

var (
	_ presence.Metrics = (Instance)(nil)
	_ palette.Metrics  = (Instance)(nil)
	_ upstream.Metrics = (Instance)(nil)
)

func TestCollectors(t *testing.T) {
	inst := New(Options{Labels: prometheus.Labels{"pod": "test"}})
	m := inst.(*mon)

	reg := prometheus.NewRegistry()
	inst.Register(reg)

	inst.GatewayStateChanged("connected")
	inst.GatewayConnected()
	inst.GatewayMessage("HELLO")
	inst.GatewayMessage("EVENT")
	inst.GatewayMessage("EVENT")
	inst.PresenceFetched(true)
	inst.PresenceFetched(false)
	inst.CacheHit()
	inst.CacheMiss()
	inst.CacheMiss()
	inst.ExtractionDuration(50 * time.Millisecond)
	inst.UpstreamRequest("warm", "ok")
	inst.ResponseTime("GET", 404, time.Millisecond)

	testutil.Assert(t, 1.0, promtestutil.ToFloat64(m.gatewayState.WithLabelValues("connected")), "active state")
	testutil.Assert(t, 0.0, promtestutil.ToFloat64(m.gatewayState.WithLabelValues("connecting")), "inactive state")
	testutil.Assert(t, 1.0, promtestutil.ToFloat64(m.gatewayConnects), "connects")
	testutil.Assert(t, 2.0, promtestutil.ToFloat64(m.gatewayMessages.WithLabelValues("EVENT")), "event messages")
	testutil.Assert(t, 1.0, promtestutil.ToFloat64(m.presenceFetches.WithLabelValues("error")), "failed fetches")
	testutil.Assert(t, 2.0, promtestutil.ToFloat64(m.paletteCache.WithLabelValues("miss")), "cache misses")
	testutil.Assert(t, 1.0, promtestutil.ToFloat64(m.upstreamRequests.WithLabelValues("warm", "ok")), "upstream requests")

	n, err := reg.Gather()
	testutil.IsNil(t, err, "gather")
	testutil.Assert(t, true, len(n) > 0, "metric families registered")
}
