package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Options struct {
	Labels prometheus.Labels
}

// Instance exposes the service's collectors and satisfies the metrics
// interfaces of the presence, palette and upstream services.
type Instance interface {
	Register(r prometheus.Registerer)

	GatewayStateChanged(state string)
	GatewayConnected()
	GatewayDisconnected()
	GatewayReconnectScheduled()
	GatewayMessage(op string)
	GatewayMalformedMessage()
	PresenceUpdated()
	PresenceFetched(ok bool)

	CacheHit()
	CacheMiss()
	ExtractionFailed()
	ExtractionDuration(d time.Duration)

	UpstreamRequest(name string, result string)

	ResponseTime(method string, status int, d time.Duration)
}

var gatewayStates = []string{"disconnected", "connecting", "connected"}

type mon struct {
	gatewayState      *prometheus.GaugeVec
	gatewayConnects   prometheus.Counter
	gatewayDisconnect prometheus.Counter
	gatewayReconnects prometheus.Counter
	gatewayMessages   *prometheus.CounterVec
	gatewayMalformed  prometheus.Counter
	presenceUpdates   prometheus.Counter
	presenceFetches   *prometheus.CounterVec

	paletteCache    *prometheus.CounterVec
	paletteFailures prometheus.Counter
	paletteDuration prometheus.Histogram

	upstreamRequests *prometheus.CounterVec

	responseTime *prometheus.HistogramVec
}

func New(o Options) Instance {
	return &mon{
		gatewayState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "api_presence_gateway_state",
			Help:        "Current state of the presence gateway session, 1 for the active state",
			ConstLabels: o.Labels,
		}, []string{"state"}),
		gatewayConnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "api_presence_gateway_connects_total",
			Help:        "The total number of established gateway sessions",
			ConstLabels: o.Labels,
		}),
		gatewayDisconnect: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "api_presence_gateway_disconnects_total",
			Help:        "The total number of lost or closed gateway sessions",
			ConstLabels: o.Labels,
		}),
		gatewayReconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "api_presence_gateway_reconnects_total",
			Help:        "The total number of scheduled gateway reconnects",
			ConstLabels: o.Labels,
		}),
		gatewayMessages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "api_presence_gateway_messages_total",
			Help:        "The total number of gateway messages received, by op",
			ConstLabels: o.Labels,
		}, []string{"op"}),
		gatewayMalformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "api_presence_gateway_malformed_messages_total",
			Help:        "The total number of gateway messages that could not be decoded",
			ConstLabels: o.Labels,
		}),
		presenceUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "api_presence_updates_total",
			Help:        "The total number of presence records applied from the gateway",
			ConstLabels: o.Labels,
		}),
		presenceFetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "api_presence_fetches_total",
			Help:        "The total number of one-shot presence fetches, by result",
			ConstLabels: o.Labels,
		}, []string{"result"}),
		paletteCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "api_palette_cache_requests_total",
			Help:        "The total number of palette cache lookups, by result",
			ConstLabels: o.Labels,
		}, []string{"result"}),
		paletteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "api_palette_extraction_failures_total",
			Help:        "The total number of extractions that fell back to the default palette",
			ConstLabels: o.Labels,
		}),
		paletteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "api_palette_extraction_seconds",
			Help:        "Time spent loading and quantizing images",
			ConstLabels: o.Labels,
			Buckets:     prometheus.ExponentialBuckets(0.01, 2, 10),
		}),
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "api_upstream_requests_total",
			Help:        "The total number of status proxy requests, by upstream and result",
			ConstLabels: o.Labels,
		}, []string{"upstream", "result"}),
		responseTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "api_rest_response_seconds",
			Help:        "REST response time, by method and status",
			ConstLabels: o.Labels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
}

func (m *mon) Register(r prometheus.Registerer) {
	r.MustRegister(
		m.gatewayState,
		m.gatewayConnects,
		m.gatewayDisconnect,
		m.gatewayReconnects,
		m.gatewayMessages,
		m.gatewayMalformed,
		m.presenceUpdates,
		m.presenceFetches,
		m.paletteCache,
		m.paletteFailures,
		m.paletteDuration,
		m.upstreamRequests,
		m.responseTime,
	)
}

func (m *mon) GatewayStateChanged(state string) {
	for _, s := range gatewayStates {
		v := 0.0
		if s == state {
			v = 1
		}

		m.gatewayState.WithLabelValues(s).Set(v)
	}
}

func (m *mon) GatewayConnected() {
	m.gatewayConnects.Inc()
}

func (m *mon) GatewayDisconnected() {
	m.gatewayDisconnect.Inc()
}

func (m *mon) GatewayReconnectScheduled() {
	m.gatewayReconnects.Inc()
}

func (m *mon) GatewayMessage(op string) {
	m.gatewayMessages.WithLabelValues(op).Inc()
}

func (m *mon) GatewayMalformedMessage() {
	m.gatewayMalformed.Inc()
}

func (m *mon) PresenceUpdated() {
	m.presenceUpdates.Inc()
}

func (m *mon) PresenceFetched(ok bool) {
	m.presenceFetches.WithLabelValues(result(ok)).Inc()
}

func (m *mon) CacheHit() {
	m.paletteCache.WithLabelValues("hit").Inc()
}

func (m *mon) CacheMiss() {
	m.paletteCache.WithLabelValues("miss").Inc()
}

func (m *mon) ExtractionFailed() {
	m.paletteFailures.Inc()
}

func (m *mon) ExtractionDuration(d time.Duration) {
	m.paletteDuration.Observe(d.Seconds())
}

func (m *mon) UpstreamRequest(name string, res string) {
	m.upstreamRequests.WithLabelValues(name, res).Inc()
}

func (m *mon) ResponseTime(method string, status int, d time.Duration) {
	m.responseTime.WithLabelValues(method, statusClass(status)).Observe(d.Seconds())
}

func result(ok bool) string {
	if ok {
		return "ok"
	}

	return "error"
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	}

	return "2xx"
}
