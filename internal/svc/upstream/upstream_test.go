package upstream

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nxyyspace/api/internal/testutil"
	"github.com/stretchr/testify/require"
)

type resultMetrics struct {
	mx      sync.Mutex
	results map[string]int
}

func (m *resultMetrics) UpstreamRequest(name string, result string) {
	m.mx.Lock()
	defer m.mx.Unlock()

	if m.results == nil {
		m.results = map[string]int{}
	}

	m.results[name+":"+result]++
}

func newUpstreamServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	hits := &atomic.Int32{}

	mux := http.NewServeMux()
	mux.HandleFunc("/stats", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)

		if r.Header.Get("Accept") != "application/json" || r.Header.Get("User-Agent") != "test agent" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		_, _ = w.Write([]byte(`{"users":12,"uptime":"3d"}`))
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/html", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, hits
}

func TestFetch(t *testing.T) {
	srv, hits := newUpstreamServer(t)
	m := &resultMetrics{}

	inst := New(Options{
		UserAgent: "test agent",
		Timeout:   5 * time.Second,
		Metrics:   m,
		Upstreams: []Upstream{
			{Name: "stats", URL: srv.URL + "/stats", CacheTTL: time.Minute},
			{Name: "down", URL: srv.URL + "/down"},
			{Name: "html", URL: srv.URL + "/html"},
		},
	})

	b, err := inst.Fetch(context.Background(), "stats")
	require.NoError(t, err)
	require.JSONEq(t, `{"users":12,"uptime":"3d"}`, string(b))

	b, err = inst.Fetch(context.Background(), "stats")
	require.NoError(t, err)
	require.JSONEq(t, `{"users":12,"uptime":"3d"}`, string(b))

	testutil.Assert(t, int32(1), hits.Load(), "second request served from cache")
	testutil.Assert(t, 1, m.results["stats:ok"], "ok requests")
	testutil.Assert(t, 1, m.results["stats:cached"], "cached requests")

	_, err = inst.Fetch(context.Background(), "down")
	testutil.AssertErr(t, errors.New("HTTP error! status: 503"), err, "default status format")

	_, err = inst.Fetch(context.Background(), "html")
	require.Error(t, err)

	_, err = inst.Fetch(context.Background(), "nope")
	require.True(t, errors.Is(err, ErrUnknownUpstream))

	testutil.Assert(t, 2, m.results["down:error"]+m.results["html:error"], "errors counted")
}

func TestStatusFormat(t *testing.T) {
	srv, _ := newUpstreamServer(t)

	inst := New(Options{
		Upstreams: []Upstream{
			{Name: "egirls", URL: srv.URL + "/down", StatusFormat: "Failed to fetch: {text}"},
			{Name: "warm", URL: srv.URL + "/down", StatusFormat: "status {code} ({text})"},
		},
	})

	_, err := inst.Fetch(context.Background(), "egirls")
	testutil.AssertErr(t, errors.New("Failed to fetch: Service Unavailable"), err, "status text")

	_, err = inst.Fetch(context.Background(), "warm")
	testutil.AssertErr(t, errors.New("status 503 (Service Unavailable)"), err, "code and text")

	testutil.AssertErr(t, errors.New("HTTP error! status: 404"), Upstream{}.StatusError(404), "empty format")
}

func TestFetchWithoutCache(t *testing.T) {
	srv, hits := newUpstreamServer(t)

	inst := New(Options{
		UserAgent: "test agent",
		Upstreams: []Upstream{{Name: "stats", URL: srv.URL + "/stats"}},
	})

	for i := 0; i < 3; i++ {
		_, err := inst.Fetch(context.Background(), "stats")
		require.NoError(t, err)
	}

	testutil.Assert(t, int32(3), hits.Load(), "zero ttl disables caching")
}

func TestLookup(t *testing.T) {
	inst := New(Options{
		Upstreams: []Upstream{
			{Name: "warm", ErrorMessage: "Failed to fetch warm.lat stats"},
			{Name: "egirls", ErrorMessage: "Failed to fetch e-girls.host stats"},
		},
	})

	require.Equal(t, []string{"egirls", "warm"}, inst.Names())

	u, ok := inst.Lookup("warm")
	testutil.Assert(t, true, ok, "known upstream")
	testutil.Assert(t, "Failed to fetch warm.lat stats", u.ErrorMessage, "error message")

	_, ok = inst.Lookup("other")
	testutil.Assert(t, false, ok, "unknown upstream")
}
