package upstream

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"
	"github.com/seventv/common/sync_map"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var ErrUnknownUpstream = errors.New("unknown upstream")

const DefaultTimeout = 10 * time.Second

type Instance interface {
	// Fetch returns the JSON body of the named upstream, from cache while it is fresh
	Fetch(ctx context.Context, name string) ([]byte, error)
	Lookup(name string) (Upstream, bool)
	Names() []string
}

type Upstream struct {
	Name         string
	URL          string
	ErrorMessage string
	// CacheTTL of zero disables caching
	CacheTTL time.Duration
	// StatusFormat builds the error for a non 2xx answer, {code} and {text} are replaced
	// with the status code and its reason phrase
	StatusFormat string
}

const DefaultStatusFormat = "HTTP error! status: {code}"

// StatusError formats a non 2xx answer of the upstream
func (u Upstream) StatusError(code int) error {
	format := u.StatusFormat
	if format == "" {
		format = DefaultStatusFormat
	}

	return errors.New(strings.NewReplacer(
		"{code}", strconv.Itoa(code),
		"{text}", fasthttp.StatusMessage(code),
	).Replace(format))
}

type Metrics interface {
	UpstreamRequest(name string, result string)
}

type Options struct {
	Upstreams []Upstream
	UserAgent string
	Timeout   time.Duration
	Metrics   Metrics
}

type upstreamInst struct {
	client  *fasthttp.Client
	opt     Options
	log     *zap.SugaredLogger
	byName  map[string]Upstream
	c       *cache.Cache
	mx      *sync_map.Map[string, *sync.Mutex]
	metrics Metrics
}

func New(opt Options) Instance {
	if opt.Timeout <= 0 {
		opt.Timeout = DefaultTimeout
	}

	if opt.Metrics == nil {
		opt.Metrics = noopMetrics{}
	}

	byName := make(map[string]Upstream, len(opt.Upstreams))
	for _, u := range opt.Upstreams {
		byName[u.Name] = u
	}

	return &upstreamInst{
		client: &fasthttp.Client{
			Name:         opt.UserAgent,
			ReadTimeout:  opt.Timeout,
			WriteTimeout: opt.Timeout,
		},
		opt:     opt,
		log:     zap.S().Named("upstream"),
		byName:  byName,
		c:       cache.New(time.Minute, time.Minute*5),
		mx:      &sync_map.Map[string, *sync.Mutex]{},
		metrics: opt.Metrics,
	}
}

func (inst *upstreamInst) mtx(name string) *sync.Mutex {
	val, _ := inst.mx.LoadOrStore(name, &sync.Mutex{})
	return val
}

func (inst *upstreamInst) Lookup(name string) (Upstream, bool) {
	u, ok := inst.byName[name]
	return u, ok
}

func (inst *upstreamInst) Names() []string {
	names := make([]string, 0, len(inst.byName))
	for name := range inst.byName {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

func (inst *upstreamInst) Fetch(ctx context.Context, name string) ([]byte, error) {
	up, ok := inst.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownUpstream, name)
	}

	if b, ok := inst.c.Get(name); ok {
		inst.metrics.UpstreamRequest(name, "cached")
		return b.([]byte), nil
	}

	// one request per upstream at a time, later callers read what it cached
	mx := inst.mtx(name)
	mx.Lock()
	defer mx.Unlock()

	if b, ok := inst.c.Get(name); ok {
		inst.metrics.UpstreamRequest(name, "cached")
		return b.([]byte), nil
	}

	b, err := inst.fetch(ctx, up)
	if err != nil {
		inst.metrics.UpstreamRequest(name, "error")
		inst.log.Errorw("upstream request failed",
			"upstream", name,
			"url", up.URL,
			"error", err,
		)

		return nil, err
	}

	inst.metrics.UpstreamRequest(name, "ok")

	if up.CacheTTL > 0 {
		inst.c.Set(name, b, up.CacheTTL)
	}

	return b, nil
}

func (inst *upstreamInst) fetch(ctx context.Context, up Upstream) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := inst.opt.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d < timeout {
			timeout = d
		}
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	req.SetRequestURI(up.URL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	req.Header.SetUserAgent(inst.opt.UserAgent)

	if err := inst.client.DoTimeout(req, resp, timeout); err != nil {
		return nil, err
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, up.StatusError(code)
	}

	body := resp.Body()
	if !jsoniter.Valid(body) {
		return nil, errors.New("upstream returned an invalid JSON body")
	}

	// the response body is recycled on release
	return append([]byte{}, body...), nil
}

type noopMetrics struct{}

func (noopMetrics) UpstreamRequest(string, string) {}
