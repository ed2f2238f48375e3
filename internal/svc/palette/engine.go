package palette

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultCacheSize = 512
	DefaultMaxColors = 12
	DefaultQuality   = 10
)

type Instance interface {
	// Extract returns the palette for src, cached under label and src. It never fails;
	// an image that cannot be processed yields the fallback palette.
	Extract(ctx context.Context, src, label string) Result
	// Purge drops every cached palette
	Purge()
	Len() int
}

type Metrics interface {
	CacheHit()
	CacheMiss()
	ExtractionFailed()
	ExtractionDuration(d time.Duration)
}

type Options struct {
	CacheSize int
	MaxColors int
	Fallback  *RGB

	Loader    Loader
	Quantizer Quantizer
	Metrics   Metrics
}

type Engine struct {
	opt   Options
	log   *zap.SugaredLogger
	cache *lru.Cache[string, Result]
	group singleflight.Group
}

func New(opt Options) (*Engine, error) {
	if opt.CacheSize <= 0 {
		opt.CacheSize = DefaultCacheSize
	}
	if opt.MaxColors <= 0 {
		opt.MaxColors = DefaultMaxColors
	}
	if opt.Fallback == nil {
		fb := DefaultFallback
		opt.Fallback = &fb
	}
	if opt.Loader == nil {
		opt.Loader = NewHTTPLoader(HTTPLoaderOptions{})
	}
	if opt.Quantizer == nil {
		opt.Quantizer = MedianCut{Quality: DefaultQuality}
	}
	if opt.Metrics == nil {
		opt.Metrics = noopMetrics{}
	}

	cache, err := lru.New[string, Result](opt.CacheSize)
	if err != nil {
		return nil, err
	}

	return &Engine{
		opt:   opt,
		log:   zap.S().Named("palette"),
		cache: cache,
	}, nil
}

// CacheKey identifies a palette by the caller's label and the image source
func CacheKey(label, src string) string {
	return label + "-" + src
}

func (e *Engine) Extract(ctx context.Context, src, label string) Result {
	key := CacheKey(label, src)

	if res, ok := e.cache.Get(key); ok {
		e.opt.Metrics.CacheHit()
		return res
	}

	e.opt.Metrics.CacheMiss()

	// concurrent misses for one key share a single extraction, which outlives
	// the caller that started it
	ctx = context.WithoutCancel(ctx)

	v, _, _ := e.group.Do(key, func() (interface{}, error) {
		if res, ok := e.cache.Get(key); ok {
			return res, nil
		}

		res := e.extract(ctx, src, label)
		e.cache.Add(key, res)

		return res, nil
	})

	return v.(Result)
}

func (e *Engine) extract(ctx context.Context, src, label string) Result {
	start := time.Now()

	img, err := e.opt.Loader.Load(ctx, src)
	if err != nil {
		e.opt.Metrics.ExtractionFailed()
		e.log.Warnw("failed to load image, using fallback palette",
			"src", src,
			"label", label,
			"error", err,
		)

		return Derive(*e.opt.Fallback)
	}

	res := FromPalette(e.opt.Quantizer.Palette(img, e.opt.MaxColors), *e.opt.Fallback)

	e.opt.Metrics.ExtractionDuration(time.Since(start))

	return res
}

func (e *Engine) Purge() {
	e.cache.Purge()
}

func (e *Engine) Len() int {
	return e.cache.Len()
}

type noopMetrics struct{}

func (noopMetrics) CacheHit() {}
func (noopMetrics) CacheMiss() {}
func (noopMetrics) ExtractionFailed() {}
func (noopMetrics) ExtractionDuration(time.Duration) {}
