package palette

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"net/url"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/h2non/filetype/matchers"
	"github.com/valyala/fasthttp"
	"golang.org/x/image/webp"
)

var (
	ErrUnsupportedSource = errors.New("unsupported image source")
	ErrUnsupportedImage  = errors.New("unsupported image type")
	ErrImageTooLarge     = errors.New("image exceeds the size limit")
	ErrHostNotAllowed    = errors.New("image host is not allowed")
	ErrTooManyRedirects  = errors.New("too many redirects")
)

const maxRedirects = 3

// Loader fetches and decodes the image behind src
type Loader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

type HTTPLoaderOptions struct {
	UserAgent string
	Timeout   time.Duration
	MaxBytes  int
	// AllowedHosts limits every request, redirects included. Empty allows any host.
	AllowedHosts []string
}

// HostAllowed reports whether host matches one of hosts, an empty list allows everything
func HostAllowed(hosts []string, host string) bool {
	if len(hosts) == 0 {
		return true
	}

	for _, h := range hosts {
		if strings.EqualFold(h, host) {
			return true
		}
	}

	return false
}

// HTTPLoader downloads images over http(s) with fasthttp
type HTTPLoader struct {
	client *fasthttp.Client
	opt    HTTPLoaderOptions
}

func NewHTTPLoader(opt HTTPLoaderOptions) *HTTPLoader {
	if opt.Timeout <= 0 {
		opt.Timeout = 10 * time.Second
	}

	return &HTTPLoader{
		client: &fasthttp.Client{
			Name:                     opt.UserAgent,
			MaxResponseBodySize:      opt.MaxBytes,
			ReadTimeout:              opt.Timeout,
			WriteTimeout:             opt.Timeout,
			NoDefaultUserAgentHeader: opt.UserAgent == "",
		},
		opt: opt,
	}
}

func (l *HTTPLoader) Load(ctx context.Context, src string) (image.Image, error) {
	u, err := l.check(src)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := l.opt.Timeout
	if dl, ok := ctx.Deadline(); ok {
		if d := time.Until(dl); d < timeout {
			timeout = d
		}
	}

	deadline := time.Now().Add(timeout)

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()

	defer func() {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)
	}()

	// redirects are followed by hand so every hop goes through check
	for hops := 0; ; hops++ {
		req.Reset()
		resp.Reset()

		req.SetRequestURI(u.String())
		req.Header.SetMethod(fasthttp.MethodGet)
		req.Header.Set("Accept", "image/*")

		if err := l.client.DoDeadline(req, resp, deadline); err != nil {
			if errors.Is(err, fasthttp.ErrBodyTooLarge) {
				return nil, ErrImageTooLarge
			}

			return nil, err
		}

		if !fasthttp.StatusCodeIsRedirect(resp.StatusCode()) {
			break
		}

		if hops == maxRedirects {
			return nil, ErrTooManyRedirects
		}

		loc, err := url.Parse(string(resp.Header.Peek("Location")))
		if err != nil {
			return nil, fmt.Errorf("%w: bad redirect location", ErrUnsupportedSource)
		}

		if u, err = l.check(u.ResolveReference(loc).String()); err != nil {
			return nil, err
		}
	}

	if code := resp.StatusCode(); code < 200 || code > 299 {
		return nil, fmt.Errorf("HTTP %d", code)
	}

	return Decode(resp.Body())
}

func (l *HTTPLoader) check(src string) (*url.URL, error) {
	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, src)
	}

	if !HostAllowed(l.opt.AllowedHosts, u.Hostname()) {
		return nil, fmt.Errorf("%w: %s", ErrHostNotAllowed, u.Hostname())
	}

	return u, nil
}

// Decode sniffs the image type from its magic bytes and decodes the first frame
func Decode(b []byte) (image.Image, error) {
	kind, err := filetype.Match(b)
	if err != nil {
		return nil, err
	}

	var decode func(r *bytes.Reader) (image.Image, error)

	switch kind {
	case matchers.TypePng:
		decode = func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) }
	case matchers.TypeJpeg:
		decode = func(r *bytes.Reader) (image.Image, error) { return jpeg.Decode(r) }
	case matchers.TypeGif:
		decode = func(r *bytes.Reader) (image.Image, error) { return gif.Decode(r) }
	case matchers.TypeWebp:
		decode = func(r *bytes.Reader) (image.Image, error) { return webp.Decode(r) }
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, kind.MIME.Value)
	}

	img, err := decode(bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind.Extension, err)
	}

	return img, nil
}
