// Package fetch acquires raw page markup for a URL using a tiered strategy:
// a plain HTTP GET first, escalating to a headless browser render (optionally
// with a restored authenticated session) when the direct tier yields nothing.
//
// The fetcher never returns transport or browser errors to its caller; every
// failure collapses into a FetchResult with OK=false, with the immediate
// cause logged for diagnostics only.
package fetch

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/meterkit/socialmeter/internal/auth"
	"github.com/meterkit/socialmeter/internal/ratelimit"
	"github.com/meterkit/socialmeter/internal/retry"
	"github.com/meterkit/socialmeter/pkg/models"
	"github.com/rs/zerolog/log"
)

// Fetcher is the acquisition contract consumed by the extraction pipeline.
type Fetcher interface {
	// Fetch returns the best-obtainable markup for the URL.
	Fetch(ctx context.Context, url string) models.FetchResult

	// ResolveRedirect follows a shortlink to its terminal URL. The second
	// return value is false when no redirect could be observed.
	ResolveRedirect(ctx context.Context, url string) (string, bool)
}

// Realistic desktop client identities, picked at random per direct request.
var uaPool = []string{
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0 Safari/537.36",
}

// Options configures a Client.
type Options struct {
	HTTPClient    *http.Client
	Limiter       ratelimit.RateLimiter
	Timeout       time.Duration // direct tier cap
	RenderTimeout time.Duration // rendered tier cap
	ForceRender   bool
	// Session, when non-nil, is restored into the rendered tier's browser.
	// The pipeline only reads it; it may be shared across inspections.
	Session    *auth.SessionData
	Headless   bool
	Proxy      string
	ChromePath string
}

// Client implements Fetcher with the two acquisition tiers.
type Client struct {
	httpClient    *http.Client
	limiter       ratelimit.RateLimiter
	timeout       time.Duration
	renderTimeout time.Duration
	forceRender   bool
	session       *auth.SessionData
	headless      bool
	proxy         string
	chromePath    string
	retryCfg      retry.Config

	// render is swappable so tests can exercise tier fallback without a
	// browser.
	render func(ctx context.Context, url string) (string, error)
	// jitter delays after a successful direct fetch to avoid burstiness.
	jitter func()
}

// New creates a fetch client.
func New(opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Timeout == 0 {
		opts.Timeout = 12 * time.Second
	}
	if opts.RenderTimeout == 0 {
		opts.RenderTimeout = 30 * time.Second
	}
	c := &Client{
		httpClient:    opts.HTTPClient,
		limiter:       opts.Limiter,
		timeout:       opts.Timeout,
		renderTimeout: opts.RenderTimeout,
		forceRender:   opts.ForceRender,
		session:       opts.Session,
		headless:      opts.Headless,
		proxy:         opts.Proxy,
		chromePath:    opts.ChromePath,
		retryCfg:      retry.DefaultConfig(),
	}
	c.render = c.renderPage
	c.jitter = func() {
		// Spread successive requests out a bit.
		time.Sleep(time.Duration(800+rand.Intn(800)) * time.Millisecond)
	}
	return c
}

// Fetch tries the direct tier, then the rendered tier. ForceRender skips the
// direct tier entirely.
func (c *Client) Fetch(ctx context.Context, url string) models.FetchResult {
	if !c.forceRender {
		if markup, err := c.direct(ctx, url); err == nil && markup != "" {
			return models.FetchResult{Markup: markup, Method: models.MethodDirect, OK: true}
		} else if err != nil {
			log.Debug().Err(err).Str("url", url).Msg("Direct fetch failed, escalating to rendered tier")
		}
	}

	markup, err := c.render(ctx, url)
	if err != nil || markup == "" {
		if err != nil {
			log.Debug().Err(err).Str("url", url).Msg("Rendered fetch failed")
		}
		return models.FetchResult{OK: false}
	}
	method := models.MethodRendered
	if c.session != nil {
		method = models.MethodRenderedAuth
	}
	return models.FetchResult{Markup: markup, Method: method, OK: true}
}
