package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"

	"github.com/meterkit/socialmeter/internal/retry"
	"github.com/rs/zerolog/log"
)

// maxBodyBytes caps how much markup a direct fetch will read. The inspected
// pages are large but bounded; anything past this is not heuristically useful.
const maxBodyBytes = 8 << 20

// direct performs a plain GET with a randomized client identity.
func (c *Client) direct(ctx context.Context, url string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx, url); err != nil {
			return "", fmt.Errorf("rate limit wait: %w", err)
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var markup string
	err := retry.WithRetry(reqCtx, c.retryCfg, func() error {
		req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		req.Header.Set("User-Agent", uaPool[rand.Intn(len(uaPool))])
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 {
			return retry.HTTPError{StatusCode: resp.StatusCode, Status: resp.Status}
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return err
		}
		markup = string(body)
		return nil
	})
	if err != nil {
		return "", err
	}

	log.Debug().Str("url", url).Int("bytes", len(markup)).Msg("Direct fetch succeeded")
	if c.jitter != nil {
		c.jitter()
	}
	return markup, nil
}

// ResolveRedirect follows url to its terminal location. It first lets the
// HTTP client chase redirects; if no redirect is observed it falls back to a
// rendered navigation, since share links frequently redirect via script.
func (c *Client) ResolveRedirect(ctx context.Context, url string) (string, bool) {
	if final, ok := c.resolveRedirectHTTP(ctx, url); ok {
		return final, true
	}
	if final, ok := c.resolveRedirectRendered(ctx, url); ok {
		return final, true
	}
	return "", false
}

func (c *Client) resolveRedirectHTTP(ctx context.Context, url string) (string, bool) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("User-Agent", uaPool[rand.Intn(len(uaPool))])

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Msg("Redirect resolution via HTTP failed")
		return "", false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	final := resp.Request.URL.String()
	if final == "" || final == url {
		return "", false
	}
	return final, true
}
