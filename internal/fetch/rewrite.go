package fetch

import (
	"net/url"
	"strings"
)

// RewriteMobileHost rewrites desktop Facebook hosts to the lightweight
// mobile subdomain, which renders far more content without an authentication
// wall. Only the host is touched; path and query pass through untouched.
// Returns the (possibly unchanged) URL and whether a rewrite happened.
func RewriteMobileHost(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL, false
	}
	host := strings.ToLower(u.Hostname())
	switch host {
	case "facebook.com", "www.facebook.com", "web.facebook.com":
		u.Host = "m.facebook.com"
		if u.Scheme == "" {
			u.Scheme = "https"
		}
		return u.String(), true
	}
	return rawURL, false
}
