package resolve

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/meterkit/socialmeter/internal/extract"
	"github.com/meterkit/socialmeter/internal/fetch"
)

// shortlinkRoots are path roots that redirect to the real permalink rather
// than naming the content themselves.
var shortlinkRoots = map[string]bool{
	"share": true, "reel": true, "watch": true,
}

// Embedded keys that carry the canonical permalink, with JSON-escaped
// slashes.
var permalinkJSONKeys = []*regexp.Regexp{
	regexp.MustCompile(`"permalink_url"\s*:\s*"([^"]+)"`),
	regexp.MustCompile(`"canonical"\s*:\s*"(https?:[^"]+)"`),
}

// isShortlink reports whether the URL is a share/redirect-style link that
// does not itself name the content.
func isShortlink(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if strings.EqualFold(u.Host, "fb.watch") {
		return true
	}
	segs := splitPath(u.Path)
	return len(segs) > 0 && shortlinkRoots[segs[0]]
}

// resolvePermalink finds the canonical permalink behind a shortlink:
// redirect navigation first, then the already-fetched markup. The result is
// rewritten to the lightweight-mobile host.
func (r *Resolver) resolvePermalink(ctx context.Context, s *resolution, pageURL string, page *extract.Page) string {
	if final, ok := s.resolveRedirect(ctx, pageURL); ok && final != pageURL && isPermalinkShaped(final) {
		return mobilePermalink(final)
	}
	if found := permalinkFromMarkup(page); found != "" {
		return mobilePermalink(found)
	}
	log.Debug().Str("url", pageURL).Msg("Shortlink did not resolve to a permalink")
	return ""
}

// permalinkFromMarkup scans fetched markup for a canonical permalink
// reference: embedded permalink keys, a plugin-iframe href parameter, the
// canonical link tag, then visible permalink-shaped anchors.
func permalinkFromMarkup(page *extract.Page) string {
	for _, re := range permalinkJSONKeys {
		if m := re.FindStringSubmatch(page.Raw); m != nil {
			if found := unescapeJSONURL(m[1]); isPermalinkShaped(found) {
				return found
			}
		}
	}
	if page.Doc == nil {
		return ""
	}
	if found := permalinkFromPluginIframe(page.Doc); found != "" {
		return found
	}
	if href, ok := page.Doc.Find(`link[rel="canonical"]`).Attr("href"); ok && isPermalinkShaped(href) {
		return href
	}
	found := ""
	page.Doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if !isPermalinkShaped(href) {
			return true
		}
		found = href
		return false
	})
	return found
}

// permalinkFromPluginIframe reads the target URL out of an embedded-post
// plugin iframe, which carries the permalink URL-encoded in its href
// parameter.
func permalinkFromPluginIframe(doc *goquery.Document) string {
	found := ""
	doc.Find(`iframe[src*="/plugins/"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		src, _ := sel.Attr("src")
		u, err := url.Parse(src)
		if err != nil {
			return true
		}
		href := u.Query().Get("href")
		if href == "" || !isPermalinkShaped(href) {
			return true
		}
		found = href
		return false
	})
	return found
}

// isPermalinkShaped reports whether a URL names a concrete post: a posts or
// videos path, a legacy story/permalink form, or a group post path.
func isPermalinkShaped(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if u.Host != "" && !isFacebookHost(u.Host) {
		return false
	}
	segs := splitPath(u.Path)
	if len(segs) == 0 {
		return false
	}
	switch segs[0] {
	case "story.php", "permalink.php":
		return u.Query().Get("id") != "" || u.Query().Get("story_fbid") != ""
	case "groups":
		return len(segs) >= 3 && (segs[2] == "posts" || segs[2] == "permalink" || segs[2] == "post")
	}
	if denyRoots[segs[0]] {
		return false
	}
	return len(segs) >= 3 && (segs[1] == "posts" || segs[1] == "videos")
}

// mobilePermalink makes a permalink absolute and rewrites it to the
// lightweight-mobile host.
func mobilePermalink(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	if u.Host == "" {
		u.Scheme = "https"
		u.Host = "www.facebook.com"
	}
	out, _ := fetch.RewriteMobileHost(u.String())
	return out
}

// ownerFromPermalink derives the owner deterministically from a canonical
// permalink path. Group posts resolve to the group itself.
func ownerFromPermalink(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	if u.Host != "" && !isFacebookHost(u.Host) {
		return ""
	}
	segs := splitPath(u.Path)
	if len(segs) == 0 {
		return ""
	}
	switch segs[0] {
	case "story.php", "permalink.php":
		if id := u.Query().Get("id"); id != "" {
			return "https://www.facebook.com/profile.php?id=" + id
		}
		return ""
	case "groups":
		if len(segs) >= 2 {
			return "https://www.facebook.com/groups/" + segs[1]
		}
		return ""
	}
	if denyRoots[segs[0]] {
		return ""
	}
	if len(segs) >= 3 && (segs[1] == "posts" || segs[1] == "videos") {
		return "https://www.facebook.com/" + segs[0]
	}
	return ""
}
