package resolve

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/meterkit/socialmeter/internal/extract"
)

// denyRoots lists first path segments that can never identify an owner.
// Anchors under these roots are navigation chrome or content surfaces.
var denyRoots = map[string]bool{
	"share": true, "reel": true, "watch": true,
	"photo.php": true, "story.php": true, "permalink.php": true,
	"marketplace": true, "gaming": true, "friends": true, "groups": true,
	"profile.php": true, "data": true, "privacy_sandbox": true,
	"help": true, "settings": true, "policy": true, "login": true,
	"pages": true,
}

// allowSecond lists second path segments an owner link may carry. Anything
// else marks the anchor as deeper content rather than an owner root.
var allowSecond = map[string]bool{
	"": true, "reels": true, "posts": true, "videos": true,
	"photos": true, "about": true, "pg": true, "timeline": true,
}

var (
	ownerProfileURLKey = regexp.MustCompile(`"ownerProfileUrl"\s*:\s*"([^"]+)"`)

	// Numeric owner identifiers under the keys the platform's embedded data
	// uses for the authoring entity.
	ownerIDKeys = []*regexp.Regexp{
		regexp.MustCompile(`(?i)"owner_?id"\s*:\s*"?(\d+)"?`),
		regexp.MustCompile(`(?i)"page_?id"\s*:\s*"?(\d+)"?`),
		regexp.MustCompile(`(?i)"entity_?id"\s*:\s*"?(\d+)"?`),
		regexp.MustCompile(`(?i)"profile_?id"\s*:\s*"?(\d+)"?`),
		regexp.MustCompile(`(?i)"actor_?id"\s*:\s*"?(\d+)"?`),
	}
)

// Accessible labels the platform puts on the authorship link, in the
// locales the heuristics target.
var ownerProfileLabels = []string{
	"查看擁有者個人檔案",
	"view owner profile",
}

// discoverOwner searches the post markup for the owning page, walking the
// discovery strategies in priority order. Returns a canonical owner URL or
// empty.
func discoverOwner(page *extract.Page) string {
	if owner := discoverNamedOwner(page); owner != "" {
		return owner
	}
	for _, re := range ownerIDKeys {
		if m := re.FindStringSubmatch(page.Raw); m != nil {
			if m[1] == "0" || m[1] == "1" {
				continue
			}
			return "https://www.facebook.com/profile.php?id=" + m[1]
		}
	}
	return ""
}

// discoverNamedOwner runs only the strategies that yield a named slug,
// skipping the numeric-identifier fallback. Also used when upgrading a
// numeric profile reference.
func discoverNamedOwner(page *extract.Page) string {
	if page.Doc == nil {
		return ""
	}
	if owner := ownerFromAnchors(page.Doc, anchorContentPermalink); owner != "" {
		return owner
	}
	if owner := ownerFromAnchors(page.Doc, anchorReels); owner != "" {
		return owner
	}
	if m := ownerProfileURLKey.FindStringSubmatch(page.Raw); m != nil {
		if owner := ownerCandidate(unescapeJSONURL(m[1])); owner != "" {
			return owner
		}
	}
	if owner := ownerFromAnchors(page.Doc, anchorOwnerLabel); owner != "" {
		return owner
	}
	return ownerFromAnchors(page.Doc, anchorAny)
}

// anchor filters: each decides whether one anchor is an authorship signal.
func anchorContentPermalink(sel *goquery.Selection, href string) bool {
	return strings.Contains(href, "ref=content_permalink")
}

func anchorReels(_ *goquery.Selection, href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	segs := splitPath(u.Path)
	return len(segs) >= 2 && segs[1] == "reels"
}

func anchorOwnerLabel(sel *goquery.Selection, _ string) bool {
	label, ok := sel.Attr("aria-label")
	if !ok {
		return false
	}
	label = strings.ToLower(label)
	for _, want := range ownerProfileLabels {
		if strings.Contains(label, want) {
			return true
		}
	}
	return false
}

func anchorAny(_ *goquery.Selection, _ string) bool { return true }

// ownerFromAnchors scans document anchors through one filter and returns the
// first href that survives the owner-candidate rules.
func ownerFromAnchors(doc *goquery.Document, accept func(*goquery.Selection, string) bool) string {
	owner := ""
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if !accept(sel, href) {
			return true
		}
		if c := ownerCandidate(href); c != "" {
			owner = c
			return false
		}
		return true
	})
	return owner
}

// ownerCandidate validates one href against the deny/allow rules and
// normalizes it into an absolute owner URL. Returns empty when the href
// cannot name an owner.
func ownerCandidate(href string) string {
	u, err := url.Parse(strings.TrimSpace(href))
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
	root := segs[0]
	if denyRoots[root] {
		return ""
	}
	if len(segs) >= 2 && !allowSecond[segs[1]] {
		return ""
	}
	return "https://www.facebook.com/" + root
}

func isFacebookHost(host string) bool {
	host = strings.ToLower(host)
	return host == "facebook.com" || strings.HasSuffix(host, ".facebook.com") || host == "fb.watch"
}

// canonicalSlug reads a named owner slug off a profile page's canonical
// link, when the platform exposes one.
func canonicalSlug(page *extract.Page) string {
	if page.Doc == nil {
		return ""
	}
	href, ok := page.Doc.Find(`link[rel="canonical"]`).Attr("href")
	if !ok {
		return ""
	}
	return ownerCandidate(href)
}

// displayName reads the owner's display string straight off the post page:
// the accessible-labelled authorship link, a heading anchor, or a role=link
// anchor pointing at the owner.
func displayName(page *extract.Page, owner string) string {
	if page.Doc == nil {
		return ""
	}
	name := ""
	page.Doc.Find("a[aria-label]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if !anchorOwnerLabel(sel, "") {
			return true
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			name = text
			return false
		}
		return true
	})
	if name != "" {
		return name
	}
	if text := strings.TrimSpace(page.Doc.Find("h2 a").First().Text()); text != "" {
		return text
	}
	if owner == "" {
		return ""
	}
	slug := ownerSlug(owner)
	page.Doc.Find(`a[role="link"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if ownerCandidate(href) == "" || ownerSlug(href) != slug {
			return true
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			name = text
			return false
		}
		return true
	})
	return name
}

func ownerSlug(owner string) string {
	u, err := url.Parse(owner)
	if err != nil {
		return ""
	}
	segs := splitPath(u.Path)
	if len(segs) == 0 {
		return ""
	}
	return segs[0]
}

func unescapeJSONURL(s string) string {
	return strings.ReplaceAll(s, `\/`, "/")
}
