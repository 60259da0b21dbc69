// Package classify maps a raw social URL to a content type using ordered
// structural path rules. Classification is pure string/URL work: no network,
// deterministic, and an unparseable URL is simply "unknown".
package classify

import (
	"net/url"
	"strings"

	"github.com/meterkit/socialmeter/pkg/models"
)

// fb.watch is Facebook's short domain for video shares.
const fbWatchHost = "fb.watch"

// Path prefixes under facebook.com that always denote a post-shaped object.
// These are checked before the generic single-segment page rule because a
// post path lies under what would otherwise look like a page.
var fbPostPrefixes = []string{
	"/share/",
	"/watch/",
	"/reel/",
	"/photo.php",
	"/permalink.php",
	"/story.php",
}

// First path segments on facebook.com that never name a page.
var fbReservedSegments = map[string]bool{
	"login":         true,
	"share":         true,
	"watch":         true,
	"reel":          true,
	"permalink.php": true,
	"photo.php":     true,
	"story.php":     true,
}

// Instagram first segments that belong to the platform, not to a profile.
var igReservedSegments = map[string]bool{
	"explore":   true,
	"stories":   true,
	"reels":     true,
	"accounts":  true,
	"about":     true,
	"developer": true,
	"directory": true,
	"topics":    true,
	"help":      true,
	"privacy":   true,
	"terms":     true,
	"blog":      true,
	"press":     true,
	"api":       true,
	"oauth":     true,
	"legal":     true,
	"session":   true,
	"emails":    true,
}

// Classify maps rawURL to one of the content types. Empty or malformed input
// classifies as unknown without error.
func Classify(rawURL string) models.ContentType {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return models.TypeUnknown
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return models.TypeUnknown
	}

	host := strings.ToLower(u.Hostname())
	path := strings.TrimSuffix(u.EscapedPath(), "/")
	lower := strings.ToLower(path)

	switch {
	case host == fbWatchHost || strings.HasSuffix(host, "."+fbWatchHost):
		return models.TypeFBPost
	case strings.Contains(host, "facebook.com"):
		return classifyFacebook(lower, u)
	case strings.Contains(host, "instagram.com"):
		return classifyInstagram(lower)
	}
	return models.TypeUnknown
}

func classifyFacebook(path string, u *url.URL) models.ContentType {
	segs := splitPath(path)

	if len(segs) > 0 && segs[0] == "groups" {
		switch {
		case len(segs) == 2:
			return models.TypeFBGroup
		case len(segs) >= 3 && (segs[2] == "posts" || segs[2] == "post" || segs[2] == "permalink"):
			return models.TypeFBGroupPost
		}
		return models.TypeUnknown
	}

	for _, p := range fbPostPrefixes {
		if strings.HasPrefix(path, p) || path == strings.TrimSuffix(p, "/") {
			return models.TypeFBPost
		}
	}

	// /<page>/posts/<id>, /<page>/videos/<id>, /<page>/photos/...
	if len(segs) >= 2 && !fbReservedSegments[segs[0]] {
		switch segs[1] {
		case "posts", "videos", "photos":
			return models.TypeFBPost
		}
	}

	if len(segs) == 1 && !fbReservedSegments[segs[0]] {
		if segs[0] == "profile.php" {
			// Numeric-identifier profile form, still a page-shaped object.
			if u.Query().Get("id") != "" {
				return models.TypeFBPage
			}
			return models.TypeUnknown
		}
		return models.TypeFBPage
	}
	return models.TypeUnknown
}

func classifyInstagram(path string) models.ContentType {
	segs := splitPath(path)

	if len(segs) >= 2 {
		switch segs[0] {
		case "p", "reel", "tv":
			return models.TypeIGPost
		}
		return models.TypeUnknown
	}
	if len(segs) == 1 && !igReservedSegments[segs[0]] {
		return models.TypeIGProfile
	}
	return models.TypeUnknown
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
