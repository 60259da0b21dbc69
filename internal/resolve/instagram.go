package resolve

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"

	"github.com/meterkit/socialmeter/internal/extract"
	"github.com/meterkit/socialmeter/pkg/models"
)

var igOwnerUsernameKey = regexp.MustCompile(`"ownerUsername"\s*:\s*"([A-Za-z0-9._]+)"`)

// igReservedRoots are Instagram path roots that can never be a username.
var igReservedRoots = map[string]bool{
	"p": true, "reel": true, "reels": true, "tv": true, "stories": true,
	"explore": true, "accounts": true, "about": true, "directory": true,
	"legal": true, "session": true, "api": true,
}

// BackfillInstagramOwner discovers the owning profile of an Instagram post
// and, when the post page did not expose it, fetches the profile once to
// copy its follower count into owner_followers.
func (r *Resolver) BackfillInstagramOwner(ctx context.Context, page *extract.Page, m *models.BasicMetrics) {
	if m.OwnerURL == "" {
		if username := igOwnerUsername(page); username != "" {
			m.OwnerURL = "https://www.instagram.com/" + username + "/"
		}
	}
	if m.OwnerURL == "" || m.OwnerFollowers != nil {
		return
	}

	s := &resolution{fetcher: r.fetcher}
	res, ok := s.fetch(ctx, m.OwnerURL)
	if !ok {
		log.Debug().Str("owner", m.OwnerURL).Msg("Owner profile fetch failed")
		return
	}
	om := extract.Extract(models.TypeIGProfile, res.Markup)
	if om.Followers != nil {
		m.OwnerFollowers = om.Followers
	}
}

// igOwnerUsername finds the post author's username: the embedded
// ownerUsername key first, then profile-shaped anchor hrefs.
func igOwnerUsername(page *extract.Page) string {
	if m := igOwnerUsernameKey.FindStringSubmatch(page.Raw); m != nil {
		return m[1]
	}
	if page.Doc == nil {
		return ""
	}
	username := ""
	page.Doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		u, err := url.Parse(href)
		if err != nil {
			return true
		}
		if u.Host != "" && !strings.HasSuffix(strings.ToLower(u.Host), "instagram.com") {
			return true
		}
		segs := splitPath(u.Path)
		if len(segs) != 1 || igReservedRoots[segs[0]] {
			return true
		}
		username = segs[0]
		return false
	})
	return username
}
