// Package resolve derives the owning page or group of a post and backfills
// aggregate counts the post page itself did not expose.
//
// Resolution is a gated pipeline: owner discovery from the already-fetched
// markup, shortlink resolution to a canonical permalink, owner derivation
// from the permalink path, a one-shot numeric-profile upgrade, and a
// secondary fetch+extraction of the owner. Every step is skipped once its
// output is already present, and the whole resolution performs at most a
// fixed number of network fetches.
package resolve

import (
	"context"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/meterkit/socialmeter/internal/extract"
	"github.com/meterkit/socialmeter/internal/fetch"
	"github.com/meterkit/socialmeter/pkg/models"
)

// maxFetches bounds the secondary network operations of one resolution:
// redirect navigation, profile upgrade and owner variant fetches combined.
const maxFetches = 5

// Resolver backfills owner identity and owner-level counts for post results.
type Resolver struct {
	fetcher fetch.Fetcher
}

func New(fetcher fetch.Fetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// resolution carries the fetch budget of a single Resolve call.
type resolution struct {
	fetcher fetch.Fetcher
	fetches int
}

func (s *resolution) fetch(ctx context.Context, u string) (models.FetchResult, bool) {
	if s.fetches >= maxFetches {
		return models.FetchResult{}, false
	}
	s.fetches++
	res := s.fetcher.Fetch(ctx, u)
	return res, res.OK
}

func (s *resolution) resolveRedirect(ctx context.Context, u string) (string, bool) {
	if s.fetches >= maxFetches {
		return "", false
	}
	s.fetches++
	return s.fetcher.ResolveRedirect(ctx, u)
}

// Resolve fills OwnerURL, OwnerName and the owner aggregate count
// (page_followers or group_members) of a fb_post / fb_group_post result.
// It returns the canonical permalink when one had to be resolved from a
// shortlink, empty otherwise. Metrics are only ever filled in, except that
// an owner judged unreliable is discarded in favor of a later signal.
func (r *Resolver) Resolve(ctx context.Context, pageURL string, page *extract.Page, ct models.ContentType, m *models.BasicMetrics) string {
	if ct != models.TypeFBPost && ct != models.TypeFBGroupPost {
		return ""
	}
	s := &resolution{fetcher: r.fetcher}

	owner := m.OwnerURL
	if owner == "" {
		owner = ownerFromPermalink(pageURL)
	}
	if owner == "" {
		owner = discoverOwner(page)
	}
	if !ownerReliable(owner) {
		owner = ""
	}

	resolved := ""
	if isShortlink(pageURL) && (owner == "" || missingOwnerMetric(ct, m)) {
		resolved = r.resolvePermalink(ctx, s, pageURL, page)
		if resolved != "" && owner == "" {
			owner = ownerFromPermalink(resolved)
			if !ownerReliable(owner) {
				owner = ""
			}
		}
	}

	if owner != "" && ct == models.TypeFBPost && isNumericProfile(owner) {
		if upgraded := r.upgradeProfile(ctx, s, owner); upgraded != "" {
			owner = upgraded
		}
	}

	if owner != "" {
		m.OwnerURL = owner
		if missingOwnerMetric(ct, m) {
			r.backfillOwnerMetric(ctx, s, owner, ct, m)
		}
	}

	if m.OwnerName == "" {
		m.OwnerName = displayName(page, owner)
	}

	log.Debug().
		Str("owner", m.OwnerURL).
		Str("permalink", resolved).
		Int("fetches", s.fetches).
		Msg("Owner resolution finished")
	return resolved
}

// missingOwnerMetric reports whether the owner-level aggregate count the
// content type calls for is still absent.
func missingOwnerMetric(ct models.ContentType, m *models.BasicMetrics) bool {
	if ct == models.TypeFBGroupPost {
		return m.GroupMembers == nil
	}
	return m.PageFollowers == nil
}

// upgradeProfile fetches a numeric profile reference once and tries to
// recover the canonical named-slug page behind it.
func (r *Resolver) upgradeProfile(ctx context.Context, s *resolution, owner string) string {
	target, _ := fetch.RewriteMobileHost(owner)
	res, ok := s.fetch(ctx, target)
	if !ok {
		return ""
	}
	page := extract.NewPage(res.Markup)
	if slug := canonicalSlug(page); slug != "" {
		return slug
	}
	if found := discoverNamedOwner(page); found != "" && !isNumericProfile(found) {
		return found
	}
	return ""
}

// backfillOwnerMetric fetches the owner and copies its follower or member
// count into the post metrics, retrying across a fixed set of view variants.
func (r *Resolver) backfillOwnerMetric(ctx context.Context, s *resolution, owner string, ct models.ContentType, m *models.BasicMetrics) {
	ownerType := models.TypeFBPage
	if ct == models.TypeFBGroupPost {
		ownerType = models.TypeFBGroup
	}

	for _, variant := range ownerVariants(owner, ownerType) {
		target, _ := fetch.RewriteMobileHost(variant)
		res, ok := s.fetch(ctx, target)
		if !ok {
			continue
		}
		om := extract.Extract(ownerType, res.Markup)
		if ownerType == models.TypeFBGroup {
			if om.Members != nil {
				m.GroupMembers = om.Members
				return
			}
		} else if om.Followers != nil {
			m.PageFollowers = om.Followers
			return
		}
	}
}

// ownerVariants lists the owner URL itself plus the alternate views that
// tend to expose the aggregate count when the main view hides it.
func ownerVariants(owner string, ownerType models.ContentType) []string {
	if ownerType == models.TypeFBGroup {
		return []string{owner, owner + "/about"}
	}
	if isNumericProfile(owner) {
		return []string{owner, owner + "&v=followers", owner + "&sk=followers"}
	}
	return []string{owner, owner + "/about", owner + "?v=followers"}
}

// isNumericProfile reports whether owner is the numeric-identifier profile
// form rather than a named slug.
func isNumericProfile(owner string) bool {
	u, err := url.Parse(owner)
	if err != nil {
		return false
	}
	return strings.HasSuffix(u.Path, "/profile.php")
}

// ownerReliable rejects owner URLs that point at navigation chrome or carry
// a placeholder identifier.
func ownerReliable(owner string) bool {
	if owner == "" {
		return false
	}
	u, err := url.Parse(owner)
	if err != nil {
		return false
	}
	segs := splitPath(u.Path)
	if len(segs) == 0 {
		return false
	}
	switch segs[0] {
	case "friends", "marketplace", "gaming":
		return false
	case "profile.php":
		id := u.Query().Get("id")
		if id == "" || id == "0" || id == "1" {
			return false
		}
	}
	return true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
