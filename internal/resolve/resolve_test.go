package resolve

import (
	"context"
	"testing"

	"github.com/meterkit/socialmeter/internal/extract"
	"github.com/meterkit/socialmeter/pkg/models"
)

// fakeFetcher serves canned markup per URL and records every fetch.
type fakeFetcher struct {
	pages     map[string]string
	redirects map[string]string
	calls     []string
}

func (f *fakeFetcher) Fetch(_ context.Context, u string) models.FetchResult {
	f.calls = append(f.calls, u)
	markup, ok := f.pages[u]
	return models.FetchResult{Markup: markup, Method: models.MethodDirect, OK: ok}
}

func (f *fakeFetcher) ResolveRedirect(_ context.Context, u string) (string, bool) {
	final, ok := f.redirects[u]
	return final, ok
}

func TestResolveBackfillsPageFollowers(t *testing.T) {
	ff := &fakeFetcher{pages: map[string]string{
		"https://m.facebook.com/somepage": `<html><body><div>5.6萬 位追蹤者</div></body></html>`,
	}}
	r := New(ff)
	page := extract.NewPage(`<html><body><div>10 個讚</div></body></html>`)
	m := &models.BasicMetrics{Likes: models.Int64(10)}

	r.Resolve(context.Background(), "https://m.facebook.com/somepage/posts/123", page, models.TypeFBPost, m)

	if m.OwnerURL != "https://www.facebook.com/somepage" {
		t.Errorf("owner_url = %q", m.OwnerURL)
	}
	if m.PageFollowers == nil || *m.PageFollowers != 56000 {
		t.Errorf("page_followers = %v, want 56000", m.PageFollowers)
	}
}

func TestResolveSkipsBackfillWhenAlreadyFilled(t *testing.T) {
	ff := &fakeFetcher{}
	r := New(ff)
	page := extract.NewPage(`<html><body></body></html>`)
	m := &models.BasicMetrics{PageFollowers: models.Int64(42)}

	r.Resolve(context.Background(), "https://m.facebook.com/somepage/posts/123", page, models.TypeFBPost, m)

	if len(ff.calls) != 0 {
		t.Errorf("expected no secondary fetches, got %v", ff.calls)
	}
	if *m.PageFollowers != 42 {
		t.Errorf("page_followers overwritten: %d", *m.PageFollowers)
	}
}

func TestResolveShortlinkViaRedirect(t *testing.T) {
	ff := &fakeFetcher{
		redirects: map[string]string{
			"https://m.facebook.com/share/p/abc/": "https://www.facebook.com/other/posts/5",
		},
		pages: map[string]string{
			"https://m.facebook.com/other": `<html><body><div>1,000 followers</div></body></html>`,
		},
	}
	r := New(ff)
	page := extract.NewPage(`<html><body></body></html>`)
	m := &models.BasicMetrics{}

	resolved := r.Resolve(context.Background(), "https://m.facebook.com/share/p/abc/", page, models.TypeFBPost, m)

	if resolved != "https://m.facebook.com/other/posts/5" {
		t.Errorf("resolved permalink = %q", resolved)
	}
	if m.OwnerURL != "https://www.facebook.com/other" {
		t.Errorf("owner_url = %q", m.OwnerURL)
	}
	if m.PageFollowers == nil || *m.PageFollowers != 1000 {
		t.Errorf("page_followers = %v, want 1000", m.PageFollowers)
	}
}

func TestResolveShortlinkViaCanonicalTag(t *testing.T) {
	ff := &fakeFetcher{pages: map[string]string{
		"https://m.facebook.com/somepage": `<html><body><div>77 followers</div></body></html>`,
	}}
	r := New(ff)
	page := extract.NewPage(`<html><head>` +
		`<link rel="canonical" href="https://www.facebook.com/somepage/posts/999">` +
		`</head><body></body></html>`)
	m := &models.BasicMetrics{}

	resolved := r.Resolve(context.Background(), "https://m.facebook.com/share/p/xyz/", page, models.TypeFBPost, m)

	if resolved != "https://m.facebook.com/somepage/posts/999" {
		t.Errorf("resolved permalink = %q", resolved)
	}
	if m.OwnerURL != "https://www.facebook.com/somepage" {
		t.Errorf("owner_url = %q", m.OwnerURL)
	}
}

func TestResolveShortlinkViaEscapedJSON(t *testing.T) {
	ff := &fakeFetcher{}
	r := New(ff)
	page := extract.NewPage(`<html><body><script>` +
		`{"permalink_url":"https:\/\/www.facebook.com\/brand\/videos\/42"}` +
		`</script></body></html>`)
	m := &models.BasicMetrics{}

	resolved := r.Resolve(context.Background(), "https://fb.watch/xyz/", page, models.TypeFBPost, m)

	if resolved != "https://m.facebook.com/brand/videos/42" {
		t.Errorf("resolved permalink = %q", resolved)
	}
	if m.OwnerURL != "https://www.facebook.com/brand" {
		t.Errorf("owner_url = %q", m.OwnerURL)
	}
}

func TestResolveGroupPostBackfillsMembers(t *testing.T) {
	ff := &fakeFetcher{pages: map[string]string{
		"https://m.facebook.com/groups/cooks": `<html><body><div>1.2萬 位成員</div></body></html>`,
	}}
	r := New(ff)
	page := extract.NewPage(`<html><body></body></html>`)
	m := &models.BasicMetrics{}

	r.Resolve(context.Background(), "https://m.facebook.com/groups/cooks/posts/9", page, models.TypeFBGroupPost, m)

	if m.OwnerURL != "https://www.facebook.com/groups/cooks" {
		t.Errorf("owner_url = %q", m.OwnerURL)
	}
	if m.GroupMembers == nil || *m.GroupMembers != 12000 {
		t.Errorf("group_members = %v, want 12000", m.GroupMembers)
	}
}

func TestResolveUpgradesNumericProfile(t *testing.T) {
	ff := &fakeFetcher{pages: map[string]string{
		"https://m.facebook.com/profile.php?id=42": `<html><head>` +
			`<link rel="canonical" href="https://www.facebook.com/realname">` +
			`</head><body></body></html>`,
		"https://m.facebook.com/realname": `<html><body><div>900 followers</div></body></html>`,
	}}
	r := New(ff)
	page := extract.NewPage(`<html><body></body></html>`)
	m := &models.BasicMetrics{}

	r.Resolve(context.Background(), "https://m.facebook.com/story.php?story_fbid=7&id=42", page, models.TypeFBPost, m)

	if m.OwnerURL != "https://www.facebook.com/realname" {
		t.Errorf("owner_url = %q, want upgraded slug", m.OwnerURL)
	}
	if m.PageFollowers == nil || *m.PageFollowers != 900 {
		t.Errorf("page_followers = %v, want 900", m.PageFollowers)
	}
}

func TestResolveTerminatesWithoutOwner(t *testing.T) {
	ff := &fakeFetcher{}
	r := New(ff)
	page := extract.NewPage(`<html><body>` +
		`<a href="/marketplace/item/1">nav</a>` +
		`<a href="/friends/center">nav</a>` +
		`<p>no authorship signal anywhere</p></body></html>`)
	m := &models.BasicMetrics{}

	r.Resolve(context.Background(), "https://m.facebook.com/share/p/dead/", page, models.TypeFBPost, m)

	if m.OwnerURL != "" {
		t.Errorf("owner_url = %q, want absent", m.OwnerURL)
	}
	if len(ff.calls) > maxFetches {
		t.Errorf("fetch count %d exceeds bound %d", len(ff.calls), maxFetches)
	}
}

func TestResolveVariantFetchesAreBounded(t *testing.T) {
	// Owner resolves but every view comes back empty; the resolver walks the
	// fixed variant list once and stops.
	ff := &fakeFetcher{pages: map[string]string{
		"https://m.facebook.com/somepage":             `<html><body></body></html>`,
		"https://m.facebook.com/somepage/about":       `<html><body></body></html>`,
		"https://m.facebook.com/somepage?v=followers": `<html><body></body></html>`,
	}}
	r := New(ff)
	page := extract.NewPage(`<html><body></body></html>`)
	m := &models.BasicMetrics{}

	r.Resolve(context.Background(), "https://m.facebook.com/somepage/posts/1", page, models.TypeFBPost, m)

	if m.PageFollowers != nil {
		t.Errorf("page_followers = %v, want absent", m.PageFollowers)
	}
	if len(ff.calls) != 3 {
		t.Errorf("fetch count = %d, want 3 (owner plus two variants)", len(ff.calls))
	}
}

func TestDiscoverOwnerFromAnchors(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{
			name:   "content permalink ref",
			markup: `<html><body><a href="/somepage?ref=content_permalink">x</a></body></html>`,
			want:   "https://www.facebook.com/somepage",
		},
		{
			name:   "reels authorship",
			markup: `<html><body><a href="https://www.facebook.com/creator/reels/">x</a></body></html>`,
			want:   "https://www.facebook.com/creator",
		},
		{
			name:   "owner profile label",
			markup: `<html><body><a aria-label="查看擁有者個人檔案" href="/somepage">Some Page</a></body></html>`,
			want:   "https://www.facebook.com/somepage",
		},
		{
			name:   "generic anchor behind denied roots",
			markup: `<html><body><a href="/watch/live">x</a><a href="/brand/posts/1">x</a></body></html>`,
			want:   "https://www.facebook.com/brand",
		},
		{
			name:   "numeric owner id key",
			markup: `<html><body><script>{"owner_id":"12345"}</script></body></html>`,
			want:   "https://www.facebook.com/profile.php?id=12345",
		},
		{
			name:   "placeholder owner id skipped",
			markup: `<html><body><script>{"owner_id":"0"}</script></body></html>`,
			want:   "",
		},
		{
			name:   "off-platform anchor ignored",
			markup: `<html><body><a href="https://example.com/somepage">x</a></body></html>`,
			want:   "",
		},
		{
			name:   "deep second segment rejected",
			markup: `<html><body><a href="/somepage/events/123">x</a></body></html>`,
			want:   "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := discoverOwner(extract.NewPage(tt.markup))
			if got != tt.want {
				t.Errorf("discoverOwner() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestOwnerFromPermalink(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.facebook.com/brand/posts/123", "https://www.facebook.com/brand"},
		{"https://m.facebook.com/brand/videos/9", "https://www.facebook.com/brand"},
		{"https://m.facebook.com/story.php?story_fbid=1&id=42", "https://www.facebook.com/profile.php?id=42"},
		{"https://www.facebook.com/permalink.php?story_fbid=1&id=7", "https://www.facebook.com/profile.php?id=7"},
		{"https://www.facebook.com/groups/cooks/posts/5", "https://www.facebook.com/groups/cooks"},
		{"https://www.facebook.com/share/p/abc/", ""},
		{"https://example.com/brand/posts/123", ""},
	}
	for _, tt := range tests {
		if got := ownerFromPermalink(tt.in); got != tt.want {
			t.Errorf("ownerFromPermalink(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDisplayNameBackfill(t *testing.T) {
	page := extract.NewPage(`<html><body>` +
		`<h2><a href="/somepage">Some Page</a></h2>` +
		`</body></html>`)
	ff := &fakeFetcher{pages: map[string]string{
		"https://m.facebook.com/somepage": `<html><body><div>10 followers</div></body></html>`,
	}}
	r := New(ff)
	m := &models.BasicMetrics{}

	r.Resolve(context.Background(), "https://m.facebook.com/somepage/posts/1", page, models.TypeFBPost, m)

	if m.OwnerName != "Some Page" {
		t.Errorf("owner_name = %q, want %q", m.OwnerName, "Some Page")
	}
}

func TestBackfillInstagramOwner(t *testing.T) {
	ff := &fakeFetcher{pages: map[string]string{
		"https://www.instagram.com/chef/": `<html><body><script>` +
			`{"edge_followed_by":{"count":34000}}</script></body></html>`,
	}}
	r := New(ff)
	page := extract.NewPage(`<html><body><script>` +
		`{"ownerUsername":"chef"}</script></body></html>`)
	m := &models.BasicMetrics{Likes: models.Int64(5)}

	r.BackfillInstagramOwner(context.Background(), page, m)

	if m.OwnerURL != "https://www.instagram.com/chef/" {
		t.Errorf("owner_url = %q", m.OwnerURL)
	}
	if m.OwnerFollowers == nil || *m.OwnerFollowers != 34000 {
		t.Errorf("owner_followers = %v, want 34000", m.OwnerFollowers)
	}
}

func TestBackfillInstagramOwnerNoSignal(t *testing.T) {
	ff := &fakeFetcher{}
	r := New(ff)
	page := extract.NewPage(`<html><body><a href="/p/abc/">post</a></body></html>`)
	m := &models.BasicMetrics{}

	r.BackfillInstagramOwner(context.Background(), page, m)

	if m.OwnerURL != "" || m.OwnerFollowers != nil {
		t.Errorf("expected no owner, got url=%q followers=%v", m.OwnerURL, m.OwnerFollowers)
	}
	if len(ff.calls) != 0 {
		t.Errorf("expected no fetches, got %v", ff.calls)
	}
}
