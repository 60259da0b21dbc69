package extract

import (
	"reflect"
	"testing"

	"github.com/meterkit/socialmeter/pkg/models"
)

func TestExtractPageFollowersFromText(t *testing.T) {
	markup := `<html><body><div>NASA</div><div>12,345 位追蹤者</div></body></html>`
	m := Extract(models.TypeFBPage, markup)

	if m.Followers == nil || *m.Followers != 12345 {
		t.Fatalf("followers = %v, want 12345", m.Followers)
	}
	if m.SourceHint != models.SourceText {
		t.Errorf("source_hint = %s, want text", m.SourceHint)
	}
	if m.Note != "" {
		t.Errorf("note = %s, want absent", m.Note)
	}
}

func TestExtractPageFollowersEnglishSuffix(t *testing.T) {
	markup := `<html><body><span>3.4M followers</span></body></html>`
	m := Extract(models.TypeFBPage, markup)
	if m.Followers == nil || *m.Followers != 3400000 {
		t.Fatalf("followers = %v, want 3400000", m.Followers)
	}
}

func TestExtractFromMetaTier(t *testing.T) {
	markup := `<html><head><meta name="description" content="NASA. 8.9萬 位追蹤者."></head>` +
		`<body><div>nothing visible</div></body></html>`
	m := Extract(models.TypeFBPage, markup)
	if m.Followers == nil || *m.Followers != 89000 {
		t.Fatalf("followers = %v, want 89000", m.Followers)
	}
	if m.SourceHint != models.SourceMeta {
		t.Errorf("source_hint = %s, want meta", m.SourceHint)
	}
}

func TestExtractFromJSONTier(t *testing.T) {
	markup := `<html><body><script>{"props":{"followers_count":4567}}</script></body></html>`
	m := Extract(models.TypeFBPage, markup)
	if m.Followers == nil || *m.Followers != 4567 {
		t.Fatalf("followers = %v, want 4567", m.Followers)
	}
	if m.SourceHint != models.SourceJSON {
		t.Errorf("source_hint = %s, want json", m.SourceHint)
	}
}

func TestTextTierTakesPrecedenceOverJSON(t *testing.T) {
	markup := `<html><body><div>1.2K followers</div>` +
		`<script>{"followers_count":999999}</script></body></html>`
	m := Extract(models.TypeFBPage, markup)
	if m.Followers == nil || *m.Followers != 1200 {
		t.Fatalf("followers = %v, want 1200 (text tier wins)", m.Followers)
	}
	if m.SourceHint != models.SourceText {
		t.Errorf("source_hint = %s, want text", m.SourceHint)
	}
}

func TestSourceHintReflectsStrongestTier(t *testing.T) {
	// Likes resolve from visible text, shares only from embedded data:
	// the object-level hint must be the strongest contributing tier.
	markup := `<html><body><div>88 個讚</div>` +
		`<script>{"share_count":{"count":12}}</script></body></html>`
	m := Extract(models.TypeFBPost, markup)
	if m.Likes == nil || *m.Likes != 88 {
		t.Fatalf("likes = %v, want 88", m.Likes)
	}
	if m.Shares == nil || *m.Shares != 12 {
		t.Fatalf("shares = %v, want 12", m.Shares)
	}
	if m.SourceHint != models.SourceJSON {
		t.Errorf("source_hint = %s, want json", m.SourceHint)
	}
}

func TestExtractPostFields(t *testing.T) {
	markup := `<html><body><div>4.5K 個讚</div><div>120 次分享</div></body></html>`
	m := Extract(models.TypeFBPost, markup)
	if m.Likes == nil || *m.Likes != 4500 {
		t.Errorf("likes = %v, want 4500", m.Likes)
	}
	if m.Shares == nil || *m.Shares != 120 {
		t.Errorf("shares = %v, want 120", m.Shares)
	}
}

func TestExtractGroupMembers(t *testing.T) {
	markup := `<html><body><div>34.2萬 位成員</div></body></html>`
	m := Extract(models.TypeFBGroup, markup)
	if m.Members == nil || *m.Members != 342000 {
		t.Fatalf("members = %v, want 342000", m.Members)
	}
}

func TestExtractGroupPostMembers(t *testing.T) {
	markup := `<html><body><div>99 個讚</div><div>1.1K members</div></body></html>`
	m := Extract(models.TypeFBGroupPost, markup)
	if m.GroupMembers == nil || *m.GroupMembers != 1100 {
		t.Errorf("group_members = %v, want 1100", m.GroupMembers)
	}
	if m.Likes == nil || *m.Likes != 99 {
		t.Errorf("likes = %v, want 99", m.Likes)
	}
}

func TestNotFoundNote(t *testing.T) {
	m := Extract(models.TypeFBPage, `<html><body><p>nothing useful</p></body></html>`)
	if m.Note != models.NoteNotFound {
		t.Errorf("note = %s, want not_found", m.Note)
	}
	if m.SourceHint != "" {
		t.Errorf("source_hint = %s, want absent", m.SourceHint)
	}
}

func TestInstagramRequiresLogin(t *testing.T) {
	m := Extract(models.TypeIGProfile, `<html><body><p>Log in to continue</p></body></html>`)
	if m.Note != models.NoteRequiresLogin {
		t.Errorf("note = %s, want requires_login", m.Note)
	}
}

func TestInstagramPostHiddenLikes(t *testing.T) {
	// Owner followers resolve but the headline like count does not.
	markup := `<html><body><script>{"edge_followed_by":{"count":5000}}</script></body></html>`
	m := Extract(models.TypeIGPost, markup)
	if m.OwnerFollowers == nil || *m.OwnerFollowers != 5000 {
		t.Fatalf("owner_followers = %v, want 5000", m.OwnerFollowers)
	}
	if m.Note != models.NoteHidden {
		t.Errorf("note = %s, want hidden", m.Note)
	}
}

func TestInstagramPostResolvedLikes(t *testing.T) {
	markup := `<html><body><script>{"edge_liked_by":{"count":777}}</script></body></html>`
	m := Extract(models.TypeIGPost, markup)
	if m.Likes == nil || *m.Likes != 777 {
		t.Fatalf("likes = %v, want 777", m.Likes)
	}
	if m.Note != "" {
		t.Errorf("note = %s, want absent", m.Note)
	}
}

func TestUnknownTypeYieldsEmptyMetrics(t *testing.T) {
	m := Extract(models.TypeUnknown, `<html><body><div>12,345 位追蹤者</div></body></html>`)
	if !reflect.DeepEqual(m, &models.BasicMetrics{}) {
		t.Errorf("unknown type should yield empty metrics, got %+v", m)
	}
}

func TestExtractIsIdempotent(t *testing.T) {
	markup := `<html><body><div>4.5K 個讚</div><div>120 次分享</div>` +
		`<script>{"followers_count":555}</script></body></html>`
	a := Extract(models.TypeFBPost, markup)
	b := Extract(models.TypeFBPost, markup)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("extraction is not idempotent: %+v vs %+v", a, b)
	}
}

func TestMalformedMarkupDoesNotPanic(t *testing.T) {
	inputs := []string{
		"",
		"<<<<not html>>>>",
		`<html><body><div>12,345 位追蹤者`,
		"\x00\x01\x02",
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Extract panicked on %q: %v", in, r)
				}
			}()
			_ = Extract(models.TypeFBPage, in)
		}()
	}
}
