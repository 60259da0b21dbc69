package classify

import (
	"testing"

	"github.com/meterkit/socialmeter/pkg/models"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		url  string
		want models.ContentType
	}{
		// Facebook pages
		{"https://www.facebook.com/nasa", models.TypeFBPage},
		{"https://m.facebook.com/nasa/", models.TypeFBPage},
		{"https://facebook.com/profile.php?id=100076306083585", models.TypeFBPage},

		// Facebook posts
		{"https://www.facebook.com/nasa/posts/123456", models.TypeFBPost},
		{"https://www.facebook.com/nasa/videos/987", models.TypeFBPost},
		{"https://www.facebook.com/nasa/photos/a.1/2", models.TypeFBPost},
		{"https://www.facebook.com/share/p/AbCdEf/", models.TypeFBPost},
		{"https://www.facebook.com/share/r/XyZ/", models.TypeFBPost},
		{"https://www.facebook.com/watch/?v=123", models.TypeFBPost},
		{"https://www.facebook.com/reel/9876543", models.TypeFBPost},
		{"https://www.facebook.com/photo.php?fbid=1", models.TypeFBPost},
		{"https://www.facebook.com/permalink.php?story_fbid=1&id=2", models.TypeFBPost},
		{"https://fb.watch/abc", models.TypeFBPost},

		// Facebook groups and group posts
		{"https://www.facebook.com/groups/cooking", models.TypeFBGroup},
		{"https://www.facebook.com/groups/12345/", models.TypeFBGroup},
		{"https://www.facebook.com/groups/cooking/posts/777", models.TypeFBGroupPost},
		{"https://www.facebook.com/groups/cooking/permalink/777", models.TypeFBGroupPost},

		// Instagram
		{"https://www.instagram.com/p/XYZ/", models.TypeIGPost},
		{"https://www.instagram.com/reel/aBc123/", models.TypeIGPost},
		{"https://www.instagram.com/tv/QQQ/", models.TypeIGPost},
		{"https://www.instagram.com/nasa/", models.TypeIGProfile},
		{"https://www.instagram.com/nasa", models.TypeIGProfile},
		{"https://www.instagram.com/explore/", models.TypeUnknown},
		{"https://www.instagram.com/accounts/login/", models.TypeUnknown},

		// Unknowns
		{"https://www.facebook.com/login", models.TypeUnknown},
		{"https://example.com/nasa", models.TypeUnknown},
		{"", models.TypeUnknown},
		{"not a url", models.TypeUnknown},
	}
	for _, c := range cases {
		if got := Classify(c.url); got != c.want {
			t.Errorf("Classify(%q) = %s, want %s", c.url, got, c.want)
		}
	}
}

func TestGroupPostNeverClassifiedAsGroup(t *testing.T) {
	urls := []string{
		"https://www.facebook.com/groups/abc/posts/1",
		"https://m.facebook.com/groups/99/posts/1234567?ref=share",
	}
	for _, u := range urls {
		if got := Classify(u); got != models.TypeFBGroupPost {
			t.Errorf("Classify(%q) = %s, want fb_group_post", u, got)
		}
	}
}

func TestClassifyIgnoresQueryAndFragment(t *testing.T) {
	if got := Classify("https://www.facebook.com/nasa?ref=page_internal#about"); got != models.TypeFBPage {
		t.Errorf("got %s, want fb_page", got)
	}
}
