package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/meterkit/socialmeter/pkg/models"
)

func newTestClient(opts Options) *Client {
	c := New(opts)
	c.jitter = func() {} // no politeness delay in tests
	return c
}

func TestFetchDirectSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("expected a User-Agent header")
		}
		w.Write([]byte("<html><body>hello</body></html>"))
	}))
	defer server.Close()

	c := newTestClient(Options{Timeout: 5 * time.Second})
	res := c.Fetch(context.Background(), server.URL)

	if !res.OK {
		t.Fatal("expected fetch to succeed")
	}
	if res.Method != models.MethodDirect {
		t.Errorf("method = %s, want direct", res.Method)
	}
	if res.Markup == "" {
		t.Error("expected markup")
	}
}

func TestFetchFallsBackToRendered(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := newTestClient(Options{Timeout: 5 * time.Second})
	rendered := false
	c.render = func(ctx context.Context, url string) (string, error) {
		rendered = true
		return "<html><body>rendered</body></html>", nil
	}

	res := c.Fetch(context.Background(), server.URL)
	if !rendered {
		t.Fatal("expected rendered tier to be attempted after direct failure")
	}
	if !res.OK || res.Method != models.MethodRendered {
		t.Errorf("result = %+v, want OK rendered", res)
	}
}

func TestFetchTotalFailureDoesNotError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := newTestClient(Options{Timeout: 5 * time.Second})
	c.render = func(ctx context.Context, url string) (string, error) {
		return "", errors.New("no browser available")
	}

	res := c.Fetch(context.Background(), server.URL)
	if res.OK {
		t.Error("expected failed FetchResult")
	}
	if res.Markup != "" {
		t.Error("failed fetch must not carry markup")
	}
}

func TestForceRenderSkipsDirect(t *testing.T) {
	directHit := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		directHit = true
		w.Write([]byte("direct"))
	}))
	defer server.Close()

	c := newTestClient(Options{Timeout: 5 * time.Second, ForceRender: true})
	c.render = func(ctx context.Context, url string) (string, error) {
		return "<html></html>", nil
	}

	res := c.Fetch(context.Background(), server.URL)
	if directHit {
		t.Error("direct tier must be skipped when ForceRender is set")
	}
	if !res.OK || res.Method != models.MethodRendered {
		t.Errorf("result = %+v, want OK rendered", res)
	}
}

func TestResolveRedirectHTTP(t *testing.T) {
	var target string
	mux := http.NewServeMux()
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("you made it"))
	})
	mux.HandleFunc("/short", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusFound)
	})
	server := httptest.NewServer(mux)
	defer server.Close()
	target = server.URL + "/final"

	c := newTestClient(Options{Timeout: 5 * time.Second})
	final, ok := c.resolveRedirectHTTP(context.Background(), server.URL+"/short")
	if !ok {
		t.Fatal("expected redirect to be observed")
	}
	if final != target {
		t.Errorf("final = %q, want %q", final, target)
	}
}

func TestRewriteMobileHost(t *testing.T) {
	cases := []struct {
		in        string
		want      string
		rewritten bool
	}{
		{"https://www.facebook.com/nasa/posts/1?x=y", "https://m.facebook.com/nasa/posts/1?x=y", true},
		{"https://facebook.com/nasa", "https://m.facebook.com/nasa", true},
		{"https://m.facebook.com/nasa", "https://m.facebook.com/nasa", false},
		{"https://www.instagram.com/nasa/", "https://www.instagram.com/nasa/", false},
		{"https://fb.watch/abc", "https://fb.watch/abc", false},
	}
	for _, c := range cases {
		got, rewritten := RewriteMobileHost(c.in)
		if got != c.want || rewritten != c.rewritten {
			t.Errorf("RewriteMobileHost(%q) = %q, %v; want %q, %v", c.in, got, rewritten, c.want, c.rewritten)
		}
	}
}
