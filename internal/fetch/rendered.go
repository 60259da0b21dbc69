package fetch

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// renderPage fetches url through a headless browser, restoring the stored
// session first when one is configured. Each call owns its own browser
// context; nothing is shared across inspections.
func (c *Client) renderPage(ctx context.Context, url string) (markup string, err error) {
	defer func() {
		// Browser-engine panics must not escape the fetcher.
		if r := recover(); r != nil {
			markup, err = "", fmt.Errorf("render panic: %v", r)
		}
	}()

	runCtx, cancel := context.WithTimeout(ctx, c.renderTimeout)
	defer cancel()

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("window-size", "1280,900"),
		chromedp.Flag("disk-cache-size", "0"),
		chromedp.UserAgent(uaPool[0]),
	}
	if c.headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	}
	if c.proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(c.proxy))
	}
	if path := c.findChrome(); path != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, allocOpts...)
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(runCtx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	tasks := []chromedp.Action{network.Enable()}
	if c.session != nil {
		tasks = append(tasks, c.restoreCookies())
	}
	tasks = append(tasks,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
	if err := chromedp.Run(browserCtx, tasks...); err != nil {
		return "", fmt.Errorf("navigation failed: %w", err)
	}

	// Best effort network quiescence: the feed surfaces keep streaming, so
	// failing to settle is fine, whatever markup exists gets returned.
	settleCtx, settleCancel := context.WithTimeout(browserCtx, 3*time.Second)
	if err := chromedp.Run(settleCtx, waitSettled()); err != nil {
		log.Debug().Err(err).Str("url", url).Msg("Page did not reach quiescence, taking markup as-is")
	}
	settleCancel()

	if err := chromedp.Run(browserCtx, chromedp.OuterHTML("html", &markup, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("markup capture failed: %w", err)
	}
	log.Debug().Str("url", url).Int("bytes", len(markup)).Bool("authenticated", c.session != nil).
		Msg("Rendered fetch succeeded")
	return markup, nil
}

// restoreCookies injects the stored session's cookies before navigation.
func (c *Client) restoreCookies() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, ck := range c.session.Cookies {
			p := network.SetCookie(ck.Name, ck.Value).
				WithDomain(ck.Domain).
				WithPath(ck.Path).
				WithHTTPOnly(ck.HTTPOnly).
				WithSecure(ck.Secure)
			if ck.Expires > 0 {
				exp := cdp.TimeSinceEpoch(time.Unix(int64(ck.Expires), 0))
				p = p.WithExpires(&exp)
			}
			if err := p.Do(ctx); err != nil {
				return fmt.Errorf("restore cookie %s: %w", ck.Name, err)
			}
		}
		log.Debug().Int("cookies", len(c.session.Cookies)).Msg("Session cookies restored")
		return nil
	})
}

// waitSettled polls document.readyState and gives late scripts a moment.
func waitSettled() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for {
			var state string
			if err := chromedp.Evaluate("document.readyState", &state).Do(ctx); err != nil {
				return err
			}
			if state == "complete" {
				time.Sleep(300 * time.Millisecond)
				return nil
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(200 * time.Millisecond):
			}
		}
	})
}

// resolveRedirectRendered navigates url and reads the terminal location.
func (c *Client) resolveRedirectRendered(ctx context.Context, url string) (string, bool) {
	runCtx, cancel := context.WithTimeout(ctx, c.renderTimeout)
	defer cancel()

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", "new"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(uaPool[0]),
	}
	if path := c.findChrome(); path != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, allocOpts...)
	}
	allocCtx, allocCancel := chromedp.NewExecAllocator(runCtx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	var final string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Location(&final),
	)
	if err != nil {
		log.Debug().Err(err).Str("url", url).Msg("Rendered redirect resolution failed")
		return "", false
	}
	if final == "" || final == url {
		return "", false
	}
	return final, true
}

// findChrome locates a Chrome-compatible executable, preferring an explicit
// configuration over well-known install paths.
func (c *Client) findChrome() string {
	if c.chromePath != "" {
		return c.chromePath
	}
	if path := os.Getenv("SOCIALMETER_CHROME_PATH"); path != "" {
		return path
	}

	var candidates []string
	switch runtime.GOOS {
	case "darwin":
		candidates = []string{
			"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
			"/Applications/Chromium.app/Contents/MacOS/Chromium",
		}
	case "windows":
		for _, base := range []string{os.Getenv("ProgramFiles"), os.Getenv("ProgramFiles(x86)"), os.Getenv("LocalAppData")} {
			if base != "" {
				candidates = append(candidates, filepath.Join(base, `Google\Chrome\Application\chrome.exe`))
			}
		}
	default:
		candidates = []string{
			"/usr/bin/google-chrome-stable",
			"/usr/bin/google-chrome",
			"/usr/bin/chromium-browser",
			"/usr/bin/chromium",
		}
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	for _, name := range []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser", "chrome"} {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}
	// Let chromedp try its own default.
	return ""
}
