package auth

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/chromedp/cdproto/storage"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// LoginOptions configures the interactive login capture.
type LoginOptions struct {
	SessionName string
	// URL is the login page to open, e.g. the Facebook or Instagram login.
	URL string
	// WaitSelector, when set, ends the capture as soon as the element is
	// visible. Without it the capture runs until Timeout and takes whatever
	// cookies exist then.
	WaitSelector string
	Timeout      time.Duration
}

// InteractiveLogin opens a visible browser, waits for the user to log in and
// saves the resulting cookies as a named session.
func InteractiveLogin(opts LoginOptions) (*SessionData, error) {
	if opts.SessionName == "" {
		return nil, fmt.Errorf("session name is required")
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if opts.Timeout == 0 {
		opts.Timeout = 5 * time.Minute
	}
	if os.Getenv("DISPLAY") == "" && os.Getenv("WAYLAND_DISPLAY") == "" {
		return nil, fmt.Errorf("interactive login requires a display server; " +
			"in headless environments import a storage-state file with 'socialmeter sessions import' instead")
	}

	log.Info().Str("session", opts.SessionName).Str("url", opts.URL).Msg("Starting interactive login")

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", false),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 720),
	}
	// The browser itself is not bound to the login timeout, otherwise the
	// cookie read below would race the deadline.
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	if err := chromedp.Run(browserCtx, chromedp.Navigate(opts.URL)); err != nil {
		return nil, fmt.Errorf("failed to open login page: %w", err)
	}

	if opts.WaitSelector != "" {
		log.Info().Str("selector", opts.WaitSelector).Msg("Waiting for login completion")
		waitCtx, waitCancel := context.WithTimeout(browserCtx, opts.Timeout)
		err := chromedp.Run(waitCtx, chromedp.WaitVisible(opts.WaitSelector, chromedp.ByQuery))
		waitCancel()
		if err != nil {
			return nil, fmt.Errorf("login wait failed: %w", err)
		}
	} else {
		// No selector to watch: give the user the full timeout to finish,
		// then take whatever cookies exist.
		log.Info().Dur("timeout", opts.Timeout).Msg("No wait selector, capturing cookies after timeout")
		time.Sleep(opts.Timeout)
	}

	readCtx, readCancel := context.WithTimeout(browserCtx, 10*time.Second)
	defer readCancel()

	var cookies []Cookie
	err := chromedp.Run(readCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		raw, err := storage.GetCookies().Do(ctx)
		if err != nil {
			return err
		}
		for _, c := range raw {
			cookies = append(cookies, Cookie{
				Name:     c.Name,
				Value:    c.Value,
				Domain:   c.Domain,
				Path:     c.Path,
				Expires:  c.Expires,
				HTTPOnly: c.HTTPOnly,
				Secure:   c.Secure,
			})
		}
		return nil
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to read cookies: %w", err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("no cookies captured; login may not have completed")
	}

	session := &SessionData{
		Name:      opts.SessionName,
		URL:       opts.URL,
		Cookies:   cookies,
		CreatedAt: time.Now(),
	}
	if exp := earliestExpiry(cookies); !exp.IsZero() {
		session.ExpiresAt = exp
	}
	if err := Save(session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	log.Info().Str("session", opts.SessionName).Int("cookies", len(cookies)).Msg("Session saved")
	return session, nil
}
