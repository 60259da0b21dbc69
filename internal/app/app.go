// Package app provides the core application initialization and lifecycle management.
package app

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/meterkit/socialmeter/internal/auth"
	"github.com/meterkit/socialmeter/internal/config"
	"github.com/meterkit/socialmeter/internal/fetch"
	"github.com/meterkit/socialmeter/internal/inspect"
	"github.com/meterkit/socialmeter/internal/ratelimit"
)

// Application holds all application dependencies and manages their lifecycle.
//
// It is created once at startup and shared across all CLI commands.
// Use Close() to ensure proper resource cleanup on shutdown.
type Application struct {
	Config      *config.Config
	Logger      *zerolog.Logger
	RateLimiter ratelimit.RateLimiter
	HTTPClient  *http.Client
	Session     *auth.SessionData
	Fetcher     *fetch.Client
	Inspector   *inspect.Inspector
	startTime   time.Time
}

// New creates and initializes a new Application with all dependencies.
//
// It performs the following initialization steps:
//   - Configures logging based on the provided config
//   - Creates the rate limiter for domain-based request throttling
//   - Initializes the HTTP client with proper timeouts
//   - Loads the stored login session if one is named
//   - Creates the tiered fetcher and the inspector on top of it
//
// If any step fails, an error is returned and no resources are allocated.
func New(ctx context.Context, cfg *config.Config) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	// Initialize logger based on config
	logLevel := zerolog.ErrorLevel // default: suppress non-verbose info logs
	switch cfg.LogLevel {
	case "debug":
		logLevel = zerolog.DebugLevel
	case "warn":
		logLevel = zerolog.WarnLevel
	case "error":
		logLevel = zerolog.ErrorLevel
	// Treat "info" as non-verbose (don't display info logs unless -v is used)
	default:
		logLevel = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	var logWriter io.Writer
	if cfg.JSONLog {
		// JSON logs to stderr
		logWriter = os.Stderr
	} else {
		// Human-friendly console output otherwise
		logWriter = zerolog.NewConsoleWriter()
	}

	logger := log.Output(logWriter).With().Timestamp().Logger()
	log.Logger = logger

	logger.Debug().
		Str("level", cfg.LogLevel).
		Bool("json", cfg.JSONLog).
		Msg("Logger initialized")

	// Create rate limiter
	rateLimiter := ratelimit.NewDomainLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	logger.Debug().
		Float64("rps", cfg.RateLimitRPS).
		Int("burst", cfg.RateLimitBurst).
		Msg("Rate limiter initialized")

	// Create HTTP client
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			DisableKeepAlives:   false,
		},
	}
	logger.Debug().
		Dur("timeout", cfg.HTTPTimeout).
		Msg("HTTP client initialized")

	// Load the session up front so a bad name fails fast
	var session *auth.SessionData
	if cfg.SessionName != "" {
		loaded, err := auth.Load(cfg.SessionName)
		if err != nil {
			return nil, fmt.Errorf("load session %q: %w", cfg.SessionName, err)
		}
		session = loaded
		logger.Debug().
			Str("session", cfg.SessionName).
			Int("cookies", len(session.Cookies)).
			Msg("Login session loaded")
	}

	fetcher := fetch.New(fetch.Options{
		HTTPClient:    httpClient,
		Limiter:       rateLimiter,
		Timeout:       cfg.HTTPTimeout,
		RenderTimeout: cfg.RenderTimeout,
		ForceRender:   cfg.ForceRender,
		Session:       session,
		Headless:      cfg.BrowserHeadless,
		Proxy:         cfg.Proxy,
		ChromePath:    cfg.ChromePath,
	})
	inspector := inspect.New(fetcher)
	logger.Debug().Msg("Inspector initialized")

	app := &Application{
		Config:      cfg,
		Logger:      &logger,
		RateLimiter: rateLimiter,
		HTTPClient:  httpClient,
		Session:     session,
		Fetcher:     fetcher,
		Inspector:   inspector,
		startTime:   time.Now(),
	}

	logger.Info().Msg("Application initialized successfully")
	return app, nil
}

// Close gracefully shuts down the application and all its resources.
//
// Rendered-fetch browser contexts are owned per inspection, so the only
// long-lived resource to release is the HTTP connection pool.
func (a *Application) Close(ctx context.Context) error {
	a.Logger.Info().Msg("Shutting down application")

	if a.HTTPClient != nil {
		a.HTTPClient.CloseIdleConnections()
	}

	uptime := time.Since(a.startTime)
	a.Logger.Info().Dur("uptime", uptime).Msg("Application shutdown complete")
	return nil
}

// Uptime returns how long the application has been running.
func (a *Application) Uptime() time.Duration {
	return time.Since(a.startTime)
}
