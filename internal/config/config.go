package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
)

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool

	// Fetching
	HTTPTimeout   time.Duration
	RenderTimeout time.Duration
	Proxy         string

	// Rate Limiting
	RateLimitRPS   float64
	RateLimitBurst int

	// Browser
	BrowserHeadless bool
	ChromePath      string

	// Inspection toggles
	ForceRender bool
	SessionName string

	// Batch
	BatchConcurrency int
}

// Load builds a Config by combining defaults, environment variables, and CLI
// flags. Caller should pass the command so flags can be read.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := &Config{
		LogLevel:         DefaultLogLevel,
		JSONLog:          DefaultJSONLog,
		HTTPTimeout:      DefaultHTTPTimeout,
		RenderTimeout:    DefaultRenderTimeout,
		RateLimitRPS:     DefaultRateLimitRPS,
		RateLimitBurst:   DefaultRateLimitBurst,
		BrowserHeadless:  DefaultBrowserHeadless,
		BatchConcurrency: DefaultBatchConcurrency,
	}

	// Override from environment variables (simple helpers)
	if v := os.Getenv("SOCIALMETER_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SOCIALMETER_CHROME_PATH"); v != "" {
		cfg.ChromePath = v
	}
	if v := os.Getenv("SOCIALMETER_SESSION"); v != "" {
		cfg.SessionName = v
	}
	if v := os.Getenv("SOCIALMETER_FORCE_RENDER"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.ForceRender = b
		}
	}

	// Read CLI flags if provided
	if cmd != nil {
		if f := cmd.Flags().Lookup("proxy"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.Proxy = s
			}
		}
		if f := cmd.Flags().Lookup("timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.HTTPTimeout = d
				}
			}
		}
		if f := cmd.Flags().Lookup("render-timeout"); f != nil {
			if s := f.Value.String(); s != "" {
				if d, err := time.ParseDuration(s); err == nil {
					cfg.RenderTimeout = d
				}
			}
		}
		if f := cmd.Flags().Lookup("session"); f != nil {
			if s := f.Value.String(); s != "" {
				cfg.SessionName = s
			}
		}
		if f := cmd.Flags().Lookup("force-render"); f != nil {
			if f.Value.String() == "true" {
				cfg.ForceRender = true
			}
		}
		if f := cmd.Flags().Lookup("headful"); f != nil {
			if f.Value.String() == "true" {
				cfg.BrowserHeadless = false
			}
		}
		if f := cmd.Flags().Lookup("concurrency"); f != nil {
			if n, err := strconv.Atoi(f.Value.String()); err == nil && n > 0 {
				cfg.BatchConcurrency = n
			}
		}
		if f := cmd.Flags().Lookup("json-log"); f != nil {
			if f.Value.String() == "true" {
				cfg.JSONLog = true
			}
		}
		if f := cmd.Flags().Lookup("verbose"); f != nil {
			if f.Value.String() == "true" {
				cfg.LogLevel = "debug"
			}
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}
