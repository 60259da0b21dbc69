package config

import "fmt"

func validate(c *Config) error {
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be > 0")
	}
	if c.RenderTimeout <= 0 {
		return fmt.Errorf("render timeout must be > 0")
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be > 0")
	}
	if c.BatchConcurrency <= 0 || c.BatchConcurrency > MaxBatchConcurrency {
		return fmt.Errorf("batch concurrency must be between 1 and %d", MaxBatchConcurrency)
	}
	return nil
}
