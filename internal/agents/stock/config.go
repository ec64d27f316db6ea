// internal/agents/stock/config.go
package stock

import (
	"time"

	"mock-agents/internal/common/config"
)

type Config struct {
	QuoteBaseURL string
	UserAgent    string
	Timeout      time.Duration
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		QuoteBaseURL: cfg.APIs.Quote.BaseURL,
		UserAgent:    cfg.APIs.Quote.UserAgent,
		Timeout:      config.GetDuration(cfg.APIs.Quote.Timeout),
	}
}
