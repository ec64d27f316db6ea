// internal/agents/weather/config.go
package weather

import (
	"time"

	"mock-agents/internal/common/config"
)

type Config struct {
	GeocodeBaseURL    string
	GeocodeUserAgent  string
	GeocodeTimeout    time.Duration
	ForecastBaseURL   string
	ForecastUserAgent string
	ForecastTimeout   time.Duration
	DefaultCity       string
}

func LoadConfig(cfg *config.Config) *Config {
	return &Config{
		GeocodeBaseURL:    cfg.APIs.Geocode.BaseURL,
		GeocodeUserAgent:  cfg.APIs.Geocode.UserAgent,
		GeocodeTimeout:    config.GetDuration(cfg.APIs.Geocode.Timeout),
		ForecastBaseURL:   cfg.APIs.Forecast.BaseURL,
		ForecastUserAgent: cfg.APIs.Forecast.UserAgent,
		ForecastTimeout:   config.GetDuration(cfg.APIs.Forecast.Timeout),
		DefaultCity:       cfg.Personas.Weather.DefaultCity,
	}
}
