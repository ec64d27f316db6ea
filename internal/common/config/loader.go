// internal/common/config/loader.go
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Load reads configs/config.yaml (and config.<APP_ENVIRONMENT>.yaml) from the
// usual search paths, applies environment overrides and validates the result.
// A missing config file is not an error: every key has a default.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // ignore error if not found

	return finish(v)
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(path string) (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return finish(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	// Enable ENV override like PERSONAS_STOCK_PORT
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// loadEnvFile loads the first .env found walking up from the working
// directory. It stays silent: stdout belongs to the stdio transport.
func loadEnvFile() string {
	possiblePaths := []string{
		".env",
		"../.env",
		"../../.env",
	}
	if rootDir := findProjectRoot(); rootDir != "" {
		possiblePaths = append(possiblePaths, filepath.Join(rootDir, ".env"))
	}

	for _, path := range possiblePaths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return path
			}
		}
	}
	return ""
}

// Find project root by looking for go.mod
func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// expandEnvVars resolves ${VAR} placeholders in string values.
func expandEnvVars(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		strVal, ok := v.Get(key).(string)
		if !ok {
			continue
		}
		if strings.Contains(strVal, "${") || (strings.HasPrefix(strVal, "$") && len(strVal) > 1) {
			expanded := os.ExpandEnv(strVal)
			if expanded != strVal && expanded != "" {
				v.Set(key, expanded)
			}
		}
	}
}

// setDefaults registers every key so AutomaticEnv can override it even when
// no config file exists.
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "mock-agents")
	v.SetDefault("app.version", "dev")
	v.SetDefault("app.environment", "development")

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.ops_port", 9090)
	v.SetDefault("server.shutdown_timeout", 10000)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.strict_wire", false)

	v.SetDefault("personas.stock.enabled", true)
	v.SetDefault("personas.stock.port", 8082)
	v.SetDefault("personas.stock.model_id", "stock-market-agent")
	v.SetDefault("personas.stock.owned_by", "stock-local")
	v.SetDefault("personas.stock.model_created", 0)
	v.SetDefault("personas.stock.stream.policy", StreamPolicyWordGroups)
	v.SetDefault("personas.stock.stream.chunk_words", 5)
	v.SetDefault("personas.stock.stream.chunk_delay", 50)

	v.SetDefault("personas.weather.enabled", true)
	v.SetDefault("personas.weather.port", 8081)
	v.SetDefault("personas.weather.model_id", "weather-bot")
	v.SetDefault("personas.weather.owned_by", "weather-proxy")
	v.SetDefault("personas.weather.model_created", 0)
	v.SetDefault("personas.weather.default_city", "Seattle")
	v.SetDefault("personas.weather.stream.policy", StreamPolicySingleChunk)
	v.SetDefault("personas.weather.stream.chunk_words", 0)
	v.SetDefault("personas.weather.stream.chunk_delay", 0)

	v.SetDefault("apis.quote.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("apis.quote.user_agent", browserUserAgent)
	v.SetDefault("apis.quote.timeout", 10000)
	v.SetDefault("apis.geocode.base_url", "https://nominatim.openstreetmap.org")
	v.SetDefault("apis.geocode.user_agent", "mock-agents/1.0 (weather persona)")
	v.SetDefault("apis.geocode.timeout", 10000)
	v.SetDefault("apis.forecast.base_url", "https://api.weather.gov")
	v.SetDefault("apis.forecast.user_agent", "mock-agents/1.0 (weather persona)")
	v.SetDefault("apis.forecast.timeout", 10000)

	v.SetDefault("stdio.server_name", "test-stdio-mcp-server")
	v.SetDefault("stdio.server_version", "1.0.0")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("observability.service_name", "mock-agents")
	v.SetDefault("observability.trace_sample_ratio", 1.0)
}

// applyDefaults repairs zero values that survive an explicit but partial config file.
func applyDefaults(cfg *Config) {
	if cfg.Server.ShutdownTimeout <= 0 {
		cfg.Server.ShutdownTimeout = 10000
	}
	if cfg.Server.MaxBodyBytes <= 0 {
		cfg.Server.MaxBodyBytes = 1 << 20
	}

	for _, p := range []*PersonaConfig{&cfg.Personas.Stock, &cfg.Personas.Weather} {
		if p.Stream.Policy == StreamPolicyWordGroups && p.Stream.ChunkWords <= 0 {
			p.Stream.ChunkWords = 5
		}
		if p.Stream.ChunkDelay < 0 {
			p.Stream.ChunkDelay = 0
		}
	}
	if cfg.Personas.Weather.DefaultCity == "" {
		cfg.Personas.Weather.DefaultCity = "Seattle"
	}

	for _, e := range []*EndpointConfig{&cfg.APIs.Quote, &cfg.APIs.Geocode, &cfg.APIs.Forecast} {
		if e.Timeout <= 0 {
			e.Timeout = 10000
		}
		e.BaseURL = strings.TrimRight(e.BaseURL, "/")
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}
	if cfg.Observability.TraceSampleRatio < 0 || cfg.Observability.TraceSampleRatio > 1 {
		cfg.Observability.TraceSampleRatio = 1
	}
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	ports := map[int]string{}
	if cfg.Server.OpsPort != 0 {
		ports[cfg.Server.OpsPort] = "server.ops_port"
	}

	personas := []struct {
		name string
		cfg  PersonaConfig
	}{
		{"stock", cfg.Personas.Stock},
		{"weather", cfg.Personas.Weather},
	}
	for _, p := range personas {
		if !p.cfg.Enabled {
			continue
		}
		key := fmt.Sprintf("personas.%s", p.name)
		if p.cfg.Port <= 0 || p.cfg.Port > 65535 {
			return fmt.Errorf("%s.port must be between 1 and 65535", key)
		}
		if other, taken := ports[p.cfg.Port]; taken {
			return fmt.Errorf("%s.port %d already used by %s", key, p.cfg.Port, other)
		}
		ports[p.cfg.Port] = key + ".port"

		if p.cfg.ModelID == "" {
			return fmt.Errorf("%s.model_id is required", key)
		}
		switch p.cfg.Stream.Policy {
		case StreamPolicyWordGroups, StreamPolicySingleChunk:
		default:
			return fmt.Errorf("%s.stream.policy must be %q or %q", key, StreamPolicyWordGroups, StreamPolicySingleChunk)
		}
	}

	endpoints := map[string]string{
		"apis.quote.base_url":    cfg.APIs.Quote.BaseURL,
		"apis.geocode.base_url":  cfg.APIs.Geocode.BaseURL,
		"apis.forecast.base_url": cfg.APIs.Forecast.BaseURL,
	}
	for key, raw := range endpoints {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%s must be an absolute URL, got %q", key, raw)
		}
	}

	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
