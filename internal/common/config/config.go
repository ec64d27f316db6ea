// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Personas      PersonasConfig      `mapstructure:"personas"`
	APIs          APIsConfig          `mapstructure:"apis"`
	Stdio         StdioConfig         `mapstructure:"stdio"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Host            string `mapstructure:"host"`
	OpsPort         int    `mapstructure:"ops_port"`         // health + metrics listener, 0 disables
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
	MaxBodyBytes    int64  `mapstructure:"max_body_bytes"`
	// StrictWire validates every outgoing envelope against the wire schema
	// and logs violations.
	StrictWire bool `mapstructure:"strict_wire"`
}

// Address joins host and port for a listener.
func (s ServerConfig) Address(port int) string {
	return fmt.Sprintf("%s:%d", s.Host, port)
}

// --- Persona Config ---

type PersonasConfig struct {
	Stock   PersonaConfig `mapstructure:"stock"`
	Weather PersonaConfig `mapstructure:"weather"`
}

// PersonaConfig holds the settings shared by every persona instance.
type PersonaConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	ModelID string `mapstructure:"model_id"`
	OwnedBy string `mapstructure:"owned_by"`
	// ModelCreated is the unix time advertised on the model card; 0 omits it.
	ModelCreated int64        `mapstructure:"model_created"`
	DefaultCity  string       `mapstructure:"default_city"` // weather only
	Stream       StreamConfig `mapstructure:"stream"`
}

const (
	StreamPolicyWordGroups  = "word_groups"
	StreamPolicySingleChunk = "single_chunk"
)

type StreamConfig struct {
	Policy     string `mapstructure:"policy"`
	ChunkWords int    `mapstructure:"chunk_words"`
	ChunkDelay int    `mapstructure:"chunk_delay"` // milliseconds
}

// --- External API Config ---

type APIsConfig struct {
	Quote    EndpointConfig `mapstructure:"quote"`
	Geocode  EndpointConfig `mapstructure:"geocode"`
	Forecast EndpointConfig `mapstructure:"forecast"`
}

type EndpointConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	UserAgent string `mapstructure:"user_agent"`
	Timeout   int    `mapstructure:"timeout"` // milliseconds
}

// --- Stdio Tool Server Config ---

type StdioConfig struct {
	ServerName    string `mapstructure:"server_name"`
	ServerVersion string `mapstructure:"server_version"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	ServiceName      string  `mapstructure:"service_name"`
	TraceSampleRatio float64 `mapstructure:"trace_sample_ratio"`
}
