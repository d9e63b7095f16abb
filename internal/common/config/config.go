// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Tickets       TicketsConfig       `mapstructure:"tickets"`
	Discrepancy   DiscrepancyConfig   `mapstructure:"discrepancy"`
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
	Host            string     `mapstructure:"host"`
	Port            int        `mapstructure:"port"`
	ReadTimeout     int        `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int        `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int        `mapstructure:"shutdown_timeout"` // milliseconds
	CORS            CORSConfig `mapstructure:"cors"`
}

// Address returns the host:port the HTTP server binds to.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	AllowedMethods []string `mapstructure:"allowed_methods"`
	AllowedHeaders []string `mapstructure:"allowed_headers"`
}

// TicketsConfig points at the upstream tickets API.
type TicketsConfig struct {
	APIURL  string `mapstructure:"api_url"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// DiscrepancyConfig holds the classification policy defaults applied when a
// request omits tolerance or threshold.
type DiscrepancyConfig struct {
	DefaultTolerance float64 `mapstructure:"default_tolerance"`
	DefaultThreshold float64 `mapstructure:"default_threshold"`
	MaxBodyBytes     int64   `mapstructure:"max_body_bytes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

type ObservabilityConfig struct {
	MetricsEnabled bool   `mapstructure:"metrics_enabled"`
	MetricsPath    string `mapstructure:"metrics_path"`
	TracingEnabled bool   `mapstructure:"tracing_enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
}
