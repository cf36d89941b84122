// internal/common/config/config.go
package config

import (
	"fmt"
	"strings"
)

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	Backend     BackendConfig     `mapstructure:"backend"`
	Weather     WeatherConfig     `mapstructure:"weather"`
	Market      MarketConfig      `mapstructure:"market"`
	Diagnostics DiagnosticsConfig `mapstructure:"diagnostics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Forms       FormsConfig       `mapstructure:"forms"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// BackendConfig points at the prediction service that serves options,
// price predictions and crop recommendations.
type BackendConfig struct {
	EndpointBase       string `mapstructure:"endpoint_base"`
	OptionsPath        string `mapstructure:"options_path"`
	PredictionPath     string `mapstructure:"prediction_path"`
	RecommendationPath string `mapstructure:"recommendation_path"`
	Timeout            int    `mapstructure:"timeout"` // milliseconds
}

// URL joins the endpoint base and a path.
func (b BackendConfig) URL(path string) string {
	return strings.TrimRight(b.EndpointBase, "/") + "/" + strings.TrimLeft(path, "/")
}

type WeatherConfig struct {
	BaseURL       string `mapstructure:"base_url"`
	APICredential string `mapstructure:"api_credential"`
	Units         string `mapstructure:"units"`
	Timeout       int    `mapstructure:"timeout"` // milliseconds
}

type MarketConfig struct {
	URL          string `mapstructure:"url"`
	DisplayLimit int    `mapstructure:"display_limit"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
}

// DiagnosticsConfig controls where swallowed failures are forwarded. Logging is
// always on; Redis is optional.
type DiagnosticsConfig struct {
	Redis RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Stream   string `mapstructure:"stream"`
	MaxLen   int64  `mapstructure:"max_len"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig controls metric collection. A CLI run exports once on exit
// to a node-exporter textfile and/or a Pushgateway.
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	TextfilePath   string `mapstructure:"textfile_path"`
	PushgatewayURL string `mapstructure:"pushgateway_url"`
}

// FormsConfig optionally replaces the built-in form variants with a registry file.
type FormsConfig struct {
	RegistryPath string `mapstructure:"registry_path"`
}

func (c *Config) String() string {
	return fmt.Sprintf("app=%s env=%s backend=%s", c.App.Name, c.App.Environment, c.Backend.EndpointBase)
}
