// internal/common/config/loader.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"farmers-connect/internal/common/validation"
)

// Load reads config.yaml from the usual search paths, merges the
// config.<APP_ENVIRONMENT>.yaml overlay and applies environment overrides.
// A missing config file is not an error; defaults cover a local backend.
func Load() (*Config, error) {
	loadEnvFile()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	env := os.Getenv("APP_ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading base config: %w", err)
		}
	}

	v.SetConfigName(fmt.Sprintf("config.%s", env))
	_ = v.MergeInConfig() // overlay is optional

	v.Set("app.environment", env)
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
	setDefaults(v)
	// backend.endpoint_base <- BACKEND_ENDPOINT_BASE
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v
}

func finish(v *viper.Viper) (*Config, error) {
	expandEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideFromEnv(&cfg)

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadEnvFile() {
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
				return
			}
		}
	}
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

// expandEnvVars replaces ${VAR} placeholders in string values.
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

// overrideFromEnv applies the well-known variable names that do not follow
// the section_key convention.
func overrideFromEnv(cfg *Config) {
	if val := os.Getenv("FARMERS_ENDPOINT_BASE"); val != "" {
		cfg.Backend.EndpointBase = val
	}
	if cfg.Weather.APICredential == "" {
		if val := os.Getenv("OPENWEATHER_API_KEY"); val != "" {
			cfg.Weather.APICredential = val
		}
	}
	if cfg.Diagnostics.Redis.Password == "" {
		if val := os.Getenv("REDIS_PASSWORD"); val != "" {
			cfg.Diagnostics.Redis.Password = val
		}
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "farmers-connect")
	v.SetDefault("app.version", "0.1.0")
	v.SetDefault("app.environment", "development")

	v.SetDefault("backend.endpoint_base", "http://localhost:5000")
	v.SetDefault("backend.options_path", "/api/options")
	v.SetDefault("backend.prediction_path", "/api/predict")
	v.SetDefault("backend.recommendation_path", "/api/recommend_crop")
	v.SetDefault("backend.timeout", 30000)

	v.SetDefault("weather.base_url", "https://api.openweathermap.org/data/2.5/weather")
	v.SetDefault("weather.api_credential", "")
	v.SetDefault("weather.units", "metric")
	v.SetDefault("weather.timeout", 10000)

	v.SetDefault("market.url", "https://kilimostat.api.ke/v1/prices")
	v.SetDefault("market.display_limit", 5)
	v.SetDefault("market.timeout", 10000)

	v.SetDefault("diagnostics.redis.enabled", false)
	v.SetDefault("diagnostics.redis.address", "localhost:6379")
	v.SetDefault("diagnostics.redis.password", "")
	v.SetDefault("diagnostics.redis.db", 0)
	v.SetDefault("diagnostics.redis.stream", "farmers-connect:diagnostics")
	v.SetDefault("diagnostics.redis.max_len", 1000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.service_name", "farmers-connect")
	v.SetDefault("metrics.textfile_path", "")
	v.SetDefault("metrics.pushgateway_url", "")

	v.SetDefault("forms.registry_path", "")
}

// validateConfig validates critical configuration fields
func validateConfig(cfg *Config) error {
	if cfg.Backend.EndpointBase == "" {
		return fmt.Errorf("backend.endpoint_base is required")
	}
	if !validation.ValidateURL(cfg.Backend.EndpointBase) {
		return fmt.Errorf("backend.endpoint_base must be an http(s) URL, got %q", cfg.Backend.EndpointBase)
	}
	if cfg.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive")
	}
	if cfg.Weather.BaseURL == "" {
		return fmt.Errorf("weather.base_url is required")
	}
	if cfg.Market.URL == "" {
		return fmt.Errorf("market.url is required")
	}
	if cfg.Market.DisplayLimit <= 0 {
		return fmt.Errorf("market.display_limit must be positive")
	}
	if cfg.Metrics.PushgatewayURL != "" && !validation.ValidateURL(cfg.Metrics.PushgatewayURL) {
		return fmt.Errorf("metrics.pushgateway_url must be an http(s) URL, got %q", cfg.Metrics.PushgatewayURL)
	}
	if cfg.Diagnostics.Redis.Enabled && cfg.Diagnostics.Redis.Address == "" {
		return fmt.Errorf("diagnostics.redis.address is required when redis is enabled")
	}
	return nil
}

// GetDuration converts milliseconds from config to time.Duration
func GetDuration(milliseconds int) time.Duration {
	return time.Duration(milliseconds) * time.Millisecond
}
