package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: farmers-connect\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:5000", cfg.Backend.EndpointBase)
	assert.Equal(t, "/api/options", cfg.Backend.OptionsPath)
	assert.Equal(t, "/api/predict", cfg.Backend.PredictionPath)
	assert.Equal(t, "/api/recommend_crop", cfg.Backend.RecommendationPath)
	assert.Equal(t, 5, cfg.Market.DisplayLimit)
	assert.Equal(t, "metric", cfg.Weather.Units)
	assert.Equal(t, "farmers-connect:diagnostics", cfg.Diagnostics.Redis.Stream)
	assert.False(t, cfg.Diagnostics.Redis.Enabled)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadFromFile_ValuesAndExpansion(t *testing.T) {
	t.Setenv("TEST_WEATHER_KEY", "secret-key")
	path := writeConfig(t, `
backend:
  endpoint_base: https://predict.example.org/
  timeout: 1500
weather:
  api_credential: ${TEST_WEATHER_KEY}
market:
  display_limit: 3
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://predict.example.org/", cfg.Backend.EndpointBase)
	assert.Equal(t, "https://predict.example.org/api/predict", cfg.Backend.URL(cfg.Backend.PredictionPath))
	assert.Equal(t, 1500*time.Millisecond, GetDuration(cfg.Backend.Timeout))
	assert.Equal(t, "secret-key", cfg.Weather.APICredential)
	assert.Equal(t, 3, cfg.Market.DisplayLimit)
}

func TestLoadFromFile_EnvOverrides(t *testing.T) {
	t.Setenv("FARMERS_ENDPOINT_BASE", "http://10.0.0.2:5000")
	t.Setenv("OPENWEATHER_API_KEY", "from-env")
	t.Setenv("LOGGING_LEVEL", "debug")
	path := writeConfig(t, "app:\n  name: farmers-connect\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http://10.0.0.2:5000", cfg.Backend.EndpointBase)
	assert.Equal(t, "from-env", cfg.Weather.APICredential)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name:   "non http endpoint",
			body:   "backend:\n  endpoint_base: ftp://example.org\n",
			errMsg: "backend.endpoint_base must be an http(s) URL",
		},
		{
			name:   "zero display limit",
			body:   "market:\n  display_limit: -1\n",
			errMsg: "market.display_limit must be positive",
		},
		{
			name:   "redis without address",
			body:   "diagnostics:\n  redis:\n    enabled: true\n    address: \"\"\n",
			errMsg: "diagnostics.redis.address is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
