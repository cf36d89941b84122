package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/options", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"crops":["Maize"],"markets":["Nairobi"],"units":["kg"]}`))
	})
	mux.HandleFunc("/api/predict", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"message":"120 KES/kg"}`))
	})
	mux.HandleFunc("/api/recommend_crop", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model unavailable"}`))
	})
	mux.HandleFunc("/weather", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"name":"Nakuru","main":{"temp":21.5,"humidity":60},"weather":[{"description":"light rain"}]}`))
	})
	mux.HandleFunc("/prices", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func writeConfig(t *testing.T, base string, extra ...string) string {
	t.Helper()
	content := fmt.Sprintf(`
backend:
  endpoint_base: %[1]s
weather:
  base_url: %[1]s/weather
  api_credential: test-key
market:
  url: %[1]s/prices
logging:
  level: error
  format: json
  output: stderr
`, base) + strings.Join(extra, "\n")
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestPredictCommand(t *testing.T) {
	t.Setenv("FARMERS_ENDPOINT_BASE", "")
	server := newBackend(t)
	cfg := writeConfig(t, server.URL)

	out, err := run(t, "predict", "--config", cfg,
		"--market", "Nairobi", "--commodity", "Maize", "--unit", "kg",
		"--quantity", "10", "--year", "2024", "--month", "6")
	require.NoError(t, err)
	assert.Equal(t, "120 KES/kg\n", out)
}

func TestPredictCommand_InvalidInputExitsNonZero(t *testing.T) {
	t.Setenv("FARMERS_ENDPOINT_BASE", "")
	server := newBackend(t)
	cfg := writeConfig(t, server.URL)

	out, err := run(t, "predict", "--config", cfg, "--json",
		"--market", "Nairobi", "--commodity", "Maize", "--unit", "kg",
		"--quantity", "10", "--year", "2024", "--month", "13")
	require.ErrorIs(t, err, errNotSucceeded)

	var got submitOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "invalid", got.Outcome)
	assert.Equal(t, "idle", got.Phase)
	assert.Equal(t, "month: value must be <= 12", got.Message)
}

func TestRecommendCommand_ApplicationError(t *testing.T) {
	t.Setenv("FARMERS_ENDPOINT_BASE", "")
	server := newBackend(t)
	cfg := writeConfig(t, server.URL)

	out, err := run(t, "recommend", "--config", cfg, "--json",
		"--nitrogen", "90", "--phosphorus", "42", "--potassium", "43",
		"--temperature", "20.8", "--humidity", "82", "--ph", "6.5", "--rainfall", "202.9")
	require.Error(t, err)

	var got submitOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "application_error", got.Outcome)
	assert.Equal(t, "failed", got.Phase)
	assert.Equal(t, "model unavailable", got.Message)
	assert.Equal(t, "6.5", got.Values["pH"])
}

func TestOptionsCommand(t *testing.T) {
	t.Setenv("FARMERS_ENDPOINT_BASE", "")
	server := newBackend(t)
	cfg := writeConfig(t, server.URL)

	out, err := run(t, "options", "--config", cfg, "--json")
	require.NoError(t, err)

	var got optionsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Loaded)
	assert.Equal(t, []string{"Maize"}, got.Crops)
}

func TestDashboardCommand_MarketFailureStillShowsWeather(t *testing.T) {
	t.Setenv("FARMERS_ENDPOINT_BASE", "")
	server := newBackend(t)
	cfg := writeConfig(t, server.URL)

	out, err := run(t, "dashboard", "--config", cfg, "--location", "Nakuru")
	require.Error(t, err)
	assert.Contains(t, out, "Temperature: 21.5°C")
	assert.Contains(t, out, "Description: light rain")
	assert.Contains(t, out, "Market data unavailable")
}

func TestPredictCommand_ExportsMetrics(t *testing.T) {
	t.Setenv("FARMERS_ENDPOINT_BASE", "")
	server := newBackend(t)

	var pushed string
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pushed = r.Method + " " + r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(gateway.Close)

	textfile := filepath.Join(t.TempDir(), "farmers-connect.prom")
	cfg := writeConfig(t, server.URL, fmt.Sprintf(`metrics:
  enabled: true
  service_name: farmers-connect
  textfile_path: %s
  pushgateway_url: %s
`, textfile, gateway.URL))

	_, err := run(t, "predict", "--config", cfg,
		"--market", "Nairobi", "--commodity", "Maize", "--unit", "kg",
		"--quantity", "10", "--year", "2024", "--month", "6")
	require.NoError(t, err)

	data, err := os.ReadFile(textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `form_submissions_total{form="price-prediction",outcome="succeeded"}`)
	assert.Contains(t, string(data), `reference_options_loads_total{outcome="success"}`)
	assert.Equal(t, "PUT /metrics/job/farmers-connect", pushed)
}

func TestRegisterCommand(t *testing.T) {
	t.Setenv("FARMERS_ENDPOINT_BASE", "")
	server := newBackend(t)
	cfg := writeConfig(t, server.URL)

	out, err := run(t, "register", "--config", cfg, "--json", "--email", "achieng@example.com")
	require.ErrorIs(t, err, errNotSucceeded)
	var got registerOutput
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.False(t, got.Valid)
	assert.Equal(t, "All fields are required", got.Message)

	out, err = run(t, "register", "--config", cfg,
		"--email", "achieng@example.com", "--first-name", "Achieng", "--last-name", "Otieno",
		"--password", "mahindi", "--farmer")
	require.NoError(t, err)
	assert.Equal(t, "Registration details are valid\n", out)

	out, err = run(t, "register", "--config", cfg, "--json",
		"--email", "achieng@example.com", "--first-name", "Achieng", "--last-name", "Otieno",
		"--password", "mahindi")
	require.NoError(t, err)
	got = registerOutput{}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.True(t, got.Valid)
	assert.Equal(t, "*******", got.Password)
	assert.Equal(t, "false", got.Values["is_farmer"])
	assert.NotContains(t, got.Values, "password")
}
