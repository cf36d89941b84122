package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmers-connect/internal/common/config"
	"farmers-connect/internal/common/errors"
	"farmers-connect/internal/common/logger"
	"farmers-connect/internal/diagnostics"
	"farmers-connect/internal/form"
	"farmers-connect/internal/inference"
	"farmers-connect/internal/submission"
	"farmers-connect/pkg/registry"
)

type backend struct {
	optionsCalls int32
	optionsDown  bool
}

func (b *backend) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/options", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.optionsCalls, 1)
		if b.optionsDown {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"crops":["Maize","Beans"],"markets":["Nairobi"],"units":["kg"]}`))
	})
	mux.HandleFunc("/api/predict", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		if body["market"] != "Nairobi" {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "unsupported market"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "message": "120 KES/kg"})
	})
	mux.HandleFunc("/api/recommend_crop", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model unavailable"}`))
	})
	return mux
}

func newTestClient(t *testing.T, b *backend) (*Client, *diagnostics.MemorySink) {
	t.Helper()
	server := httptest.NewServer(b.handler(t))
	t.Cleanup(server.Close)

	sink := diagnostics.NewMemorySink()
	client, err := NewClient(DefaultSettings(server.URL),
		WithSink(sink),
		WithLogger(logger.NewTestLogger(t)),
	)
	require.NoError(t, err)
	return client, sink
}

func TestPredictionSession_EndToEnd(t *testing.T) {
	b := &backend{}
	client, sink := newTestClient(t, b)

	session, err := client.OpenForm(context.Background(), form.VariantPrediction)
	require.NoError(t, err)

	assert.True(t, session.Options().Loaded)
	assert.Equal(t, []string{"Maize", "Beans"}, session.Choices("commodity"))
	assert.Equal(t, []string{"kg"}, session.Choices("unit"))
	assert.Nil(t, session.Choices("quantity"))

	var statuses []submission.Status
	session.OnStatusChange(func(s submission.Status) { statuses = append(statuses, s) })

	require.NoError(t, session.SetAll(map[string]string{
		"market": "Nairobi", "commodity": "Maize", "unit": "kg",
		"quantity": "10", "year": "2024", "month": "6",
	}))
	result := session.Submit(context.Background())

	assert.Equal(t, inference.OutcomeSucceeded, result.Outcome)
	assert.Equal(t, submission.Status{Phase: submission.Succeeded, Message: "120 KES/kg"}, session.Status())
	require.Len(t, statuses, 2)
	assert.Equal(t, "Loading...", statuses[0].Message)

	require.NoError(t, session.Set("market", "Mombasa"))
	result = session.Submit(context.Background())
	assert.Equal(t, inference.OutcomeApplicationError, result.Outcome)
	assert.Equal(t, "unsupported market", session.Status().Message)

	assert.Equal(t, int32(1), atomic.LoadInt32(&b.optionsCalls))
	assert.Equal(t, 0, sink.Len())
}

func TestPredictionSession_OptionsFailureIsSilent(t *testing.T) {
	client, sink := newTestClient(t, &backend{optionsDown: true})

	session, err := client.OpenForm(context.Background(), form.VariantPrediction)
	require.NoError(t, err)

	assert.False(t, session.Options().Loaded)
	assert.Empty(t, session.Choices("market"))
	assert.Equal(t, submission.Status{Phase: submission.Idle}, session.Status())

	require.Equal(t, 1, sink.Len())
	assert.Equal(t, string(errors.ErrCodeOptionsLoadFailed), sink.Events()[0].Code)

	// free-text values still submit
	require.NoError(t, session.SetAll(map[string]string{
		"market": "Nairobi", "commodity": "Maize", "unit": "kg",
		"quantity": "10", "year": "2024", "month": "6",
	}))
	assert.Equal(t, inference.OutcomeSucceeded, session.Submit(context.Background()).Outcome)
}

func TestRecommendationSession(t *testing.T) {
	b := &backend{}
	client, _ := newTestClient(t, b)

	session, err := client.OpenForm(context.Background(), form.VariantRecommendation)
	require.NoError(t, err)
	assert.Equal(t, int32(0), atomic.LoadInt32(&b.optionsCalls))
	assert.Equal(t, form.RecommendationSchema().Names(), session.Schema().Names())

	result := session.Submit(context.Background())
	assert.Equal(t, inference.OutcomeInvalid, result.Outcome)
	assert.Equal(t, submission.Idle, session.Status().Phase)

	require.NoError(t, session.SetAll(map[string]string{
		"Nitrogen": "90", "Phosphorus": "42", "Potassium": "43", "Temperature": "20.8",
		"Humidity": "82", "pH": "6.5", "Rainfall": "202.9",
	}))
	result = session.Submit(context.Background())
	assert.Equal(t, inference.OutcomeApplicationError, result.Outcome)
	assert.Equal(t, submission.Status{Phase: submission.Failed, Message: "model unavailable"}, session.Status())
}

func TestOpenForm_UnknownVariant(t *testing.T) {
	client, _ := newTestClient(t, &backend{})
	_, err := client.OpenForm(context.Background(), "soil-analysis")
	assert.EqualError(t, err, `unknown form variant "soil-analysis"`)
}

func TestNewClient_RequiresSettings(t *testing.T) {
	_, err := NewClient(Settings{})
	assert.Error(t, err)

	_, err = NewClient(Settings{EndpointBase: "http://localhost:5000"})
	assert.Error(t, err)
}

func TestOpenForm_FollowsRegistryEdits(t *testing.T) {
	b := &backend{}
	server := httptest.NewServer(b.handler(t))
	t.Cleanup(server.Close)

	settings := DefaultSettings(server.URL)
	require.NoError(t, settings.Registry.Update(form.VariantRecommendation, "errorField", "detail"))
	require.NoError(t, settings.Registry.Update(form.VariantRecommendation, "fallback", "No recommendation"))
	client, err := NewClient(settings, WithLogger(logger.NewTestLogger(t)))
	require.NoError(t, err)

	session, err := client.OpenForm(context.Background(), form.VariantRecommendation)
	require.NoError(t, err)
	assert.Equal(t, form.RecommendationSchema(), session.Schema())

	require.NoError(t, session.SetAll(map[string]string{
		"Nitrogen": "90", "Phosphorus": "42", "Potassium": "43", "Temperature": "20.8",
		"Humidity": "82", "pH": "6.5", "Rainfall": "202.9",
	}))
	result := session.Submit(context.Background())
	assert.Equal(t, inference.OutcomeApplicationError, result.Outcome)
	assert.Equal(t, "No recommendation", result.Message)
}

func TestSettingsFromConfig(t *testing.T) {
	cfg := &config.Config{
		Backend: config.BackendConfig{
			EndpointBase:       "http://10.0.0.2:5000",
			OptionsPath:        "/api/options",
			PredictionPath:     "/v2/predict",
			RecommendationPath: "/api/recommend_crop",
			Timeout:            5000,
		},
		Weather: config.WeatherConfig{BaseURL: "https://weather.example.com", APICredential: "key", Units: "metric", Timeout: 1000},
		Market:  config.MarketConfig{URL: "https://prices.example.com", DisplayLimit: 3, Timeout: 1000},
	}

	settings, err := SettingsFromConfig(cfg)
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.2:5000", settings.EndpointBase)
	assert.Equal(t, "key", settings.Weather.APICredential)
	assert.Equal(t, 3, settings.Market.DisplayLimit)
	assert.Equal(t, "http://10.0.0.2:5000/api/options", settings.optionsConfig().URL)

	pred, _ := settings.Registry.Lookup(form.VariantPrediction)
	assert.Equal(t, "/v2/predict", pred.Endpoint)
}

func TestSettingsFromConfig_RegistryFile(t *testing.T) {
	reg := registry.Default()
	require.NoError(t, reg.Update(form.VariantRecommendation, "fallback", "No recommendation"))
	path := filepath.Join(t.TempDir(), "forms.json")
	require.NoError(t, registry.Save(reg, path))

	settings, err := SettingsFromConfig(&config.Config{Forms: config.FormsConfig{RegistryPath: path}})
	require.NoError(t, err)
	rec, _ := settings.Registry.Lookup(form.VariantRecommendation)
	assert.Equal(t, "No recommendation", rec.Fallback)

	require.NoError(t, os.WriteFile(path, []byte(`{"version":"1","forms":[]}`), 0644))
	_, err = SettingsFromConfig(&config.Config{Forms: config.FormsConfig{RegistryPath: path}})
	assert.Error(t, err)
}

func TestRegistrationForm(t *testing.T) {
	client, _ := newTestClient(t, &backend{})
	reg := client.Registration()

	assert.Equal(t, "All fields are required", reg.Validate())

	require.NoError(t, reg.Store.SetAll(map[string]string{
		"first_name": "Achieng", "last_name": "Otieno",
		"email": "achieng@example.com", "password": "mahindi",
	}))
	assert.Equal(t, "", reg.Validate())

	assert.Equal(t, "*******", reg.DisplayedPassword())
	reg.Password.Toggle()
	assert.Equal(t, "mahindi", reg.DisplayedPassword())
}
