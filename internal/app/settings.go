package app

import (
	"fmt"
	"strings"
	"time"

	"farmers-connect/internal/common/config"
	"farmers-connect/internal/dashboard"
	"farmers-connect/internal/form"
	"farmers-connect/internal/refdata"
	"farmers-connect/pkg/registry"
)

// Settings is the injected configuration of a client: endpoint base,
// credentials and the form variants it can open.
type Settings struct {
	EndpointBase   string
	OptionsPath    string
	BackendTimeout time.Duration
	Weather        dashboard.WeatherConfig
	Market         dashboard.MarketConfig
	Registry       *registry.FormRegistry
}

// SettingsFromConfig builds Settings from loaded configuration. The form
// registry is read from forms.registry_path when set, otherwise the built-in
// variants are used. Paths from the backend section override registry
// endpoints of the built-in variants.
func SettingsFromConfig(cfg *config.Config) (Settings, error) {
	reg := registry.Default()
	if cfg.Forms.RegistryPath != "" {
		loaded, err := registry.LoadRegistry(cfg.Forms.RegistryPath)
		if err != nil {
			return Settings{}, fmt.Errorf("load form registry: %w", err)
		}
		reg = loaded
	} else {
		if err := reg.Update(form.VariantPrediction, "endpoint", cfg.Backend.PredictionPath); err != nil {
			return Settings{}, err
		}
		if err := reg.Update(form.VariantRecommendation, "endpoint", cfg.Backend.RecommendationPath); err != nil {
			return Settings{}, err
		}
	}

	return Settings{
		EndpointBase:   cfg.Backend.EndpointBase,
		OptionsPath:    cfg.Backend.OptionsPath,
		BackendTimeout: config.GetDuration(cfg.Backend.Timeout),
		Weather: dashboard.WeatherConfig{
			BaseURL:       cfg.Weather.BaseURL,
			APICredential: cfg.Weather.APICredential,
			Units:         cfg.Weather.Units,
			Timeout:       config.GetDuration(cfg.Weather.Timeout),
		},
		Market: dashboard.MarketConfig{
			URL:          cfg.Market.URL,
			DisplayLimit: cfg.Market.DisplayLimit,
			Timeout:      config.GetDuration(cfg.Market.Timeout),
		},
		Registry: reg,
	}, nil
}

// DefaultSettings targets a backend at endpointBase with built-in variants.
func DefaultSettings(endpointBase string) Settings {
	return Settings{
		EndpointBase:   endpointBase,
		OptionsPath:    "/api/options",
		BackendTimeout: 30 * time.Second,
		Weather:        dashboard.DefaultWeatherConfig(),
		Market:         dashboard.DefaultMarketConfig(),
		Registry:       registry.Default(),
	}
}

func (s Settings) optionsConfig() refdata.Config {
	return refdata.Config{
		URL:     strings.TrimRight(s.EndpointBase, "/") + "/" + strings.TrimLeft(s.OptionsPath, "/"),
		Timeout: s.BackendTimeout,
	}
}
