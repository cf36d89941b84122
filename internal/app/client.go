// Package app wires the form, inference and dashboard components into one
// client configured from injected settings.
package app

import (
	"context"
	"fmt"

	httpclient "farmers-connect/internal/common/http"
	"farmers-connect/internal/common/logger"
	"farmers-connect/internal/common/observability"
	"farmers-connect/internal/dashboard"
	"farmers-connect/internal/diagnostics"
	"farmers-connect/internal/form"
	"farmers-connect/internal/inference"
	"farmers-connect/internal/refdata"
	"farmers-connect/internal/submission"
)

type Client struct {
	settings Settings
	http     *httpclient.Client
	sink     diagnostics.Sink
	logger   logger.Logger
	obs      *observability.Observability
}

type Option func(*Client)

// WithHTTPClient replaces the backend HTTP client.
func WithHTTPClient(c *httpclient.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithSink(s diagnostics.Sink) Option {
	return func(cl *Client) { cl.sink = s }
}

func WithLogger(l logger.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

func WithObservability(o *observability.Observability) Option {
	return func(cl *Client) { cl.obs = o }
}

func NewClient(settings Settings, opts ...Option) (*Client, error) {
	if settings.EndpointBase == "" {
		return nil, fmt.Errorf("endpoint base is required")
	}
	if settings.Registry == nil {
		return nil, fmt.Errorf("form registry is required")
	}

	c := &Client{settings: settings}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.NewNoOpLogger()
	}
	if c.sink == nil {
		c.sink = diagnostics.NewLogSink(c.logger)
	}
	if c.http == nil {
		c.http = httpclient.NewClient(settings.BackendTimeout)
	}
	return c, nil
}

func (c *Client) Settings() Settings {
	return c.settings
}

// OpenForm creates a session for the named variant. Variants with choice
// fields load the reference options once, before the session is returned.
func (c *Client) OpenForm(ctx context.Context, variant string) (*FormSession, error) {
	def, ok := c.settings.Registry.Lookup(variant)
	if !ok {
		return nil, fmt.Errorf("unknown form variant %q", variant)
	}

	schema := form.SchemaFromDefinition(def)
	cfg, err := inference.ConfigFromDefinition(def, c.settings.EndpointBase)
	if err != nil {
		return nil, err
	}

	guard := submission.NewGuard()
	orchestrator, err := inference.NewOrchestrator(cfg, schema, guard, c.http, c.logger, c.obs)
	if err != nil {
		return nil, err
	}

	session := &FormSession{
		store:        form.NewStore(schema),
		guard:        guard,
		orchestrator: orchestrator,
	}
	if hasChoices(schema) {
		session.loader = refdata.NewLoader(c.settings.optionsConfig(), c.http, c.sink, c.logger, c.obs)
		session.loader.Load(ctx)
	}

	c.logger.Debug("Form session opened", map[string]interface{}{
		"form":     variant,
		"endpoint": cfg.URL(),
	})
	return session, nil
}

// Dashboard builds an aggregator over the configured weather and market feeds.
func (c *Client) Dashboard() *dashboard.Aggregator {
	weather := dashboard.NewWeatherClient(c.settings.Weather, nil)
	market := dashboard.NewMarketClient(c.settings.Market, nil)
	return dashboard.NewAggregator(weather, market, c.settings.Market.DisplayLimit, c.sink, c.logger, c.obs)
}

// Registration returns a fresh registration form.
func (c *Client) Registration() *RegistrationForm {
	return NewRegistrationForm()
}

func hasChoices(schema form.Schema) bool {
	for _, f := range schema.Fields {
		if f.Choices != form.SourceNone {
			return true
		}
	}
	return false
}
