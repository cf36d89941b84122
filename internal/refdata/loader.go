// Package refdata loads the reference option lists (crops, markets, units)
// that feed the prediction form's choice fields.
package refdata

import (
	"context"
	"fmt"
	"sync"
	"time"

	"farmers-connect/internal/common/errors"
	httpclient "farmers-connect/internal/common/http"
	"farmers-connect/internal/common/logger"
	"farmers-connect/internal/common/metrics"
	"farmers-connect/internal/common/observability"
	"farmers-connect/internal/common/validation"
	"farmers-connect/internal/diagnostics"
	"farmers-connect/internal/form"
)

const diagnosticSource = "refdata.options"

const optionsSchema = `{
	"type": "object",
	"required": ["crops", "markets", "units"],
	"properties": {
		"crops":   {"type": "array", "items": {"type": "string"}},
		"markets": {"type": "array", "items": {"type": "string"}},
		"units":   {"type": "array", "items": {"type": "string"}}
	}
}`

// Options are the reference lists. Loaded is false until a load succeeds.
type Options struct {
	Crops   []string `json:"crops"`
	Markets []string `json:"markets"`
	Units   []string `json:"units"`
	Loaded  bool     `json:"-"`
}

// For returns the list feeding the given option source.
func (o Options) For(source form.OptionSource) []string {
	switch source {
	case form.SourceCrops:
		return o.Crops
	case form.SourceMarkets:
		return o.Markets
	case form.SourceUnits:
		return o.Units
	default:
		return nil
	}
}

func (o Options) clone() Options {
	return Options{
		Crops:   append([]string(nil), o.Crops...),
		Markets: append([]string(nil), o.Markets...),
		Units:   append([]string(nil), o.Units...),
		Loaded:  o.Loaded,
	}
}

type Config struct {
	URL     string
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		URL:     "http://localhost:5000/api/options",
		Timeout: 30 * time.Second,
	}
}

func (c Config) Validate() error {
	if !validation.ValidateURL(c.URL) {
		return fmt.Errorf("invalid options url %q", c.URL)
	}
	return nil
}

// Loader fetches the options once per form instance. A failed load is reported
// to the diagnostic sink and leaves the empty default in place.
type Loader struct {
	config Config
	client *httpclient.Client
	sink   diagnostics.Sink
	logger logger.Logger
	obs    *observability.Observability

	once    sync.Once
	mu      sync.RWMutex
	options Options
}

func NewLoader(cfg Config, client *httpclient.Client, sink diagnostics.Sink, log logger.Logger, obs *observability.Observability) *Loader {
	if client == nil {
		client = httpclient.NewClient(cfg.Timeout)
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Loader{
		config: cfg,
		client: client,
		sink:   diagnostics.OrNop(sink),
		logger: log,
		obs:    obs,
	}
}

// Load performs the fetch on first call only and returns the current options.
func (l *Loader) Load(ctx context.Context) Options {
	l.once.Do(func() {
		opts, err := l.fetch(ctx)
		if err != nil {
			metrics.ReferenceOptionsLoads.WithLabelValues(metrics.OutcomeFailure).Inc()
			l.sink.Report(ctx, diagnosticSource, errors.NewOptionsLoadFailedError(err).
				WithMetadata("url", l.config.URL))
			return
		}
		metrics.ReferenceOptionsLoads.WithLabelValues(metrics.OutcomeSuccess).Inc()
		l.logger.Debug("Reference options loaded", map[string]interface{}{
			"crops":   len(opts.Crops),
			"markets": len(opts.Markets),
			"units":   len(opts.Units),
		})

		l.mu.Lock()
		l.options = opts
		l.mu.Unlock()
	})
	return l.Options()
}

// Options returns a copy of the current options without fetching.
func (l *Loader) Options() Options {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.options.clone()
}

func (l *Loader) fetch(ctx context.Context) (opts Options, err error) {
	start := time.Now()
	ctx, span := l.obs.StartSpan(ctx, "refdata.load")
	defer func() {
		status := metrics.OutcomeSuccess
		if err != nil {
			status = metrics.OutcomeFailure
		}
		l.obs.RecordFetch(ctx, "options", time.Since(start), status)
		observability.EndSpan(span, err)
	}()

	resp, err := l.client.GetJSON(ctx, l.config.URL, nil)
	if err != nil {
		return Options{}, fmt.Errorf("request options: %w", err)
	}
	if !resp.OK() {
		return Options{}, fmt.Errorf("options endpoint returned status %d", resp.StatusCode)
	}
	if err := validation.ValidateDocument(optionsSchema, resp.Body); err != nil {
		return Options{}, err
	}
	if err := resp.DecodeJSON(&opts); err != nil {
		return Options{}, err
	}
	opts.Loaded = true
	return opts, nil
}
