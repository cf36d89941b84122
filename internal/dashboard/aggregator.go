// Package dashboard fetches weather and market prices independently and keeps
// one slot per source.
package dashboard

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"farmers-connect/internal/common/errors"
	"farmers-connect/internal/common/events"
	"farmers-connect/internal/common/logger"
	"farmers-connect/internal/common/metrics"
	"farmers-connect/internal/common/observability"
	"farmers-connect/internal/diagnostics"
)

const (
	sourceWeather = "weather"
	sourceMarket  = "market"
)

// Slot holds the last fetched value of one source. Data is replaced wholesale
// and survives failed fetches. LastError is for diagnostics only.
type Slot[T any] struct {
	Data      *T
	Loading   bool
	LastError error
}

// State is a copy of both slots.
type State struct {
	Weather Slot[Weather]
	Market  Slot[[]PriceRecord]
}

// AnyLoading is the combined busy indicator.
func (s State) AnyLoading() bool {
	return s.Weather.Loading || s.Market.Loading
}

// Listener receives the full state after every slot change.
type Listener func(State)

type Aggregator struct {
	weather      WeatherSource
	market       MarketSource
	displayLimit int
	sink         diagnostics.Sink
	logger       logger.Logger
	obs          *observability.Observability

	mu      sync.Mutex
	state   State
	changes events.Dispatcher[State]
}

func NewAggregator(
	weather WeatherSource,
	market MarketSource,
	displayLimit int,
	sink diagnostics.Sink,
	log logger.Logger,
	obs *observability.Observability,
) *Aggregator {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Aggregator{
		weather:      weather,
		market:       market,
		displayLimit: displayLimit,
		sink:         diagnostics.OrNop(sink),
		logger:       log,
		obs:          obs,
	}
}

// FetchWeather refreshes the weather slot. On failure the previous data is
// kept and the error is reported to diagnostics. The market slot is never
// touched.
func (a *Aggregator) FetchWeather(ctx context.Context, location string) (err error) {
	a.update(func(s *State) { s.Weather.Loading = true })
	defer a.update(func(s *State) { s.Weather.Loading = false })

	var w *Weather
	a.observe(ctx, sourceWeather, func(ctx context.Context) error {
		w, err = a.weather.Current(ctx, location)
		return err
	}, attribute.String("location", location))

	if err != nil {
		a.update(func(s *State) { s.Weather.LastError = err })
		a.sink.Report(ctx, "dashboard.weather", errors.NewWeatherFetchFailedError(location, err))
		return err
	}
	a.update(func(s *State) {
		s.Weather.Data = w
		s.Weather.LastError = nil
	})
	return nil
}

// FetchMarket refreshes the market slot with the same rules as FetchWeather.
func (a *Aggregator) FetchMarket(ctx context.Context) (err error) {
	a.update(func(s *State) { s.Market.Loading = true })
	defer a.update(func(s *State) { s.Market.Loading = false })

	var records []PriceRecord
	a.observe(ctx, sourceMarket, func(ctx context.Context) error {
		records, err = a.market.Prices(ctx)
		return err
	})

	if err != nil {
		a.update(func(s *State) { s.Market.LastError = err })
		a.sink.Report(ctx, "dashboard.market", errors.NewMarketFetchFailedError(err))
		return err
	}
	a.update(func(s *State) {
		s.Market.Data = &records
		s.Market.LastError = nil
	})
	return nil
}

// Refresh fetches both sources concurrently. The fetches do not share a
// cancellable context, so one failing never stops the other. The first error
// is returned after both finish.
func (a *Aggregator) Refresh(ctx context.Context, location string) error {
	var g errgroup.Group
	g.Go(func() error { return a.FetchWeather(ctx, location) })
	g.Go(func() error { return a.FetchMarket(ctx) })
	return g.Wait()
}

// State returns a copy of both slots.
func (a *Aggregator) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot()
}

func (a *Aggregator) AnyLoading() bool {
	return a.State().AnyLoading()
}

// MarketView is the displayable part of the market slot.
func (a *Aggregator) MarketView() MarketView {
	state := a.State()
	view := MarketView{Limit: a.displayLimit}
	if state.Market.Data != nil {
		view.Records = *state.Market.Data
	}
	return view
}

// OnChange registers l for every subsequent slot change. Changes from the
// two sources arrive in the order they were applied, so the last state a
// listener sees is the current one.
func (a *Aggregator) OnChange(l Listener) {
	a.changes.Subscribe(l)
}

func (a *Aggregator) update(fn func(*State)) {
	a.mu.Lock()
	fn(&a.state)
	a.changes.Publish(a.snapshot())
	a.mu.Unlock()

	a.changes.Flush()
}

// snapshot must be called with mu held.
func (a *Aggregator) snapshot() State {
	state := a.state
	if state.Weather.Data != nil {
		w := *state.Weather.Data
		state.Weather.Data = &w
	}
	if state.Market.Data != nil {
		records := append([]PriceRecord(nil), (*state.Market.Data)...)
		state.Market.Data = &records
	}
	return state
}

func (a *Aggregator) observe(ctx context.Context, source string, fn func(context.Context) error, attrs ...attribute.KeyValue) {
	start := time.Now()
	ctx, span := a.obs.StartSpan(ctx, "dashboard.fetch."+source, attrs...)
	err := fn(ctx)
	observability.EndSpan(span, err)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = metrics.OutcomeFailure
	}
	metrics.FeedFetches.WithLabelValues(source, outcome).Inc()
	a.obs.RecordFetch(ctx, source, time.Since(start), outcome)
	a.logger.Debug("Feed fetched", map[string]interface{}{
		"source":     source,
		"outcome":    outcome,
		"durationMs": time.Since(start).Milliseconds(),
	})
}
