package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"farmers-connect/internal/dashboard"
	"farmers-connect/internal/diagnostics"
)

type dashboardOutput struct {
	Weather     *dashboard.Weather      `json:"weather,omitempty"`
	Prices      []dashboard.PriceRecord `json:"prices,omitempty"`
	Diagnostics []diagnostics.Event     `json:"diagnostics,omitempty"`
}

func newWeatherCmd(opts *options) *cobra.Command {
	var location string
	cmd := &cobra.Command{
		Use:   "weather",
		Short: "Show current weather for a location",
		RunE: withRuntime(opts, func(cmd *cobra.Command, rt *runtime) error {
			agg := rt.client.Dashboard()
			err := agg.FetchWeather(cmd.Context(), location)
			if printErr := render(rt, agg, true, false); printErr != nil {
				return printErr
			}
			return err
		}),
	}
	cmd.Flags().StringVarP(&location, "location", "l", "", "Town or city")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

func newMarketCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "market",
		Short: "Show current market prices",
		RunE: withRuntime(opts, func(cmd *cobra.Command, rt *runtime) error {
			agg := rt.client.Dashboard()
			err := agg.FetchMarket(cmd.Context())
			if printErr := render(rt, agg, false, true); printErr != nil {
				return printErr
			}
			return err
		}),
	}
}

func newDashboardCmd(opts *options) *cobra.Command {
	var location string
	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Fetch weather and market prices concurrently",
		RunE: withRuntime(opts, func(cmd *cobra.Command, rt *runtime) error {
			agg := rt.client.Dashboard()
			err := agg.Refresh(cmd.Context(), location)
			if printErr := render(rt, agg, true, true); printErr != nil {
				return printErr
			}
			return err
		}),
	}
	cmd.Flags().StringVarP(&location, "location", "l", "", "Town or city")
	_ = cmd.MarkFlagRequired("location")
	return cmd
}

func render(rt *runtime, agg *dashboard.Aggregator, weather, market bool) error {
	state := agg.State()
	out := dashboardOutput{Diagnostics: rt.events.Events()}
	var lines []string

	if weather {
		lines = append(lines, "Weather Updates")
		if state.Weather.Data != nil {
			out.Weather = state.Weather.Data
			lines = append(lines, dashboard.FormatWeather(*state.Weather.Data)...)
		} else {
			lines = append(lines, "Weather data unavailable")
		}
	}

	if market {
		if weather {
			lines = append(lines, "")
		}
		lines = append(lines, "Market Prices")
		top := agg.MarketView().Top()
		out.Prices = top
		if state.Market.Data == nil {
			lines = append(lines, "Market data unavailable")
		}
		for _, r := range top {
			lines = append(lines, fmt.Sprintf("- %s", dashboard.FormatPrice(r)))
		}
	}

	return rt.print(out, lines...)
}
