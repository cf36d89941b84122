package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"farmers-connect/internal/app"
	"farmers-connect/internal/diagnostics"
	"farmers-connect/internal/form"
	"farmers-connect/internal/inference"
)

// errNotSucceeded makes the process exit non-zero after the result was printed.
var errNotSucceeded = errors.New("submission did not succeed")

type submitOutput struct {
	Form        string              `json:"form"`
	Outcome     string              `json:"outcome"`
	Phase       string              `json:"phase"`
	Message     string              `json:"message"`
	RequestID   string              `json:"requestId,omitempty"`
	Diagnostics []diagnostics.Event `json:"diagnostics,omitempty"`
	Values      map[string]string   `json:"values"`
}

type optionsOutput struct {
	Loaded      bool                `json:"loaded"`
	Crops       []string            `json:"crops"`
	Markets     []string            `json:"markets"`
	Units       []string            `json:"units"`
	Diagnostics []diagnostics.Event `json:"diagnostics,omitempty"`
}

func newOptionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "Show the crops, markets and units offered by the backend",
		RunE: withRuntime(opts, func(cmd *cobra.Command, rt *runtime) error {
			session, err := rt.client.OpenForm(cmd.Context(), form.VariantPrediction)
			if err != nil {
				return err
			}
			o := session.Options()
			return rt.print(optionsOutput{
				Loaded:      o.Loaded,
				Crops:       o.Crops,
				Markets:     o.Markets,
				Units:       o.Units,
				Diagnostics: rt.events.Events(),
			},
				"Crops:   "+strings.Join(o.Crops, ", "),
				"Markets: "+strings.Join(o.Markets, ", "),
				"Units:   "+strings.Join(o.Units, ", "),
			)
		}),
	}
}

// formFlag binds one CLI flag to a form field.
type formFlag struct {
	flag  string
	field string
	usage string
}

var predictFlags = []formFlag{
	{flag: "market", field: "market", usage: "Market name"},
	{flag: "commodity", field: "commodity", usage: "Commodity name"},
	{flag: "unit", field: "unit", usage: "Unit of measure"},
	{flag: "quantity", field: "quantity", usage: "Quantity"},
	{flag: "year", field: "year", usage: "Year"},
	{flag: "month", field: "month", usage: "Month (1-12)"},
}

var recommendFlags = []formFlag{
	{flag: "nitrogen", field: "Nitrogen", usage: "Nitrogen content of the soil"},
	{flag: "phosphorus", field: "Phosphorus", usage: "Phosphorus content of the soil"},
	{flag: "potassium", field: "Potassium", usage: "Potassium content of the soil"},
	{flag: "temperature", field: "Temperature", usage: "Temperature in °C"},
	{flag: "humidity", field: "Humidity", usage: "Relative humidity in %"},
	{flag: "ph", field: "pH", usage: "Soil pH"},
	{flag: "rainfall", field: "Rainfall", usage: "Rainfall in mm"},
}

func newPredictCmd(opts *options) *cobra.Command {
	return newSubmitCmd(opts, "predict", "Predict the market price of a commodity", form.VariantPrediction, predictFlags)
}

func newRecommendCmd(opts *options) *cobra.Command {
	return newSubmitCmd(opts, "recommend", "Recommend a crop for the given soil and climate", form.VariantRecommendation, recommendFlags)
}

func newSubmitCmd(opts *options, use, short, variant string, flags []formFlag) *cobra.Command {
	values := make(map[string]*string, len(flags))
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: withRuntime(opts, func(cmd *cobra.Command, rt *runtime) error {
			session, err := rt.client.OpenForm(cmd.Context(), variant)
			if err != nil {
				return err
			}
			for _, f := range flags {
				if err := session.Set(f.field, *values[f.flag]); err != nil {
					return err
				}
			}
			return submit(cmd, rt, session)
		}),
	}
	for _, f := range flags {
		values[f.flag] = cmd.Flags().String(f.flag, "", f.usage)
	}
	return cmd
}

func submit(cmd *cobra.Command, rt *runtime, session *app.FormSession) error {
	result := session.Submit(cmd.Context())
	status := session.Status()

	message := result.Message
	if result.Outcome == inference.OutcomeRejected {
		message = "A submission is already in progress"
	}

	out := submitOutput{
		Form:        session.Schema().Variant,
		Outcome:     result.Outcome.String(),
		Phase:       status.Phase.String(),
		Message:     message,
		RequestID:   result.RequestID,
		Diagnostics: rt.events.Events(),
		Values:      map[string]string{},
	}
	for _, f := range session.Fields() {
		out.Values[f.Name] = session.Get(f.Name)
	}

	if err := rt.print(out, message); err != nil {
		return err
	}
	if result.Outcome != inference.OutcomeSucceeded {
		return fmt.Errorf("%w: %s", errNotSucceeded, result.Outcome)
	}
	return nil
}
