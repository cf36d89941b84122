package inference

import (
	"fmt"
	"strings"

	"farmers-connect/internal/form"
	"farmers-connect/pkg/registry"
)

// Convention is how an endpoint signals success.
type Convention int

const (
	// BooleanFlagConvention succeeds when the body's success field is true.
	BooleanFlagConvention Convention = iota
	// HTTPStatusConvention succeeds on any 2xx status.
	HTTPStatusConvention
)

func (c Convention) String() string {
	switch c {
	case BooleanFlagConvention:
		return "boolean_flag"
	case HTTPStatusConvention:
		return "http_status"
	default:
		return fmt.Sprintf("convention(%d)", int(c))
	}
}

// ParseConvention accepts the names returned by String.
func ParseConvention(s string) (Convention, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "boolean_flag":
		return BooleanFlagConvention, nil
	case "http_status":
		return HTTPStatusConvention, nil
	default:
		return 0, fmt.Errorf("unknown convention %q", s)
	}
}

// successField is the body flag read by BooleanFlagConvention.
const successField = "success"

// LoadingMessage is the interim status of every dispatched submission.
const LoadingMessage = "Loading..."

// Config describes one form variant's endpoint and response handling.
type Config struct {
	Form           string
	EndpointBase   string
	Path           string
	Convention     Convention
	MessageField   string
	ErrorField     string
	Fallback       string
	LoadingMessage string
}

// URL is the full endpoint address.
func (c Config) URL() string {
	return strings.TrimRight(c.EndpointBase, "/") + "/" + strings.TrimLeft(c.Path, "/")
}

func (c Config) Validate() error {
	if c.Form == "" {
		return fmt.Errorf("form id is required")
	}
	if c.EndpointBase == "" {
		return fmt.Errorf("endpoint base is required for %s", c.Form)
	}
	if c.Path == "" {
		return fmt.Errorf("endpoint path is required for %s", c.Form)
	}
	if c.Convention != BooleanFlagConvention && c.Convention != HTTPStatusConvention {
		return fmt.Errorf("unsupported convention %s for %s", c.Convention, c.Form)
	}
	if c.Fallback == "" {
		return fmt.Errorf("fallback message is required for %s", c.Form)
	}
	return nil
}

// ConfigFromDefinition converts a registry entry into the orchestrator config.
func ConfigFromDefinition(def registry.FormDefinition, endpointBase string) (Config, error) {
	convention, err := ParseConvention(def.Convention)
	if err != nil {
		return Config{}, fmt.Errorf("form %s: %w", def.ID, err)
	}
	return Config{
		Form:           def.ID,
		EndpointBase:   endpointBase,
		Path:           def.Endpoint,
		Convention:     convention,
		MessageField:   def.MessageField,
		ErrorField:     def.ErrorField,
		Fallback:       def.Fallback,
		LoadingMessage: LoadingMessage,
	}, nil
}

func builtIn(variant, endpointBase string) Config {
	def, ok := registry.Default().Lookup(variant)
	if !ok {
		panic("inference: no built-in variant " + variant)
	}
	cfg, err := ConfigFromDefinition(def, endpointBase)
	if err != nil {
		panic(err)
	}
	return cfg
}

// PredictionConfig is the built-in price prediction variant.
func PredictionConfig(endpointBase string) Config {
	return builtIn(form.VariantPrediction, endpointBase)
}

// RecommendationConfig is the built-in crop recommendation variant.
func RecommendationConfig(endpointBase string) Config {
	return builtIn(form.VariantRecommendation, endpointBase)
}
