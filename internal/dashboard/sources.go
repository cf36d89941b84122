package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	httpclient "farmers-connect/internal/common/http"
	"farmers-connect/internal/common/validation"
)

// Weather is the current conditions at a location. Description comes from
// the first reported condition only.
type Weather struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	Description string  `json:"description"`
}

// PriceRecord is one row of the market price feed.
type PriceRecord struct {
	Commodity string `json:"commodity"`
	Market    string `json:"market"`
	Price     Price  `json:"price"`
	Unit      string `json:"unit"`
}

// Price is a feed price as the feed wrote it. Feeds send either a JSON number
// or a string; both are kept verbatim for display.
type Price string

func (p *Price) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*p = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*p = Price(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("price must be a number or string: %w", err)
	}
	*p = Price(n)
	return nil
}

// MarshalJSON writes numeric prices as numbers and anything else as a string.
func (p Price) MarshalJSON() ([]byte, error) {
	if _, err := strconv.ParseFloat(string(p), 64); err == nil && json.Valid([]byte(p)) {
		return []byte(p), nil
	}
	return json.Marshal(string(p))
}

// WeatherSource fetches current weather.
type WeatherSource interface {
	Current(ctx context.Context, location string) (*Weather, error)
}

// MarketSource fetches the full price list.
type MarketSource interface {
	Prices(ctx context.Context) ([]PriceRecord, error)
}

type WeatherConfig struct {
	BaseURL       string
	APICredential string
	Units         string
	Timeout       time.Duration
}

func DefaultWeatherConfig() WeatherConfig {
	return WeatherConfig{
		BaseURL: "https://api.openweathermap.org/data/2.5/weather",
		Units:   "metric",
		Timeout: 10 * time.Second,
	}
}

func (c WeatherConfig) Validate() error {
	if !validation.ValidateURL(c.BaseURL) {
		return fmt.Errorf("invalid weather base url %q", c.BaseURL)
	}
	return nil
}

// WeatherClient talks to an OpenWeather-compatible current weather endpoint.
type WeatherClient struct {
	config WeatherConfig
	client *httpclient.Client
}

func NewWeatherClient(cfg WeatherConfig, client *httpclient.Client) *WeatherClient {
	if cfg.Units == "" {
		cfg.Units = "metric"
	}
	if client == nil {
		client = httpclient.NewClient(cfg.Timeout)
	}
	return &WeatherClient{config: cfg, client: client}
}

type weatherResponse struct {
	Name string `json:"name"`
	Main *struct {
		Temp     float64 `json:"temp"`
		Humidity float64 `json:"humidity"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
	} `json:"weather"`
	Message string `json:"message"`
}

func (c *WeatherClient) Current(ctx context.Context, location string) (*Weather, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("location is required")
	}

	query := url.Values{}
	query.Set("q", location)
	query.Set("units", c.config.Units)
	query.Set("appid", c.config.APICredential)

	resp, err := c.client.GetJSON(ctx, c.config.BaseURL, query)
	if err != nil {
		return nil, fmt.Errorf("request weather: %w", err)
	}

	var body weatherResponse
	decodeErr := resp.DecodeJSON(&body)
	if !resp.OK() {
		if decodeErr == nil && body.Message != "" {
			return nil, fmt.Errorf("weather service returned status %d: %s", resp.StatusCode, body.Message)
		}
		return nil, fmt.Errorf("weather service returned status %d", resp.StatusCode)
	}
	if decodeErr != nil {
		return nil, decodeErr
	}
	if body.Main == nil {
		return nil, fmt.Errorf("weather response missing main section")
	}

	w := &Weather{
		Location:    location,
		Temperature: body.Main.Temp,
		Humidity:    body.Main.Humidity,
	}
	if body.Name != "" {
		w.Location = body.Name
	}
	if len(body.Weather) > 0 {
		w.Description = body.Weather[0].Description
	}
	return w, nil
}

type MarketConfig struct {
	URL          string
	DisplayLimit int
	Timeout      time.Duration
}

func DefaultMarketConfig() MarketConfig {
	return MarketConfig{
		URL:          "https://kilimostat.api.ke/v1/prices",
		DisplayLimit: 5,
		Timeout:      10 * time.Second,
	}
}

func (c MarketConfig) Validate() error {
	if !validation.ValidateURL(c.URL) {
		return fmt.Errorf("invalid market url %q", c.URL)
	}
	if c.DisplayLimit < 0 {
		return fmt.Errorf("display limit must not be negative")
	}
	return nil
}

// MarketClient reads the market price feed.
type MarketClient struct {
	config MarketConfig
	client *httpclient.Client
}

func NewMarketClient(cfg MarketConfig, client *httpclient.Client) *MarketClient {
	if client == nil {
		client = httpclient.NewClient(cfg.Timeout)
	}
	return &MarketClient{config: cfg, client: client}
}

func (c *MarketClient) Prices(ctx context.Context) ([]PriceRecord, error) {
	resp, err := c.client.GetJSON(ctx, c.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("request market prices: %w", err)
	}
	if !resp.OK() {
		return nil, fmt.Errorf("market service returned status %d", resp.StatusCode)
	}

	var records []PriceRecord
	if err := resp.DecodeJSON(&records); err != nil {
		return nil, err
	}
	return records, nil
}
