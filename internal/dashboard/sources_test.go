package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeatherClient_Current(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "Nakuru", q.Get("q"))
		assert.Equal(t, "metric", q.Get("units"))
		assert.Equal(t, "test-key", q.Get("appid"))
		_, _ = w.Write([]byte(`{
			"name": "Nakuru",
			"main": {"temp": 21.5, "humidity": 60},
			"weather": [{"description": "light rain"}, {"description": "mist"}]
		}`))
	}))
	defer server.Close()

	client := NewWeatherClient(WeatherConfig{BaseURL: server.URL, APICredential: "test-key", Timeout: time.Second}, nil)
	w, err := client.Current(context.Background(), " Nakuru ")
	require.NoError(t, err)
	assert.Equal(t, Weather{Location: "Nakuru", Temperature: 21.5, Humidity: 60, Description: "light rain"}, *w)
}

func TestWeatherClient_EmptyConditions(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"main": {"temp": 30, "humidity": 20}, "weather": []}`))
	}))
	defer server.Close()

	client := NewWeatherClient(WeatherConfig{BaseURL: server.URL}, nil)
	w, err := client.Current(context.Background(), "Garissa")
	require.NoError(t, err)
	assert.Equal(t, "", w.Description)
	assert.Equal(t, "Garissa", w.Location)
}

func TestWeatherClient_Failures(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		location string
		wantErr  string
	}{
		{name: "not found", status: http.StatusNotFound, body: `{"cod":"404","message":"city not found"}`, location: "Atlantis", wantErr: "status 404: city not found"},
		{name: "unauthorized no body", status: http.StatusUnauthorized, body: ``, location: "Nakuru", wantErr: "status 401"},
		{name: "malformed", status: http.StatusOK, body: `{"main":`, location: "Nakuru", wantErr: "decode response body"},
		{name: "missing main", status: http.StatusOK, body: `{"weather":[]}`, location: "Nakuru", wantErr: "missing main"},
		{name: "empty location", status: http.StatusOK, body: `{}`, location: "  ", wantErr: "location is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewWeatherClient(WeatherConfig{BaseURL: server.URL}, nil)
			w, err := client.Current(context.Background(), tt.location)
			require.Error(t, err)
			assert.Nil(t, w)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestMarketClient_Prices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"commodity":"Maize","market":"Nairobi","price":45,"unit":"kg"},
			{"commodity":"Beans","market":"Kisumu","price":120.5,"unit":"kg"}
		]`))
	}))
	defer server.Close()

	client := NewMarketClient(MarketConfig{URL: server.URL, DisplayLimit: 5}, nil)
	records, err := client.Prices(context.Background())
	require.NoError(t, err)
	assert.Equal(t, samplePrices()[:2], records)
}

func TestMarketClient_PricesAsStrings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"commodity":"Maize","market":"Nairobi","price":"45","unit":"kg"},
			{"commodity":"Beans","market":"Kisumu","price":"KES 120.50","unit":"kg"},
			{"commodity":"Kale","market":"Nyeri","price":null,"unit":"bunch"}
		]`))
	}))
	defer server.Close()

	records, err := NewMarketClient(MarketConfig{URL: server.URL}, nil).Prices(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, Price("45"), records[0].Price)
	assert.Equal(t, "Beans in Kisumu: KES KES 120.50 per kg", FormatPrice(records[1]))
	assert.Equal(t, Price(""), records[2].Price)
}

func TestPrice_JSON(t *testing.T) {
	data, err := json.Marshal([]PriceRecord{
		{Commodity: "Maize", Price: "45.5"},
		{Commodity: "Beans", Price: "n/a"},
	})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":45.5`)
	assert.Contains(t, string(data), `"price":"n/a"`)

	var p Price
	assert.Error(t, json.Unmarshal([]byte(`true`), &p))
}

func TestMarketClient_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/down" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"commodity":"Maize"}`))
	}))
	defer server.Close()

	_, err := NewMarketClient(MarketConfig{URL: server.URL + "/down"}, nil).Prices(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")

	_, err = NewMarketClient(MarketConfig{URL: server.URL + "/object"}, nil).Prices(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response body")
}

func TestSourceConfigs_Validate(t *testing.T) {
	assert.NoError(t, DefaultWeatherConfig().Validate())
	assert.NoError(t, DefaultMarketConfig().Validate())
	assert.Error(t, WeatherConfig{BaseURL: "ftp://weather"}.Validate())
	assert.Error(t, MarketConfig{URL: "https://prices", DisplayLimit: -1}.Validate())
}
