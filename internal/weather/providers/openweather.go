package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weatherscope/internal/weather"
)

// DefaultOpenWeatherURL is the OpenWeatherMap current conditions endpoint.
const DefaultOpenWeatherURL = "https://api.openweathermap.org/data/2.5/weather"

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

// NewOpenWeatherProvider creates a provider for apiKey. An empty baseURL
// selects DefaultOpenWeatherURL.
func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string) *OpenWeatherProvider {
	if baseURL == "" {
		baseURL = DefaultOpenWeatherURL
	}

	return &OpenWeatherProvider{
		name:    "openweathermap",
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  client,
		circuit: gobreaker.NewCircuitBreaker(BreakerSettings("openweather")),
		now:     time.Now,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

// Configured reports whether the provider holds a usable credential.
func (p *OpenWeatherProvider) Configured() bool {
	return CredentialConfigured(p.apiKey)
}

// Current fetches and normalizes current conditions for city.
func (p *OpenWeatherProvider) Current(ctx context.Context, city string) (weather.Snapshot, error) {
	if !p.Configured() {
		return weather.Snapshot{}, weather.NewQueryError(weather.KindMisconfigured, 0,
			errors.New("set OPENWEATHERMAP_API_KEY to a valid OpenWeatherMap key"))
	}

	values := url.Values{}
	values.Set("q", city)
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")

	u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
	req, err := http.NewRequest(http.MethodGet, u, http.NoBody)
	if err != nil {
		return weather.Snapshot{}, weather.NewQueryError(weather.KindNetworkOrUnknown, 0, err)
	}

	resp, err := doRequest(ctx, p.client, p.circuit, req)
	if err != nil {
		return weather.Snapshot{}, weather.NewQueryError(weather.KindNetworkOrUnknown, statusOf(err), err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return weather.Snapshot{}, weather.NewQueryError(weather.KindNotFound, resp.StatusCode, nil)
	case resp.StatusCode == http.StatusUnauthorized:
		return weather.Snapshot{}, weather.NewQueryError(weather.KindUnauthorized, resp.StatusCode, nil)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return weather.Snapshot{}, weather.NewQueryError(weather.KindNetworkOrUnknown, resp.StatusCode, nil)
	}

	var payload currentWeatherResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Snapshot{}, weather.NewQueryError(weather.KindNetworkOrUnknown, resp.StatusCode,
			fmt.Errorf("decoding response: %w", err))
	}

	snap := payload.toSnapshot(city)
	snap.FetchedAt = p.now().UTC()
	return snap, nil
}

// currentWeatherResponse holds the subset of the provider payload we consume.
type currentWeatherResponse struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"` // m/s with units=metric
	} `json:"wind"`
	Visibility float64 `json:"visibility"` // meters
	Weather    []struct {
		Main        string `json:"main"`
		Description string `json:"description"`
	} `json:"weather"`
}

func (r currentWeatherResponse) toSnapshot(queried string) weather.Snapshot {
	snap := weather.Snapshot{
		City:             r.Name,
		CountryCode:      r.Sys.Country,
		TemperatureC:     round(r.Main.Temp),
		Condition:        weather.UnknownCondition,
		HumidityPct:      round(r.Main.Humidity),
		WindSpeedKmh:     round(r.Wind.Speed * 3.6),
		PressureHpa:      round(r.Main.Pressure),
		FeelsLikeC:       round(r.Main.FeelsLike),
		VisibilityKm:     int(r.Visibility) / 1000,
		ConditionIconKey: weather.DefaultIconKey,
	}
	if snap.City == "" {
		snap.City = queried
	}
	if len(r.Weather) > 0 {
		if d := r.Weather[0].Description; d != "" {
			snap.Condition = d
		}
		if m := r.Weather[0].Main; m != "" {
			snap.ConditionIconKey = m
		}
	}
	return snap
}

func round(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}
