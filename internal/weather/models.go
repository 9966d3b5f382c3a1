package weather

import (
	"strings"
	"time"
)

const (
	// UnknownCondition is reported when the provider omits a description.
	UnknownCondition = "Unknown"

	// DefaultIconKey is reported when the provider omits the condition group.
	DefaultIconKey = "Clear"
)

// Location identifies the place a query was issued for.
// Only City is required; Country narrows the lookup when present.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country,omitempty"`
}

// Key returns a canonical string key for indexing this location in stores.
func (l Location) Key() string {
	return CityKey(l.City)
}

// CityKey normalizes a city name into the key used by snapshot stores.
func CityKey(city string) string {
	return strings.ToLower(strings.TrimSpace(city))
}

// Snapshot is the normalized weather view produced by one successful query.
// A new snapshot supersedes the previous one wholesale.
type Snapshot struct {
	City             string    `json:"city"`
	CountryCode      string    `json:"countryCode"`
	TemperatureC     int       `json:"temperatureC"`
	Condition        string    `json:"condition"`
	HumidityPct      int       `json:"humidityPct"`
	WindSpeedKmh     int       `json:"windSpeedKmh"`
	PressureHpa      int       `json:"pressureHpa"`
	FeelsLikeC       int       `json:"feelsLikeC"`
	VisibilityKm     int       `json:"visibilityKm"`
	ConditionIconKey string    `json:"conditionIconKey"`
	FetchedAt        time.Time `json:"fetchedAt"` // always UTC
}

// Location returns the location the snapshot describes.
func (s Snapshot) Location() Location {
	return Location{City: s.City, Country: s.CountryCode}
}
