// Package preferences persists the user's measurement units and refresh
// cadence. Values are always one of the enumerated choices; anything else
// read from storage falls back to the defaults.
package preferences

import (
	"strconv"
)

// Units selects the measurement system shown to the user.
type Units string

const (
	UnitsMetric     Units = "metric"
	UnitsImperial   Units = "imperial"
	UnitsScientific Units = "kelvin"
)

// Storage keys. They are part of the persisted format and must not change.
const (
	KeyUnits           = "weather-units"
	KeyRefreshInterval = "weather-refresh-interval"
)

const (
	DefaultUnits                  = UnitsMetric
	DefaultRefreshIntervalMinutes = 15
)

// AllowedUnits lists the selectable units in display order.
var AllowedUnits = []Units{UnitsMetric, UnitsImperial, UnitsScientific}

// AllowedRefreshIntervals lists the selectable refresh cadences in minutes.
var AllowedRefreshIntervals = []int{5, 10, 15, 30}

// Preferences is the persisted per-user configuration.
type Preferences struct {
	Units                  Units `json:"units"`
	RefreshIntervalMinutes int   `json:"refreshIntervalMinutes"`
}

// Defaults returns the preferences used when nothing valid is stored.
func Defaults() Preferences {
	return Preferences{
		Units:                  DefaultUnits,
		RefreshIntervalMinutes: DefaultRefreshIntervalMinutes,
	}
}

// Label returns the human readable name of the unit system.
func (u Units) Label() string {
	switch u {
	case UnitsMetric:
		return "Metric (°C, km/h)"
	case UnitsImperial:
		return "Imperial (°F, mph)"
	case UnitsScientific:
		return "Scientific (K, m/s)"
	default:
		return string(u)
	}
}

func encodeInterval(minutes int) string {
	return strconv.Itoa(minutes)
}

func decodeInterval(raw string) (int, error) {
	return strconv.Atoi(raw)
}
