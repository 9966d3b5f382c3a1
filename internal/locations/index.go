// Package locations holds the known location set used for search
// suggestions and the monitored-locations list.
package locations

import (
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Suggestion is one known location offered while typing.
type Suggestion struct {
	ID            int    `json:"id"`
	DisplayName   string `json:"displayName"`
	CountryCode   string `json:"countryCode"`
	LastKnownTemp string `json:"lastKnownTemp"`
}

// City returns the city part of the display name ("London, UK" -> "London").
func (s Suggestion) City() string {
	name, _, _ := strings.Cut(s.DisplayName, ",")
	return strings.TrimSpace(name)
}

// DefaultSeed is the built-in search suggestion set.
func DefaultSeed() []Suggestion {
	return []Suggestion{
		{ID: 1, DisplayName: "New York, NY", CountryCode: "US", LastKnownTemp: "22°C"},
		{ID: 2, DisplayName: "London, UK", CountryCode: "GB", LastKnownTemp: "18°C"},
		{ID: 3, DisplayName: "Tokyo, JP", CountryCode: "JP", LastKnownTemp: "28°C"},
		{ID: 4, DisplayName: "Sydney, AU", CountryCode: "AU", LastKnownTemp: "16°C"},
		{ID: 5, DisplayName: "Paris, FR", CountryCode: "FR", LastKnownTemp: "20°C"},
	}
}

// DefaultFavorites is the built-in monitored-locations list.
func DefaultFavorites() []Suggestion {
	return []Suggestion{
		{ID: 1, DisplayName: "New York, United States", CountryCode: "US", LastKnownTemp: "22°C"},
		{ID: 2, DisplayName: "London, United Kingdom", CountryCode: "GB", LastKnownTemp: "18°C"},
		{ID: 3, DisplayName: "Tokyo, Japan", CountryCode: "JP", LastKnownTemp: "28°C"},
		{ID: 4, DisplayName: "Sydney, Australia", CountryCode: "AU", LastKnownTemp: "16°C"},
		{ID: 5, DisplayName: "Dubai, UAE", CountryCode: "AE", LastKnownTemp: "35°C"},
		{ID: 6, DisplayName: "Mumbai, India", CountryCode: "IN", LastKnownTemp: "29°C"},
	}
}

// Index is an ordered, concurrency-safe set of known locations.
type Index struct {
	mu    sync.RWMutex
	items []Suggestion
}

// NewIndex creates an index seeded with items, preserving their order.
func NewIndex(items []Suggestion) *Index {
	return &Index{items: append([]Suggestion(nil), items...)}
}

// Filter returns the locations whose display name contains query,
// case-insensitively, in index order. A blank query matches nothing.
func (x *Index) Filter(query string) []Suggestion {
	if strings.TrimSpace(query) == "" {
		return []Suggestion{}
	}
	// Whitespace inside the query is significant.
	needle := strings.ToLower(query)

	x.mu.RLock()
	defer x.mu.RUnlock()

	matches := make([]Suggestion, 0, len(x.items))
	for _, item := range x.items {
		if strings.Contains(strings.ToLower(item.DisplayName), needle) {
			matches = append(matches, item)
		}
	}
	return matches
}

// Closest returns the known location that best fuzzy-matches query. Ties
// go to the earlier entry.
func (x *Index) Closest(query string) (Suggestion, bool) {
	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		return Suggestion{}, false
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	if len(x.items) == 0 {
		return Suggestion{}, false
	}
	cities := make([]string, len(x.items))
	for i, item := range x.items {
		cities[i] = item.City()
	}

	// Match both directions so "londn" finds "London" and "London UK" does too.
	ranks := fuzzy.RankFindNormalizedFold(trimmed, cities)
	if len(ranks) == 0 {
		for i, city := range cities {
			if fuzzy.MatchNormalizedFold(city, trimmed) {
				return x.items[i], true
			}
		}
		return Suggestion{}, false
	}

	best := ranks[0]
	for _, rank := range ranks[1:] {
		if rank.Distance < best.Distance ||
			(rank.Distance == best.Distance && rank.OriginalIndex < best.OriginalIndex) {
			best = rank
		}
	}
	return x.items[best.OriginalIndex], true
}

// Get returns the location with id.
func (x *Index) Get(id int) (Suggestion, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	for _, item := range x.items {
		if item.ID == id {
			return item, true
		}
	}
	return Suggestion{}, false
}

// All returns a copy of every location in index order.
func (x *Index) All() []Suggestion {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return append([]Suggestion{}, x.items...)
}

// Len returns the number of known locations.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.items)
}

// UpdateTemperature sets LastKnownTemp on the location with id.
func (x *Index) UpdateTemperature(id int, temp string) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	for i := range x.items {
		if x.items[i].ID == id {
			x.items[i].LastKnownTemp = temp
			return true
		}
	}
	return false
}

// Remove drops the location with id from the index.
func (x *Index) Remove(id int) bool {
	x.mu.Lock()
	defer x.mu.Unlock()

	for i, item := range x.items {
		if item.ID == id {
			x.items = append(x.items[:i:i], x.items[i+1:]...)
			return true
		}
	}
	return false
}
