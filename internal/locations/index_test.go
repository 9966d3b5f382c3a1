package locations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(items []Suggestion) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.DisplayName)
	}
	return out
}

func TestIndex_Filter(t *testing.T) {
	x := NewIndex(DefaultSeed())

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{}},
		{"   ", []string{}},
		{"lon", []string{"London, UK"}},
		{"LON", []string{"London, UK"}},
		{"o", []string{"New York, NY", "London, UK", "Tokyo, JP"}},
		{", ", []string{"New York, NY", "London, UK", "Tokyo, JP", "Sydney, AU", "Paris, FR"}},
		{"zz", []string{}},
		{"on ", []string{}},
		{" lon", []string{}},
		{"York ", []string{}},
		{"new york", []string{"New York, NY"}},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			got := x.Filter(tc.query)
			require.NotNil(t, got)
			assert.Equal(t, tc.want, names(got))
		})
	}
}

func TestIndex_FilterIsStable(t *testing.T) {
	x := NewIndex(DefaultSeed())
	assert.Equal(t, x.Filter("a"), x.Filter("a"))
}

func TestIndex_Closest(t *testing.T) {
	x := NewIndex(DefaultSeed())

	got, ok := x.Closest("Londn")
	require.True(t, ok)
	assert.Equal(t, "London, UK", got.DisplayName)

	got, ok = x.Closest("tokyo city")
	require.True(t, ok)
	assert.Equal(t, "Tokyo, JP", got.DisplayName)

	_, ok = x.Closest("qqq")
	assert.False(t, ok)

	_, ok = x.Closest(" ")
	assert.False(t, ok)
}

func TestIndex_Mutations(t *testing.T) {
	seed := DefaultSeed()
	x := NewIndex(seed)

	assert.True(t, x.UpdateTemperature(2, "19°C"))
	assert.False(t, x.UpdateTemperature(99, "0°C"))
	london, ok := x.Get(2)
	require.True(t, ok)
	assert.Equal(t, "19°C", london.LastKnownTemp)
	assert.Equal(t, "18°C", seed[1].LastKnownTemp)

	assert.True(t, x.Remove(3))
	assert.False(t, x.Remove(3))
	assert.Equal(t, 4, x.Len())
	assert.Equal(t, []string{"New York, NY", "London, UK", "Sydney, AU", "Paris, FR"}, names(x.All()))

	_, ok = x.Get(3)
	assert.False(t, ok)
}

func TestSuggestion_City(t *testing.T) {
	assert.Equal(t, "New York", Suggestion{DisplayName: "New York, NY"}.City())
	assert.Equal(t, "Reykjavik", Suggestion{DisplayName: "Reykjavik"}.City())
}

func TestDefaultFavorites(t *testing.T) {
	x := NewIndex(DefaultFavorites())

	assert.Equal(t, 6, x.Len())
	dubai, ok := x.Get(5)
	require.True(t, ok)
	assert.Equal(t, "Dubai", dubai.City())
	mumbai, ok := x.Get(6)
	require.True(t, ok)
	assert.Equal(t, "Mumbai", mumbai.City())
	assert.Empty(t, NewIndex(DefaultSeed()).Filter("dubai"))
}
