package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weatherscope/internal/weather"
)

func TestMemoryStore_GetLatest(t *testing.T) {
	s := NewMemoryStore(10, 0)
	loc := weather.Location{City: "London"}

	_, err := s.GetLatest(loc)
	assert.ErrorIs(t, err, ErrNotFound)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.SaveSnapshot(loc, weather.Snapshot{City: "London", TemperatureC: 17, FetchedAt: base})
	s.SaveSnapshot(loc, weather.Snapshot{City: "London", TemperatureC: 18, FetchedAt: base.Add(time.Minute)})

	latest, err := s.GetLatest(weather.Location{City: " LONDON "})
	require.NoError(t, err)
	assert.Equal(t, 18, latest.TemperatureC)
}

func TestMemoryStore_RetentionByCount(t *testing.T) {
	s := NewMemoryStore(3, 0)
	loc := weather.Location{City: "Paris"}

	for i := 0; i < 5; i++ {
		s.SaveSnapshot(loc, weather.Snapshot{City: "Paris", TemperatureC: i})
	}

	assert.Equal(t, 3, s.Len(loc))
	latest, err := s.GetLatest(loc)
	require.NoError(t, err)
	assert.Equal(t, 4, latest.TemperatureC)
}

func TestMemoryStore_RetentionByAgeKeepsNewest(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore(0, time.Hour)
	s.now = func() time.Time { return now }
	loc := weather.Location{City: "Tokyo"}

	s.SaveSnapshot(loc, weather.Snapshot{City: "Tokyo", FetchedAt: now.Add(-3 * time.Hour)})
	s.SaveSnapshot(loc, weather.Snapshot{City: "Tokyo", FetchedAt: now.Add(-2 * time.Hour)})
	assert.Equal(t, 1, s.Len(loc))

	s.SaveSnapshot(loc, weather.Snapshot{City: "Tokyo", FetchedAt: now.Add(-10 * time.Minute)})
	s.SaveSnapshot(loc, weather.Snapshot{City: "Tokyo", FetchedAt: now})
	assert.Equal(t, 2, s.Len(loc))
}

func TestMemoryStore_IgnoresBlankLocation(t *testing.T) {
	s := NewMemoryStore(10, 0)
	s.SaveSnapshot(weather.Location{City: "  "}, weather.Snapshot{})

	assert.Zero(t, s.Len(weather.Location{}))
	assert.Empty(t, s.byCity)
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()

	_, err := kv.Get(t.Context(), "missing")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, kv.Set(t.Context(), "k", "v1"))
	require.NoError(t, kv.Set(t.Context(), "k", "v2"))

	v, err := kv.Get(t.Context(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", v)
}
