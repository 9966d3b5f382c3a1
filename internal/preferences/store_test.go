package preferences_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weatherscope/internal/preferences"
	"github.com/i474232898/weatherscope/internal/store"
)

type failingKV struct {
	getErr error
	setErr error
}

func (f failingKV) Get(context.Context, string) (string, error) { return "", f.getErr }
func (f failingKV) Set(context.Context, string, string) error   { return f.setErr }

func TestStore_LoadDefaultsWhenEmpty(t *testing.T) {
	s := preferences.NewStore(store.NewMemoryKV(), zerolog.Nop())

	prefs := s.Load(context.Background())
	assert.Equal(t, preferences.Defaults(), prefs)
	assert.Equal(t, preferences.UnitsMetric, prefs.Units)
	assert.Equal(t, 15, prefs.RefreshIntervalMinutes)
}

func TestStore_LoadFallsBackPerField(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		units    string
		interval string
		want     preferences.Preferences
	}{
		{"both valid", "imperial", "5", preferences.Preferences{Units: preferences.UnitsImperial, RefreshIntervalMinutes: 5}},
		{"bad units", "rankine", "30", preferences.Preferences{Units: preferences.UnitsMetric, RefreshIntervalMinutes: 30}},
		{"bad interval", "kelvin", "7", preferences.Preferences{Units: preferences.UnitsScientific, RefreshIntervalMinutes: 15}},
		{"non numeric interval", "metric", "abc", preferences.Defaults()},
		{"empty values", "", "", preferences.Defaults()},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kv := store.NewMemoryKV()
			require.NoError(t, kv.Set(ctx, preferences.KeyUnits, tc.units))
			require.NoError(t, kv.Set(ctx, preferences.KeyRefreshInterval, tc.interval))

			s := preferences.NewStore(kv, zerolog.Nop())
			assert.Equal(t, tc.want, s.Load(ctx))
			assert.Equal(t, tc.want, s.Current())
		})
	}
}

func TestStore_LoadIgnoresReadErrors(t *testing.T) {
	s := preferences.NewStore(failingKV{getErr: errors.New("disk gone")}, zerolog.Nop())
	assert.Equal(t, preferences.Defaults(), s.Load(context.Background()))
}

func TestStore_SetPersistsValidValues(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	s := preferences.NewStore(kv, zerolog.Nop())

	prefs, err := s.SetUnits(ctx, preferences.UnitsScientific)
	require.NoError(t, err)
	assert.Equal(t, preferences.UnitsScientific, prefs.Units)

	prefs, err = s.SetRefreshInterval(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, 30, prefs.RefreshIntervalMinutes)

	raw, err := kv.Get(ctx, preferences.KeyUnits)
	require.NoError(t, err)
	assert.Equal(t, "kelvin", raw)

	raw, err = kv.Get(ctx, preferences.KeyRefreshInterval)
	require.NoError(t, err)
	assert.Equal(t, "30", raw)

	reloaded := preferences.NewStore(kv, zerolog.Nop()).Load(ctx)
	assert.Equal(t, preferences.Preferences{Units: preferences.UnitsScientific, RefreshIntervalMinutes: 30}, reloaded)
}

func TestStore_SetRejectsInvalidValues(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryKV()
	s := preferences.NewStore(kv, zerolog.Nop())

	_, err := s.SetUnits(ctx, "celsius")
	assert.ErrorIs(t, err, preferences.ErrInvalidPreferenceValue)

	for _, minutes := range []int{0, -5, 1, 20, 60} {
		_, err := s.SetRefreshInterval(ctx, minutes)
		assert.ErrorIs(t, err, preferences.ErrInvalidPreferenceValue, "minutes=%d", minutes)
	}

	_, err = kv.Get(ctx, preferences.KeyUnits)
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
	_, err = kv.Get(ctx, preferences.KeyRefreshInterval)
	assert.ErrorIs(t, err, store.ErrKeyNotFound)
	assert.Equal(t, preferences.Defaults(), s.Current())
}

func TestStore_SetWriteFailureKeepsCurrent(t *testing.T) {
	s := preferences.NewStore(failingKV{setErr: errors.New("read-only")}, zerolog.Nop())

	prefs, err := s.SetUnits(context.Background(), preferences.UnitsImperial)
	require.Error(t, err)
	assert.NotErrorIs(t, err, preferences.ErrInvalidPreferenceValue)
	assert.Equal(t, preferences.UnitsMetric, prefs.Units)
}

func TestStore_SQLiteSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "weatherscope.db")

	kv, err := store.NewSQLiteKV(path)
	require.NoError(t, err)
	_, err = preferences.NewStore(kv, zerolog.Nop()).SetRefreshInterval(ctx, 10)
	require.NoError(t, err)
	require.NoError(t, kv.Close())

	kv, err = store.NewSQLiteKV(path)
	require.NoError(t, err)
	defer kv.Close()

	prefs := preferences.NewStore(kv, zerolog.Nop()).Load(ctx)
	assert.Equal(t, 10, prefs.RefreshIntervalMinutes)
	assert.Equal(t, preferences.UnitsMetric, prefs.Units)
}

func TestUnitsLabel(t *testing.T) {
	assert.Equal(t, "Metric (°C, km/h)", preferences.UnitsMetric.Label())
	assert.Equal(t, "Imperial (°F, mph)", preferences.UnitsImperial.Label())
	assert.Equal(t, "Scientific (K, m/s)", preferences.UnitsScientific.Label())
}
