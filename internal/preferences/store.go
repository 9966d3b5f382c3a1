package preferences

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/i474232898/weatherscope/internal/store"
)

// ErrInvalidPreferenceValue is returned for values outside the enumerated sets.
// The UI only offers valid choices, so seeing it indicates a caller bug.
var ErrInvalidPreferenceValue = errors.New("invalid preference value")

var validate = validator.New()

const (
	unitsRule    = "oneof=metric imperial kelvin"
	intervalRule = "oneof=5 10 15 30"
)

// Store loads and persists Preferences through a KV backend.
type Store struct {
	kv     store.KV
	logger zerolog.Logger

	mu      sync.Mutex
	current Preferences
}

// NewStore creates a Store over kv. Call Load to read persisted values.
func NewStore(kv store.KV, logger zerolog.Logger) *Store {
	return &Store{
		kv:      kv,
		logger:  logger,
		current: Defaults(),
	}
}

// Load reads persisted preferences. It never fails: missing, unreadable or
// invalid entries are replaced by their defaults field by field.
func (s *Store) Load(ctx context.Context) Preferences {
	prefs := Defaults()

	if raw, ok := s.read(ctx, KeyUnits); ok {
		if err := validateUnits(Units(raw)); err == nil {
			prefs.Units = Units(raw)
		} else {
			s.logger.Warn().Str("key", KeyUnits).Str("value", raw).Msg("ignoring invalid stored preference")
		}
	}

	if raw, ok := s.read(ctx, KeyRefreshInterval); ok {
		minutes, err := decodeInterval(raw)
		if err == nil {
			err = validateInterval(minutes)
		}
		if err == nil {
			prefs.RefreshIntervalMinutes = minutes
		} else {
			s.logger.Warn().Str("key", KeyRefreshInterval).Str("value", raw).Msg("ignoring invalid stored preference")
		}
	}

	s.mu.Lock()
	s.current = prefs
	s.mu.Unlock()

	return prefs
}

// Current returns the last loaded or written preferences.
func (s *Store) Current() Preferences {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// SetUnits validates and persists units, returning the updated preferences.
func (s *Store) SetUnits(ctx context.Context, units Units) (Preferences, error) {
	if err := validateUnits(units); err != nil {
		return s.Current(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(ctx, KeyUnits, string(units)); err != nil {
		return s.current, fmt.Errorf("persist units: %w", err)
	}
	s.current.Units = units
	s.logger.Info().Str("units", string(units)).Msg("units preference updated")
	return s.current, nil
}

// SetRefreshInterval validates and persists the refresh cadence in minutes,
// returning the updated preferences.
func (s *Store) SetRefreshInterval(ctx context.Context, minutes int) (Preferences, error) {
	if err := validateInterval(minutes); err != nil {
		return s.Current(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Set(ctx, KeyRefreshInterval, encodeInterval(minutes)); err != nil {
		return s.current, fmt.Errorf("persist refresh interval: %w", err)
	}
	s.current.RefreshIntervalMinutes = minutes
	s.logger.Info().Int("minutes", minutes).Msg("refresh interval preference updated")
	return s.current, nil
}

func (s *Store) read(ctx context.Context, key string) (string, bool) {
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrKeyNotFound) {
			s.logger.Warn().Err(err).Str("key", key).Msg("reading stored preference failed")
		}
		return "", false
	}
	return raw, true
}

func validateUnits(u Units) error {
	if err := validate.Var(string(u), "required,"+unitsRule); err != nil {
		return fmt.Errorf("%w: units %q", ErrInvalidPreferenceValue, u)
	}
	return nil
}

func validateInterval(minutes int) error {
	if err := validate.Var(minutes, "required,"+intervalRule); err != nil {
		return fmt.Errorf("%w: refresh interval %d", ErrInvalidPreferenceValue, minutes)
	}
	return nil
}
