package weather

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// OutcomeSuccess labels successful queries for a Recorder.
const OutcomeSuccess = "success"

// Service issues weather queries against a provider and caches the results.
type Service struct {
	provider Provider
	store    Store
	recorder Recorder
	logger   zerolog.Logger
	now      func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithRecorder attaches a query outcome recorder.
func WithRecorder(r Recorder) Option {
	return func(s *Service) { s.recorder = r }
}

// WithLogger sets the service logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a new Service. store may be nil when results need not
// be cached.
func NewService(provider Provider, store Store, opts ...Option) *Service {
	s := &Service{
		provider: provider,
		store:    store,
		logger:   zerolog.Nop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Query fetches current conditions for rawCityName. It performs exactly one
// provider call and never retries; failures are returned as *QueryError.
func (s *Service) Query(ctx context.Context, rawCityName string) (Snapshot, error) {
	city := strings.TrimSpace(rawCityName)
	if city == "" {
		return Snapshot{}, ErrEmptyQuery
	}
	if s.provider == nil {
		return Snapshot{}, NewQueryError(KindMisconfigured, 0, errors.New("no weather provider configured"))
	}

	start := s.now()
	snap, err := s.provider.Current(ctx, city)
	elapsed := s.now().Sub(start).Seconds()

	if err != nil {
		kind := KindOf(err)
		s.record(string(kind), elapsed)
		s.logger.Warn().
			Err(err).
			Str("provider", s.provider.Name()).
			Str("city", city).
			Str("kind", string(kind)).
			Msg("weather query failed")
		return Snapshot{}, err
	}

	if snap.FetchedAt.IsZero() {
		snap.FetchedAt = s.now().UTC()
	}
	if s.store != nil {
		s.store.SaveSnapshot(snap.Location(), snap)
	}
	s.record(OutcomeSuccess, elapsed)
	s.logger.Debug().
		Str("provider", s.provider.Name()).
		Str("city", snap.City).
		Int("temperature_c", snap.TemperatureC).
		Msg("weather query succeeded")

	return snap, nil
}

// GetLatest returns the most recent cached snapshot for loc.
func (s *Service) GetLatest(loc Location) (Snapshot, error) {
	if s.store == nil {
		return Snapshot{}, ErrNoSnapshot
	}
	return s.store.GetLatest(loc)
}

func (s *Service) record(outcome string, seconds float64) {
	if s.recorder != nil {
		s.recorder.ObserveQuery(outcome, seconds)
	}
}
