package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"go.uber.org/atomic"

	"github.com/i474232898/weatherscope/internal/locations"
	"github.com/i474232898/weatherscope/internal/weather"
)

// WeatherSource is the part of the weather service the refresher needs.
type WeatherSource interface {
	Query(ctx context.Context, rawCityName string) (weather.Snapshot, error)
	GetLatest(loc weather.Location) (weather.Snapshot, error)
}

// Scheduler periodically refreshes the last known temperature of every
// monitored location from the query result cache.
type Scheduler struct {
	scheduler *gocron.Scheduler
	index     *locations.Index
	source    WeatherSource
	interval  time.Duration
	fetch     bool
	logger    zerolog.Logger
	runs      atomic.Int64
}

// Config configures a Scheduler.
type Config struct {
	Interval time.Duration
	// Fetch issues a live query per location before reading the cache.
	Fetch  bool
	Logger zerolog.Logger
}

// New creates a new Scheduler.
func New(index *locations.Index, source WeatherSource, cfg Config) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler: s,
		index:     index,
		source:    source,
		interval:  cfg.Interval,
		fetch:     cfg.Fetch,
		logger:    cfg.Logger,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.index.Len() == 0 {
		s.logger.Info().Msg("refresher: no locations monitored; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s.RefreshAll(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule refresh job: %w", err)
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// Runs returns how many refresh passes have completed.
func (s *Scheduler) Runs() int64 {
	return s.runs.Load()
}

// RefreshAll runs one refresh pass and returns how many locations were updated.
func (s *Scheduler) RefreshAll(ctx context.Context) int {
	locs := s.index.All()
	s.logger.Debug().Int("locations", len(locs)).Bool("fetch", s.fetch).Msg("refresher: running refresh job")

	if s.fetch {
		var wg sync.WaitGroup
		for _, loc := range locs {
			wg.Add(1)
			go func(city string) {
				defer wg.Done()

				if _, err := s.source.Query(ctx, city); err != nil {
					s.logger.Warn().Err(err).Str("city", city).Msg("refresher: fetch failed")
				}
			}(loc.City())
		}
		wg.Wait()
	}

	updated := 0
	for _, loc := range locs {
		snap, err := s.source.GetLatest(weather.Location{City: loc.City()})
		if err != nil {
			if !errors.Is(err, weather.ErrNoSnapshot) {
				s.logger.Warn().Err(err).Str("city", loc.City()).Msg("refresher: cache lookup failed")
			}
			continue
		}
		if s.index.UpdateTemperature(loc.ID, FormatTemperature(snap.TemperatureC)) {
			updated++
		}
	}

	s.runs.Inc()
	s.logger.Debug().Int("updated", updated).Msg("refresher: completed refresh job")
	return updated
}

// FormatTemperature renders a whole-degree Celsius reading for display.
func FormatTemperature(c int) string {
	return fmt.Sprintf("%d°C", c)
}
