package store

import (
	"sync"
	"time"

	"github.com/i474232898/weatherscope/internal/weather"
)

// ErrNotFound is returned when no snapshot has been cached for a city.
var ErrNotFound = weather.ErrNoSnapshot

// MemoryStore caches the snapshots produced by successful queries, keyed by
// normalized city name. Each city keeps a bounded, oldest-first history.
type MemoryStore struct {
	mu     sync.RWMutex
	byCity map[string][]weather.Snapshot

	maxHistory int           // per city; <= 0 keeps everything
	maxAge     time.Duration // <= 0 disables age pruning
	now        func() time.Time
}

// NewMemoryStore creates an empty MemoryStore with the given retention.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		byCity:     make(map[string][]weather.Snapshot),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot records snap as the newest entry for loc and prunes the
// history. Snapshots for a blank city are dropped.
func (s *MemoryStore) SaveSnapshot(loc weather.Location, snap weather.Snapshot) {
	key := loc.Key()
	if key == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.byCity[key] = s.prune(append(s.byCity[key], snap))
}

// prune applies count and age retention. The newest snapshot always survives.
func (s *MemoryStore) prune(history []weather.Snapshot) []weather.Snapshot {
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	if s.maxAge <= 0 {
		return history
	}

	cutoff := s.now().Add(-s.maxAge)
	keepFrom := len(history) - 1
	for i, snap := range history[:len(history)-1] {
		if !snap.FetchedAt.Before(cutoff) {
			keepFrom = i
			break
		}
	}
	return history[keepFrom:]
}

// GetLatest returns the newest snapshot cached for loc.
func (s *MemoryStore) GetLatest(loc weather.Location) (weather.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history := s.byCity[loc.Key()]
	if len(history) == 0 {
		return weather.Snapshot{}, ErrNotFound
	}
	return history[len(history)-1], nil
}

// Len returns how many snapshots are retained for loc.
func (s *MemoryStore) Len(loc weather.Location) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byCity[loc.Key()])
}
