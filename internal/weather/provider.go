package weather

import (
	"context"
)

// Provider abstracts the current-conditions endpoint of a weather data source.
// Implementations classify every failure as a *QueryError and never retry.
type Provider interface {
	Name() string
	Current(ctx context.Context, city string) (Snapshot, error)
}

// Store is the contract the snapshot cache must satisfy.
type Store interface {
	SaveSnapshot(loc Location, snapshot Snapshot)
	GetLatest(loc Location) (Snapshot, error)
}

// Recorder receives query outcomes for instrumentation.
type Recorder interface {
	ObserveQuery(outcome string, seconds float64)
}
