package weather

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a weather query failed.
type ErrorKind string

const (
	KindNotFound         ErrorKind = "not_found"
	KindUnauthorized     ErrorKind = "unauthorized"
	KindNetworkOrUnknown ErrorKind = "network_or_unknown"
	KindMisconfigured    ErrorKind = "misconfigured"
)

var (
	// ErrNotFound matches query errors for unknown cities.
	ErrNotFound = errors.New("city not found")
	// ErrUnauthorized matches query errors for rejected credentials.
	ErrUnauthorized = errors.New("provider rejected credential")
	// ErrNetworkOrUnknown matches transport, decode and unexpected status failures.
	ErrNetworkOrUnknown = errors.New("weather provider request failed")
	// ErrMisconfigured matches queries refused because no credential is configured.
	ErrMisconfigured = errors.New("weather provider credential not configured")

	// ErrEmptyQuery is returned for a blank city name. Callers are expected to
	// filter blank input before querying.
	ErrEmptyQuery = errors.New("empty city name")

	// ErrNoSnapshot is returned when no cached snapshot exists for a location.
	ErrNoSnapshot = errors.New("no weather data for location")
)

var kindSentinels = map[ErrorKind]error{
	KindNotFound:         ErrNotFound,
	KindUnauthorized:     ErrUnauthorized,
	KindNetworkOrUnknown: ErrNetworkOrUnknown,
	KindMisconfigured:    ErrMisconfigured,
}

// QueryError is the classified failure of a single weather query.
type QueryError struct {
	Kind ErrorKind
	// Status is the provider HTTP status, or 0 when no response was received.
	Status int
	Err    error
}

// NewQueryError builds a QueryError of the given kind wrapping cause.
func NewQueryError(kind ErrorKind, status int, cause error) *QueryError {
	return &QueryError{Kind: kind, Status: status, Err: cause}
}

func (e *QueryError) Error() string {
	msg := kindSentinels[e.Kind].Error()
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match a QueryError against the kind sentinels.
func (e *QueryError) Is(target error) bool {
	return kindSentinels[e.Kind] == target
}

// KindOf extracts the ErrorKind from err. Errors that are not QueryErrors
// classify as KindNetworkOrUnknown.
func KindOf(err error) ErrorKind {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Kind
	}
	return KindNetworkOrUnknown
}
