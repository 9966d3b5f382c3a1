package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weatherscope/internal/common"
)

// PlaceholderAPIKey is the documented unfilled value of the credential
// template. It is treated exactly like a missing key.
const PlaceholderAPIKey = "your-openweathermap-api-key-here"

var (
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// statusError is a provider response that counts as a breaker failure.
type statusError struct {
	Status int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("server error: %d", e.Status)
}

// statusOf returns the provider HTTP status carried by err, or 0.
func statusOf(err error) int {
	var se *statusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// BreakerSettings returns the circuit breaker settings shared by providers.
func BreakerSettings(name string) gobreaker.Settings {
	return gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	}
}

// CredentialConfigured reports whether key looks like a real credential.
// Empty keys, the documented placeholder and unfilled template markers are
// all rejected.
func CredentialConfigured(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" || key == PlaceholderAPIKey {
		return false
	}
	return !common.HasAny(key, "${", "<", ">")
}

// doRequest executes a single HTTP request through the circuit breaker.
// There are no retries: a failed request is terminal for the caller.
// Responses below 500 are returned to the caller for classification and do
// not count as breaker failures.
func doRequest(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	req *http.Request,
) (*http.Response, error) {
	if client == nil {
		return nil, errNoHTTPClient
	}

	// Ensure the request obeys context cancellation.
	req = req.WithContext(ctx)

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, execErr
		}
		if resp.StatusCode >= 500 {
			resp.Body.Close()
			return nil, &statusError{Status: resp.StatusCode}
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
		}
		return nil, err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return nil, fmt.Errorf("unexpected result type from circuit breaker")
	}
	return resp, nil
}
