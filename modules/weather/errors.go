package weather

import "errors"

// Failure modes are first-class values at the weather boundary: callers
// receive them as results, never as aborted requests, so "bad input" stays
// distinguishable from "transient failure". The error texts are the exact
// strings surfaced to API clients.
var (
	// ErrCityNotFound is returned when the upstream rejects the city lookup
	// with a non-200 status.
	ErrCityNotFound = errors.New("City not found")

	// ErrForecastNotAvailable is returned when the upstream rejects a
	// forecast lookup with a non-200 status.
	ErrForecastNotAvailable = errors.New("Forecast data not available")

	// ErrServiceUnavailable is returned on transport failure or timeout.
	ErrServiceUnavailable = errors.New("Weather service unavailable")
)
