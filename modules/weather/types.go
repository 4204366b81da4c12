package weather

import "encoding/json"

// Snapshot is the shaped current-weather result for one city at the time of
// fetch. Snapshots live only in the cache and expire with its TTL.
type Snapshot struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"`
	Description string  `json:"description"`
	Humidity    int     `json:"humidity"`
	Pressure    int     `json:"pressure"`
	WindSpeed   float64 `json:"wind_speed"`
	Icon        string  `json:"icon"`
}

// CurrentWeatherRequest is the request for a current-weather lookup.
type CurrentWeatherRequest struct {
	City string `json:"city"`
}

// CurrentWeatherResponse carries either a snapshot or an error value.
// Error is one of the exact strings from this package's sentinel errors.
type CurrentWeatherResponse struct {
	Weather   *Snapshot `json:"weather,omitempty"`
	FromCache bool      `json:"from_cache,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// ForecastRequest is the request for a forecast lookup. Days outside [1,5]
// (including zero for "not provided") fall back to the default.
type ForecastRequest struct {
	City string `json:"city"`
	Days int    `json:"days,omitempty"`
}

// ForecastResponse carries the raw upstream forecast payload or an error
// value. The payload is passed through unshaped.
type ForecastResponse struct {
	Forecast json.RawMessage `json:"forecast,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// InvalidateRequest is the request for evicting a city's cached snapshot.
type InvalidateRequest struct {
	City string `json:"city"`
}

// InvalidateResponse reports the eviction result. Evicting an absent
// entry still counts as invalidated.
type InvalidateResponse struct {
	City        string `json:"city"`
	Invalidated bool   `json:"invalidated"`
	Error       string `json:"error,omitempty"`
}
