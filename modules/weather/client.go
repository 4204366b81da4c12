package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the OpenWeatherMap API root.
const DefaultBaseURL = "https://api.openweathermap.org/data/2.5"

// requestTimeout bounds every upstream call.
const requestTimeout = 10 * time.Second

// Client calls the OpenWeatherMap HTTP API with metric units and a fixed
// request timeout. Transport failures surface as ErrServiceUnavailable;
// non-200 responses surface as the lookup-specific not-found error.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new upstream weather client.
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

// currentPayload is the subset of the upstream current-weather response this
// service consumes.
type currentPayload struct {
	Name string `json:"name"`
	Sys  struct {
		Country string `json:"country"`
	} `json:"sys"`
	Main struct {
		Temp     float64 `json:"temp"`
		Humidity int     `json:"humidity"`
		Pressure int     `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
}

// Current fetches and reshapes the current weather for a city.
func (c *Client) Current(ctx context.Context, city string) (*Snapshot, error) {
	body, err := c.get(ctx, "/weather", url.Values{
		"q":     {city},
		"appid": {c.apiKey},
		"units": {"metric"},
	}, ErrCityNotFound)
	if err != nil {
		return nil, err
	}

	var payload currentPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	snap := &Snapshot{
		City:        payload.Name,
		Country:     payload.Sys.Country,
		Temperature: payload.Main.Temp,
		Humidity:    payload.Main.Humidity,
		Pressure:    payload.Main.Pressure,
		WindSpeed:   payload.Wind.Speed,
	}
	if len(payload.Weather) > 0 {
		snap.Description = payload.Weather[0].Description
		snap.Icon = payload.Weather[0].Icon
	}
	return snap, nil
}

// Forecast fetches the raw forecast payload for a city. count is the number
// of 3-hour data points requested.
func (c *Client) Forecast(ctx context.Context, city string, count int) (json.RawMessage, error) {
	body, err := c.get(ctx, "/forecast", url.Values{
		"q":     {city},
		"appid": {c.apiKey},
		"units": {"metric"},
		"cnt":   {fmt.Sprintf("%d", count)},
	}, ErrForecastNotAvailable)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(body), nil
}

// get performs one upstream GET. notFoundErr is returned for any non-200
// status so each lookup keeps its own not-found value.
func (c *Client) get(ctx context.Context, path string, params url.Values, notFoundErr error) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, notFoundErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	return body, nil
}
