package weather

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// WeatherPort defines the interface driving adapters use for weather
// lookups.
type WeatherPort interface {
	Current(ctx context.Context, city string) (*CurrentWeatherResponse, error)
	Forecast(ctx context.Context, city string, days int) (*ForecastResponse, error)
	Invalidate(ctx context.Context, city string) (*InvalidateResponse, error)
}

// WeatherAdapter implements WeatherPort over the service container.
type WeatherAdapter struct {
	container mono.ServiceContainer
}

// NewWeatherAdapter creates a new WeatherAdapter.
func NewWeatherAdapter(container mono.ServiceContainer) *WeatherAdapter {
	return &WeatherAdapter{
		container: container,
	}
}

// Current looks up current weather for a city.
func (a *WeatherAdapter) Current(ctx context.Context, city string) (*CurrentWeatherResponse, error) {
	req := CurrentWeatherRequest{City: city}
	var resp CurrentWeatherResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"current",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("current request failed: %w", err)
	}
	return &resp, nil
}

// Forecast looks up the forecast for a city.
func (a *WeatherAdapter) Forecast(ctx context.Context, city string, days int) (*ForecastResponse, error) {
	req := ForecastRequest{City: city, Days: days}
	var resp ForecastResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"forecast",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("forecast request failed: %w", err)
	}
	return &resp, nil
}

// Invalidate evicts the cached snapshot for a city.
func (a *WeatherAdapter) Invalidate(ctx context.Context, city string) (*InvalidateResponse, error) {
	req := InvalidateRequest{City: city}
	var resp InvalidateResponse

	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		"invalidate",
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("invalidate request failed: %w", err)
	}
	return &resp, nil
}
