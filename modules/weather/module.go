package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	cachemod "github.com/example/taskboard/modules/cache"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// Module provides weather lookup services. It borrows the cache module's
// store, so the cache module must be registered (and therefore started)
// before this one.
type Module struct {
	service     *Service
	cacheModule *cachemod.Module
	baseURL     string
	apiKey      string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new weather module. The API key comes from
// WEATHER_API_KEY; the upstream URL may be overridden with
// WEATHER_API_BASE_URL for testing against a local stub.
func NewModule(cacheModule *cachemod.Module) *Module {
	return &Module{
		cacheModule: cacheModule,
		baseURL:     os.Getenv("WEATHER_API_BASE_URL"),
		apiKey:      os.Getenv("WEATHER_API_KEY"),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "weather"
}

// Start builds the weather service over the cache module's store.
func (m *Module) Start(_ context.Context) error {
	if m.apiKey == "" {
		return fmt.Errorf("WEATHER_API_KEY is required")
	}

	store := m.cacheModule.Cache()
	if store == nil {
		return fmt.Errorf("cache module not started")
	}

	m.service = NewService(store, NewClient(m.baseURL, m.apiKey))
	log.Println("[weather] Module started")
	return nil
}

// Stop stops the module.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[weather] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(_ context.Context) mono.HealthStatus {
	if m.service == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "service not initialized",
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
	}
}

// Service returns the weather service.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "current", json.Unmarshal, json.Marshal, m.handleCurrent,
	); err != nil {
		return fmt.Errorf("failed to register current service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "forecast", json.Unmarshal, json.Marshal, m.handleForecast,
	); err != nil {
		return fmt.Errorf("failed to register forecast service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "invalidate", json.Unmarshal, json.Marshal, m.handleInvalidate,
	); err != nil {
		return fmt.Errorf("failed to register invalidate service: %w", err)
	}

	log.Printf("[weather] Registered services: current, forecast, invalidate")
	return nil
}

// handleCurrent handles the weather.current service request. Lookup
// failures travel inside the response, not as handler errors, so the
// distinct error values survive the request-reply boundary.
func (m *Module) handleCurrent(ctx context.Context, req CurrentWeatherRequest, _ *mono.Msg) (CurrentWeatherResponse, error) {
	snap, fromCache, err := m.service.Current(ctx, req.City)
	if err != nil {
		return CurrentWeatherResponse{Error: errorMessage(err)}, nil
	}
	return CurrentWeatherResponse{Weather: snap, FromCache: fromCache}, nil
}

// handleForecast handles the weather.forecast service request.
func (m *Module) handleForecast(ctx context.Context, req ForecastRequest, _ *mono.Msg) (ForecastResponse, error) {
	payload, err := m.service.Forecast(ctx, req.City, req.Days)
	if err != nil {
		return ForecastResponse{Error: errorMessage(err)}, nil
	}
	return ForecastResponse{Forecast: payload}, nil
}

// handleInvalidate handles the weather.invalidate service request.
func (m *Module) handleInvalidate(ctx context.Context, req InvalidateRequest, _ *mono.Msg) (InvalidateResponse, error) {
	if err := m.service.Invalidate(ctx, req.City); err != nil {
		log.Printf("[weather] Warning: failed to invalidate cache for %q: %v", req.City, err)
		return InvalidateResponse{City: req.City, Error: ErrServiceUnavailable.Error()}, nil
	}
	return InvalidateResponse{City: req.City, Invalidated: true}, nil
}

// errorMessage maps a service error to its client-facing string. Anything
// unrecognized reads as unavailability rather than leaking internals.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, ErrCityNotFound):
		return ErrCityNotFound.Error()
	case errors.Is(err, ErrForecastNotAvailable):
		return ErrForecastNotAvailable.Error()
	default:
		return ErrServiceUnavailable.Error()
	}
}
