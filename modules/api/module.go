package api

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/cache"
	"github.com/example/taskboard/modules/tasks"
	"github.com/example/taskboard/modules/weather"
	"github.com/go-monolith/mono"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// APIModule is the HTTP API module. It depends on the auth, tasks and
// weather modules through their service containers.
type APIModule struct {
	app  *fiber.App
	port int

	authAdapter    auth.AuthPort
	taskAdapter    tasks.TaskPort
	weatherAdapter weather.WeatherPort
	cacheModule    *cache.Module
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule. The listen port comes from API_PORT,
// defaulting to 3000. The cache module reference serves the cache stats
// endpoint.
func NewModule(cacheModule *cache.Module) *APIModule {
	port := 3000
	if raw := os.Getenv("API_PORT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			port = parsed
		}
	}
	return &APIModule{
		port:        port,
		cacheModule: cacheModule,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"auth", "tasks", "weather"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "auth":
		m.authAdapter = auth.NewAuthAdapter(container)
	case "tasks":
		m.taskAdapter = tasks.NewTaskAdapter(container)
	case "weather":
		m.weatherAdapter = weather.NewWeatherAdapter(container)
	}
}

// Start initializes the Fiber HTTP server.
func (m *APIModule) Start(_ context.Context) error {
	if m.authAdapter == nil {
		return fmt.Errorf("auth dependency not set")
	}
	if m.taskAdapter == nil {
		return fmt.Errorf("tasks dependency not set")
	}
	if m.weatherAdapter == nil {
		return fmt.Errorf("weather dependency not set")
	}

	m.app = fiber.New(fiber.Config{
		AppName:               "taskboard",
		DisableStartupMessage: true,
		ErrorHandler:          customErrorHandler,
	})

	m.app.Use(recover.New())
	m.app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	m.app.Use(cors.New())

	m.setupRoutes()

	go func() {
		if err := m.app.Listen(fmt.Sprintf(":%d", m.port)); err != nil {
			log.Printf("[api] HTTP server error: %v", err)
		}
	}()

	log.Printf("[api] HTTP server started on :%d", m.port)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(_ context.Context) error {
	if m.app == nil {
		return nil
	}
	log.Println("[api] Shutting down HTTP server...")
	return m.app.Shutdown()
}

// Health returns the health status of the module.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.port,
		},
	}
}

// setupRoutes configures all API routes.
func (m *APIModule) setupRoutes() {
	handlers := NewHandlers(m.authAdapter, m.taskAdapter, m.weatherAdapter, m.cacheModule)

	m.app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"module": "api",
		})
	})

	v1 := m.app.Group("/api/v1")

	// Public auth routes
	authRoutes := v1.Group("/auth")
	authRoutes.Post("/register", handlers.Register)
	authRoutes.Post("/login", handlers.Login)
	authRoutes.Post("/refresh", handlers.Refresh)

	// Protected routes (require authentication)
	protected := v1.Group("")
	protected.Use(AuthMiddleware(m.authAdapter))

	protected.Get("/profile", handlers.Profile)

	// Static task routes must precede the parameterized ones.
	taskRoutes := protected.Group("/tasks")
	taskRoutes.Post("/", handlers.CreateTask)
	taskRoutes.Get("/", handlers.ListTasks)
	taskRoutes.Get("/stats", handlers.TaskStats)
	taskRoutes.Get("/dashboard", handlers.Dashboard)
	taskRoutes.Get("/:id", handlers.GetTask)
	taskRoutes.Put("/:id", handlers.UpdateTask)
	taskRoutes.Post("/:id/complete", handlers.CompleteTask)
	taskRoutes.Delete("/:id", handlers.DeleteTask)

	weatherRoutes := protected.Group("/weather")
	weatherRoutes.Get("/:city", handlers.CurrentWeather)
	weatherRoutes.Get("/:city/forecast", handlers.Forecast)
	weatherRoutes.Delete("/:city/cache", handlers.InvalidateWeather)

	protected.Get("/cache/stats", handlers.CacheStats)
	protected.Post("/cache/stats/reset", handlers.ResetCacheStats)
}

// customErrorHandler handles Fiber errors.
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
