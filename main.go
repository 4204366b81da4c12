package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/example/taskboard/modules/api"
	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/cache"
	"github.com/example/taskboard/modules/notification"
	"github.com/example/taskboard/modules/tasks"
	"github.com/example/taskboard/modules/weather"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== Taskboard ===")
	log.Println("Task tracking with weather lookups, built on the mono framework")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	redisAddr := getEnv("REDIS_ADDR", "localhost:6379")
	cachePrefix := getEnv("CACHE_PREFIX", "weather:")
	cacheTTL := getEnvDuration("WEATHER_CACHE_TTL", 30*time.Minute)

	// Modules start in registration order. Weather and API need the cache
	// module started before them.
	cacheModule := cache.NewModule(redisAddr, cachePrefix, cacheTTL)
	app.Register(cacheModule)
	app.Register(auth.NewModule())
	app.Register(tasks.NewModule())
	app.Register(weather.NewModule(cacheModule))
	app.Register(notification.NewModule())
	app.Register(api.NewModule(cacheModule))

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("HTTP API (default :3000):")
	log.Println("  POST   /api/v1/auth/register")
	log.Println("  POST   /api/v1/auth/login")
	log.Println("  POST   /api/v1/auth/refresh")
	log.Println("  GET    /api/v1/profile")
	log.Println("  POST   /api/v1/tasks")
	log.Println("  GET    /api/v1/tasks?status=&priority=&search=&sort=&order=")
	log.Println("  GET    /api/v1/tasks/stats")
	log.Println("  GET    /api/v1/tasks/dashboard")
	log.Println("  GET    /api/v1/tasks/:id")
	log.Println("  PUT    /api/v1/tasks/:id")
	log.Println("  POST   /api/v1/tasks/:id/complete")
	log.Println("  DELETE /api/v1/tasks/:id")
	log.Println("  GET    /api/v1/weather/:city")
	log.Println("  GET    /api/v1/weather/:city/forecast?days=")
	log.Println("  DELETE /api/v1/weather/:city/cache")
	log.Println("  GET    /api/v1/cache/stats")
	log.Println("  POST   /api/v1/cache/stats/reset")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}

// getEnv returns the environment variable value or a default.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvDuration returns the environment variable parsed as a duration or
// a default.
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
