package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	domain "github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Module provides task management services backed by GORM + SQLite.
type Module struct {
	db       *gorm.DB
	repo     *domain.Repository
	service  *Service
	eventBus mono.EventBus
	dbPath   string
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.ServiceProviderModule = (*Module)(nil)
var _ mono.EventEmitterModule = (*Module)(nil)
var _ mono.HealthCheckableModule = (*Module)(nil)

// NewModule creates a new tasks module. The database path comes from
// TASKS_DB_PATH, defaulting to a local file.
func NewModule() *Module {
	dbPath := os.Getenv("TASKS_DB_PATH")
	if dbPath == "" {
		dbPath = "taskboard.db"
	}
	return &Module{
		dbPath: dbPath,
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "tasks"
}

// SetEventBus receives the application event bus.
func (m *Module) SetEventBus(bus mono.EventBus) {
	m.eventBus = bus
}

// EmitEvents declares the events this module publishes.
func (m *Module) EmitEvents() []mono.BaseEventDefinition {
	return []mono.BaseEventDefinition{
		events.TaskCreatedV1.ToBase(),
		events.TaskCompletedV1.ToBase(),
		events.TaskDeletedV1.ToBase(),
	}
}

// Start opens the database, runs migrations and builds the service.
func (m *Module) Start(_ context.Context) error {
	logLevel := logger.Silent
	if os.Getenv("DB_DEBUG") == "true" {
		logLevel = logger.Info
	}

	db, err := gorm.Open(sqlite.Open(m.dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	m.db = db

	m.repo = domain.NewRepository(db)
	if err := m.repo.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	m.service = NewService(m.repo, m)

	if m.eventBus == nil {
		log.Println("[tasks] Warning: eventBus not set, events will not be published")
	}
	log.Printf("[tasks] Module started (database: %s)", m.dbPath)
	return nil
}

// Stop closes the database connection.
func (m *Module) Stop(_ context.Context) error {
	if m.db != nil {
		sqlDB, err := m.db.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
	log.Println("[tasks] Module stopped")
	return nil
}

// Health returns the health status of the module.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if m.db == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "database not initialized",
		}
	}

	sqlDB, err := m.db.DB()
	if err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("failed to get database connection: %v", err),
		}
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: fmt.Sprintf("database ping failed: %v", err),
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"driver":   "sqlite",
			"database": m.dbPath,
		},
	}
}

// Service returns the task service.
func (m *Module) Service() *Service {
	return m.service
}

// RegisterServices registers request-reply services in the service container.
func (m *Module) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, "create", json.Unmarshal, json.Marshal, m.handleCreate,
	); err != nil {
		return fmt.Errorf("failed to register create service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "get", json.Unmarshal, json.Marshal, m.handleGet,
	); err != nil {
		return fmt.Errorf("failed to register get service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "update", json.Unmarshal, json.Marshal, m.handleUpdate,
	); err != nil {
		return fmt.Errorf("failed to register update service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "complete", json.Unmarshal, json.Marshal, m.handleComplete,
	); err != nil {
		return fmt.Errorf("failed to register complete service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "delete", json.Unmarshal, json.Marshal, m.handleDelete,
	); err != nil {
		return fmt.Errorf("failed to register delete service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "list", json.Unmarshal, json.Marshal, m.handleList,
	); err != nil {
		return fmt.Errorf("failed to register list service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "stats", json.Unmarshal, json.Marshal, m.handleStats,
	); err != nil {
		return fmt.Errorf("failed to register stats service: %w", err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, "dashboard", json.Unmarshal, json.Marshal, m.handleDashboard,
	); err != nil {
		return fmt.Errorf("failed to register dashboard service: %w", err)
	}

	log.Printf("[tasks] Registered services: create, get, update, complete, delete, list, stats, dashboard")
	return nil
}

// handleCreate handles the tasks.create service request.
func (m *Module) handleCreate(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Create(ctx, req)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(t, m.service.now()), nil
}

// handleGet handles the tasks.get service request.
func (m *Module) handleGet(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Get(ctx, req.UserID, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(t, m.service.now()), nil
}

// handleUpdate handles the tasks.update service request.
func (m *Module) handleUpdate(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Update(ctx, req)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(t, m.service.now()), nil
}

// handleComplete handles the tasks.complete service request.
func (m *Module) handleComplete(ctx context.Context, req CompleteTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	t, err := m.service.Complete(ctx, req.UserID, req.TaskID)
	if err != nil {
		return TaskResponse{}, err
	}
	return toTaskResponse(t, m.service.now()), nil
}

// handleDelete handles the tasks.delete service request.
func (m *Module) handleDelete(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.service.Delete(ctx, req.UserID, req.TaskID); err != nil {
		return DeleteTaskResponse{Deleted: false, TaskID: req.TaskID}, err
	}
	return DeleteTaskResponse{Deleted: true, TaskID: req.TaskID}, nil
}

// handleList handles the tasks.list service request.
func (m *Module) handleList(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	listed, err := m.service.List(ctx, req)
	if err != nil {
		return ListTasksResponse{}, err
	}

	now := m.service.now()
	resp := ListTasksResponse{
		Tasks: make([]TaskResponse, 0, len(listed)),
		Total: len(listed),
	}
	for _, t := range listed {
		resp.Tasks = append(resp.Tasks, toTaskResponse(t, now))
	}
	return resp, nil
}

// handleStats handles the tasks.stats service request.
func (m *Module) handleStats(ctx context.Context, req StatsRequest, _ *mono.Msg) (StatsResponse, error) {
	return m.service.Stats(ctx, req.UserID)
}

// handleDashboard handles the tasks.dashboard service request.
func (m *Module) handleDashboard(ctx context.Context, req DashboardRequest, _ *mono.Msg) (DashboardResponse, error) {
	return m.service.Dashboard(ctx, req.UserID)
}

// TaskCreated publishes a TaskCreated event. Best-effort: failures are
// logged and do not fail the operation.
func (m *Module) TaskCreated(t *domain.Task) {
	if m.eventBus == nil {
		return
	}
	event := events.TaskCreatedEvent{
		TaskID:    t.ID,
		Title:     t.Title,
		CreatedBy: t.CreatedBy,
		CreatedAt: t.CreatedAt,
	}
	if err := events.TaskCreatedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[tasks] Warning: failed to publish TaskCreated event for task %s: %v", t.ID, err)
	}
}

// TaskCompleted publishes a TaskCompleted event.
func (m *Module) TaskCompleted(t *domain.Task, actorID string) {
	if m.eventBus == nil {
		return
	}
	event := events.TaskCompletedEvent{
		TaskID: t.ID,
		Title:  t.Title,
		UserID: actorID,
	}
	if t.CompletedAt != nil {
		event.CompletedAt = *t.CompletedAt
	}
	if err := events.TaskCompletedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[tasks] Warning: failed to publish TaskCompleted event for task %s: %v", t.ID, err)
	}
}

// TaskDeleted publishes a TaskDeleted event.
func (m *Module) TaskDeleted(taskID, actorID string) {
	if m.eventBus == nil {
		return
	}
	event := events.TaskDeletedEvent{
		TaskID:    taskID,
		UserID:    actorID,
		DeletedAt: m.service.now(),
	}
	if err := events.TaskDeletedV1.Publish(m.eventBus, event, nil); err != nil {
		log.Printf("[tasks] Warning: failed to publish TaskDeleted event for task %s: %v", taskID, err)
	}
}
