package notification

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/example/taskboard/events"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// maxRetained caps the in-memory notification log.
const maxRetained = 1000

// Notification is a single logged notification entry.
type Notification struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id,omitempty"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Module records task lifecycle notifications. It keeps an in-memory log;
// a real deployment would fan out to email or push channels here.
type Module struct {
	mu      sync.RWMutex
	entries []Notification
}

// Compile-time interface checks.
var _ mono.Module = (*Module)(nil)
var _ mono.EventConsumerModule = (*Module)(nil)

// NewModule creates a new notification module.
func NewModule() *Module {
	return &Module{
		entries: make([]Notification, 0),
	}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "notification"
}

// Start begins listening for task events.
func (m *Module) Start(_ context.Context) error {
	log.Println("[notification] Module started - listening for task events")
	return nil
}

// Stop shuts the module down.
func (m *Module) Stop(_ context.Context) error {
	log.Println("[notification] Module stopped")
	return nil
}

// RegisterEventConsumers subscribes to task lifecycle events.
func (m *Module) RegisterEventConsumers(registry mono.EventRegistry) error {
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCreatedV1, m.handleTaskCreated, m); err != nil {
		return fmt.Errorf("failed to register TaskCreated consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskCompletedV1, m.handleTaskCompleted, m); err != nil {
		return fmt.Errorf("failed to register TaskCompleted consumer: %w", err)
	}
	if err := helper.RegisterTypedEventConsumer(registry, events.TaskDeletedV1, m.handleTaskDeleted, m); err != nil {
		return fmt.Errorf("failed to register TaskDeleted consumer: %w", err)
	}

	log.Printf("[notification] Registered event consumers: TaskCreated, TaskCompleted, TaskDeleted")
	return nil
}

func (m *Module) handleTaskCreated(_ context.Context, event events.TaskCreatedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Task created: %s - %s", event.TaskID, event.Title)
	m.record(event.TaskID, event.CreatedBy, "task_created",
		fmt.Sprintf("New task '%s' created", event.Title))
	return nil
}

func (m *Module) handleTaskCompleted(_ context.Context, event events.TaskCompletedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Task completed: %s by user %s", event.TaskID, event.UserID)
	m.record(event.TaskID, event.UserID, "task_completed",
		fmt.Sprintf("Task '%s' completed", event.Title))
	return nil
}

func (m *Module) handleTaskDeleted(_ context.Context, event events.TaskDeletedEvent, _ *mono.Msg) error {
	log.Printf("[notification] Task deleted: %s by user %s", event.TaskID, event.UserID)
	m.record(event.TaskID, event.UserID, "task_deleted",
		fmt.Sprintf("Task %s deleted", event.TaskID))
	return nil
}

func (m *Module) record(taskID, userID, notificationType, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, Notification{
		TaskID:    taskID,
		UserID:    userID,
		Type:      notificationType,
		Message:   message,
		Timestamp: time.Now(),
	})
	if len(m.entries) > maxRetained {
		m.entries = m.entries[len(m.entries)-maxRetained:]
	}
}

// Notifications returns a copy of the recorded notifications.
func (m *Module) Notifications() []Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]Notification, len(m.entries))
	copy(result, m.entries)
	return result
}
