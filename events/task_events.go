package events

import (
	"time"

	"github.com/go-monolith/mono/pkg/helper"
)

// TaskCreatedEvent is emitted when a new task is created.
type TaskCreatedEvent struct {
	TaskID    string    `json:"task_id"`
	Title     string    `json:"title"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// TaskCreatedV1 is the typed event definition for task creation.
// Subject: events.tasks.v1.task-created
var TaskCreatedV1 = helper.EventDefinition[TaskCreatedEvent](
	"tasks", "TaskCreated", "v1",
)

// TaskCompletedEvent is emitted when a task transitions to completed.
type TaskCompletedEvent struct {
	TaskID      string    `json:"task_id"`
	Title       string    `json:"title"`
	UserID      string    `json:"user_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// TaskCompletedV1 is the typed event definition for task completion.
// Subject: events.tasks.v1.task-completed
var TaskCompletedV1 = helper.EventDefinition[TaskCompletedEvent](
	"tasks", "TaskCompleted", "v1",
)

// TaskDeletedEvent is emitted when a task is deleted by its creator.
type TaskDeletedEvent struct {
	TaskID    string    `json:"task_id"`
	UserID    string    `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// TaskDeletedV1 is the typed event definition for task deletion.
// Subject: events.tasks.v1.task-deleted
var TaskDeletedV1 = helper.EventDefinition[TaskDeletedEvent](
	"tasks", "TaskDeleted", "v1",
)
