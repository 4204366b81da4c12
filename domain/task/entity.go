package task

import (
	"strings"
	"time"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Priority represents the urgency of a task.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid reports whether the priority is one of the known values.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Rank returns the ordering weight of the priority (low sorts before urgent).
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	case PriorityUrgent:
		return 4
	}
	return 0
}

// Task is the core domain entity representing a unit of work.
type Task struct {
	ID          string     `gorm:"primarykey;size:36" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text" json:"description"`
	Priority    Priority   `gorm:"size:10;not null;default:medium" json:"priority"`
	Status      Status     `gorm:"size:15;not null;default:pending" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedBy   string     `gorm:"size:36;not null;index" json:"created_by"`
	AssignedTo  string     `gorm:"size:36;index" json:"assigned_to,omitempty"`
	Tags        string     `gorm:"size:200" json:"tags"`
}

// TableName returns the table name for the Task entity.
func (Task) TableName() string {
	return "tasks"
}

// IsOverdue reports whether the task is past its due date and not completed.
// Computed on read, never stored.
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == StatusCompleted {
		return false
	}
	return now.After(*t.DueDate)
}

// TagList returns the ordered sequence of non-empty, trimmed tag strings.
func (t *Task) TagList() []string {
	tags := make([]string, 0)
	for _, tag := range strings.Split(t.Tags, ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}

// ApplyStatus transitions the task to the given status while maintaining the
// completed_at invariant: CompletedAt is non-nil exactly when the status is
// completed. Entering completed stamps the transition time unless a timestamp
// is already present; leaving completed clears it.
func (t *Task) ApplyStatus(status Status, now time.Time) {
	t.Status = status
	if status == StatusCompleted {
		if t.CompletedAt == nil {
			completedAt := now
			t.CompletedAt = &completedAt
		}
		return
	}
	t.CompletedAt = nil
}

// VisibleTo reports whether the user may see this task. A task is visible to
// its creator and its assignee; there is no other access path.
func (t *Task) VisibleTo(userID string) bool {
	if userID == "" {
		return false
	}
	return t.CreatedBy == userID || t.AssignedTo == userID
}
