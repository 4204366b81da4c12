package tasks

import (
	"time"

	domain "github.com/example/taskboard/domain/task"
)

// CreateTaskRequest is the request for creating a task. UserID is the acting
// user and becomes the immutable creator of the task.
type CreateTaskRequest struct {
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority,omitempty"`
	Status      string     `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	Tags        string     `json:"tags,omitempty"`
}

// GetTaskRequest is the request for fetching a single task.
type GetTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// UpdateTaskRequest is the request for partially updating a task. Nil fields
// are left unchanged.
type UpdateTaskRequest struct {
	UserID      string     `json:"user_id"`
	TaskID      string     `json:"task_id"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	Status      *string    `json:"status,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	AssignedTo  *string    `json:"assigned_to,omitempty"`
	Tags        *string    `json:"tags,omitempty"`
}

// CompleteTaskRequest is the request for marking a task completed.
type CompleteTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	UserID string `json:"user_id"`
	TaskID string `json:"task_id"`
}

// DeleteTaskResponse is the response after deleting a task.
type DeleteTaskResponse struct {
	Deleted bool   `json:"deleted"`
	TaskID  string `json:"task_id"`
}

// ListTasksRequest is the request for listing the acting user's visible
// tasks. Filter and sort fields are optional.
type ListTasksRequest struct {
	UserID   string `json:"user_id"`
	Status   string `json:"status,omitempty"`
	Priority string `json:"priority,omitempty"`
	Search   string `json:"search,omitempty"`
	Sort     string `json:"sort,omitempty"`
	Order    string `json:"order,omitempty"`
}

// ListTasksResponse is the response containing an ordered task listing.
type ListTasksResponse struct {
	Tasks []TaskResponse `json:"tasks"`
	Total int            `json:"total"`
}

// StatsRequest is the request for task statistics.
type StatsRequest struct {
	UserID string `json:"user_id"`
}

// DashboardRequest is the request for the dashboard summary.
type DashboardRequest struct {
	UserID string `json:"user_id"`
}

// TaskResponse represents a task in responses. IsOverdue and TagsList are
// derived at render time.
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedBy   string     `json:"created_by"`
	AssignedTo  string     `json:"assigned_to,omitempty"`
	Tags        string     `json:"tags"`
	TagsList    []string   `json:"tags_list"`
	IsOverdue   bool       `json:"is_overdue"`
}

// MonthlyCompletion is one calendar month's completion count.
type MonthlyCompletion struct {
	Month     string `json:"month"`
	Completed int    `json:"completed"`
}

// StatsResponse summarizes the acting user's visible task set.
type StatsResponse struct {
	StatusDistribution   map[string]int      `json:"status_distribution"`
	PriorityDistribution map[string]int      `json:"priority_distribution"`
	MonthlyCompletion    []MonthlyCompletion `json:"monthly_completion"`
	TotalTasks           int                 `json:"total_tasks"`
	CompletedTasks       int                 `json:"completed_tasks"`
	OverdueTasks         int                 `json:"overdue_tasks"`
}

// DashboardResponse is the dashboard summary for the acting user.
type DashboardResponse struct {
	TotalTasks     int            `json:"total_tasks"`
	PendingTasks   int            `json:"pending_tasks"`
	CompletedTasks int            `json:"completed_tasks"`
	OverdueTasks   int            `json:"overdue_tasks"`
	RecentTasks    []TaskResponse `json:"recent_tasks"`
}

// toTaskResponse converts a domain Task to a TaskResponse, deriving
// IsOverdue at the given instant.
func toTaskResponse(t *domain.Task, now time.Time) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    string(t.Priority),
		Status:      string(t.Status),
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		CreatedBy:   t.CreatedBy,
		AssignedTo:  t.AssignedTo,
		Tags:        t.Tags,
		TagsList:    t.TagList(),
		IsOverdue:   t.IsOverdue(now),
	}
}
