package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// TaskPort defines the interface driving adapters (like the HTTP API) use to
// reach task operations.
type TaskPort interface {
	Create(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error)
	Get(ctx context.Context, userID, taskID string) (*TaskResponse, error)
	Update(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error)
	Complete(ctx context.Context, userID, taskID string) (*TaskResponse, error)
	Delete(ctx context.Context, userID, taskID string) (*DeleteTaskResponse, error)
	List(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error)
	Stats(ctx context.Context, userID string) (*StatsResponse, error)
	Dashboard(ctx context.Context, userID string) (*DashboardResponse, error)
}

// TaskAdapter implements TaskPort over the service container.
type TaskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new TaskAdapter.
func NewTaskAdapter(container mono.ServiceContainer) *TaskAdapter {
	return &TaskAdapter{
		container: container,
	}
}

// call performs one request-reply round trip against the tasks container.
func (a *TaskAdapter) call(ctx context.Context, service string, req, resp any) error {
	if err := helper.CallRequestReplyService[any, any](
		ctx,
		a.container,
		service,
		json.Marshal,
		json.Unmarshal,
		req,
		&resp,
	); err != nil {
		return fmt.Errorf("%s request failed: %w", service, err)
	}
	return nil
}

// Create creates a task owned by the acting user.
func (a *TaskAdapter) Create(ctx context.Context, req *CreateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := a.call(ctx, "create", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Get fetches a single visible task.
func (a *TaskAdapter) Get(ctx context.Context, userID, taskID string) (*TaskResponse, error) {
	req := GetTaskRequest{UserID: userID, TaskID: taskID}
	var resp TaskResponse
	if err := a.call(ctx, "get", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Update applies a partial update to a task.
func (a *TaskAdapter) Update(ctx context.Context, req *UpdateTaskRequest) (*TaskResponse, error) {
	var resp TaskResponse
	if err := a.call(ctx, "update", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Complete marks a task completed.
func (a *TaskAdapter) Complete(ctx context.Context, userID, taskID string) (*TaskResponse, error) {
	req := CompleteTaskRequest{UserID: userID, TaskID: taskID}
	var resp TaskResponse
	if err := a.call(ctx, "complete", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Delete removes a task.
func (a *TaskAdapter) Delete(ctx context.Context, userID, taskID string) (*DeleteTaskResponse, error) {
	req := DeleteTaskRequest{UserID: userID, TaskID: taskID}
	var resp DeleteTaskResponse
	if err := a.call(ctx, "delete", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// List returns the acting user's visible tasks.
func (a *TaskAdapter) List(ctx context.Context, req *ListTasksRequest) (*ListTasksResponse, error) {
	var resp ListTasksResponse
	if err := a.call(ctx, "list", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Stats returns statistics over the acting user's visible tasks.
func (a *TaskAdapter) Stats(ctx context.Context, userID string) (*StatsResponse, error) {
	req := StatsRequest{UserID: userID}
	var resp StatsResponse
	if err := a.call(ctx, "stats", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Dashboard returns the dashboard summary for the acting user.
func (a *TaskAdapter) Dashboard(ctx context.Context, userID string) (*DashboardResponse, error) {
	req := DashboardRequest{UserID: userID}
	var resp DashboardResponse
	if err := a.call(ctx, "dashboard", &req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
