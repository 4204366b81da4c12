package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a task does not exist or is not visible
	// to the acting user. The two cases are deliberately indistinguishable.
	ErrNotFound = domain.ErrNotFound

	// ErrForbidden is returned when the acting user may see a task but lacks
	// the right to perform the requested mutation.
	ErrForbidden = errors.New("operation not allowed")
)

// dashboardRecentLimit is the number of recent tasks shown on the dashboard.
const dashboardRecentLimit = 5

// EventPublisher receives task lifecycle notifications. Publishing is
// best-effort; implementations must not block task operations.
type EventPublisher interface {
	TaskCreated(t *domain.Task)
	TaskCompleted(t *domain.Task, actorID string)
	TaskDeleted(taskID, actorID string)
}

// Service implements task operations: creation, ownership-scoped querying,
// mutation under the completed_at invariant, and statistics.
type Service struct {
	repo      *domain.Repository
	publisher EventPublisher
	now       func() time.Time
}

// NewService creates a new task service. publisher may be nil, in which case
// no events are emitted.
func NewService(repo *domain.Repository, publisher EventPublisher) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		now:       time.Now,
	}
}

// Create creates a task owned by the acting user.
func (s *Service) Create(ctx context.Context, req CreateTaskRequest) (*domain.Task, error) {
	if req.UserID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	priority := domain.Priority(req.Priority)
	if req.Priority == "" {
		priority = domain.PriorityMedium
	} else if !priority.Valid() {
		return nil, fmt.Errorf("invalid priority: %s", req.Priority)
	}

	status := domain.Status(req.Status)
	if req.Status == "" {
		status = domain.StatusPending
	} else if !status.Valid() {
		return nil, fmt.Errorf("invalid status: %s", req.Status)
	}

	now := s.now()
	t := &domain.Task{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
		DueDate:     req.DueDate,
		CreatedBy:   req.UserID,
		AssignedTo:  req.AssignedTo,
		Tags:        req.Tags,
	}
	t.ApplyStatus(status, now)

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	if s.publisher != nil {
		s.publisher.TaskCreated(t)
	}
	return t, nil
}

// Get returns a single task if it is visible to the acting user.
func (s *Service) Get(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	t, err := s.repo.FindByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if !t.VisibleTo(userID) {
		return nil, ErrNotFound
	}
	return t, nil
}

// Update applies a partial update to a task. The creator and the assignee
// both hold update rights. Status changes route through ApplyStatus so the
// completed_at invariant holds on every write path.
func (s *Service) Update(ctx context.Context, req UpdateTaskRequest) (*domain.Task, error) {
	t, err := s.Get(ctx, req.UserID, req.TaskID)
	if err != nil {
		return nil, err
	}

	wasCompleted := t.Status == domain.StatusCompleted

	if req.Title != nil {
		if *req.Title == "" {
			return nil, fmt.Errorf("title cannot be empty")
		}
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Priority != nil {
		priority := domain.Priority(*req.Priority)
		if !priority.Valid() {
			return nil, fmt.Errorf("invalid priority: %s", *req.Priority)
		}
		t.Priority = priority
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	}
	if req.AssignedTo != nil {
		t.AssignedTo = *req.AssignedTo
	}
	if req.Tags != nil {
		t.Tags = *req.Tags
	}

	now := s.now()
	if req.Status != nil {
		status := domain.Status(*req.Status)
		if !status.Valid() {
			return nil, fmt.Errorf("invalid status: %s", *req.Status)
		}
		t.ApplyStatus(status, now)
	}
	t.UpdatedAt = now

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	if s.publisher != nil && !wasCompleted && t.Status == domain.StatusCompleted {
		s.publisher.TaskCompleted(t, req.UserID)
	}
	return t, nil
}

// Complete marks a task completed. Completing an already-completed task is a
// no-op that preserves the original completion timestamp.
func (s *Service) Complete(ctx context.Context, userID, taskID string) (*domain.Task, error) {
	t, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}

	wasCompleted := t.Status == domain.StatusCompleted

	now := s.now()
	t.ApplyStatus(domain.StatusCompleted, now)
	t.UpdatedAt = now

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, err
	}

	if s.publisher != nil && !wasCompleted {
		s.publisher.TaskCompleted(t, userID)
	}
	return t, nil
}

// Delete removes a task. Only the creator may delete; an assignee gets
// ErrForbidden.
func (s *Service) Delete(ctx context.Context, userID, taskID string) error {
	t, err := s.Get(ctx, userID, taskID)
	if err != nil {
		return err
	}
	if t.CreatedBy != userID {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, taskID); err != nil {
		return err
	}

	if s.publisher != nil {
		s.publisher.TaskDeleted(taskID, userID)
	}
	return nil
}

// List returns the ordered sequence of tasks visible to the acting user,
// restricted by the filter. Filtering happens in the store; non-default
// orderings are applied in memory.
func (s *Service) List(ctx context.Context, req ListTasksRequest) ([]*domain.Task, error) {
	if req.Status != "" && !domain.Status(req.Status).Valid() {
		return nil, fmt.Errorf("invalid status: %s", req.Status)
	}
	if req.Priority != "" && !domain.Priority(req.Priority).Valid() {
		return nil, fmt.Errorf("invalid priority: %s", req.Priority)
	}

	filter := domain.Filter{
		Status:   domain.Status(req.Status),
		Priority: domain.Priority(req.Priority),
		Search:   req.Search,
	}

	tasks, err := s.repo.FindVisible(ctx, req.UserID, filter)
	if err != nil {
		return nil, err
	}

	sort := domain.NormalizeSort(req.Sort, req.Order)
	if sort != domain.DefaultSort {
		domain.SortTasks(tasks, sort)
	}
	return tasks, nil
}

// Stats summarizes the acting user's full visible task set.
func (s *Service) Stats(ctx context.Context, userID string) (StatsResponse, error) {
	tasks, err := s.repo.FindVisible(ctx, userID, domain.Filter{})
	if err != nil {
		return StatsResponse{}, err
	}
	return Summarize(tasks, s.now()), nil
}

// Dashboard returns the dashboard summary: counts plus the most recently
// created visible tasks.
func (s *Service) Dashboard(ctx context.Context, userID string) (DashboardResponse, error) {
	tasks, err := s.repo.FindVisible(ctx, userID, domain.Filter{})
	if err != nil {
		return DashboardResponse{}, err
	}

	now := s.now()
	resp := DashboardResponse{
		TotalTasks:  len(tasks),
		RecentTasks: make([]TaskResponse, 0, dashboardRecentLimit),
	}
	for _, t := range tasks {
		switch t.Status {
		case domain.StatusPending:
			resp.PendingTasks++
		case domain.StatusCompleted:
			resp.CompletedTasks++
		}
		if t.IsOverdue(now) {
			resp.OverdueTasks++
		}
	}
	for _, t := range tasks {
		if len(resp.RecentTasks) == dashboardRecentLimit {
			break
		}
		resp.RecentTasks = append(resp.RecentTasks, toTaskResponse(t, now))
	}
	return resp, nil
}
