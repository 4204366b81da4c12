package task

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a task does not exist or is not visible to
// the requesting user.
var ErrNotFound = errors.New("task not found")

// Repository provides task persistence using GORM.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new task repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate runs database migrations for the tasks table.
func (r *Repository) Migrate() error {
	return r.db.AutoMigrate(&Task{})
}

// Create saves a new task to the database.
func (r *Repository) Create(ctx context.Context, t *Task) error {
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

// FindByID retrieves a task by its ID.
func (r *Repository) FindByID(ctx context.Context, id string) (*Task, error) {
	var t Task
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return &t, nil
}

// Update persists all fields of an existing task.
func (r *Repository) Update(ctx context.Context, t *Task) error {
	result := r.db.WithContext(ctx).Save(t)
	if result.Error != nil {
		return fmt.Errorf("failed to update task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a task by ID.
func (r *Repository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&Task{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("failed to delete task: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// FindVisible retrieves every task visible to the user (creator or
// assignee), restricted by the filter. Visibility, status and priority
// mirror Task.VisibleTo as SQL; the search term is applied in memory with
// Filter.Matches, because SQLite LIKE treats % and _ as wildcards and
// folds case for ASCII only, so a LIKE clause would not match the
// in-memory predicate. Results come back most recently created first and
// callers re-sort in memory when another ordering is requested.
func (r *Repository) FindVisible(ctx context.Context, userID string, f Filter) ([]*Task, error) {
	query := r.db.WithContext(ctx).
		Where("created_by = ? OR assigned_to = ?", userID, userID)

	if f.Status != "" {
		query = query.Where("status = ?", f.Status)
	}
	if f.Priority != "" {
		query = query.Where("priority = ?", f.Priority)
	}

	var tasks []*Task
	if err := query.Order("created_at DESC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	if f.Search != "" {
		search := Filter{Search: f.Search}
		filtered := tasks[:0]
		for _, t := range tasks {
			if search.Matches(t) {
				filtered = append(filtered, t)
			}
		}
		tasks = filtered
	}
	return tasks, nil
}
