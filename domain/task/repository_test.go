package task

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&Task{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func newTestTask(createdBy string, createdAt time.Time) *Task {
	return &Task{
		ID:        uuid.New().String(),
		Title:     "Test Task",
		Priority:  PriorityMedium,
		Status:    StatusPending,
		CreatedBy: createdBy,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestRepository_CreateAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	task := newTestTask("alice", time.Now())
	task.Title = "Write report"

	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("existing task", func(t *testing.T) {
		found, err := repo.FindByID(ctx, task.ID)
		if err != nil {
			t.Fatalf("FindByID() error = %v", err)
		}
		if found.Title != "Write report" {
			t.Errorf("expected title %q, got %q", "Write report", found.Title)
		}
		if found.CreatedBy != "alice" {
			t.Errorf("expected creator %q, got %q", "alice", found.CreatedBy)
		}
	})

	t.Run("non-existent task", func(t *testing.T) {
		_, err := repo.FindByID(ctx, "missing")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	task := newTestTask("alice", time.Now())
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	task.Title = "Updated Title"
	task.Status = StatusInProgress
	if err := repo.Update(ctx, task); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	found, err := repo.FindByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("FindByID() error = %v", err)
	}
	if found.Title != "Updated Title" {
		t.Errorf("expected title %q, got %q", "Updated Title", found.Title)
	}
	if found.Status != StatusInProgress {
		t.Errorf("expected status in_progress, got %s", found.Status)
	}
}

func TestRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	task := newTestTask("alice", time.Now())
	if err := repo.Create(ctx, task); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := repo.Delete(ctx, task.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.FindByID(ctx, task.ID); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	t.Run("delete non-existent task", func(t *testing.T) {
		if err := repo.Delete(ctx, "missing"); err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestRepository_FindVisible(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	now := time.Now()

	created := newTestTask("alice", now.Add(-2*time.Hour))
	created.Title = "Owned by alice"

	assigned := newTestTask("bob", now.Add(-time.Hour))
	assigned.Title = "Assigned to alice"
	assigned.AssignedTo = "alice"

	both := newTestTask("alice", now)
	both.Title = "Created and assigned"
	both.AssignedTo = "alice"

	other := newTestTask("bob", now)
	other.Title = "Invisible to alice"

	for _, task := range []*Task{created, assigned, both, other} {
		if err := repo.Create(ctx, task); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	t.Run("creator or assignee without duplicates", func(t *testing.T) {
		tasks, err := repo.FindVisible(ctx, "alice", Filter{})
		if err != nil {
			t.Fatalf("FindVisible() error = %v", err)
		}
		if len(tasks) != 3 {
			t.Fatalf("expected 3 visible tasks, got %d", len(tasks))
		}
		seen := make(map[string]bool)
		for _, task := range tasks {
			if seen[task.ID] {
				t.Errorf("task %s returned twice", task.ID)
			}
			seen[task.ID] = true
			if task.ID == other.ID {
				t.Error("stranger's task must not be visible")
			}
		}
	})

	t.Run("ordered most recent first", func(t *testing.T) {
		tasks, err := repo.FindVisible(ctx, "alice", Filter{})
		if err != nil {
			t.Fatalf("FindVisible() error = %v", err)
		}
		for i := 1; i < len(tasks); i++ {
			if tasks[i].CreatedAt.After(tasks[i-1].CreatedAt) {
				t.Errorf("tasks not in created_at descending order at index %d", i)
			}
		}
	})

	t.Run("status filter", func(t *testing.T) {
		created.Status = StatusCompleted
		if err := repo.Update(ctx, created); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		tasks, err := repo.FindVisible(ctx, "alice", Filter{Status: StatusCompleted})
		if err != nil {
			t.Fatalf("FindVisible() error = %v", err)
		}
		if len(tasks) != 1 || tasks[0].ID != created.ID {
			t.Errorf("expected only the completed task, got %d tasks", len(tasks))
		}
	})

	t.Run("search filter case-insensitive", func(t *testing.T) {
		tasks, err := repo.FindVisible(ctx, "alice", Filter{Search: "ASSIGNED"})
		if err != nil {
			t.Fatalf("FindVisible() error = %v", err)
		}
		if len(tasks) != 2 {
			t.Errorf("expected 2 matching tasks, got %d", len(tasks))
		}
	})

	t.Run("search metacharacters match literally", func(t *testing.T) {
		literal := newTestTask("alice", now.Add(-3*time.Hour))
		literal.Title = "Grow revenue 100% this year"
		lookalike := newTestTask("alice", now.Add(-4*time.Hour))
		lookalike.Title = "Grow revenue 1000x this year"
		underscore := newTestTask("alice", now.Add(-5*time.Hour))
		underscore.Title = "Rename migration_v2 script"
		wildcard := newTestTask("alice", now.Add(-6*time.Hour))
		wildcard.Title = "Rename migrationXv2 script"

		for _, task := range []*Task{literal, lookalike, underscore, wildcard} {
			if err := repo.Create(ctx, task); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
		}

		tasks, err := repo.FindVisible(ctx, "alice", Filter{Search: "100%"})
		if err != nil {
			t.Fatalf("FindVisible() error = %v", err)
		}
		if len(tasks) != 1 || tasks[0].ID != literal.ID {
			t.Errorf("search %q must match only the literal title, got %d tasks", "100%", len(tasks))
		}

		tasks, err = repo.FindVisible(ctx, "alice", Filter{Search: "migration_v2"})
		if err != nil {
			t.Fatalf("FindVisible() error = %v", err)
		}
		if len(tasks) != 1 || tasks[0].ID != underscore.ID {
			t.Errorf("search %q must match only the literal title, got %d tasks", "migration_v2", len(tasks))
		}
	})

	t.Run("search case-insensitive beyond ASCII", func(t *testing.T) {
		umlaut := newTestTask("alice", now.Add(-7*time.Hour))
		umlaut.Title = "Ärger mit dem Server"
		if err := repo.Create(ctx, umlaut); err != nil {
			t.Fatalf("Create() error = %v", err)
		}

		tasks, err := repo.FindVisible(ctx, "alice", Filter{Search: "ärger"})
		if err != nil {
			t.Fatalf("FindVisible() error = %v", err)
		}
		if len(tasks) != 1 || tasks[0].ID != umlaut.ID {
			t.Errorf("expected the non-ASCII title to match, got %d tasks", len(tasks))
		}
	})

	t.Run("no visible tasks", func(t *testing.T) {
		tasks, err := repo.FindVisible(ctx, "carol", Filter{})
		if err != nil {
			t.Fatalf("FindVisible() error = %v", err)
		}
		if len(tasks) != 0 {
			t.Errorf("expected 0 tasks, got %d", len(tasks))
		}
	})
}
