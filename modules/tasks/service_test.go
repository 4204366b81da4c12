package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "github.com/example/taskboard/domain/task"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakePublisher records published events for assertions.
type fakePublisher struct {
	created   []string
	completed []string
	deleted   []string
}

func (p *fakePublisher) TaskCreated(t *domain.Task)                  { p.created = append(p.created, t.ID) }
func (p *fakePublisher) TaskCompleted(t *domain.Task, actorID string) { p.completed = append(p.completed, t.ID) }
func (p *fakePublisher) TaskDeleted(taskID, actorID string)          { p.deleted = append(p.deleted, taskID) }

func setupService(t *testing.T) (*Service, *fakePublisher) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	repo := domain.NewRepository(db)
	if err := repo.Migrate(); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	publisher := &fakePublisher{}
	return NewService(repo, publisher), publisher
}

func strptr(s string) *string { return &s }

func TestService_Create(t *testing.T) {
	svc, publisher := setupService(t)
	ctx := context.Background()

	t.Run("defaults applied", func(t *testing.T) {
		created, err := svc.Create(ctx, CreateTaskRequest{UserID: "alice", Title: "Plan sprint"})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if created.Priority != domain.PriorityMedium {
			t.Errorf("expected default priority medium, got %s", created.Priority)
		}
		if created.Status != domain.StatusPending {
			t.Errorf("expected default status pending, got %s", created.Status)
		}
		if created.CreatedBy != "alice" {
			t.Errorf("expected creator alice, got %s", created.CreatedBy)
		}
		if len(publisher.created) != 1 {
			t.Errorf("expected 1 created event, got %d", len(publisher.created))
		}
	})

	t.Run("created completed gets timestamp", func(t *testing.T) {
		created, err := svc.Create(ctx, CreateTaskRequest{
			UserID: "alice",
			Title:  "Already done",
			Status: "completed",
		})
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		if created.CompletedAt == nil {
			t.Error("expected CompletedAt to be set for a task created completed")
		}
	})

	t.Run("missing title rejected", func(t *testing.T) {
		if _, err := svc.Create(ctx, CreateTaskRequest{UserID: "alice"}); err == nil {
			t.Error("expected error for missing title")
		}
	})

	t.Run("invalid priority rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, CreateTaskRequest{UserID: "alice", Title: "x", Priority: "critical"})
		if err == nil {
			t.Error("expected error for invalid priority")
		}
	})
}

func TestService_Visibility(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTaskRequest{
		UserID:     "alice",
		Title:      "Shared task",
		AssignedTo: "bob",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("creator sees task", func(t *testing.T) {
		if _, err := svc.Get(ctx, "alice", created.ID); err != nil {
			t.Errorf("Get() error = %v", err)
		}
	})

	t.Run("assignee sees task", func(t *testing.T) {
		if _, err := svc.Get(ctx, "bob", created.ID); err != nil {
			t.Errorf("Get() error = %v", err)
		}
	})

	t.Run("stranger gets not found", func(t *testing.T) {
		if _, err := svc.Get(ctx, "carol", created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestService_Update(t *testing.T) {
	svc, publisher := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTaskRequest{UserID: "alice", Title: "Original"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("partial update leaves other fields", func(t *testing.T) {
		updated, err := svc.Update(ctx, UpdateTaskRequest{
			UserID: "alice",
			TaskID: created.ID,
			Title:  strptr("Renamed"),
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.Title != "Renamed" {
			t.Errorf("expected title Renamed, got %s", updated.Title)
		}
		if updated.Priority != domain.PriorityMedium {
			t.Errorf("priority must be unchanged, got %s", updated.Priority)
		}
	})

	t.Run("status change to completed emits event", func(t *testing.T) {
		updated, err := svc.Update(ctx, UpdateTaskRequest{
			UserID: "alice",
			TaskID: created.ID,
			Status: strptr("completed"),
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.CompletedAt == nil {
			t.Fatal("expected CompletedAt to be set")
		}
		if len(publisher.completed) != 1 {
			t.Errorf("expected 1 completed event, got %d", len(publisher.completed))
		}
	})

	t.Run("reopening clears completed_at", func(t *testing.T) {
		updated, err := svc.Update(ctx, UpdateTaskRequest{
			UserID: "alice",
			TaskID: created.ID,
			Status: strptr("in_progress"),
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if updated.CompletedAt != nil {
			t.Error("expected CompletedAt to be cleared after reopening")
		}
	})

	t.Run("empty title rejected", func(t *testing.T) {
		_, err := svc.Update(ctx, UpdateTaskRequest{
			UserID: "alice",
			TaskID: created.ID,
			Title:  strptr(""),
		})
		if err == nil {
			t.Error("expected error for empty title")
		}
	})
}

func TestService_Complete(t *testing.T) {
	svc, publisher := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTaskRequest{UserID: "alice", Title: "Finish me"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	completed, err := svc.Complete(ctx, "alice", created.ID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if completed.CompletedAt == nil {
		t.Fatal("expected CompletedAt to be set")
	}
	first := *completed.CompletedAt

	// A second completion preserves the original timestamp and stays quiet.
	time.Sleep(5 * time.Millisecond)
	again, err := svc.Complete(ctx, "alice", created.ID)
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if !again.CompletedAt.Equal(first) {
		t.Errorf("expected original timestamp %v, got %v", first, *again.CompletedAt)
	}
	if len(publisher.completed) != 1 {
		t.Errorf("expected 1 completed event total, got %d", len(publisher.completed))
	}
}

func TestService_Delete(t *testing.T) {
	svc, publisher := setupService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, CreateTaskRequest{
		UserID:     "alice",
		Title:      "Delete me",
		AssignedTo: "bob",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	t.Run("assignee may not delete", func(t *testing.T) {
		if err := svc.Delete(ctx, "bob", created.ID); !errors.Is(err, ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("creator deletes", func(t *testing.T) {
		if err := svc.Delete(ctx, "alice", created.ID); err != nil {
			t.Fatalf("Delete() error = %v", err)
		}
		if _, err := svc.Get(ctx, "alice", created.ID); !errors.Is(err, ErrNotFound) {
			t.Errorf("expected ErrNotFound after delete, got %v", err)
		}
		if len(publisher.deleted) != 1 {
			t.Errorf("expected 1 deleted event, got %d", len(publisher.deleted))
		}
	})
}

func TestService_List(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	seed := []CreateTaskRequest{
		{UserID: "alice", Title: "Pay invoices", Priority: "urgent"},
		{UserID: "alice", Title: "Water plants", Priority: "low"},
		{UserID: "bob", Title: "Review code", AssignedTo: "alice", Priority: "high"},
		{UserID: "bob", Title: "Private errand"},
	}
	for _, req := range seed {
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	t.Run("visible set", func(t *testing.T) {
		tasks, err := svc.List(ctx, ListTasksRequest{UserID: "alice"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(tasks) != 3 {
			t.Errorf("expected 3 tasks, got %d", len(tasks))
		}
	})

	t.Run("priority filter", func(t *testing.T) {
		tasks, err := svc.List(ctx, ListTasksRequest{UserID: "alice", Priority: "urgent"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(tasks) != 1 || tasks[0].Title != "Pay invoices" {
			t.Errorf("expected only the urgent task, got %d tasks", len(tasks))
		}
	})

	t.Run("search filter", func(t *testing.T) {
		tasks, err := svc.List(ctx, ListTasksRequest{UserID: "alice", Search: "plants"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(tasks) != 1 || tasks[0].Title != "Water plants" {
			t.Errorf("expected the plants task, got %d tasks", len(tasks))
		}
	})

	t.Run("priority sort orders by rank", func(t *testing.T) {
		tasks, err := svc.List(ctx, ListTasksRequest{UserID: "alice", Sort: "priority", Order: "desc"})
		if err != nil {
			t.Fatalf("List() error = %v", err)
		}
		if len(tasks) != 3 {
			t.Fatalf("expected 3 tasks, got %d", len(tasks))
		}
		if tasks[0].Priority != domain.PriorityUrgent ||
			tasks[1].Priority != domain.PriorityHigh ||
			tasks[2].Priority != domain.PriorityLow {
			t.Errorf("order = %s,%s,%s", tasks[0].Priority, tasks[1].Priority, tasks[2].Priority)
		}
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		if _, err := svc.List(ctx, ListTasksRequest{UserID: "alice", Status: "done"}); err == nil {
			t.Error("expected error for invalid status filter")
		}
	})
}

func TestService_Stats(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for _, req := range []CreateTaskRequest{
		{UserID: "alice", Title: "One"},
		{UserID: "alice", Title: "Two"},
		{UserID: "bob", Title: "Theirs"},
	} {
		if _, err := svc.Create(ctx, req); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	tasks, err := svc.List(ctx, ListTasksRequest{UserID: "alice"})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if _, err := svc.Complete(ctx, "alice", tasks[0].ID); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	stats, err := svc.Stats(ctx, "alice")
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.TotalTasks != 2 {
		t.Errorf("TotalTasks = %d, want 2", stats.TotalTasks)
	}
	if stats.CompletedTasks != 1 {
		t.Errorf("CompletedTasks = %d, want 1", stats.CompletedTasks)
	}
	if len(stats.MonthlyCompletion) != monthlyWindow {
		t.Errorf("expected %d monthly entries, got %d", monthlyWindow, len(stats.MonthlyCompletion))
	}
	if stats.MonthlyCompletion[monthlyWindow-1].Completed != 1 {
		t.Errorf("expected current month to show 1 completion, got %d",
			stats.MonthlyCompletion[monthlyWindow-1].Completed)
	}
}

func TestService_Dashboard(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if _, err := svc.Create(ctx, CreateTaskRequest{UserID: "alice", Title: "Task"}); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	dashboard, err := svc.Dashboard(ctx, "alice")
	if err != nil {
		t.Fatalf("Dashboard() error = %v", err)
	}
	if dashboard.TotalTasks != 7 {
		t.Errorf("TotalTasks = %d, want 7", dashboard.TotalTasks)
	}
	if dashboard.PendingTasks != 7 {
		t.Errorf("PendingTasks = %d, want 7", dashboard.PendingTasks)
	}
	if len(dashboard.RecentTasks) != dashboardRecentLimit {
		t.Errorf("RecentTasks = %d, want %d", len(dashboard.RecentTasks), dashboardRecentLimit)
	}
}
