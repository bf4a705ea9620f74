package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
)

// =========================================================================
// MOCK REPOSITORY
// =========================================================================

type mockTaskRepo struct {
	tasks  map[string]*model.Task
	nextID int
}

func newMockTaskRepo() *mockTaskRepo {
	return &mockTaskRepo{tasks: make(map[string]*model.Task)}
}

func (m *mockTaskRepo) ListTasksByUser(_ context.Context, userID string) ([]model.Task, error) {
	out := []model.Task{}
	for _, task := range m.tasks {
		if task.UserID == userID {
			out = append(out, *task)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *mockTaskRepo) GetTaskByID(_ context.Context, id, userID string) (*model.Task, error) {
	task, ok := m.tasks[id]
	if !ok || task.UserID != userID {
		return nil, apperror.NotFound("task", id)
	}
	result := *task
	return &result, nil
}

func (m *mockTaskRepo) CreateTask(_ context.Context, task *model.Task) error {
	m.nextID++
	task.ID = fmt.Sprintf("task-%d", m.nextID)
	now := time.Now()
	task.CreatedAt = now
	task.UpdatedAt = now
	stored := *task
	m.tasks[task.ID] = &stored
	return nil
}

func (m *mockTaskRepo) UpdateTask(_ context.Context, task *model.Task) error {
	existing, ok := m.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return apperror.NotFound("task", task.ID)
	}
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = time.Now()
	stored := *task
	m.tasks[task.ID] = &stored
	return nil
}

func (m *mockTaskRepo) DeleteTask(_ context.Context, id, userID string) error {
	task, ok := m.tasks[id]
	if !ok || task.UserID != userID {
		return apperror.NotFound("task", id)
	}
	delete(m.tasks, id)
	return nil
}

// =========================================================================
// TEST HELPERS
// =========================================================================

func newTestTaskService(t *testing.T) *TaskService {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewTaskService(newMockTaskRepo(), logger)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestTaskCreate(t *testing.T) {
	svc := newTestTaskService(t)

	task, err := svc.Create(context.Background(), "  buy milk  ", "2 liters", "user-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if task.Title != "buy milk" {
		t.Errorf("Create() Title = %q, want trimmed %q", task.Title, "buy milk")
	}
	if task.Completed {
		t.Error("Create() new task must start incomplete")
	}
	if task.UserID != "user-1" {
		t.Errorf("Create() UserID = %q, want %q", task.UserID, "user-1")
	}
}

func TestTaskCreate_Validation(t *testing.T) {
	svc := newTestTaskService(t)

	tests := []struct {
		name        string
		title       string
		description string
	}{
		{name: "empty title", title: "", description: "desc"},
		{name: "whitespace title", title: "   ", description: "desc"},
		{name: "title too long", title: strings.Repeat("x", 101), description: ""},
		{name: "description too long", title: "ok", description: strings.Repeat("x", 501)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.title, tt.description, "user-1")
			if !errors.Is(err, apperror.ErrValidation) {
				t.Errorf("Create() error = %v, want ErrValidation", err)
			}
		})
	}
}

func TestTaskCreate_EmptyDescriptionAllowed(t *testing.T) {
	svc := newTestTaskService(t)

	if _, err := svc.Create(context.Background(), "title only", "", "user-1"); err != nil {
		t.Errorf("Create() with empty description error = %v", err)
	}
}

// =========================================================================
// TENANT ISOLATION TESTS
// =========================================================================

func TestTaskList_IsolatedPerUser(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	if _, err := svc.Create(ctx, "alice task", "", "alice"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := svc.Create(ctx, "bob task", "", "bob"); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	tasks, err := svc.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "alice task" {
		t.Errorf("List(alice) = %+v, want only alice's task", tasks)
	}
}

// Another tenant's task must look identical to a missing one.
func TestTask_CrossTenantIsNotFound(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "private", "", "alice")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := svc.Get(ctx, task.ID, "bob"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Get() as other user error = %v, want ErrNotFound", err)
	}
	if _, err := svc.Update(ctx, task.ID, TaskChanges{Title: strPtr("stolen")}, "bob"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Update() as other user error = %v, want ErrNotFound", err)
	}
	if err := svc.Delete(ctx, task.ID, "bob"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("Delete() as other user error = %v, want ErrNotFound", err)
	}

	// The owner still sees the task untouched
	got, err := svc.Get(ctx, task.ID, "alice")
	if err != nil {
		t.Fatalf("Get() as owner error = %v", err)
	}
	if got.Title != "private" {
		t.Errorf("task was modified by a cross-tenant attempt: Title = %q", got.Title)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestTaskUpdate_PartialFields(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "original", "keep me", "user-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := svc.Update(ctx, task.ID, TaskChanges{Completed: boolPtr(true)}, "user-1")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.Completed {
		t.Error("Update() did not apply Completed")
	}
	if updated.Title != "original" || updated.Description != "keep me" {
		t.Errorf("Update() touched omitted fields: %+v", updated)
	}
}

func TestTaskUpdate_EmptyChangesRefreshTimestamp(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "untouched", "", "user-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	updated, err := svc.Update(ctx, task.ID, TaskChanges{}, "user-1")
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !updated.UpdatedAt.After(task.UpdatedAt) {
		t.Error("Update() with no changes must still refresh UpdatedAt")
	}
	if updated.Title != "untouched" {
		t.Errorf("Update() with no changes altered Title = %q", updated.Title)
	}
}

func TestTaskUpdate_Validation(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "valid", "", "user-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	_, err = svc.Update(ctx, task.ID, TaskChanges{Title: strPtr("   ")}, "user-1")
	if !errors.Is(err, apperror.ErrValidation) {
		t.Errorf("Update() with blank title error = %v, want ErrValidation", err)
	}
}

// =========================================================================
// DELETE TESTS
// =========================================================================

func TestTaskDelete(t *testing.T) {
	svc := newTestTaskService(t)
	ctx := context.Background()

	task, err := svc.Create(ctx, "doomed", "", "user-1")
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := svc.Delete(ctx, task.ID, "user-1"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := svc.Delete(ctx, task.ID, "user-1"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}
