package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// Validation limits for task input.
const (
	MaxTaskTitleLength       = 100
	MaxTaskDescriptionLength = 500
)

// TaskService handles business logic for the per-user task list.
//
// Every method takes the acting user's ID and scopes to it silently. There
// is no code path that reads or writes another user's task — and no code
// path that admits one exists. Cross-tenant attempts come back NotFound.
type TaskService struct {
	repo   repository.TaskRepository
	logger *slog.Logger
}

func NewTaskService(repo repository.TaskRepository, logger *slog.Logger) *TaskService {
	return &TaskService{
		repo:   repo,
		logger: logger,
	}
}

// TaskChanges carries a partial update. Pointer fields distinguish "leave
// unchanged" (nil) from "set to the zero value" (&""), which a plain struct
// can't — clearing a description and not touching it must be different
// requests.
type TaskChanges struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

// List returns the caller's tasks, newest first.
func (s *TaskService) List(ctx context.Context, userID string) ([]model.Task, error) {
	tasks, err := s.repo.ListTasksByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list tasks",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	return tasks, nil
}

// Get returns one of the caller's tasks, or NotFound.
func (s *TaskService) Get(ctx context.Context, id, userID string) (*model.Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "task ID is required")
	}
	return s.repo.GetTaskByID(ctx, id, userID)
}

// Create validates and saves a new task. Completed starts false; the
// repository stamps ID and both timestamps.
func (s *TaskService) Create(ctx context.Context, title, description, userID string) (*model.Task, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if err := validateTitle(title); err != nil {
		return nil, err
	}
	if err := validateDescription(description); err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:       title,
		Description: description,
		UserID:      userID,
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		s.logger.Error("failed to create task",
			slog.String("userID", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating task: %w", err)
	}

	s.logger.Info("task created",
		slog.String("id", task.ID),
		slog.String("userID", userID),
	)

	return task, nil
}

// Update applies a partial change set to one of the caller's tasks.
//
// STRATEGY: fetch then update. The fetch doubles as the ownership check —
// it returns NotFound for foreign and missing tasks alike. Fields left nil
// in changes keep their stored values; UpdatedAt is refreshed on EVERY
// successful update, including an empty change set.
func (s *TaskService) Update(ctx context.Context, id string, changes TaskChanges, userID string) (*model.Task, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "task ID is required")
	}

	task, err := s.repo.GetTaskByID(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if changes.Title != nil {
		title := strings.TrimSpace(*changes.Title)
		if err := validateTitle(title); err != nil {
			return nil, err
		}
		task.Title = title
	}
	if changes.Description != nil {
		description := strings.TrimSpace(*changes.Description)
		if err := validateDescription(description); err != nil {
			return nil, err
		}
		task.Description = description
	}
	if changes.Completed != nil {
		task.Completed = *changes.Completed
	}

	if err := s.repo.UpdateTask(ctx, task); err != nil {
		s.logger.Error("failed to update task",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	s.logger.Info("task updated",
		slog.String("id", task.ID),
		slog.String("userID", userID),
	)

	return task, nil
}

// Delete removes one of the caller's tasks. The handler maps the returned
// NotFound to 404, so deleting the same task twice 404s the second time.
func (s *TaskService) Delete(ctx context.Context, id, userID string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "task ID is required")
	}

	if err := s.repo.DeleteTask(ctx, id, userID); err != nil {
		return err
	}

	s.logger.Info("task deleted",
		slog.String("id", id),
		slog.String("userID", userID),
	)
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return apperror.ValidationFailed("title", "task title is required")
	}
	if len(title) > MaxTaskTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("task title must be %d characters or less", MaxTaskTitleLength))
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > MaxTaskDescriptionLength {
		return apperror.ValidationFailed("description",
			fmt.Sprintf("task description must be %d characters or less", MaxTaskDescriptionLength))
	}
	return nil
}
