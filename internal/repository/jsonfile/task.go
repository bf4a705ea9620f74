package jsonfile

import (
	"context"
	"sort"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// compile-time check that *DB implements repository.TaskRepository
var _ repository.TaskRepository = (*DB)(nil)

type tasksDoc struct {
	Tasks []model.Task `json:"tasks"`
}

// ListTasksByUser returns the caller's tasks, newest first. Other users' tasks
// are filtered out during the scan — they never leave this function.
func (db *DB) ListTasksByUser(_ context.Context, userID string) ([]model.Task, error) {
	var doc tasksDoc
	if err := db.store.View(tasksCollection, &doc); err != nil {
		return nil, err
	}

	tasks := make([]model.Task, 0, len(doc.Tasks))
	for _, t := range doc.Tasks {
		if t.UserID == userID {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// GetTaskByID returns the task only when both id and owner match. An existing
// task owned by someone else yields the same NotFound as a bogus id.
func (db *DB) GetTaskByID(_ context.Context, id, userID string) (*model.Task, error) {
	var doc tasksDoc
	if err := db.store.View(tasksCollection, &doc); err != nil {
		return nil, err
	}
	for _, t := range doc.Tasks {
		if t.ID == id && t.UserID == userID {
			task := t
			return &task, nil
		}
	}
	return nil, apperror.NotFound("task", id)
}

// CreateTask appends a task, generating ID and setting both timestamps to now.
func (db *DB) CreateTask(_ context.Context, task *model.Task) error {
	var doc tasksDoc
	return db.store.Mutate(tasksCollection, &doc, func() error {
		now := time.Now()
		task.ID = xid.New().String()
		task.CreatedAt = now
		task.UpdatedAt = now

		doc.Tasks = append(doc.Tasks, *task)
		return nil
	})
}

// UpdateTask rewrites the stored task's mutable fields and always refreshes
// UpdatedAt — even when the incoming task is otherwise unchanged.
func (db *DB) UpdateTask(_ context.Context, task *model.Task) error {
	var doc tasksDoc
	return db.store.Mutate(tasksCollection, &doc, func() error {
		for i, t := range doc.Tasks {
			if t.ID == task.ID && t.UserID == task.UserID {
				task.CreatedAt = t.CreatedAt
				task.UpdatedAt = time.Now()
				doc.Tasks[i] = *task
				return nil
			}
		}
		return apperror.NotFound("task", task.ID)
	})
}

// DeleteTask removes the owned task, or reports NotFound. Deleting the same id
// twice therefore succeeds once and 404s after.
func (db *DB) DeleteTask(_ context.Context, id, userID string) error {
	var doc tasksDoc
	return db.store.Mutate(tasksCollection, &doc, func() error {
		for i, t := range doc.Tasks {
			if t.ID == id && t.UserID == userID {
				doc.Tasks = append(doc.Tasks[:i], doc.Tasks[i+1:]...)
				return nil
			}
		}
		return apperror.NotFound("task", id)
	})
}
