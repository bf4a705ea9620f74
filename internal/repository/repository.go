// Package repository defines the storage interfaces the services are coded
// against. Two implementations exist: jsonfile (flat JSON documents, the
// default) and sqlite (an embedded engine behind the same contract). The
// services never import either directly — swapping engines is one line in
// the composition root.
//
// Method names carry the entity (CreateUser, GetTaskByID, ...) because each
// driver implements all three interfaces on a single DB value; a shared
// GetByID could only ever serve one of them.
package repository

import (
	"context"

	"github.com/sakif/taskboard/internal/model"
)

// UserRepository persists user accounts.
//
// CreateUser fills in ID and CreatedAt, and returns apperror.ErrConflict
// when the exact (case-sensitive) username is already taken. Lookups return
// apperror.ErrNotFound on a miss.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// TaskRepository persists tasks, always scoped to an owning user. Every
// read and write filters on (id, userID) together: a task owned by someone
// else is indistinguishable from one that doesn't exist.
type TaskRepository interface {
	// ListTasksByUser returns the user's tasks, newest first.
	ListTasksByUser(ctx context.Context, userID string) ([]model.Task, error)
	GetTaskByID(ctx context.Context, id, userID string) (*model.Task, error)
	// CreateTask fills in ID, CreatedAt, and UpdatedAt.
	CreateTask(ctx context.Context, task *model.Task) error
	// UpdateTask rewrites the mutable fields and refreshes UpdatedAt.
	// Returns apperror.ErrNotFound if no task matches (task.ID, task.UserID).
	UpdateTask(ctx context.Context, task *model.Task) error
	DeleteTask(ctx context.Context, id, userID string) error
}

// PostRepository persists forum posts and their comments.
type PostRepository interface {
	// ListPosts returns all posts newest first, each annotated with the
	// number of comments referencing it.
	ListPosts(ctx context.Context) ([]model.PostWithCount, error)
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	CreatePost(ctx context.Context, post *model.Post) error
	// ListComments returns a post's comments oldest first.
	ListComments(ctx context.Context, postID string) ([]model.Comment, error)
	CreateComment(ctx context.Context, comment *model.Comment) error
}
