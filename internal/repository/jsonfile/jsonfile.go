// Package jsonfile implements the repository interfaces on top of the flat
// JSON document store. It is the default storage driver.
//
// Each entity type maps to one collection file:
//
//	data/users.json    {"users": [...]}
//	data/tasks.json    {"tasks": [...]}
//	data/posts.json    {"posts": [...]}
//	data/comments.json {"comments": [...]}
//
// Every operation is a full load of one collection followed by an in-memory
// scan; mutations rewrite the whole file. No operation spans two
// collections atomically — comment counts are recomputed on read instead
// of stored, so posts and comments can never drift.
package jsonfile

import (
	"github.com/sakif/taskboard/internal/store"
)

// Collection names double as file basenames and as the documents'
// top-level JSON keys.
const (
	usersCollection    = "users"
	tasksCollection    = "tasks"
	postsCollection    = "posts"
	commentsCollection = "comments"
)

// DB implements repository.UserRepository, repository.TaskRepository, and
// repository.PostRepository over a store.Store.
type DB struct {
	store *store.Store
}

// New opens (and on first run seeds) the collection files under dir.
func New(dir string) (*DB, error) {
	st, err := store.New(dir)
	if err != nil {
		return nil, err
	}
	if err := st.Init(usersCollection, tasksCollection, postsCollection, commentsCollection); err != nil {
		return nil, err
	}
	return &DB{store: st}, nil
}
