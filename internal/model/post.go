package model

import "time"

// Post is a forum entry visible to every authenticated user.
//
// DENORMALIZED AUTHOR:
// Author is the username copied in at creation time, NOT a foreign key to a
// user record. A post keeps showing the name its author had when they wrote
// it. This snapshot semantic is intentional — do not "fix" it into a live
// reference.
//
// The forum entities use snake_case JSON names (created_at, comment_count)
// while tasks use camelCase. That asymmetry is the established wire format
// and clients depend on it.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostWithCount is a Post annotated with its comment total for list views.
type PostWithCount struct {
	Post
	CommentCount int `json:"comment_count"`
}

// Comment is attached to exactly one post. Comments are append-only: they
// are never edited or deleted once created.
type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}
