package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// compile-time check that *DB implements repository.PostRepository
var _ repository.PostRepository = (*DB)(nil)

// ListPosts returns all posts newest first with their comment counts. The count
// comes from a LEFT JOIN so posts without comments report zero instead of
// dropping out of the result.
func (db *DB) ListPosts(ctx context.Context) ([]model.PostWithCount, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT p.id, p.title, p.content, p.author, p.created_at, p.updated_at,
		        COUNT(c.id)
		 FROM posts p
		 LEFT JOIN comments c ON c.post_id = p.id
		 GROUP BY p.id
		 ORDER BY p.created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := make([]model.PostWithCount, 0)
	for rows.Next() {
		var p model.PostWithCount
		if err := rows.Scan(
			&p.ID,
			&p.Title,
			&p.Content,
			&p.Author,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.CommentCount,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post row: %w", err)
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating post rows: %w", err)
	}

	return posts, nil
}

func (db *DB) GetPostByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, title, content, author, created_at, updated_at FROM posts WHERE id = ?`,
		id,
	).Scan(
		&p.ID,
		&p.Title,
		&p.Content,
		&p.Author,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("post", id)
		}
		return nil, fmt.Errorf("sqlite: getting post %s: %w", id, err)
	}
	return &p, nil
}

func (db *DB) CreatePost(ctx context.Context, post *model.Post) error {
	now := time.Now()
	post.ID = xid.New().String()
	post.CreatedAt = now
	post.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO posts (id, title, content, author, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID,
		post.Title,
		post.Content,
		post.Author,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}

	return nil
}

// ListComments returns a post's comments oldest first.
func (db *DB) ListComments(ctx context.Context, postID string) ([]model.Comment, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, post_id, content, author, created_at
		 FROM comments WHERE post_id = ? ORDER BY created_at ASC`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments for post %s: %w", postID, err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(
			&c.ID,
			&c.PostID,
			&c.Content,
			&c.Author,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comment rows: %w", err)
	}

	return comments, nil
}

func (db *DB) CreateComment(ctx context.Context, comment *model.Comment) error {
	comment.ID = xid.New().String()
	comment.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, post_id, content, author, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		comment.ID,
		comment.PostID,
		comment.Content,
		comment.Author,
		comment.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment: %w", err)
	}

	return nil
}
