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

// compile-time check that *DB implements repository.PostRepository
var _ repository.PostRepository = (*DB)(nil)

type postsDoc struct {
	Posts []model.Post `json:"posts"`
}

type commentsDoc struct {
	Comments []model.Comment `json:"comments"`
}

// ListPosts returns every post newest first, annotated with its comment count.
//
// The count is recomputed from the comments collection on each call rather
// than stored on the post. Posts and comments live in separate files with
// no cross-file transaction, so a stored counter could drift; a recount
// cannot.
func (db *DB) ListPosts(_ context.Context) ([]model.PostWithCount, error) {
	var posts postsDoc
	if err := db.store.View(postsCollection, &posts); err != nil {
		return nil, err
	}
	var comments commentsDoc
	if err := db.store.View(commentsCollection, &comments); err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(posts.Posts))
	for _, c := range comments.Comments {
		counts[c.PostID]++
	}

	result := make([]model.PostWithCount, 0, len(posts.Posts))
	for _, p := range posts.Posts {
		result = append(result, model.PostWithCount{
			Post:         p,
			CommentCount: counts[p.ID],
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (db *DB) GetPostByID(_ context.Context, id string) (*model.Post, error) {
	var doc postsDoc
	if err := db.store.View(postsCollection, &doc); err != nil {
		return nil, err
	}
	for _, p := range doc.Posts {
		if p.ID == id {
			post := p
			return &post, nil
		}
	}
	return nil, apperror.NotFound("post", id)
}

func (db *DB) CreatePost(_ context.Context, post *model.Post) error {
	var doc postsDoc
	return db.store.Mutate(postsCollection, &doc, func() error {
		now := time.Now()
		post.ID = xid.New().String()
		post.CreatedAt = now
		post.UpdatedAt = now

		doc.Posts = append(doc.Posts, *post)
		return nil
	})
}

// ListComments returns a post's comments oldest first — thread order.
func (db *DB) ListComments(_ context.Context, postID string) ([]model.Comment, error) {
	var doc commentsDoc
	if err := db.store.View(commentsCollection, &doc); err != nil {
		return nil, err
	}

	comments := make([]model.Comment, 0)
	for _, c := range doc.Comments {
		if c.PostID == postID {
			comments = append(comments, c)
		}
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}

// CreateComment appends a comment. The caller (ForumService) has already
// checked the post exists; this method only touches the comments file.
func (db *DB) CreateComment(_ context.Context, comment *model.Comment) error {
	var doc commentsDoc
	return db.store.Mutate(commentsCollection, &doc, func() error {
		comment.ID = xid.New().String()
		comment.CreatedAt = time.Now()

		doc.Comments = append(doc.Comments, *comment)
		return nil
	})
}
