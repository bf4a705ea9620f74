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

// ForumService handles the shared discussion board: posts visible to every
// authenticated user, with append-only comments.
//
// Authorship is a username snapshot, not a user reference — the handler
// passes in the acting identity's username and it is stored as plain text.
type ForumService struct {
	repo   repository.PostRepository
	logger *slog.Logger
}

func NewForumService(repo repository.PostRepository, logger *slog.Logger) *ForumService {
	return &ForumService{
		repo:   repo,
		logger: logger,
	}
}

// ListPosts returns every post newest first, annotated with its comment
// count.
func (s *ForumService) ListPosts(ctx context.Context) ([]model.PostWithCount, error) {
	posts, err := s.repo.ListPosts(ctx)
	if err != nil {
		s.logger.Error("failed to list posts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing posts: %w", err)
	}
	return posts, nil
}

// GetPost returns a post and its comments, oldest comment first.
func (s *ForumService) GetPost(ctx context.Context, id string) (*model.Post, []model.Comment, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, nil, apperror.ValidationFailed("id", "post ID is required")
	}

	post, err := s.repo.GetPostByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	comments, err := s.repo.ListComments(ctx, id)
	if err != nil {
		s.logger.Error("failed to list comments",
			slog.String("postID", id),
			slog.String("error", err.Error()),
		)
		return nil, nil, fmt.Errorf("listing comments for post %s: %w", id, err)
	}

	return post, comments, nil
}

// CreatePost validates and saves a new post under the author's username.
func (s *ForumService) CreatePost(ctx context.Context, title, content, author string) (*model.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)

	if title == "" {
		return nil, apperror.ValidationFailed("title", "post title is required")
	}
	if content == "" {
		return nil, apperror.ValidationFailed("content", "post content is required")
	}

	post := &model.Post{
		Title:   title,
		Content: content,
		Author:  author,
	}
	if err := s.repo.CreatePost(ctx, post); err != nil {
		s.logger.Error("failed to create post",
			slog.String("author", author),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.String("id", post.ID),
		slog.String("author", author),
	)

	return post, nil
}

// CreateComment attaches a comment to an existing post.
//
// The post lookup runs first, so commenting on an unknown post is NotFound
// before anything is written. The lookup and the insert are two separate
// store round-trips — a post created "never deleted" can't vanish between
// them, which is what makes the unsynchronized pair safe.
func (s *ForumService) CreateComment(ctx context.Context, postID, content, author string) (*model.Comment, error) {
	postID = strings.TrimSpace(postID)
	content = strings.TrimSpace(content)

	if postID == "" {
		return nil, apperror.ValidationFailed("id", "post ID is required")
	}
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment content is required")
	}

	if _, err := s.repo.GetPostByID(ctx, postID); err != nil {
		return nil, err
	}

	comment := &model.Comment{
		PostID:  postID,
		Content: content,
		Author:  author,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		s.logger.Error("failed to create comment",
			slog.String("postID", postID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating comment on post %s: %w", postID, err)
	}

	s.logger.Info("comment created",
		slog.String("id", comment.ID),
		slog.String("postID", postID),
		slog.String("author", author),
	)

	return comment, nil
}
