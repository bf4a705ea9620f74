package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/taskboard/internal/auth"
	"github.com/sakif/taskboard/internal/service"
)

// ForumHandler manages the shared discussion board: posts and their comments.
//
// Unlike tasks, forum content is visible to every authenticated user. The
// identity from the token is still used — as the author stamped onto new
// posts and comments — but never as a read filter.
type ForumHandler struct {
	forum  *service.ForumService
	logger *slog.Logger
}

// NewForumHandler creates a ForumHandler.
func NewForumHandler(forum *service.ForumService, logger *slog.Logger) *ForumHandler {
	return &ForumHandler{forum: forum, logger: logger}
}

func (h *ForumHandler) identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
	}
	return id, ok
}

// HandleListPosts returns every post, newest first, each with its comment count.
//
// HTTP: GET /api/posts
// Auth: Required
// RESPONSE: 200 {"posts": [{"id": ..., "comment_count": 2, ...}, ...]}
func (h *ForumHandler) HandleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.forum.ListPosts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"posts": posts})
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// HandleCreatePost publishes a new post authored by the authenticated user.
//
// HTTP: POST /api/posts
// Auth: Required
// REQUEST BODY: {"title": "...", "content": "..."}
// RESPONSE: 201 {"message": "...", "post": {...}}
func (h *ForumHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid post JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	post, err := h.forum.CreatePost(r.Context(), req.Title, req.Content, identity.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "post created successfully",
		"post":    post,
	})
}

// HandleGetPost returns one post together with its full comment thread,
// oldest comment first.
//
// HTTP: GET /api/posts/{id}
// Auth: Required
// RESPONSE: 200 {"post": {...}, "comments": [...]}
func (h *ForumHandler) HandleGetPost(w http.ResponseWriter, r *http.Request) {
	post, comments, err := h.forum.GetPost(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"post":     post,
		"comments": comments,
	})
}

type createCommentRequest struct {
	Content string `json:"content"`
}

// HandleCreateComment adds a comment to an existing post.
//
// HTTP: POST /api/posts/{id}/comments
// Auth: Required
// REQUEST BODY: {"content": "..."}
// RESPONSE: 201 {"message": "...", "comment": {...}}
//
// Commenting on a post that doesn't exist answers 404.
func (h *ForumHandler) HandleCreateComment(w http.ResponseWriter, r *http.Request) {
	identity, ok := h.identity(w, r)
	if !ok {
		return
	}

	var req createCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid comment JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	comment, err := h.forum.CreateComment(r.Context(), r.PathValue("id"), req.Content, identity.Username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "comment created successfully",
		"comment": comment,
	})
}
