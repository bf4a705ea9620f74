package handler_test

// End-to-end tests: every request goes through the real router, middleware
// chain, handlers, services, and the flat-file storage driver in a temp
// directory. Nothing is mocked — these tests exercise the same code path a
// browser would.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/taskboard/internal/auth"
	"github.com/sakif/taskboard/internal/server"
)

const testJWTSecret = "handler-test-secret-0123456789"

// =========================================================================
// TEST HELPERS
// =========================================================================

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	srv, err := server.New(server.Config{
		Port:          0,
		JWTSecret:     testJWTSecret,
		StorageDriver: server.DriverJSON,
		DataDir:       t.TempDir(),
	}, logger)
	require.NoError(t, err)
	return srv.Router()
}

// doJSON performs a request against the router and decodes the JSON response
// body into a generic map. token == "" sends no Authorization header.
func doJSON(t *testing.T, router http.Handler, method, path, token string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	var parsed map[string]interface{}
	if rr.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &parsed),
			"response body is not JSON: %s", rr.Body.String())
	}
	return rr.Code, parsed
}

// registerAndLogin creates an account and returns the issued token plus the
// user's ID.
func registerAndLogin(t *testing.T, router http.Handler, username, password string) (token, userID string) {
	t.Helper()

	status, _ := doJSON(t, router, http.MethodPost, "/api/auth/register", "",
		map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusCreated, status)

	status, body := doJSON(t, router, http.MethodPost, "/api/auth/login", "",
		map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, status)

	token, _ = body["token"].(string)
	require.NotEmpty(t, token)
	user, _ := body["user"].(map[string]interface{})
	require.NotNil(t, user)
	userID, _ = user["id"].(string)
	require.NotEmpty(t, userID)
	return token, userID
}

// =========================================================================
// HEALTH & ROUTING
// =========================================================================

func TestHealth(t *testing.T) {
	router := newTestRouter(t)

	status, body := doJSON(t, router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "OK", body["status"])

	ts, _ := body["timestamp"].(string)
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err, "timestamp must be RFC3339")
}

func TestUnknownRouteAnswersJSON(t *testing.T) {
	router := newTestRouter(t)

	status, body := doJSON(t, router, http.MethodGet, "/api/no-such-thing", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not_found", body["error"])
}

// =========================================================================
// AUTH ENDPOINTS
// =========================================================================

func TestRegisterEndpoint(t *testing.T) {
	router := newTestRouter(t)

	t.Run("creates account", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/auth/register", "",
			map[string]string{"username": "alice", "password": "secret1"})
		assert.Equal(t, http.StatusCreated, status)

		user, _ := body["user"].(map[string]interface{})
		require.NotNil(t, user)
		assert.Equal(t, "alice", user["username"])
		assert.NotEmpty(t, user["id"])
		// The password hash must never appear in a response
		assert.NotContains(t, user, "password")
		assert.NotContains(t, user, "passwordHash")
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/auth/register", "",
			map[string]string{"username": "alice", "password": "other"})
		assert.Equal(t, http.StatusConflict, status)
		assert.Equal(t, "conflict", body["error"])
	})

	t.Run("short password rejected", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/auth/register", "",
			map[string]string{"username": "bob", "password": "abc"})
		assert.Equal(t, http.StatusBadRequest, status)
		assert.Equal(t, "validation_error", body["error"])
	})

	t.Run("malformed JSON rejected", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
			bytes.NewBufferString(`{"username":`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)

	status, _ := doJSON(t, router, http.MethodPost, "/api/auth/register", "",
		map[string]string{"username": "alice", "password": "secret1"})
	require.Equal(t, http.StatusCreated, status)

	t.Run("valid credentials issue a token", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/auth/login", "",
			map[string]string{"username": "alice", "password": "secret1"})
		assert.Equal(t, http.StatusOK, status)
		assert.NotEmpty(t, body["token"])
	})

	// Wrong password and unknown user must be told apart by nobody.
	t.Run("bad credentials are indistinguishable", func(t *testing.T) {
		status1, body1 := doJSON(t, router, http.MethodPost, "/api/auth/login", "",
			map[string]string{"username": "alice", "password": "wrong"})
		status2, body2 := doJSON(t, router, http.MethodPost, "/api/auth/login", "",
			map[string]string{"username": "nobody", "password": "secret1"})

		assert.Equal(t, http.StatusUnauthorized, status1)
		assert.Equal(t, http.StatusUnauthorized, status2)
		assert.Equal(t, body1["message"], body2["message"])
	})
}

func TestMeAndLogout(t *testing.T) {
	router := newTestRouter(t)
	token, userID := registerAndLogin(t, router, "alice", "secret1")

	t.Run("me returns the authenticated user", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
		assert.Equal(t, http.StatusOK, status)

		user, _ := body["user"].(map[string]interface{})
		require.NotNil(t, user)
		assert.Equal(t, userID, user["id"])
		assert.Equal(t, "alice", user["username"])

		// The profile carries the registration timestamp; the hash stays out
		created, _ := user["createdAt"].(string)
		_, err := time.Parse(time.RFC3339Nano, created)
		assert.NoError(t, err, "createdAt must be present and RFC3339")
		assert.NotContains(t, user, "password")
	})

	t.Run("me without token is unauthorized", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodGet, "/api/auth/me", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})

	t.Run("logout acknowledges and token stays valid", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodPost, "/api/auth/logout", token, nil)
		assert.Equal(t, http.StatusOK, status)

		// Stateless tokens: logout is client-side, the token still verifies
		status, _ = doJSON(t, router, http.MethodGet, "/api/auth/me", token, nil)
		assert.Equal(t, http.StatusOK, status)
	})
}

func TestExpiredTokenRejected(t *testing.T) {
	router := newTestRouter(t)
	_, userID := registerAndLogin(t, router, "alice", "secret1")

	// Forge an already-expired token signed with the server's own secret
	tokens, err := auth.NewTokenService(testJWTSecret)
	require.NoError(t, err)
	expired, err := tokens.GenerateWithDuration(userID, "alice", -time.Hour)
	require.NoError(t, err)

	status, _ := doJSON(t, router, http.MethodGet, "/api/auth/me", expired, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

// =========================================================================
// TASK ENDPOINTS
// =========================================================================

func TestTaskEndpoints(t *testing.T) {
	router := newTestRouter(t)
	aliceToken, _ := registerAndLogin(t, router, "alice", "secret1")
	bobToken, _ := registerAndLogin(t, router, "bob", "secret2")

	var taskID string

	t.Run("create", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/tasks", aliceToken,
			map[string]string{"title": "buy milk", "description": "2 liters"})
		require.Equal(t, http.StatusCreated, status)

		task, _ := body["task"].(map[string]interface{})
		require.NotNil(t, task)
		assert.Equal(t, "buy milk", task["title"])
		assert.Equal(t, false, task["completed"])
		assert.NotEmpty(t, task["userId"])
		taskID, _ = task["id"].(string)
		require.NotEmpty(t, taskID)
	})

	t.Run("list shows own tasks only", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodGet, "/api/tasks", aliceToken, nil)
		require.Equal(t, http.StatusOK, status)
		tasks, _ := body["tasks"].([]interface{})
		assert.Len(t, tasks, 1)

		status, body = doJSON(t, router, http.MethodGet, "/api/tasks", bobToken, nil)
		require.Equal(t, http.StatusOK, status)
		tasks, ok := body["tasks"].([]interface{})
		assert.True(t, ok, "tasks must be a JSON array even when empty")
		assert.Len(t, tasks, 0)
	})

	t.Run("cross-tenant access is 404", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodGet, "/api/tasks/"+taskID, bobToken, nil)
		assert.Equal(t, http.StatusNotFound, status)
		assert.Equal(t, "not_found", body["error"])

		status, _ = doJSON(t, router, http.MethodPut, "/api/tasks/"+taskID, bobToken,
			map[string]bool{"completed": true})
		assert.Equal(t, http.StatusNotFound, status)

		status, _ = doJSON(t, router, http.MethodDelete, "/api/tasks/"+taskID, bobToken, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("partial update", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPut, "/api/tasks/"+taskID, aliceToken,
			map[string]bool{"completed": true})
		require.Equal(t, http.StatusOK, status)

		task, _ := body["task"].(map[string]interface{})
		require.NotNil(t, task)
		assert.Equal(t, true, task["completed"])
		// Fields omitted from the request keep their values
		assert.Equal(t, "buy milk", task["title"])
		assert.Equal(t, "2 liters", task["description"])
	})

	t.Run("delete", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodDelete, "/api/tasks/"+taskID, aliceToken, nil)
		assert.Equal(t, http.StatusOK, status)

		status, _ = doJSON(t, router, http.MethodGet, "/api/tasks/"+taskID, aliceToken, nil)
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("no token is 401", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodGet, "/api/tasks", "", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	})
}

// =========================================================================
// FORUM ENDPOINTS
// =========================================================================

func TestForumEndpoints(t *testing.T) {
	router := newTestRouter(t)
	aliceToken, _ := registerAndLogin(t, router, "alice", "secret1")
	bobToken, _ := registerAndLogin(t, router, "bob", "secret2")

	var postID string

	t.Run("create post", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost, "/api/posts", aliceToken,
			map[string]string{"title": "hello forum", "content": "first post"})
		require.Equal(t, http.StatusCreated, status)

		post, _ := body["post"].(map[string]interface{})
		require.NotNil(t, post)
		assert.Equal(t, "alice", post["author"], "author comes from the token, not the body")
		postID, _ = post["id"].(string)
		require.NotEmpty(t, postID)
	})

	t.Run("posts are visible to every user", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodGet, "/api/posts", bobToken, nil)
		require.Equal(t, http.StatusOK, status)

		posts, _ := body["posts"].([]interface{})
		require.Len(t, posts, 1)
		first, _ := posts[0].(map[string]interface{})
		assert.Equal(t, "hello forum", first["title"])
		assert.Equal(t, float64(0), first["comment_count"])
	})

	t.Run("comment on post", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/posts/%s/comments", postID), bobToken,
			map[string]string{"content": "nice one"})
		require.Equal(t, http.StatusCreated, status)

		comment, _ := body["comment"].(map[string]interface{})
		require.NotNil(t, comment)
		assert.Equal(t, "bob", comment["author"])
		assert.Equal(t, postID, comment["postId"])
	})

	t.Run("get post includes comments and count updates", func(t *testing.T) {
		status, body := doJSON(t, router, http.MethodGet, "/api/posts/"+postID, aliceToken, nil)
		require.Equal(t, http.StatusOK, status)

		post, _ := body["post"].(map[string]interface{})
		require.NotNil(t, post)
		comments, _ := body["comments"].([]interface{})
		require.Len(t, comments, 1)

		status, body = doJSON(t, router, http.MethodGet, "/api/posts", aliceToken, nil)
		require.Equal(t, http.StatusOK, status)
		posts, _ := body["posts"].([]interface{})
		require.Len(t, posts, 1)
		first, _ := posts[0].(map[string]interface{})
		assert.Equal(t, float64(1), first["comment_count"])
	})

	t.Run("comment on missing post is 404", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodPost,
			"/api/posts/no-such-post/comments", bobToken,
			map[string]string{"content": "hello?"})
		assert.Equal(t, http.StatusNotFound, status)
	})

	t.Run("empty post content rejected", func(t *testing.T) {
		status, _ := doJSON(t, router, http.MethodPost, "/api/posts", aliceToken,
			map[string]string{"title": "no body", "content": "  "})
		assert.Equal(t, http.StatusBadRequest, status)
	})
}
