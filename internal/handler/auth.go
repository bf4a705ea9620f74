package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/taskboard/internal/auth"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/service"
)

// AuthHandler manages account registration, login, and session inspection.
//
// HANDLER RESPONSIBILITIES:
//   - HandleRegister → create an account from a username and password
//   - HandleLogin    → verify credentials and issue a JWT
//   - HandleLogout   → acknowledge logout (tokens are stateless, see below)
//   - HandleMe       → return the currently authenticated user's profile
type AuthHandler struct {
	auth   *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates an AuthHandler. All dependencies are injected here;
// the handler has no knowledge of how they're constructed.
func NewAuthHandler(authSvc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authSvc, logger: logger}
}

// credentials is the request body shared by register and login.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userPayload is the public projection of a user for auth responses.
// It deliberately carries only what the frontend needs to greet the user.
type userPayload struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

func publicUser(u *model.User) userPayload {
	return userPayload{ID: u.ID, Username: u.Username}
}

// HandleRegister creates a new account.
//
// HTTP: POST /api/auth/register
// REQUEST BODY: {"username": "alice", "password": "secret1"}
// RESPONSE: 201 {"message": "...", "user": {"id": "...", "username": "alice"}}
//
// No token is issued here — the client logs in separately. Keeping the two
// steps apart means a registration response can never leak a usable session.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid register JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	user, err := h.auth.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "user registered successfully",
		"user":    publicUser(user),
	})
}

// HandleLogin verifies credentials and issues a JWT access token.
//
// HTTP: POST /api/auth/login
// REQUEST BODY: {"username": "alice", "password": "secret1"}
// RESPONSE: 200 {"message": "...", "token": "eyJ...", "user": {...}}
//
// The token travels back to us in the Authorization header on every
// subsequent request: "Authorization: Bearer <token>".
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Warn("invalid login JSON", slog.String("error", err.Error()))
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid JSON body",
		})
		return
	}

	result, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "login successful",
		"token":   result.Token,
		"user":    publicUser(result.User),
	})
}

// HandleLogout acknowledges a logout request.
//
// HTTP: POST /api/auth/logout
// Auth: Required
//
// JWTs are stateless: there is no server-side session to tear down, and the
// token stays technically valid until it expires. The endpoint exists so the
// client has a deliberate place to discard its copy of the token.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if identity, ok := auth.IdentityFromContext(r.Context()); ok {
		h.logger.Info("user logged out", slog.String("username", identity.Username))
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "logout successful"})
}

// HandleMe returns the currently authenticated user's profile.
//
// HTTP: GET /api/auth/me
// Auth: Required
// RESPONSE: 200 {"user": {"id": ..., "username": ..., "createdAt": ...}}
//
// The frontend calls this on app load to restore login state from a stored
// token without re-prompting for credentials. Unlike register/login, the
// profile includes createdAt; model.User's json:"-" keeps the hash out.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	identity, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		// Should never happen on a RequireAuth-protected route, but be safe.
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "authentication required",
		})
		return
	}

	user, err := h.auth.Lookup(r.Context(), identity.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user": user,
	})
}
