package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/sakif/taskboard/internal/model"
)

// Identity is the resolved caller attached to each authenticated request.
// The username rides along with the ID because the forum stamps it onto
// posts and comments as a plain-text snapshot.
type Identity struct {
	ID       string
	Username string
}

// Verifier resolves a bearer token to a stored user. Implemented by
// service.AuthService; the middleware depends on this interface so the auth
// package never imports the service layer.
type Verifier interface {
	Verify(ctx context.Context, token string) (*model.User, error)
}

// contextKey is an unexported type used for context keys in this package.
//
// WHY A CUSTOM TYPE FOR CONTEXT KEYS?
// context.WithValue uses any as the key type. With a plain string key like
// "identity", ANY package that knows the string can read or shadow the
// value. A package-private type means only this package can create the key,
// so only this package can read or write identities in the context.
type contextKey string

const identityKey contextKey = "identity"

// RequireAuth is the authentication gate for protected routes.
//
// It reads the "Authorization: Bearer <token>" header, validates the JWT,
// and resolves the embedded user ID against storage. Any failure — missing
// or malformed header, bad signature, expired token, or an ID that no
// longer maps to a stored user — stops the chain with a 401. On success the
// resolved Identity is stored in the request context for handlers.
//
// The storage lookup matters: a structurally valid token whose subject has
// vanished must not get through. Users can't be deleted through any exposed
// operation today, but the gate doesn't get to assume that.
func RequireAuth(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				unauthorized(w, "authentication token required")
				return
			}

			user, err := verifier.Verify(r.Context(), token)
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}

			identity := Identity{ID: user.ID, Username: user.Username}
			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext retrieves the authenticated caller from the request
// context. The second return is false on routes the gate didn't cover.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.ID != ""
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
// The scheme comparison is case-insensitive per RFC 7235; the token is not.
func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// unauthorized writes the standard 401 error body. The middleware can't use
// the handler package's helpers without an import cycle, so it writes the
// same shape by hand.
func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write([]byte(`{"error":"unauthorized","message":"` + message + `"}`))
}
