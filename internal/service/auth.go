// Package service contains the business logic layer of the application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → parses requests, writes responses
//	Service (Business layer) → validates, enforces rules, orchestrates
//	Repository (Data layer)  → reads/writes the backing collections
//
// Services accept primitives and return domain errors — they have zero
// knowledge of HTTP, and they see only the repository interfaces, never a
// concrete storage driver. That's what lets the flat-file store and the
// SQLite engine swap behind one line in the composition root, and what lets
// the tests inject in-memory mocks.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/auth"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// Validation limits for registration input.
const (
	MaxUsernameLength = 50
	MinPasswordLength = 4
	MaxPasswordLength = 100
)

// AuthService implements the identity operations: registration, login,
// token verification, and user lookup.
type AuthService struct {
	users     repository.UserRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

// compile-time check: the service is the Verifier the auth gate depends on
var _ auth.Verifier = (*AuthService)(nil)

func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// AuthResult bundles the user and the issued token so the login handler can
// respond in one step.
type AuthResult struct {
	User  *model.User
	Token string
}

// Register creates a new account.
//
// The username is trimmed and then matched exactly — registration fails
// with a conflict if the identical (case-sensitive) name exists. The
// password is bcrypt-hashed before it goes anywhere near storage; the raw
// password is never persisted, and the returned user never carries the
// hash onto the wire (model.User excludes it from JSON).
func (s *AuthService) Register(ctx context.Context, username, password string) (*model.User, error) {
	username = strings.TrimSpace(username)

	if username == "" {
		return nil, apperror.ValidationFailed("username", "username is required")
	}
	if len(username) > MaxUsernameLength {
		return nil, apperror.ValidationFailed("username",
			fmt.Sprintf("username must be %d characters or less", MaxUsernameLength))
	}
	if len(password) < MinPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be at least %d characters", MinPasswordLength))
	}
	if len(password) > MaxPasswordLength {
		return nil, apperror.ValidationFailed("password",
			fmt.Sprintf("password must be %d characters or less", MaxPasswordLength))
	}

	hash, err := s.passwords.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: hash,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		// Conflict is a normal outcome (duplicate username), not a fault —
		// let it propagate untouched for errors.Is matching.
		return nil, err
	}

	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return user, nil
}

// Login verifies the credentials and issues a signed token.
//
// An unknown username and a wrong password return the SAME error. Telling
// them apart would let an attacker enumerate which usernames exist.
func (s *AuthService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, apperror.ValidationFailed("credentials", "username and password are required")
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	if err := s.passwords.Verify(user.PasswordHash, password); err != nil {
		return nil, apperror.Unauthorized("invalid credentials")
	}

	token, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("generating token for user %s: %w", user.ID, err)
	}

	s.logger.Info("user logged in",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)

	return &AuthResult{User: user, Token: token}, nil
}

// Verify resolves a bearer token to its stored user. This is what the
// request authentication gate calls on every protected request.
//
// Two distinct failures both surface as Unauthorized: a bad/expired token,
// and a token whose subject no longer resolves to a stored user. The second
// can't happen through any exposed operation (users are never deleted), but
// the gate handles it defensively anyway.
func (s *AuthService) Verify(ctx context.Context, token string) (*model.User, error) {
	userID, _, err := s.tokens.Validate(token)
	if err != nil {
		return nil, apperror.Unauthorized("invalid or expired token")
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, apperror.Unauthorized("unknown user")
	}

	return user, nil
}

// Lookup returns the user for the given internal ID. Used by /api/auth/me.
func (s *AuthService) Lookup(ctx context.Context, id string) (*model.User, error) {
	if id == "" {
		return nil, apperror.ValidationFailed("id", "user ID is required")
	}
	return s.users.GetUserByID(ctx, id)
}
