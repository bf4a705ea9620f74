// Package auth provides JWT token generation and validation, password
// hashing, and the request authentication middleware.
//
// AUTHENTICATION FLOW OVERVIEW:
// 1. POST /api/auth/register → username/password stored (password bcrypt-hashed)
// 2. POST /api/auth/login → server verifies the password, issues a JWT
// 3. Client sends "Authorization: Bearer <token>" on every protected request
// 4. Middleware validates the signature and expiry, resolves the embedded
//    user ID against storage, and puts the identity in the request context
//
// WHY JWT?
// JWT (JSON Web Token) is stateless — the server doesn't store session
// data. All the information needed (user ID, username, expiry) is inside
// the signed token. The signature ensures nobody can tamper with it without
// the secret key. The flip side: there is no revocation. Logout is the
// client discarding its token; an issued token stays valid until expiry.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenTTL is how long an issued token stays valid. After 24 hours the
// client must log in again.
const TokenTTL = 24 * time.Hour

const issuer = "taskboard"

// TokenService handles JWT creation and validation.
//
// It holds the HMAC secret key used to sign and verify tokens. The same
// secret must be used for both operations — a deployment must override the
// development default.
type TokenService struct {
	secret []byte
}

// NewTokenService creates a TokenService with the given secret.
// The secret should be at least 32 bytes of random data in production.
// Example: JWT_SECRET=$(openssl rand -hex 32)
func NewTokenService(secret string) (*TokenService, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: JWT secret must be at least 16 characters")
	}
	return &TokenService{secret: []byte(secret)}, nil
}

// Claims is the JWT payload: the standard registered claims plus the
// username. The user's internal ID rides in "sub" (Subject), the standard
// claim for identifying who a token belongs to; the username is carried
// alongside so the forum can stamp authorship without a lookup.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Generate creates and signs a JWT for the given user, valid for TokenTTL.
//
// Signing algorithm: HS256 (HMAC-SHA256) — symmetric, same key signs and
// verifies. Fine for a single-server deployment.
func (s *TokenService) Generate(userID, username string) (string, error) {
	return s.GenerateWithDuration(userID, username, TokenTTL)
}

// GenerateWithDuration creates a token with a custom expiry duration.
// Exists so tests can mint already-expired tokens.
func (s *TokenService) GenerateWithDuration(userID, username string, d time.Duration) (string, error) {
	now := time.Now()

	c := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(d)),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("auth: signing token: %w", err)
	}

	return signed, nil
}

// Validate parses and verifies a JWT string, returning the user ID and
// username it encodes.
//
// VALIDATION CHECKS (performed by the jwt library):
//   - Signature is valid (wasn't tampered with)
//   - Token is not expired
//   - Issuer matches (prevents tokens minted by other apps with this lib)
//   - Algorithm is HS256 — jwt.WithValidMethods closes the classic
//     algorithm-confusion hole where a token claims alg "none"
func (s *TokenService) Validate(tokenStr string) (userID, username string, err error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&Claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", "", fmt.Errorf("auth: token expired")
		}
		return "", "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return "", "", fmt.Errorf("auth: invalid token claims")
	}
	if c.Subject == "" {
		return "", "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, c.Username, nil
}
