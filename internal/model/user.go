// Package model defines the data structures used throughout the application.
package model

import "time"

// User represents a registered account.
//
// WHY json:"-" ON PasswordHash?
// The bcrypt hash must never leave the server. Tagging the field with "-"
// means encoding/json skips it entirely, so no handler can accidentally leak
// it in a response — even if someone marshals a *model.User directly.
// The persistence layers keep their own serializable representations (the
// JSON store has a userRecord, SQLite has a password column), so the hash
// still reaches storage; it just never reaches the wire.
//
// Usernames are compared exactly as stored — case-sensitive, trimmed at
// registration time. "Alice" and "alice" are two different accounts.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
