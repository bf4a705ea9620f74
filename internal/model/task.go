package model

import "time"

// Task is a single to-do item owned by exactly one user.
//
// OWNERSHIP SCOPING:
// UserID ties the task to the account that created it. Every repository
// operation filters on (id, userID) together, so a task belonging to someone
// else behaves as if it does not exist — the caller gets "not found", never
// "forbidden". That's deliberate: a 403 would confirm the ID exists.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	UserID      string    `json:"userId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
