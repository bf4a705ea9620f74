package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// CreateUser inserts a new user, generating ID and CreatedAt.
//
// The duplicate check is an explicit SELECT before the INSERT so this
// driver reports the same apperror.Conflict the jsonfile driver does,
// rather than leaking a driver-specific UNIQUE-constraint error. The
// UNIQUE index on username still backstops a race between the two
// statements.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	var existing string
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM users WHERE username = ?`, user.Username,
	).Scan(&existing)
	if err == nil {
		return apperror.Conflict("user", user.Username)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("sqlite: checking username %q: %w", user.Username, err)
	}

	user.ID = xid.New().String()
	user.CreatedAt = time.Now()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO users (id, username, password, created_at) VALUES (?, ?, ?, ?)`,
		user.ID,
		user.Username,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting user %q: %w", user.Username, err)
	}

	return nil
}

// GetUserByUsername finds a user by exact username. SQLite's = on TEXT is
// case-sensitive by default, matching the flat-file driver's scan.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	return db.getUser(ctx, `SELECT id, username, password, created_at FROM users WHERE username = ?`, username)
}

// GetUserByID finds a user by internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	return db.getUser(ctx, `SELECT id, username, password, created_at FROM users WHERE id = ?`, id)
}

func (db *DB) getUser(ctx context.Context, query, arg string) (*model.User, error) {
	var u model.User
	err := db.conn.QueryRowContext(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.PasswordHash,
		&u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", arg)
		}
		return nil, fmt.Errorf("sqlite: getting user %q: %w", arg, err)
	}
	return &u, nil
}
