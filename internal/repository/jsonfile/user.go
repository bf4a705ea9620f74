package jsonfile

import (
	"context"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/taskboard/internal/apperror"
	"github.com/sakif/taskboard/internal/model"
	"github.com/sakif/taskboard/internal/repository"
)

// compile-time check that *DB implements repository.UserRepository
var _ repository.UserRepository = (*DB)(nil)

// userRecord is the on-disk shape of a user. It exists because model.User
// excludes the password hash from JSON (json:"-") — correct for API
// responses, fatal for persistence. This record carries the hash under the
// "password" key the document format has always used.
type userRecord struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password"`
	CreatedAt time.Time `json:"createdAt"`
}

type usersDoc struct {
	Users []userRecord `json:"users"`
}

func (r userRecord) toModel() *model.User {
	return &model.User{
		ID:           r.ID,
		Username:     r.Username,
		PasswordHash: r.Password,
		CreatedAt:    r.CreatedAt,
	}
}

// CreateUser appends a new user, generating ID and CreatedAt.
//
// Username uniqueness is a full-collection scan inside the same Mutate
// cycle that appends the record, so two concurrent registrations of the
// same name serialize on the collection's write lock — the second one sees
// the first and gets a conflict.
func (db *DB) CreateUser(_ context.Context, user *model.User) error {
	var doc usersDoc
	return db.store.Mutate(usersCollection, &doc, func() error {
		for _, u := range doc.Users {
			if u.Username == user.Username {
				return apperror.Conflict("user", user.Username)
			}
		}

		user.ID = xid.New().String()
		user.CreatedAt = time.Now()

		doc.Users = append(doc.Users, userRecord{
			ID:        user.ID,
			Username:  user.Username,
			Password:  user.PasswordHash,
			CreatedAt: user.CreatedAt,
		})
		return nil
	})
}

// GetUserByUsername finds a user by exact, case-sensitive username match.
func (db *DB) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	var doc usersDoc
	if err := db.store.View(usersCollection, &doc); err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if u.Username == username {
			return u.toModel(), nil
		}
	}
	return nil, apperror.NotFound("user", username)
}

// GetUserByID finds a user by internal ID.
func (db *DB) GetUserByID(_ context.Context, id string) (*model.User, error) {
	var doc usersDoc
	if err := db.store.View(usersCollection, &doc); err != nil {
		return nil, err
	}
	for _, u := range doc.Users {
		if u.ID == id {
			return u.toModel(), nil
		}
	}
	return nil, apperror.NotFound("user", id)
}
