package prefs

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dukerupert/notiprefs/internal/auth"
	"github.com/dukerupert/notiprefs/internal/database"
	"github.com/dukerupert/notiprefs/internal/model"
)

// CreateUser registers a user and seeds a preference for every existing
// notification type in the same transaction.
func (s *Service) CreateUser(ctx context.Context, username, password string, admin bool) (*model.User, error) {
	username = strings.TrimSpace(username)
	fields := FieldErrors{}
	if username == "" {
		fields.add("username", msgRequired)
	}
	if password == "" {
		fields.add("password", msgRequired)
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Message: "invalid user", Fields: fields}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var (
		created *model.User
		seeded  int64
	)
	err = s.db.InTx(ctx, func(tx *sql.Tx) error {
		u, err := s.users.WithTx(tx).Create(ctx, username, hash, admin)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return &DuplicateError{Field: "username", Message: msgUsernameTaken}
			}
			return err
		}
		seeded, err = s.seeder.SeedUser(ctx, s.prefs.WithTx(tx), u.ID)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", username, err)
		}
		created = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("user created", "id", created.ID, "username", created.Username, "admin", created.IsAdmin, "seeded", seeded)
	return created, nil
}

// Authenticate checks a username and password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	u, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return nil, err
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// GetUser returns the user with id, or nil if there is none.
func (s *Service) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.users.GetByID(ctx, id)
}
