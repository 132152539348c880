package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/notiprefs/internal/database"
	"github.com/dukerupert/notiprefs/internal/model"
)

type UserStore struct {
	conn
}

func NewUserStore(db *database.DB) *UserStore {
	return &UserStore{conn{db: db, dialect: db.Dialect}}
}

// WithTx returns a UserStore that runs its queries inside tx.
func (s *UserStore) WithTx(tx *sql.Tx) *UserStore {
	return &UserStore{s.conn.withTx(tx)}
}

func scanUser(scanner interface{ Scan(...any) error }) (*model.User, error) {
	var u model.User
	err := scanner.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

const userCols = `id, username, password_hash, is_admin, created_at`

func (s *UserStore) Create(ctx context.Context, username, passwordHash string, isAdmin bool) (*model.User, error) {
	var id int64
	err := s.queryRow(ctx,
		`INSERT INTO users (username, password_hash, is_admin) VALUES (?, ?, ?) RETURNING id`,
		username, passwordHash, isAdmin,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.queryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.queryRow(ctx, `SELECT `+userCols+` FROM users WHERE username = ?`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return u, nil
}

// Delete removes the user; their preference rows go with them.
func (s *UserStore) Delete(ctx context.Context, id int64) error {
	_, err := s.exec(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
