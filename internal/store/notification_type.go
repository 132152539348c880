package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dukerupert/notiprefs/internal/database"
	"github.com/dukerupert/notiprefs/internal/model"
)

type TypeStore struct {
	conn
}

func NewTypeStore(db *database.DB) *TypeStore {
	return &TypeStore{conn{db: db, dialect: db.Dialect}}
}

// WithTx returns a TypeStore that runs its queries inside tx.
func (s *TypeStore) WithTx(tx *sql.Tx) *TypeStore {
	return &TypeStore{s.conn.withTx(tx)}
}

func scanType(scanner interface{ Scan(...any) error }) (*model.NotificationType, error) {
	var t model.NotificationType
	err := scanner.Scan(&t.ID, &t.Name, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const typeCols = `id, name, created_at`

func (s *TypeStore) Create(ctx context.Context, name string) (*model.NotificationType, error) {
	var id int64
	err := s.queryRow(ctx, `INSERT INTO notification_types (name) VALUES (?) RETURNING id`, name).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("insert notification type: %w", err)
	}
	return s.GetByID(ctx, id)
}

// GetOrCreate inserts name unless it already exists. The bool reports whether
// a new row was created.
func (s *TypeStore) GetOrCreate(ctx context.Context, name string) (*model.NotificationType, bool, error) {
	var id int64
	err := s.queryRow(ctx,
		`INSERT INTO notification_types (name) VALUES (?)
		 ON CONFLICT (name) DO NOTHING
		 RETURNING id`,
		name,
	).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		t, err := s.GetByName(ctx, name)
		if err != nil {
			return nil, false, err
		}
		if t == nil {
			return nil, false, fmt.Errorf("notification type %q vanished after conflict", name)
		}
		return t, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get or create notification type: %w", err)
	}
	t, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return t, true, nil
}

func (s *TypeStore) GetByID(ctx context.Context, id int64) (*model.NotificationType, error) {
	row := s.queryRow(ctx, `SELECT `+typeCols+` FROM notification_types WHERE id = ?`, id)
	t, err := scanType(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification type: %w", err)
	}
	return t, nil
}

func (s *TypeStore) GetByName(ctx context.Context, name string) (*model.NotificationType, error) {
	row := s.queryRow(ctx, `SELECT `+typeCols+` FROM notification_types WHERE name = ?`, name)
	t, err := scanType(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification type by name: %w", err)
	}
	return t, nil
}

func (s *TypeStore) List(ctx context.Context) ([]model.NotificationType, error) {
	rows, err := s.query(ctx, `SELECT `+typeCols+` FROM notification_types ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list notification types: %w", err)
	}
	defer rows.Close()

	var types []model.NotificationType
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification type: %w", err)
		}
		types = append(types, *t)
	}
	return types, rows.Err()
}

func (s *TypeStore) Update(ctx context.Context, id int64, name string) (*model.NotificationType, error) {
	_, err := s.exec(ctx, `UPDATE notification_types SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return nil, fmt.Errorf("update notification type: %w", err)
	}
	return s.GetByID(ctx, id)
}

// Delete removes the type; its preference rows go with it.
func (s *TypeStore) Delete(ctx context.Context, id int64) error {
	_, err := s.exec(ctx, `DELETE FROM notification_types WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete notification type: %w", err)
	}
	return nil
}
