package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/notiprefs/internal/database"
	"github.com/dukerupert/notiprefs/internal/model"
)

type PreferenceStore struct {
	conn
}

func NewPreferenceStore(db *database.DB) *PreferenceStore {
	return &PreferenceStore{conn{db: db, dialect: db.Dialect}}
}

// WithTx returns a PreferenceStore that runs its queries inside tx.
func (s *PreferenceStore) WithTx(tx *sql.Tx) *PreferenceStore {
	return &PreferenceStore{s.conn.withTx(tx)}
}

func scanPreference(scanner interface{ Scan(...any) error }) (*model.NotificationPreference, error) {
	var p model.NotificationPreference
	err := scanner.Scan(
		&p.ID, &p.UserID,
		&p.NotificationType.ID, &p.NotificationType.Name, &p.NotificationType.CreatedAt,
		&p.Frequency, &p.Email, &p.Push, &p.SMS,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

const preferenceSelect = `SELECT p.id, p.user_id, t.id, t.name, t.created_at,
	p.frequency, p.email, p.push, p.sms, p.created_at, p.updated_at
	FROM notification_preferences p
	JOIN notification_types t ON t.id = p.notification_type_id`

// SeedForUser creates a default preference for userID and every existing
// type. Pairs that already have a row are skipped. Returns the number of rows
// inserted.
func (s *PreferenceStore) SeedForUser(ctx context.Context, userID int64) (int64, error) {
	result, err := s.exec(ctx,
		`INSERT INTO notification_preferences (user_id, notification_type_id, frequency)
		 SELECT ?, t.id, ? FROM notification_types t WHERE 1 = 1
		 ON CONFLICT (user_id, notification_type_id) DO NOTHING`,
		userID, string(model.DefaultFrequency),
	)
	if err != nil {
		return 0, fmt.Errorf("seed preferences for user: %w", err)
	}
	return rowsAffected(result)
}

// SeedForType creates a default preference for typeID and every existing
// user. Pairs that already have a row are skipped.
func (s *PreferenceStore) SeedForType(ctx context.Context, typeID int64) (int64, error) {
	result, err := s.exec(ctx,
		`INSERT INTO notification_preferences (user_id, notification_type_id, frequency)
		 SELECT u.id, ?, ? FROM users u WHERE 1 = 1
		 ON CONFLICT (user_id, notification_type_id) DO NOTHING`,
		typeID, string(model.DefaultFrequency),
	)
	if err != nil {
		return 0, fmt.Errorf("seed preferences for type: %w", err)
	}
	return rowsAffected(result)
}

// Backfill creates a default preference for every (user, type) pair that
// lacks one.
func (s *PreferenceStore) Backfill(ctx context.Context) (int64, error) {
	result, err := s.exec(ctx,
		`INSERT INTO notification_preferences (user_id, notification_type_id, frequency)
		 SELECT u.id, t.id, ? FROM users u CROSS JOIN notification_types t WHERE 1 = 1
		 ON CONFLICT (user_id, notification_type_id) DO NOTHING`,
		string(model.DefaultFrequency),
	)
	if err != nil {
		return 0, fmt.Errorf("backfill preferences: %w", err)
	}
	return rowsAffected(result)
}

func (s *PreferenceStore) ListByUser(ctx context.Context, userID int64) ([]model.NotificationPreference, error) {
	rows, err := s.query(ctx, preferenceSelect+` WHERE p.user_id = ? ORDER BY p.id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list preferences by user: %w", err)
	}
	defer rows.Close()

	var prefs []model.NotificationPreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, fmt.Errorf("scan preference: %w", err)
		}
		prefs = append(prefs, *p)
	}
	return prefs, rows.Err()
}

// GetByUserAndTypeName returns the user's preference for the named type, or
// nil if there is none.
func (s *PreferenceStore) GetByUserAndTypeName(ctx context.Context, userID int64, typeName string) (*model.NotificationPreference, error) {
	row := s.queryRow(ctx,
		preferenceSelect+` WHERE p.user_id = ? AND t.name = ? ORDER BY p.id ASC LIMIT 1`,
		userID, typeName,
	)
	p, err := scanPreference(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preference by type name: %w", err)
	}
	return p, nil
}

func (s *PreferenceStore) GetByID(ctx context.Context, id int64) (*model.NotificationPreference, error) {
	row := s.queryRow(ctx, preferenceSelect+` WHERE p.id = ?`, id)
	p, err := scanPreference(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preference: %w", err)
	}
	return p, nil
}

// Update writes the mutable fields of p. The user and type never change.
func (s *PreferenceStore) Update(ctx context.Context, p *model.NotificationPreference) error {
	_, err := s.exec(ctx,
		`UPDATE notification_preferences
		 SET frequency = ?, email = ?, push = ?, sms = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		string(p.Frequency), p.Email, p.Push, p.SMS, p.ID,
	)
	if err != nil {
		return fmt.Errorf("update preference: %w", err)
	}
	return nil
}

// CountByType returns how many preference rows reference typeID.
func (s *PreferenceStore) CountByType(ctx context.Context, typeID int64) (int, error) {
	var count int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM notification_preferences WHERE notification_type_id = ?`, typeID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count preferences by type: %w", err)
	}
	return count, nil
}

func rowsAffected(result sql.Result) (int64, error) {
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}
