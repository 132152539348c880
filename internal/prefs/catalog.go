package prefs

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dukerupert/notiprefs/internal/database"
	"github.com/dukerupert/notiprefs/internal/model"
)

func validateTypeName(name string) error {
	if name == "" {
		return newFieldError("name", msgRequired)
	}
	if !model.IsValidTypeName(name) {
		return newFieldError("name", invalidChoice(name))
	}
	return nil
}

func typeNotFound(id int64) error {
	return &NotFoundError{Detail: fmt.Sprintf("notification type %d not found", id)}
}

// ListTypes returns the whole catalog in creation order.
func (s *Service) ListTypes(ctx context.Context) ([]model.NotificationType, error) {
	types, err := s.types.List(ctx)
	if err != nil {
		return nil, err
	}
	if types == nil {
		types = []model.NotificationType{}
	}
	return types, nil
}

func (s *Service) GetType(ctx context.Context, id int64) (*model.NotificationType, error) {
	t, err := s.types.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, typeNotFound(id)
	}
	return t, nil
}

// CreateType adds name to the catalog and seeds a preference for every
// existing user in the same transaction.
func (s *Service) CreateType(ctx context.Context, name string) (*model.NotificationType, error) {
	if err := validateTypeName(name); err != nil {
		return nil, err
	}

	var (
		created *model.NotificationType
		seeded  int64
	)
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		t, err := s.types.WithTx(tx).Create(ctx, name)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return &DuplicateError{Field: "name", Message: msgTypeExists}
			}
			return err
		}
		seeded, err = s.seeder.SeedType(ctx, s.prefs.WithTx(tx), t.ID)
		if err != nil {
			return fmt.Errorf("seed type %s: %w", name, err)
		}
		created = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("notification type created", "id", created.ID, "name", created.Name, "seeded", seeded)
	s.pub.Publish(Event{Entity: EntityType, Action: ActionCreated, ID: created.ID})
	return created, nil
}

// EnsureType creates name if it is not yet in the catalog. Seeding runs only
// when a row was created.
func (s *Service) EnsureType(ctx context.Context, name string) (*model.NotificationType, bool, error) {
	if err := validateTypeName(name); err != nil {
		return nil, false, err
	}

	var (
		t       *model.NotificationType
		created bool
		seeded  int64
	)
	err := s.db.InTx(ctx, func(tx *sql.Tx) error {
		var err error
		t, created, err = s.types.WithTx(tx).GetOrCreate(ctx, name)
		if err != nil {
			return err
		}
		if !created {
			return nil
		}
		seeded, err = s.seeder.SeedType(ctx, s.prefs.WithTx(tx), t.ID)
		if err != nil {
			return fmt.Errorf("seed type %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	if created {
		s.logger.Info("notification type created", "id", t.ID, "name", t.Name, "seeded", seeded)
		s.pub.Publish(Event{Entity: EntityType, Action: ActionCreated, ID: t.ID})
	}
	return t, created, nil
}

// UpdateType renames a type. Existing preference rows keep pointing at it.
func (s *Service) UpdateType(ctx context.Context, id int64, name string) (*model.NotificationType, error) {
	if err := validateTypeName(name); err != nil {
		return nil, err
	}

	existing, err := s.types.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, typeNotFound(id)
	}

	t, err := s.types.Update(ctx, id, name)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, &DuplicateError{Field: "name", Message: msgTypeExists}
		}
		return nil, err
	}
	if t == nil {
		return nil, typeNotFound(id)
	}

	s.pub.Publish(Event{Entity: EntityType, Action: ActionUpdated, ID: t.ID})
	return t, nil
}

// DeleteType removes a type and, by cascade, every preference row for it.
func (s *Service) DeleteType(ctx context.Context, id int64) error {
	existing, err := s.types.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return typeNotFound(id)
	}

	if err := s.types.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("notification type deleted", "id", id, "name", existing.Name)
	s.pub.Publish(Event{Entity: EntityType, Action: ActionDeleted, ID: id})
	return nil
}
