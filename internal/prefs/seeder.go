package prefs

import (
	"context"

	"github.com/dukerupert/notiprefs/internal/store"
)

// Seeder fills in preference rows when a user or a notification type is
// created. It runs inside the creating transaction, so prefs is already bound
// to it.
type Seeder interface {
	SeedUser(ctx context.Context, prefs *store.PreferenceStore, userID int64) (int64, error)
	SeedType(ctx context.Context, prefs *store.PreferenceStore, typeID int64) (int64, error)
}

// FanOutSeeder creates one default preference per existing counterpart:
// every type for a new user, every user for a new type.
type FanOutSeeder struct{}

func (FanOutSeeder) SeedUser(ctx context.Context, prefs *store.PreferenceStore, userID int64) (int64, error) {
	return prefs.SeedForUser(ctx, userID)
}

func (FanOutSeeder) SeedType(ctx context.Context, prefs *store.PreferenceStore, typeID int64) (int64, error) {
	return prefs.SeedForType(ctx, typeID)
}

// NopSeeder seeds nothing.
type NopSeeder struct{}

func (NopSeeder) SeedUser(context.Context, *store.PreferenceStore, int64) (int64, error) {
	return 0, nil
}

func (NopSeeder) SeedType(context.Context, *store.PreferenceStore, int64) (int64, error) {
	return 0, nil
}
