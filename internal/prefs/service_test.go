package prefs

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dukerupert/notiprefs/internal/auth"
	"github.com/dukerupert/notiprefs/internal/database"
	"github.com/dukerupert/notiprefs/internal/model"
)

var ctx = context.Background()

type recordingPublisher struct {
	mu     sync.Mutex
	events []Event
}

func (p *recordingPublisher) Publish(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Event(nil), p.events...)
}

func setupService(t *testing.T, opts ...Option) (*Service, *database.DB) {
	t.Helper()
	db, err := database.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(db, opts...), db
}

func mustCreateUser(t *testing.T, svc *Service, username string) *model.User {
	t.Helper()
	u, err := svc.CreateUser(ctx, username, "secret-password", false)
	require.NoError(t, err)
	return u
}

func mustCreateType(t *testing.T, svc *Service, name string) *model.NotificationType {
	t.Helper()
	nt, err := svc.CreateType(ctx, name)
	require.NoError(t, err)
	return nt
}

func callerFor(u *model.User) auth.AuthContext {
	return auth.AuthContext{UserID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

func decodeUpdates(t *testing.T, body string) []PreferenceUpdate {
	t.Helper()
	var updates []PreferenceUpdate
	require.NoError(t, json.Unmarshal([]byte(body), &updates))
	return updates
}
