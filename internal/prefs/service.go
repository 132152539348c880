// Package prefs manages the notification type catalog and each user's
// per-type delivery preferences, keeping the two in step.
package prefs

import (
	"log/slog"

	"github.com/dukerupert/notiprefs/internal/database"
	"github.com/dukerupert/notiprefs/internal/store"
)

// Event describes a committed change.
type Event struct {
	Entity string
	Action string
	ID     int64
	// UserID restricts delivery to one user. Zero means everyone.
	UserID int64
}

const (
	EntityType       = "notification_type"
	EntityPreference = "notification_preference"

	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Publisher receives events after their transaction commits.
type Publisher interface {
	Publish(e Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

type Service struct {
	db     *database.DB
	types  *store.TypeStore
	prefs  *store.PreferenceStore
	users  *store.UserStore
	seeder Seeder
	pub    Publisher
	logger *slog.Logger
}

type Option func(*Service)

// WithSeeder replaces the default FanOutSeeder.
func WithSeeder(s Seeder) Option {
	return func(svc *Service) { svc.seeder = s }
}

func WithPublisher(p Publisher) Option {
	return func(svc *Service) { svc.pub = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(svc *Service) { svc.logger = l }
}

func NewService(db *database.DB, opts ...Option) *Service {
	svc := &Service{
		db:     db,
		types:  store.NewTypeStore(db),
		prefs:  store.NewPreferenceStore(db),
		users:  store.NewUserStore(db),
		seeder: FanOutSeeder{},
		pub:    nopPublisher{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}
