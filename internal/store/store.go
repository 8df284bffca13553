package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PratikDhanave/dev-event-hub/internal/models"
)

var (
	// ErrDuplicate is returned by CreateEvent when the title is already taken.
	// A slug collision is not a duplicate: the store suffixes the slug instead.
	ErrDuplicate = errors.New("duplicate event")

	// ErrNotFound is returned by EventBySlug when no event matches.
	ErrNotFound = errors.New("event not found")
)

// EventStore is the persistence boundary for events.
//
// CreateEvent assigns ID, CreatedAt and UpdatedAt and validates field presence
// before writing. An empty or already used slug is made unique with
// models.SuffixSlug. ListEvents returns every event, newest first.
type EventStore interface {
	CreateEvent(ctx context.Context, ev *models.Event) error
	ListEvents(ctx context.Context) ([]models.Event, error)
	EventBySlug(ctx context.Context, slug string) (*models.Event, error)
	Ping(ctx context.Context) error
	Close()
}

// Open picks a backend from the DB_URL scheme and bootstraps its schema.
func Open(ctx context.Context, dbURL, dbName string) (EventStore, error) {
	switch {
	case strings.HasPrefix(dbURL, "mongodb://"), strings.HasPrefix(dbURL, "mongodb+srv://"):
		st, err := NewMongoStore(ctx, dbURL, dbName)
		if err != nil {
			return nil, err
		}
		if err := st.EnsureSchema(ctx); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil

	case strings.HasPrefix(dbURL, "postgres://"), strings.HasPrefix(dbURL, "postgresql://"):
		st, err := NewPostgresStore(dbURL)
		if err != nil {
			return nil, err
		}
		if err := st.EnsureSchema(); err != nil {
			st.Close()
			return nil, err
		}
		return st, nil

	case strings.HasPrefix(dbURL, "memory://"):
		return NewMemoryStore(), nil
	}

	return nil, fmt.Errorf("unsupported DB_URL scheme: %q", schemeOf(dbURL))
}

func schemeOf(dbURL string) string {
	if i := strings.Index(dbURL, "://"); i >= 0 {
		return dbURL[:i]
	}
	return dbURL
}

var (
	shared     EventStore
	sharedErr  error
	sharedOnce sync.Once
)

// Shared opens the process-wide store on first use and returns the same
// instance afterwards, so connection pools are reused across requests.
func Shared(ctx context.Context, dbURL, dbName string) (EventStore, error) {
	sharedOnce.Do(func() {
		shared, sharedErr = Open(ctx, dbURL, dbName)
	})
	return shared, sharedErr
}
