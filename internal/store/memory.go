package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/PratikDhanave/dev-event-hub/internal/models"
)

// MemoryStore keeps events in process. It backs DB_URL=memory:// for local
// development and gives tests the same duplicate and ordering semantics as
// the real backends.
type MemoryStore struct {
	mu     sync.RWMutex
	events []models.Event
	titles map[string]struct{}
	slugs  map[string]int

	now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		titles: map[string]struct{}{},
		slugs:  map[string]int{},
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the creation timestamp source.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) CreateEvent(ctx context.Context, ev *models.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.titles[ev.Title]; ok {
		return ErrDuplicate
	}

	ev.ID = uuid.New().String()
	if _, taken := m.slugs[ev.Slug]; taken || ev.Slug == "" {
		ev.Slug = models.SuffixSlug(ev.Slug, ev.ID)
	}
	ev.CreatedAt = m.now()
	ev.UpdatedAt = ev.CreatedAt

	m.titles[ev.Title] = struct{}{}
	m.slugs[ev.Slug] = len(m.events)
	m.events = append(m.events, cloneEvent(*ev))
	return nil
}

func (m *MemoryStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	out := make([]models.Event, 0, len(m.events))
	// Reverse insertion order so equal timestamps still list newest first.
	for i := len(m.events) - 1; i >= 0; i-- {
		out = append(out, cloneEvent(m.events[i]))
	}
	m.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) EventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.slugs[slug]
	if !ok {
		return nil, ErrNotFound
	}
	ev := cloneEvent(m.events[i])
	return &ev, nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (m *MemoryStore) Close() {}

func cloneEvent(ev models.Event) models.Event {
	ev.Agenda = append([]string(nil), ev.Agenda...)
	ev.Tags = append([]string(nil), ev.Tags...)
	if ev.Agenda == nil {
		ev.Agenda = []string{}
	}
	if ev.Tags == nil {
		ev.Tags = []string{}
	}
	return ev
}
