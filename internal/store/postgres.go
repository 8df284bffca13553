package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/PratikDhanave/dev-event-hub/internal/models"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// uniqueViolation is the SQLSTATE Postgres reports for a unique index conflict.
const uniqueViolation = "23505"

// slugConstraint is the unique slug index created by schema.sql.
const slugConstraint = "idx_events_slug"

const eventColumns = `id::text, title, slug, description, overview, image, venue, location,
	date, time, mode, audience, organizer, agenda, tags, created_at, updated_at`

// PostgresStore is the relational alternative to MongoStore.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if DB is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema() error {
	_, err := p.pool.Exec(context.Background(), schemaSQL)
	return err
}

// Ping is used by readiness endpoint to validate DB connectivity.
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool.
func (p *PostgresStore) Close() {
	p.pool.Close()
}

// CreateEvent inserts ev. The unique title index surfaces as ErrDuplicate; a
// slug taken by a differently spelled title is retried once with a suffix.
func (p *PostgresStore) CreateEvent(ctx context.Context, ev *models.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	id := uuid.New()
	ev.ID = id.String()
	ev.Agenda = models.CompactStrings(ev.Agenda)
	ev.Tags = models.CompactStrings(ev.Tags)
	if ev.Slug == "" {
		ev.Slug = models.SuffixSlug("", ev.ID)
	}

	createdAt, err := p.insert(ctx, id, ev)
	if postgresSlugConflict(err) {
		ev.Slug = models.SuffixSlug(ev.Slug, ev.ID)
		createdAt, err = p.insert(ctx, id, ev)
	}
	if err != nil {
		return postgresWriteError(err)
	}

	ev.CreatedAt = createdAt.UTC()
	ev.UpdatedAt = ev.CreatedAt
	return nil
}

func (p *PostgresStore) insert(ctx context.Context, id uuid.UUID, ev *models.Event) (time.Time, error) {
	var createdAt time.Time
	err := p.pool.QueryRow(ctx, `
		INSERT INTO events(id, title, slug, description, overview, image, venue, location,
			date, time, mode, audience, organizer, agenda, tags)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
		RETURNING created_at
	`, id, ev.Title, ev.Slug, ev.Description, ev.Overview, ev.Image, ev.Venue, ev.Location,
		ev.Date, ev.Time, string(ev.Mode), ev.Audience, ev.Organizer, ev.Agenda, ev.Tags,
	).Scan(&createdAt)
	return createdAt, err
}

// postgresSlugConflict reports a unique violation on the slug index only.
func postgresSlugConflict(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == slugConstraint
}

func postgresWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	}
	return fmt.Errorf("postgres insert: %w", err)
}

// ListEvents returns every event ordered by created_at descending.
func (p *PostgresStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+eventColumns+` FROM events ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("postgres query: %w", err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres rows: %w", err)
	}
	return events, nil
}

func (p *PostgresStore) EventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	row := p.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE slug=$1`, slug)

	ev, err := scanEvent(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

func scanEvent(row pgx.Row) (models.Event, error) {
	var (
		ev   models.Event
		mode string
	)
	err := row.Scan(
		&ev.ID, &ev.Title, &ev.Slug, &ev.Description, &ev.Overview, &ev.Image,
		&ev.Venue, &ev.Location, &ev.Date, &ev.Time, &mode, &ev.Audience,
		&ev.Organizer, &ev.Agenda, &ev.Tags, &ev.CreatedAt, &ev.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ev, err
		}
		return ev, fmt.Errorf("postgres scan: %w", err)
	}
	ev.Mode = models.Mode(mode)
	ev.CreatedAt = ev.CreatedAt.UTC()
	ev.UpdatedAt = ev.UpdatedAt.UTC()
	return ev, nil
}
