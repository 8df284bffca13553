package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/PratikDhanave/dev-event-hub/internal/models"
)

const (
	eventsCollection = "events"
	titleIndex       = "title_unique"
	slugIndex        = "slug_unique"
)

// MongoStore persists events as documents in the "events" collection.
type MongoStore struct {
	client *mongo.Client
	events *mongo.Collection
}

// NewMongoStore connects and fails fast if the server is unreachable.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	return &MongoStore{
		client: client,
		events: client.Database(dbName).Collection(eventsCollection),
	}, nil
}

// EnsureSchema creates the unique title/slug indexes and the sort index.
// Safe to run multiple times.
func (m *MongoStore) EnsureSchema(ctx context.Context) error {
	_, err := m.events.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "title", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(titleIndex),
		},
		{
			Keys:    bson.D{{Key: "slug", Value: 1}},
			Options: options.Index().SetUnique(true).SetName(slugIndex),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("created_at_desc"),
		},
	})
	if err != nil {
		return fmt.Errorf("mongo indexes: %w", err)
	}
	return nil
}

func (m *MongoStore) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

func (m *MongoStore) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = m.client.Disconnect(ctx)
}

// eventDoc is the stored form of an event: a native ObjectID key with the
// remaining fields inlined.
type eventDoc struct {
	ID           primitive.ObjectID `bson:"_id"`
	models.Event `bson:",inline"`
}

func (d eventDoc) event() models.Event {
	ev := d.Event
	ev.ID = d.ID.Hex()
	return ev
}

// CreateEvent inserts ev. The unique title index turns a repeated submission
// into ErrDuplicate; a slug taken by a differently spelled title is retried
// once with a suffix.
func (m *MongoStore) CreateEvent(ctx context.Context, ev *models.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	// BSON dates carry millisecond precision.
	now := time.Now().UTC().Truncate(time.Millisecond)
	id := primitive.NewObjectID()
	ev.ID = id.Hex()
	ev.CreatedAt = now
	ev.UpdatedAt = now
	if ev.Slug == "" {
		ev.Slug = models.SuffixSlug("", ev.ID)
	}

	_, err := m.events.InsertOne(ctx, eventDoc{ID: id, Event: *ev})
	if mongoSlugConflict(err) {
		ev.Slug = models.SuffixSlug(ev.Slug, ev.ID)
		_, err = m.events.InsertOne(ctx, eventDoc{ID: id, Event: *ev})
	}
	if err != nil {
		return mongoWriteError(err)
	}
	return nil
}

// mongoSlugConflict reports a duplicate key on the slug index only.
func mongoSlugConflict(err error) bool {
	return err != nil && mongo.IsDuplicateKeyError(err) &&
		strings.Contains(err.Error(), "index: "+slugIndex)
}

// mongoWriteError maps the driver's duplicate key signal (code 11000) to ErrDuplicate.
func mongoWriteError(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return fmt.Errorf("mongo insert: %w", err)
}

func (m *MongoStore) ListEvents(ctx context.Context) ([]models.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cur, err := m.events.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find: %w", err)
	}

	var docs []eventDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("mongo decode: %w", err)
	}

	events := make([]models.Event, 0, len(docs))
	for _, d := range docs {
		events = append(events, d.event())
	}
	return events, nil
}

func (m *MongoStore) EventBySlug(ctx context.Context, slug string) (*models.Event, error) {
	var doc eventDoc
	err := m.events.FindOne(ctx, bson.D{{Key: "slug", Value: slug}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("mongo find one: %w", err)
	}
	ev := doc.event()
	return &ev, nil
}
