package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	backend "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/flowsmith/flowsmith/pkg/flow"
)

// Store implements ports.FlowStore using MongoDB. Each flow is one
// document in a collection, keyed by the flow id as _id.
type Store struct {
	client     *backend.Client
	collection *backend.Collection
	ownsClient bool
}

type Option func(*config)

type config struct {
	collectionName string
}

// WithCollection sets the collection name. Defaults to "flows".
func WithCollection(name string) Option {
	return func(c *config) {
		c.collectionName = name
	}
}

// New connects to MongoDB and returns a store over the given database.
// Close releases the connection.
func New(ctx context.Context, uri, database string, opts ...Option) (*Store, error) {
	client, err := backend.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	store := NewFromClient(client, database, opts...)
	store.ownsClient = true
	return store, nil
}

// NewFromClient creates a store from an existing client. The caller keeps
// ownership of the client; Close will not disconnect it.
func NewFromClient(client *backend.Client, database string, opts ...Option) *Store {
	cfg := config{collectionName: "flows"}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Store{
		client:     client,
		collection: client.Database(database).Collection(cfg.collectionName),
	}
}

// Save persists the flow, replacing any previous document with the same id.
func (s *Store) Save(ctx context.Context, f *flow.Flow) error {
	_, err := s.collection.ReplaceOne(
		ctx,
		bson.M{"_id": f.ID},
		f,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to save flow: %w", err)
	}
	return nil
}

// Load retrieves a flow by id.
func (s *Store) Load(ctx context.Context, id string) (*flow.Flow, error) {
	var f flow.Flow
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&f)
	if err != nil {
		if errors.Is(err, backend.ErrNoDocuments) {
			return nil, flow.ErrFlowNotFound
		}
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}
	return &f, nil
}

// Delete removes a flow by id.
func (s *Store) Delete(ctx context.Context, id string) error {
	if _, err := s.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete flow: %w", err)
	}
	return nil
}

// List returns all saved flow ids, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	findOpts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})

	cursor, err := s.collection.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list flows: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode flow id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate flows: %w", err)
	}

	return ids, nil
}

// Close disconnects the client when this store created it.
func (s *Store) Close(ctx context.Context) error {
	if !s.ownsClient {
		return nil
	}
	return s.client.Disconnect(ctx)
}
