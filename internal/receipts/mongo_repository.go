package receipts

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collectionName = "receipts"

	// DefaultListLimit caps how many receipts a session listing returns
	DefaultListLimit = 20

	retention = 90 * 24 * 60 * 60
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) Repository {
	return &mongoRepository{
		collection: db.Collection(collectionName),
	}
}

func (m *mongoRepository) Save(ctx context.Context, r Receipt) error {
	doc, err := toDocument(r)
	if err != nil {
		return fmt.Errorf("failed to encode receipt: %w", err)
	}

	if _, err := m.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to save receipt: %w", err)
	}
	return nil
}

func (m *mongoRepository) ListBySession(ctx context.Context, sessionID string, limit int64) ([]Receipt, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	filter := bson.M{"session_id": sessionID}
	opts := options.Find().
		SetSort(bson.D{{Key: "placed_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := m.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list receipts: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []receiptDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode receipts: %w", err)
	}

	result := make([]Receipt, 0, len(docs))
	for _, doc := range docs {
		r, err := doc.toReceipt()
		if err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	return result, nil
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "session_id", Value: 1}, {Key: "placed_at", Value: -1}},
		},
		{
			Keys:    bson.D{{Key: "placed_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(retention),
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}

// EnsureIndexes creates the receipt indexes when repo is backed by Mongo.
func EnsureIndexes(ctx context.Context, repo Repository) error {
	if m, ok := repo.(*mongoRepository); ok {
		return m.CreateIndexes(ctx)
	}
	return nil
}
