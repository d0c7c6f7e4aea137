package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Repository implements repository.CollectionRepository with one MongoDB
// document per shopper session in the "<kind>s" collection.
type Repository[T domain.Item] struct {
	collection *mongo.Collection
	kind       string
	ttl        time.Duration
}

// NewRepository creates a MongoDB-backed repository. A positive ttl expires
// documents that were not written for that long (see CreateIndexes).
func NewRepository[T domain.Item](db *mongo.Database, kind string, ttl time.Duration) *Repository[T] {
	return &Repository[T]{
		collection: db.Collection(kind + "s"),
		kind:       kind,
		ttl:        ttl,
	}
}

// CreateIndexes creates the unique user_id index and, when a ttl is set, the
// updated_at expiry index.
func (r *Repository[T]) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
	if r.ttl > 0 {
		indexes = append(indexes, mongo.IndexModel{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(r.ttl.Seconds())),
		})
	}

	if _, err := r.collection.Indexes().CreateMany(ctx, indexes); err != nil {
		return fmt.Errorf("create %s indexes: %w", r.kind, err)
	}
	return nil
}

// Get retrieves a collection by user ID.
func (r *Repository[T]) Get(ctx context.Context, userID string) (doc *domain.Document[T], err error) {
	ctx, end := database.TraceOp(ctx, "mongodb", "find", r.collection.Name())
	defer func() { end(err) }()

	var found domain.Document[T]
	err = r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&found)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, apperrors.NotFound(r.kind, userID)
		}
		return nil, fmt.Errorf("mongo find %s: %w", r.kind, err)
	}
	if found.Items == nil {
		found.Items = []T{}
	}
	return &found, nil
}

// SaveIfVersion inserts a first version or updates the document only while
// its stored version equals expectedVersion.
func (r *Repository[T]) SaveIfVersion(ctx context.Context, doc *domain.Document[T], expectedVersion int64) (ok bool, err error) {
	if expectedVersion == 0 {
		ctx, end := database.TraceOp(ctx, "mongodb", "insert", r.collection.Name())
		defer func() { end(err) }()

		if _, err = r.collection.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return false, nil
			}
			return false, fmt.Errorf("mongo insert %s: %w", r.kind, err)
		}
		return true, nil
	}

	ctx, end := database.TraceOp(ctx, "mongodb", "update", r.collection.Name())
	defer func() { end(err) }()

	filter := bson.M{"user_id": doc.UserID, "version": expectedVersion}
	update := bson.M{"$set": bson.M{
		"items":      doc.Items,
		"version":    doc.Version,
		"updated_at": doc.UpdatedAt,
	}}

	res, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("mongo update %s: %w", r.kind, err)
	}
	return res.MatchedCount == 1, nil
}

// Ping checks the primary is reachable.
func (r *Repository[T]) Ping(ctx context.Context) error {
	return r.collection.Database().Client().Ping(ctx, readpref.Primary())
}
