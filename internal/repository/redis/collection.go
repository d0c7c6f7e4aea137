package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Repository implements repository.CollectionRepository using Redis. Each
// collection is one JSON value under "<kind>:<userID>" that expires ttl after
// its last write.
type Repository[T domain.Item] struct {
	client *redis.Client
	kind   string
	ttl    time.Duration
}

// NewRepository creates a new Redis-backed repository for the given kind.
func NewRepository[T domain.Item](client *redis.Client, kind string, ttl time.Duration) *Repository[T] {
	return &Repository[T]{
		client: client,
		kind:   kind,
		ttl:    ttl,
	}
}

func (r *Repository[T]) key(userID string) string {
	return r.kind + ":" + userID
}

// Get retrieves a collection by user ID from Redis.
func (r *Repository[T]) Get(ctx context.Context, userID string) (doc *domain.Document[T], err error) {
	ctx, end := database.TraceOp(ctx, "redis", "GET", r.kind)
	defer func() { end(err) }()

	return r.get(ctx, r.client, userID)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *Repository[T]) get(ctx context.Context, c getter, userID string) (*domain.Document[T], error) {
	data, err := c.Get(ctx, r.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, apperrors.NotFound(r.kind, userID)
		}
		return nil, fmt.Errorf("redis get %s: %w", r.kind, err)
	}

	var doc domain.Document[T]
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", r.kind, err)
	}
	return &doc, nil
}

// SaveIfVersion writes doc inside a WATCH transaction so a concurrent writer
// makes the save report false instead of overwriting.
func (r *Repository[T]) SaveIfVersion(ctx context.Context, doc *domain.Document[T], expectedVersion int64) (ok bool, err error) {
	ctx, end := database.TraceOp(ctx, "redis", "SET", r.kind)
	defer func() { end(err) }()

	data, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("marshal %s: %w", r.kind, err)
	}

	key := r.key(doc.UserID)
	txErr := r.client.Watch(ctx, func(tx *redis.Tx) error {
		var current int64
		stored, err := r.get(ctx, tx, doc.UserID)
		switch {
		case err == nil:
			current = stored.Version
		case errors.Is(err, apperrors.ErrNotFound):
		default:
			return err
		}
		if current != expectedVersion {
			return errVersionMismatch
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		return err
	}, key)

	switch {
	case txErr == nil:
		return true, nil
	case errors.Is(txErr, errVersionMismatch), errors.Is(txErr, redis.TxFailedErr):
		return false, nil
	default:
		return false, fmt.Errorf("redis set %s: %w", r.kind, txErr)
	}
}

var errVersionMismatch = errors.New("version mismatch")

// Ping checks the Redis connection.
func (r *Repository[T]) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
