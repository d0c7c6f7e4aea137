package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Kafka topics for collection events.
var (
	TopicCartUpdated     = pkgkafka.Topic(repository.KindCart, "updated")
	TopicWishlistUpdated = pkgkafka.Topic(repository.KindWishlist, "updated")
)

// SourceStorefront identifies events originating from the storefront API.
const SourceStorefront = "storefront-api"

// CollectionUpdatedData is the payload of cart.updated and wishlist.updated.
// The aggregate id of the event is the shopper session id.
type CollectionUpdatedData[T domain.Item] struct {
	UserID    string `json:"user_id"`
	Items     []T    `json:"items"`
	ItemCount int    `json:"item_count"`
	Version   int64  `json:"version"`
}

// Producer publishes collection events. A Producer without a publisher
// drops every event, which is how the API runs without Kafka.
type Producer struct {
	publisher pkgkafka.Publisher
	log       *slog.Logger
}

// NewProducer creates a new event producer. publisher may be nil.
func NewProducer(publisher pkgkafka.Publisher, log *slog.Logger) *Producer {
	return &Producer{
		publisher: publisher,
		log:       log,
	}
}

// PublishCartUpdated publishes a cart.updated event.
func (p *Producer) PublishCartUpdated(ctx context.Context, cart *domain.Cart) error {
	data := CollectionUpdatedData[domain.CartItem]{
		UserID:    cart.UserID,
		Items:     cart.Items,
		ItemCount: domain.ItemCount(cart.Items),
		Version:   cart.Version,
	}
	return publish(ctx, p, TopicCartUpdated, repository.KindCart, cart.UserID, cart.Version, data)
}

// PublishWishlistUpdated publishes a wishlist.updated event.
func (p *Producer) PublishWishlistUpdated(ctx context.Context, wishlist *domain.Wishlist) error {
	data := CollectionUpdatedData[domain.WishlistItem]{
		UserID:    wishlist.UserID,
		Items:     wishlist.Items,
		ItemCount: len(wishlist.Items),
		Version:   wishlist.Version,
	}
	return publish(ctx, p, TopicWishlistUpdated, repository.KindWishlist, wishlist.UserID, wishlist.Version, data)
}

func publish(ctx context.Context, p *Producer, topic, kind, userID string, version int64, data any) error {
	if p.publisher == nil {
		return nil
	}

	event, err := pkgkafka.NewEvent(topic, userID, kind, SourceStorefront, version, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", topic, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		event.WithCorrelationID(id)
	}

	if err := p.publisher.Publish(ctx, topic, event); err != nil {
		return fmt.Errorf("publish %s event: %w", topic, err)
	}

	p.log.DebugContext(ctx, "published collection event",
		slog.String("topic", topic),
		slog.String("user_id", userID),
		slog.Int64("version", version),
	)
	return nil
}
