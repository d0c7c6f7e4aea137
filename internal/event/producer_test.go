package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

type recordingPublisher struct {
	topics []string
	events []*pkgkafka.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, event *pkgkafka.Event) error {
	if p.err != nil {
		return p.err
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func TestTopics(t *testing.T) {
	assert.Equal(t, "storefront.cart.updated", TopicCartUpdated)
	assert.Equal(t, "storefront.wishlist.updated", TopicWishlistUpdated)
}

func TestPublishCartUpdated(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewProducer(pub, logger.Discard())

	cart := domain.NewDocument[domain.CartItem]("session-1", time.Now().UTC())
	cart.Items = []domain.CartItem{{ProductID: 5, Quantity: 2}, {ProductID: 1, Quantity: 1}}
	cart.Version = 7

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	require.NoError(t, p.PublishCartUpdated(ctx, cart))

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, TopicCartUpdated, pub.topics[0])
	assert.Equal(t, "session-1", ev.AggregateID)
	assert.Equal(t, "cart", ev.AggregateType)
	assert.Equal(t, int64(7), ev.Version)
	assert.Equal(t, "corr-1", ev.CorrelationID)

	var data CollectionUpdatedData[domain.CartItem]
	require.NoError(t, ev.UnmarshalData(&data))
	assert.Equal(t, 3, data.ItemCount)
	assert.Len(t, data.Items, 2)
}

func TestPublishWishlistUpdated(t *testing.T) {
	pub := &recordingPublisher{}
	p := NewProducer(pub, logger.Discard())

	w := domain.NewDocument[domain.WishlistItem]("session-2", time.Now().UTC())
	w.Items = []domain.WishlistItem{{ProductID: 101}}
	w.Version = 1

	require.NoError(t, p.PublishWishlistUpdated(context.Background(), w))
	require.Len(t, pub.events, 1)
	assert.Equal(t, TopicWishlistUpdated, pub.topics[0])
	assert.Equal(t, "wishlist", pub.events[0].AggregateType)
	assert.Empty(t, pub.events[0].CorrelationID)
}

func TestPublish_WithoutPublisherIsNoop(t *testing.T) {
	p := NewProducer(nil, logger.Discard())
	cart := domain.NewDocument[domain.CartItem]("session-1", time.Now().UTC())
	assert.NoError(t, p.PublishCartUpdated(context.Background(), cart))
}

func TestPublish_Error(t *testing.T) {
	p := NewProducer(&recordingPublisher{err: errors.New("broker down")}, logger.Discard())
	cart := domain.NewDocument[domain.CartItem]("session-1", time.Now().UTC())

	err := p.PublishCartUpdated(context.Background(), cart)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}
