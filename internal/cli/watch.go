package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/syncer"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
)

// WatchOptions configures Watch.
type WatchOptions struct {
	Interval time.Duration
	// Brokers enables push refreshes from cart.updated events. The poller
	// keeps running either way.
	Brokers []string
}

// Watch prints the cart every time it changes until ctx is done. The session
// must have been started so its id is known.
func Watch(ctx context.Context, s *Session, w io.Writer, opts WatchOptions, logger *slog.Logger) error {
	updates, cancel := s.Cart.Subscribe()
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.Cart.Watch(ctx, opts.Interval)
	})

	if len(opts.Brokers) > 0 {
		consumer := pkgkafka.NewConsumer(pkgkafka.ConsumerConfig{
			Brokers: opts.Brokers,
			GroupID: "storefrontctl-" + s.ID(),
			Topic:   event.TopicCartUpdated,
		}, refreshOnEvent(s, logger), logger)
		g.Go(func() error {
			return consumer.Start(ctx)
		})
	}

	g.Go(func() error {
		var last *syncer.State[domain.CartItem]
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case st, ok := <-updates:
				if !ok {
					return nil
				}
				if st.Loading || (last != nil && sameCart(*last, st)) {
					continue
				}
				RenderCart(w, st)
				last = &st
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// refreshOnEvent refetches the cart when an event for this session arrives.
func refreshOnEvent(s *Session, logger *slog.Logger) pkgkafka.Handler {
	return func(ctx context.Context, e *pkgkafka.Event) error {
		if e.AggregateID != s.ID() {
			return nil
		}
		logger.DebugContext(ctx, "cart update event", slog.Int64("version", e.Version))
		return s.Cart.Refresh(ctx)
	}
}

func sameCart(a, b syncer.State[domain.CartItem]) bool {
	return a.Error == b.Error && slices.Equal(a.Items, b.Items)
}
