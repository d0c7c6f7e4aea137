// Package syncer keeps a local, optimistic copy of a server-owned collection
// (cart or wishlist) and reconciles it with every server response.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/remote"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

var (
	// ErrOperationPending is returned when the same operation on the same
	// product is already in flight. Nothing was sent and state is unchanged.
	ErrOperationPending = errors.New("operation already in flight")

	// ErrClosed is returned by operations on a closed synchronizer.
	ErrClosed = errors.New("synchronizer closed")
)

// Fetcher reads a whole collection from the server.
type Fetcher[T domain.Item] interface {
	FetchAll(ctx context.Context) (remote.Collection[T], error)
}

// fetchTimeout bounds a shared fetch, which outlives the callers waiting on
// it.
const fetchTimeout = 30 * time.Second

type phase string

const (
	phasePending phase = "pending"
	phaseSettled phase = "settled"
	phaseFailed  phase = "failed"
)

// Synchronizer is the kind-independent core shared by Cart and Wishlist.
// It is safe for concurrent use.
type Synchronizer[T domain.Item] struct {
	kind    string
	fetcher Fetcher[T]
	store   *store[T]
	guard   *Guard
	group   singleflight.Group
	logger  *slog.Logger
}

// New creates a synchronizer for kind. The state starts empty and loading
// until Start or Refresh completes.
func New[T domain.Item](kind string, fetcher Fetcher[T], logger *slog.Logger) *Synchronizer[T] {
	return &Synchronizer[T]{
		kind:    kind,
		fetcher: fetcher,
		store:   newStore[T](),
		guard:   NewGuard(),
		logger:  logger.With(slog.String("kind", kind)),
	}
}

// Start performs the initial load.
func (s *Synchronizer[T]) Start(ctx context.Context) error {
	return s.Refresh(ctx)
}

// Refresh clears the error and replaces the state with a fresh fetch.
func (s *Synchronizer[T]) Refresh(ctx context.Context) error {
	if s.store.isClosed() {
		return ErrClosed
	}
	return s.fetch(ctx, true)
}

// Snapshot returns a copy of the current state.
func (s *Synchronizer[T]) Snapshot() State[T] {
	return s.store.snapshot()
}

// Subscribe returns a channel carrying the current state and then the latest
// state after each change, plus a function that ends the subscription. The
// channel is closed by cancel or Close.
func (s *Synchronizer[T]) Subscribe() (<-chan State[T], func()) {
	return s.store.subscribe()
}

// Pending reports whether an operation of kind on productID is in flight.
func (s *Synchronizer[T]) Pending(kind Kind, productID int) bool {
	return s.guard.Pending(kind, productID)
}

// Close detaches the synchronizer. Calls still in flight finish without
// touching state; later calls return ErrClosed.
func (s *Synchronizer[T]) Close() {
	s.store.close()
}

// Watch refetches the collection every interval until ctx is done or the
// synchronizer is closed. It picks up changes made by other clients of the
// same session.
func (s *Synchronizer[T]) Watch(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		return fmt.Errorf("watch %s: interval must be positive", s.kind)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if s.store.isClosed() {
				return ErrClosed
			}
			if err := s.fetch(ctx, false); err != nil && ctx.Err() == nil {
				s.logger.DebugContext(ctx, "watch fetch failed", slog.String("error", err.Error()))
			}
		}
	}
}

// run drives one operation through pending and settled or failed. predict,
// when set, is published before the call.
func (s *Synchronizer[T]) run(
	ctx context.Context,
	kind Kind,
	productID int,
	predict func(items []T) []T,
	call func(ctx context.Context) (remote.Collection[T], error),
) error {
	if s.store.isClosed() {
		return ErrClosed
	}
	if !s.guard.TryBegin(kind, productID) {
		syncOperationsTotal.WithLabelValues(s.kind, string(kind), outcomeSuppressed).Inc()
		s.logger.DebugContext(ctx, "operation suppressed",
			slog.String("op", string(kind)),
			slog.Int("product_id", productID),
		)
		return ErrOperationPending
	}
	defer s.guard.End(kind, productID)

	s.transition(ctx, kind, productID, phasePending)
	if predict != nil {
		s.store.patch(predict)
	}

	seq := s.store.issue()
	c, err := call(ctx)
	if err == nil {
		syncOperationsTotal.WithLabelValues(s.kind, string(kind), outcomeSettled).Inc()
		if !s.store.apply(c, seq, true) {
			s.discardStale(ctx, seq)
		}
		s.transition(ctx, kind, productID, phaseSettled)
		return nil
	}

	syncOperationsTotal.WithLabelValues(s.kind, string(kind), outcomeFailed).Inc()
	s.logger.WarnContext(ctx, "operation failed",
		slog.String("op", string(kind)),
		slog.Int("product_id", productID),
		slog.String("error", err.Error()),
	)
	s.store.revert(message(err, "Failed to update "+s.kind))
	s.transition(ctx, kind, productID, phaseFailed)

	// The resync outcome is reflected in state; the caller gets the
	// operation's error. It runs even when ctx ended the call.
	_ = s.fetch(context.WithoutCancel(ctx), false)
	return err
}

// fetch loads the whole collection. Concurrent fetches share one request,
// which runs detached from any one caller and settles state once. A caller
// whose ctx ends stops waiting without touching state.
func (s *Synchronizer[T]) fetch(ctx context.Context, clearErr bool) error {
	s.store.beginLoad(clearErr)
	defer s.store.endLoad()

	ch := s.group.DoChan("fetch", func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()
		return nil, s.fetchOnce(fctx)
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		return res.Err
	}
}

func (s *Synchronizer[T]) fetchOnce(ctx context.Context) error {
	seq := s.store.issue()
	c, err := s.fetcher.FetchAll(ctx)
	if err != nil {
		syncFetchesTotal.WithLabelValues(s.kind, outcomeFailed).Inc()
		s.store.settleFetch(nil, seq, message(err, "Failed to load "+s.kind))
		return err
	}

	syncFetchesTotal.WithLabelValues(s.kind, outcomeSettled).Inc()
	if !s.store.settleFetch(&c, seq, "") {
		s.discardStale(ctx, seq)
	}
	return nil
}

func (s *Synchronizer[T]) discardStale(ctx context.Context, seq uint64) {
	if s.store.isClosed() {
		return
	}
	syncStaleSettlementsTotal.WithLabelValues(s.kind).Inc()
	s.logger.DebugContext(ctx, "stale collection discarded", slog.Uint64("seq", seq))
}

func (s *Synchronizer[T]) transition(ctx context.Context, kind Kind, productID int, p phase) {
	s.logger.DebugContext(ctx, "operation "+string(p),
		slog.String("op", string(kind)),
		slog.Int("product_id", productID),
	)
}

// message picks the text shown to users for err.
func message(err error, fallback string) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return fallback
}
