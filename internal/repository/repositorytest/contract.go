// Package repositorytest holds the behavior every collection store must
// share, run by each backend's tests.
package repositorytest

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Cart returns a cart document for userID at version holding items.
func Cart(userID string, version int64, items ...domain.CartItem) *domain.Cart {
	doc := domain.NewDocument[domain.CartItem](userID, time.Now().UTC().Truncate(time.Millisecond))
	doc.Items = append(doc.Items, items...)
	doc.Version = version
	return doc
}

// RunCartContract checks the compare-and-set contract of a cart store.
// newRepo must return an empty store for every call.
func RunCartContract(t *testing.T, newRepo func(t *testing.T) repository.CartRepository) {
	ctx := context.Background()

	t.Run("missing collection is not found", func(t *testing.T) {
		_, err := newRepo(t).Get(ctx, "session-absent")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("insert then update", func(t *testing.T) {
		repo := newRepo(t)
		doc := Cart("session-1", 1, domain.CartItem{ProductID: 5, Name: "AirPods Pro 2nd Gen", Price: "$240.00", Quantity: 1})
		ok, err := repo.SaveIfVersion(ctx, doc, 0)
		require.NoError(t, err)
		require.True(t, ok)

		doc.Items[0].Quantity = 3
		doc.Items = append(doc.Items, domain.CartItem{ProductID: 1, Quantity: 1})
		doc.Version = 2
		ok, err = repo.SaveIfVersion(ctx, doc, 1)
		require.NoError(t, err)
		require.True(t, ok)

		got, err := repo.Get(ctx, "session-1")
		require.NoError(t, err)
		assert.Equal(t, int64(2), got.Version)
		require.Len(t, got.Items, 2)
		assert.Equal(t, 5, got.Items[0].ProductID, "item order is kept")
		assert.Equal(t, 3, got.Items[0].Quantity)
		assert.Equal(t, "AirPods Pro 2nd Gen", got.Items[0].Name)
	})

	t.Run("stale version is refused", func(t *testing.T) {
		repo := newRepo(t)
		ok, err := repo.SaveIfVersion(ctx, Cart("session-1", 1, domain.CartItem{ProductID: 5, Quantity: 1}), 0)
		require.NoError(t, err)
		require.True(t, ok)

		for _, expected := range []int64{0, 2} {
			ok, err = repo.SaveIfVersion(ctx, Cart("session-1", expected+1), expected)
			require.NoError(t, err)
			assert.False(t, ok, "expected version %d", expected)
		}

		got, err := repo.Get(ctx, "session-1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.Version)
		assert.Len(t, got.Items, 1, "stored collection must be unchanged")
	})

	t.Run("sessions are isolated", func(t *testing.T) {
		repo := newRepo(t)
		ok, err := repo.SaveIfVersion(ctx, Cart("session-a", 1, domain.CartItem{ProductID: 2, Quantity: 1}), 0)
		require.NoError(t, err)
		require.True(t, ok)

		_, err = repo.Get(ctx, "session-b")
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("one of many concurrent first writes wins", func(t *testing.T) {
		repo := newRepo(t)
		var (
			wg   sync.WaitGroup
			wins atomic.Int32
		)
		for id := 1; id <= 8; id++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				ok, err := repo.SaveIfVersion(ctx, Cart("session-1", 1, domain.CartItem{ProductID: id, Quantity: 1}), 0)
				assert.NoError(t, err)
				if ok {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("ping", func(t *testing.T) {
		assert.NoError(t, newRepo(t).Ping(ctx))
	})
}
