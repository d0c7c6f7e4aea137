package syncer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/remote"
)

func line(id, qty int) domain.CartItem {
	return domain.CartItem{ProductID: id, Quantity: qty}
}

func TestStore_InitialState(t *testing.T) {
	s := newStore[domain.CartItem]()

	st := s.snapshot()
	assert.Equal(t, []domain.CartItem{}, st.Items)
	assert.True(t, st.Loading)
	assert.Empty(t, st.Error)
}

func cartAt(version int64, items ...domain.CartItem) remote.Collection[domain.CartItem] {
	return remote.Collection[domain.CartItem]{Items: items, Version: version}
}

func TestStore_OlderVersionFromConcurrentCallIsDiscarded(t *testing.T) {
	s := newStore[domain.CartItem]()
	first, second := s.issue(), s.issue()

	require.True(t, s.apply(cartAt(5, line(1, 2)), second, true))
	assert.False(t, s.apply(cartAt(4, line(1, 1)), first, true))
	assert.Equal(t, []domain.CartItem{line(1, 2)}, s.snapshot().Items)

	// Replays of the applied version still apply.
	assert.True(t, s.apply(cartAt(5, line(1, 2)), second, true))
}

func TestStore_LaterVersionFromEarlierCallApplies(t *testing.T) {
	s := newStore[domain.CartItem]()
	first, second := s.issue(), s.issue()

	// The server handled second before first.
	require.True(t, s.apply(cartAt(1, line(2, 1)), second, true))
	assert.True(t, s.apply(cartAt(2, line(2, 1), line(1, 1)), first, true))
	assert.Equal(t, []domain.CartItem{line(2, 1), line(1, 1)}, s.snapshot().Items)
}

func TestStore_ServerVersionResetApplies(t *testing.T) {
	s := newStore[domain.CartItem]()
	inFlight := s.issue()
	require.True(t, s.apply(cartAt(7, line(1, 2)), s.issue(), true))

	assert.True(t, s.apply(cartAt(1, line(2, 1)), s.issue(), true))
	assert.Equal(t, []domain.CartItem{line(2, 1)}, s.snapshot().Items)

	// Calls sent before the reset was seen describe the old document.
	assert.False(t, s.apply(cartAt(8, line(1, 3)), inFlight, true))
	assert.Equal(t, []domain.CartItem{line(2, 1)}, s.snapshot().Items)
}

func TestStore_RevertRestoresLastServerItems(t *testing.T) {
	s := newStore[domain.CartItem]()
	s.apply(remote.Collection[domain.CartItem]{Items: []domain.CartItem{line(1, 2), line(2, 1)}, Version: 1}, s.issue(), true)

	s.patch(func(items []domain.CartItem) []domain.CartItem { return domain.Without(items, 1) })
	assert.Equal(t, []domain.CartItem{line(2, 1)}, s.snapshot().Items)

	s.revert("Failed to remove from cart")
	st := s.snapshot()
	assert.Equal(t, []domain.CartItem{line(1, 2), line(2, 1)}, st.Items)
	assert.Equal(t, "Failed to remove from cart", st.Error)
}

func TestStore_LoadingTracksFetches(t *testing.T) {
	s := newStore[domain.CartItem]()

	s.beginLoad(true)
	s.beginLoad(false)
	s.settleFetch(&remote.Collection[domain.CartItem]{Items: []domain.CartItem{}}, s.issue(), "")
	s.endLoad()
	assert.True(t, s.snapshot().Loading)

	s.settleFetch(nil, s.issue(), "Failed to load cart")
	s.endLoad()
	st := s.snapshot()
	assert.False(t, st.Loading)
	assert.Equal(t, "Failed to load cart", st.Error)
}

func TestStore_InitialLoadingUntilAFetchSettles(t *testing.T) {
	s := newStore[domain.CartItem]()

	s.beginLoad(true)
	s.endLoad()
	assert.True(t, s.snapshot().Loading, "an abandoned wait does not end the initial load")

	s.settleFetch(&remote.Collection[domain.CartItem]{Items: []domain.CartItem{line(1, 1)}}, s.issue(), "")
	assert.False(t, s.snapshot().Loading)
}

func TestStore_FailKeepsItems(t *testing.T) {
	s := newStore[domain.CartItem]()
	s.apply(remote.Collection[domain.CartItem]{Items: []domain.CartItem{line(1, 2)}}, s.issue(), true)
	s.patch(func(items []domain.CartItem) []domain.CartItem { return domain.WithQuantity(items, 1, 5) })

	s.fail("Item not in cart")
	st := s.snapshot()
	assert.Equal(t, []domain.CartItem{line(1, 5)}, st.Items)
	assert.Equal(t, "Item not in cart", st.Error)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := newStore[domain.CartItem]()
	s.apply(remote.Collection[domain.CartItem]{Items: []domain.CartItem{line(1, 2)}}, s.issue(), true)

	st := s.snapshot()
	st.Items[0].Quantity = 99

	assert.Equal(t, 2, s.snapshot().Items[0].Quantity)
}

func TestStore_SubscribeSeesLatest(t *testing.T) {
	s := newStore[domain.CartItem]()
	ch, cancel := s.subscribe()
	defer cancel()

	first := <-ch
	assert.True(t, first.Loading)

	s.apply(remote.Collection[domain.CartItem]{Items: []domain.CartItem{line(1, 1)}, Version: 1}, s.issue(), true)
	s.apply(remote.Collection[domain.CartItem]{Items: []domain.CartItem{line(1, 3)}, Version: 2}, s.issue(), true)

	got := <-ch
	assert.Equal(t, []domain.CartItem{line(1, 3)}, got.Items)
}

func TestStore_CloseStopsUpdates(t *testing.T) {
	s := newStore[domain.CartItem]()
	ch, cancel := s.subscribe()
	<-ch

	s.close()
	_, open := <-ch
	assert.False(t, open)
	cancel()

	s.apply(remote.Collection[domain.CartItem]{Items: []domain.CartItem{line(1, 1)}}, s.issue(), true)
	s.revert("boom")
	assert.Empty(t, s.snapshot().Items)
	assert.Empty(t, s.snapshot().Error)

	late, _ := s.subscribe()
	_, open = <-late
	assert.False(t, open)
}
