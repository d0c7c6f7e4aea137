package syncer

import (
	"sync"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/remote"
)

// State is what readers of a synchronizer see. Error is empty when the last
// operation or fetch succeeded.
type State[T domain.Item] struct {
	Items   []T
	Loading bool
	Error   string
}

// store holds the published state of one synchronizer. Every method is a
// no-op once the store is closed.
type store[T domain.Item] struct {
	mu sync.Mutex

	items []T
	err   string

	// initial is true until the first fetch settles.
	initial bool
	loads   int

	// authoritative is the last server collection applied and version its
	// document version. issued counts server calls in the order they were
	// sent; appliedAt is issued when authoritative was applied. Calls up to
	// floor were sent before the server was last seen to reset.
	authoritative []T
	version       int64
	issued        uint64
	appliedAt     uint64
	floor         uint64

	closed  bool
	subs    map[int]chan State[T]
	nextSub int
}

func newStore[T domain.Item]() *store[T] {
	return &store[T]{
		items:         []T{},
		authoritative: []T{},
		initial:       true,
		subs:          make(map[int]chan State[T]),
	}
}

func (s *store[T]) snapshot() State[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *store[T]) stateLocked() State[T] {
	return State[T]{
		Items:   domain.Clone(s.items),
		Loading: s.initial || s.loads > 0,
		Error:   s.err,
	}
}

func (s *store[T]) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// patch publishes a locally predicted collection.
func (s *store[T]) patch(predict func(items []T) []T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.items = predict(domain.Clone(s.items))
	s.notifyLocked()
}

// issue stamps a server call that is about to be sent.
func (s *store[T]) issue() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// apply publishes the collection returned by call seq unless it is stale.
// A collection is stale when its version is older than the applied one and
// the call was sent while the applied collection was still pending; the
// server processed it first. An older version answering a call sent after
// the applied collection arrived means the server document was recreated
// (expired or wiped), so it applies and every call sent before is dropped.
// It reports whether the collection was applied.
func (s *store[T]) apply(c remote.Collection[T], seq uint64, clearErr bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	applied := s.applyLocked(c, seq)
	if clearErr {
		s.err = ""
	}
	s.notifyLocked()
	return applied
}

func (s *store[T]) applyLocked(c remote.Collection[T], seq uint64) bool {
	if seq <= s.floor {
		return false
	}
	if c.Version < s.version {
		if seq <= s.appliedAt {
			return false
		}
		s.floor = s.appliedAt
	}
	s.items = domain.Clone(c.Items)
	s.authoritative = domain.Clone(c.Items)
	s.version = c.Version
	s.appliedAt = s.issued
	return true
}

// revert drops any local prediction and records a failure message.
func (s *store[T]) revert(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.items = domain.Clone(s.authoritative)
	s.err = msg
	s.notifyLocked()
}

// fail records a failure message without touching items.
func (s *store[T]) fail(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.err = msg
	s.notifyLocked()
}

// beginLoad marks a caller as waiting on a fetch.
func (s *store[T]) beginLoad(clearErr bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.loads++
	if clearErr {
		s.err = ""
	}
	s.notifyLocked()
}

// endLoad releases a caller counted by beginLoad.
func (s *store[T]) endLoad() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.loads = max(0, s.loads-1)
	s.notifyLocked()
}

// settleFetch records the outcome of fetch seq: a fetched collection is
// applied, a failed fetch replaces the error message. It reports whether a
// fetched collection was applied.
func (s *store[T]) settleFetch(c *remote.Collection[T], seq uint64, failMsg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}

	s.initial = false
	applied := false
	if c != nil {
		applied = s.applyLocked(*c, seq)
	} else {
		s.err = failMsg
	}
	s.notifyLocked()
	return applied
}

// subscribe returns a channel that receives the latest state after every
// change. Slow readers only see the most recent state.
func (s *store[T]) subscribe() (<-chan State[T], func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan State[T], 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.stateLocked()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *store[T]) notifyLocked() {
	if len(s.subs) == 0 {
		return
	}
	st := s.stateLocked()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		ch <- st
	}
}

// close detaches the store. Subscriptions are closed.
func (s *store[T]) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}
