package syncer

import "sync"

// Kind is the operation kind a pending marker is scoped to. A pending add of
// a product does not block a remove of the same product.
type Kind string

const (
	KindAdd    Kind = "add"
	KindUpdate Kind = "update"
	KindRemove Kind = "remove"
	KindToggle Kind = "toggle"
	KindClear  Kind = "clear"
)

type marker struct {
	kind Kind
	id   int
}

// Guard tracks which (kind, product id) pairs have a call in flight.
// It is safe for concurrent use.
type Guard struct {
	mu      sync.Mutex
	pending map[marker]struct{}
}

// NewGuard returns an empty guard.
func NewGuard() *Guard {
	return &Guard{pending: make(map[marker]struct{})}
}

// TryBegin marks (kind, id) as pending. It returns false, and changes
// nothing, when the pair is already pending.
func (g *Guard) TryBegin(kind Kind, id int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	m := marker{kind: kind, id: id}
	if _, ok := g.pending[m]; ok {
		return false
	}
	g.pending[m] = struct{}{}
	return true
}

// End releases (kind, id). Releasing a pair that is not pending is a no-op.
func (g *Guard) End(kind Kind, id int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, marker{kind: kind, id: id})
}

// Pending reports whether (kind, id) is in flight.
func (g *Guard) Pending(kind Kind, id int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.pending[marker{kind: kind, id: id}]
	return ok
}

// size returns the number of pairs in flight.
func (g *Guard) size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.pending)
}
