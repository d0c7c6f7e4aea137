package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params holds the page/limit pair requested by a client. Page is not yet
// clamped to the number of available pages; see Clamp.
type Params struct {
	Page  int
	Limit int
}

// DefaultParams returns the first page with the default limit.
func DefaultParams() Params {
	return Params{Page: 1, Limit: DefaultLimit}
}

// FromRequest reads ?page= and ?limit=. A missing, zero or non-numeric limit
// falls back to DefaultLimit; any other limit is clamped to [1, MaxLimit].
// A missing or non-numeric page is 1.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()
	q := r.URL.Query()

	if v, err := strconv.Atoi(q.Get("page")); err == nil && v != 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v != 0 {
		p.Limit = min(MaxLimit, max(1, v))
	}
	return p
}

// Result is the pagination block returned alongside a page of items.
type Result struct {
	TotalPages int `json:"totalPages"`
	TotalItems int `json:"totalItems"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
}

// Clamp fits the requested page into [1, totalPages] for totalItems items.
// There is always at least one page, even when totalItems is zero.
func (p Params) Clamp(totalItems int) Result {
	limit := p.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}
	totalPages := max(1, (totalItems+limit-1)/limit)
	return Result{
		TotalPages: totalPages,
		TotalItems: totalItems,
		Page:       min(totalPages, max(1, p.Page)),
		Limit:      limit,
	}
}

// Slice returns the items of the page described by res.
func Slice[T any](items []T, res Result) []T {
	start := (res.Page - 1) * res.Limit
	if start >= len(items) {
		return []T{}
	}
	end := min(len(items), start+res.Limit)
	return items[start:end]
}
