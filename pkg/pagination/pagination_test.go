package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
}

func TestFromRequest_Defaults(t *testing.T) {
	p := FromRequest(httptest.NewRequest(http.MethodGet, "/api/products", nil))
	assert.Equal(t, DefaultParams(), p)
}

func TestFromRequest_CustomValues(t *testing.T) {
	p := FromRequest(httptest.NewRequest(http.MethodGet, "/api/products?page=3&limit=2", nil))
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 2, p.Limit)
}

func TestFromRequest_Limit(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{query: "limit=200", want: 100},
		{query: "limit=100", want: 100},
		{query: "limit=0", want: 10},
		{query: "limit=-5", want: 1},
		{query: "limit=abc", want: 10},
	}
	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			p := FromRequest(httptest.NewRequest(http.MethodGet, "/api/products?"+tc.query, nil))
			assert.Equal(t, tc.want, p.Limit)
		})
	}
}

func TestFromRequest_PageNotNumber(t *testing.T) {
	p := FromRequest(httptest.NewRequest(http.MethodGet, "/api/products?page=abc", nil))
	assert.Equal(t, 1, p.Page)
}

func TestClamp(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		total  int
		want   Result
	}{
		{"first page", Params{Page: 1, Limit: 4}, 9, Result{TotalPages: 3, TotalItems: 9, Page: 1, Limit: 4}},
		{"page past end", Params{Page: 7, Limit: 4}, 9, Result{TotalPages: 3, TotalItems: 9, Page: 3, Limit: 4}},
		{"negative page", Params{Page: -2, Limit: 4}, 9, Result{TotalPages: 3, TotalItems: 9, Page: 1, Limit: 4}},
		{"empty", Params{Page: 3, Limit: 10}, 0, Result{TotalPages: 1, TotalItems: 0, Page: 1, Limit: 10}},
		{"exact fit", Params{Page: 2, Limit: 5}, 10, Result{TotalPages: 2, TotalItems: 10, Page: 2, Limit: 5}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.params.Clamp(tc.total))
		})
	}
}

func TestSlice(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 101, 102, 103, 104}

	assert.Equal(t, []int{1, 2, 3, 4}, Slice(items, Result{Page: 1, Limit: 4}))
	assert.Equal(t, []int{104}, Slice(items, Result{Page: 3, Limit: 4}))
	assert.Equal(t, []int{}, Slice([]int{}, Result{Page: 1, Limit: 10}))
}
