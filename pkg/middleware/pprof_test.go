package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

func TestIPAllowlist(t *testing.T) {
	var logs bytes.Buffer
	cidrs := []string{"10.0.0.0/8", " 192.168.1.7 ", "::1/128", "not-a-cidr", "172.16.5.9/12"}
	h := IPAllowlist(cidrs, newTestLogger(&logs))(okHandler())
	assert.Contains(t, logs.String(), "not-a-cidr")

	cases := map[string]int{
		"10.20.30.40:5000":    http.StatusOK,
		"192.168.1.7:5000":    http.StatusOK,
		"192.168.1.8:5000":    http.StatusForbidden,
		"[::1]:5000":          http.StatusOK,
		"[::ffff:10.0.0.1]:1": http.StatusOK,
		"172.31.255.1:80":     http.StatusOK,
		"10.0.0.1":            http.StatusOK,
		"8.8.8.8:53":          http.StatusForbidden,
		"garbage":             http.StatusForbidden,
	}
	for remote, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, want, rec.Code, remote)
		if want == http.StatusForbidden {
			assert.JSONEq(t, `{"error":{"code":"FORBIDDEN","message":"access restricted by IP allowlist"}}`, rec.Body.String())
		}
	}
}

func TestRegisterPprof(t *testing.T) {
	r := chi.NewRouter()
	RegisterPprof(r, []string{"127.0.0.0/8"}, newTestLogger(&bytes.Buffer{}))

	for _, path := range []string{"/debug/pprof/", "/debug/pprof/heap", "/debug/pprof/cmdline", "/debug/pprof/symbol"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "127.0.0.1:1234"
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "203.0.113.4:1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRegisterPprof_DisabledWithoutCIDRs(t *testing.T) {
	r := chi.NewRouter()
	RegisterPprof(r, nil, newTestLogger(&bytes.Buffer{}))

	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil)
	req.RemoteAddr = "127.0.0.1:1234"
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
