package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func sessionRequest(sessionID string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.RemoteAddr = "10.0.0.1:12345"
	if sessionID != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
	}
	return req
}

func TestRateLimit_WithinBurstPasses(t *testing.T) {
	handler := Session(false)(RateLimit(10, 10, newTestLogger(&bytes.Buffer{}))(okHandler()))

	for i := 0; i < 5; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, sessionRequest("s-1"))
		assert.Equal(t, http.StatusOK, rr.Code, "request %d", i+1)
	}
}

func TestRateLimit_ExceedingBurstReturns429(t *testing.T) {
	var buf bytes.Buffer
	handler := Session(false)(RateLimit(0.001, 2, newTestLogger(&buf))(okHandler()))

	codes := make([]int, 0, 3)
	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = httptest.NewRecorder()
		handler.ServeHTTP(last, sessionRequest("s-1"))
		codes = append(codes, last.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.JSONEq(t, `{"error":{"code":"RATE_LIMITED","message":"too many requests"}}`, last.Body.String())
	assert.Equal(t, "1", last.Header().Get("Retry-After"))
	assert.Contains(t, buf.String(), "rate limit exceeded")
}

func TestRateLimit_SessionsAreIndependent(t *testing.T) {
	handler := Session(false)(RateLimit(0.001, 1, newTestLogger(&bytes.Buffer{}))(okHandler()))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, sessionRequest("s-1"))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, sessionRequest("s-1"))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	// Same IP, different session.
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, sessionRequest("s-2"))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestRateLimit_FallsBackToClientIP(t *testing.T) {
	handler := RateLimit(0.001, 1, newTestLogger(&bytes.Buffer{}))(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, sessionRequest(""))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, sessionRequest(""))
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestRateLimit_DisabledWhenRPSNotPositive(t *testing.T) {
	handler := RateLimit(0, 0, newTestLogger(&bytes.Buffer{}))(okHandler())

	for i := 0; i < 20; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, sessionRequest(""))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
}

func TestVisitorStore_SweepsIdleEntries(t *testing.T) {
	store := newVisitorStore(1, 1, time.Minute)
	now := time.Now()
	store.nowFunc = func() time.Time { return now }
	store.lastSweep = now

	store.limiter("a")
	store.limiter("b")
	assert.Equal(t, 2, store.len())

	now = now.Add(2 * time.Minute)
	store.limiter("c")
	assert.Equal(t, 1, store.len(), "idle entries evicted, fresh one kept")
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		xri    string
		remote string
		want   string
	}{
		{"forwarded chain", "203.0.113.7, 10.0.0.1", "", "10.0.0.9:1", "203.0.113.7"},
		{"real ip", "", "198.51.100.2", "10.0.0.9:1", "198.51.100.2"},
		{"garbage forwarded", "nope", "", "10.0.0.9:1", "10.0.0.9"},
		{"remote addr", "", "", "192.0.2.1:443", "192.0.2.1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
