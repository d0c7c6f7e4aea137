package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func up(context.Context) error { return nil }

func failing(msg string) Checker {
	return func(context.Context) error { return errors.New(msg) }
}

func probe(t *testing.T, hf http.HandlerFunc) (int, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	hf.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return rec.Code, resp
}

func TestLiveness(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("redis", failing("never called"))

	code, resp := probe(t, h.LivenessHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
	assert.Empty(t, resp.Checks)
	assert.False(t, resp.Timestamp.IsZero())
}

func TestReadiness(t *testing.T) {
	cases := []struct {
		name     string
		critical Checker
		optional Checker
		code     int
		status   Status
	}{
		{"all up", up, up, http.StatusOK, StatusUp},
		{"broker down", up, failing("kafka unreachable"), http.StatusOK, StatusDegraded},
		{"store down", failing("redis: connection refused"), up, http.StatusServiceUnavailable, StatusDown},
		{"both down", failing("redis: connection refused"), failing("kafka unreachable"), http.StatusServiceUnavailable, StatusDown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHandler()
			h.RegisterCritical("redis", tc.critical)
			h.RegisterNonCritical("kafka", tc.optional)

			code, resp := probe(t, h.ReadinessHandler())
			assert.Equal(t, tc.code, code)
			assert.Equal(t, tc.status, resp.Status)
			require.Len(t, resp.Checks, 2)
			assert.True(t, resp.Checks["redis"].Critical)
			assert.False(t, resp.Checks["kafka"].Critical)
		})
	}
}

func TestReadiness_ReportsCheckError(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("mongodb", failing("server selection timeout"))

	_, resp := probe(t, h.ReadinessHandler())
	check := resp.Checks["mongodb"]
	assert.Equal(t, StatusDown, check.Status)
	assert.Equal(t, "server selection timeout", check.Error)
}

func TestReadiness_NoChecks(t *testing.T) {
	code, resp := probe(t, NewHandler().ReadinessHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, StatusUp, resp.Status)
}

func TestReadiness_ChecksShareDeadline(t *testing.T) {
	h := NewHandler()
	h.timeout = 20 * time.Millisecond
	blocking := func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	h.RegisterCritical("redis", blocking)
	h.RegisterNonCritical("kafka", blocking)

	start := time.Now()
	code, resp := probe(t, h.ReadinessHandler())
	assert.Less(t, time.Since(start), time.Second)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, context.DeadlineExceeded.Error(), resp.Checks["kafka"].Error)
}

func TestRegister_ReplacesByName(t *testing.T) {
	h := NewHandler()
	h.RegisterCritical("file", failing("disk full"))
	h.RegisterNonCritical("file", up)

	code, resp := probe(t, h.ReadinessHandler())
	assert.Equal(t, http.StatusOK, code)
	assert.False(t, resp.Checks["file"].Critical)
}
