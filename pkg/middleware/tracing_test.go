package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/utafrali/storefront/pkg/tracing/tracingtest"
)

func tracedRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(Tracing("storefront"))
	r.Get("/api/cart", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Delete("/api/cart", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	return r
}

func attr(span sdktrace.ReadOnlySpan, key string) (attribute.Value, bool) {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestTracing_SpanPerRequest(t *testing.T) {
	exporter := tracingtest.Install(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart?productId=5", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "sess-9"})
	rec := httptest.NewRecorder()
	tracedRouter().ServeHTTP(rec, req)

	spans := exporter.GetSpans().Snapshots()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "GET /api/cart", span.Name())
	assert.Equal(t, codes.Unset, span.Status().Code)

	status, ok := attr(span, "http.status_code")
	require.True(t, ok)
	assert.Equal(t, int64(200), status.AsInt64())
	session, ok := attr(span, "storefront.session_id")
	require.True(t, ok)
	assert.Equal(t, "sess-9", session.AsString())
	assert.NotEmpty(t, rec.Header().Get("traceparent"))
}

func TestTracing_ServerErrorMarksSpan(t *testing.T) {
	exporter := tracingtest.Install(t)

	tracedRouter().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/cart", nil))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func TestTracing_ContinuesCallerTrace(t *testing.T) {
	exporter := tracingtest.Install(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	req.Header.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")
	tracedRouter().ServeHTTP(httptest.NewRecorder(), req)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "4bf92f3577b34da6a3ce929d0e0e4736", spans[0].SpanContext.TraceID().String())
	assert.Equal(t, "00f067aa0ba902b7", spans[0].Parent.SpanID().String())
}
