package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/tracing/tracingtest"
)

func plainDoer(t *testing.T) httpclient.Doer {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	cfg := httpclient.DefaultConfig()
	cfg.Timeout = 5 * time.Second
	cfg.MaxRetries = 0
	cfg.Jar = jar
	return httpclient.New(cfg)
}

func fakeServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func writeBody(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestFetchAll_Success(t *testing.T) {
	srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/cart", r.URL.Path)
		writeBody(w, http.StatusOK, `{"items":[{"productId":5,"name":"AirPods Pro 2nd Gen","price":"$240.00","image":"/a.png","quantity":2}],"version":4}`)
	})
	client := NewCartClient(plainDoer(t), srv.URL+"/", logger.Discard())

	got, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), got.Version)
	require.Len(t, got.Items, 1)
	assert.Equal(t, domain.CartItem{ProductID: 5, Name: "AirPods Pro 2nd Gen", Price: "$240.00", Image: "/a.png", Quantity: 2}, got.Items[0])
}

func TestFetchAll_ServerErrorIsLoadFailed(t *testing.T) {
	srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusInternalServerError, `{"error":{"code":"INTERNAL_ERROR","message":"boom"}}`)
	})
	client := NewWishlistClient(plainDoer(t), srv.URL, logger.Discard())

	_, err := client.FetchAll(context.Background())

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Failed to load wishlist", appErr.Message)
	assert.ErrorIs(t, err, apperrors.ErrLoadFailed)
}

func TestFetchAll_TransportErrorIsLoadFailed(t *testing.T) {
	srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {})
	url := srv.URL
	srv.Close()

	_, err := NewCartClient(plainDoer(t), url, logger.Discard()).FetchAll(context.Background())
	assert.ErrorIs(t, err, apperrors.ErrLoadFailed)
}

func TestFetchAll_RejectsMalformedPayloads(t *testing.T) {
	bodies := map[string]string{
		"not json":           `<html>`,
		"missing items":      `{"version":1}`,
		"null items":         `{"items":null}`,
		"duplicate product":  `{"items":[{"productId":1,"quantity":1},{"productId":1,"quantity":2}]}`,
		"zero quantity":      `{"items":[{"productId":1,"quantity":0}]}`,
		"non-positive id":    `{"items":[{"productId":0,"quantity":1}]}`,
		"negative version":   `{"items":[],"version":-1}`,
		"string quantity":    `{"items":[{"productId":1,"quantity":"2"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeBody(w, http.StatusOK, body)
			})
			_, err := NewCartClient(plainDoer(t), srv.URL, logger.Discard()).FetchAll(context.Background())
			assert.ErrorIs(t, err, apperrors.ErrLoadFailed)
		})
	}
}

func TestAdd_MalformedPayloadIsMutationFailed(t *testing.T) {
	srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusCreated, `{"items":[{"productId":1,"quantity":1},{"productId":1,"quantity":1}]}`)
	})

	_, err := NewCartClient(plainDoer(t), srv.URL, logger.Discard()).Add(context.Background(), 1, 1)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Failed to add to cart", appErr.Message)
	assert.ErrorIs(t, err, apperrors.ErrMutationFailed)
}

func TestAdd_SendsBody(t *testing.T) {
	srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]int
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, map[string]int{"productId": 3, "quantity": 2}, body)
		writeBody(w, http.StatusCreated, `{"items":[{"productId":3,"quantity":2}],"version":1}`)
	})

	got, err := NewCartClient(plainDoer(t), srv.URL, logger.Discard()).Add(context.Background(), 3, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Items[0].Quantity)
}

func TestMutations_KeepServerMessageFor404And400(t *testing.T) {
	srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			writeBody(w, http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"Product not found"}}`)
		case http.MethodPut:
			writeBody(w, http.StatusBadRequest, `{"error":{"code":"INVALID_INPUT","message":"productId and quantity required"}}`)
		case http.MethodDelete:
			// Older servers reply with a bare string.
			writeBody(w, http.StatusNotFound, `{"error":"Item not in cart"}`)
		}
	})
	client := NewCartClient(plainDoer(t), srv.URL, logger.Discard())
	ctx := context.Background()

	_, err := client.Add(ctx, 999, 1)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Product not found", appErr.Message)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = client.SetQuantity(ctx, 5, 1)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "productId and quantity required", appErr.Message)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = client.Remove(ctx, 5)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Item not in cart", appErr.Message)
}

func TestAddAndToggle_BadRequestIsMutationFailed(t *testing.T) {
	srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusBadRequest, `{"error":{"code":"INVALID_INPUT","message":"quantity must be at most 100"}}`)
	})
	ctx := context.Background()

	_, err := NewCartClient(plainDoer(t), srv.URL, logger.Discard()).Add(ctx, 5, 500)
	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Failed to add to cart", appErr.Message)
	assert.ErrorIs(t, err, apperrors.ErrMutationFailed)

	_, err = NewWishlistClient(plainDoer(t), srv.URL, logger.Discard()).Toggle(ctx, 101)
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Failed to update wishlist", appErr.Message)
	assert.ErrorIs(t, err, apperrors.ErrMutationFailed)
}

func TestMutations_ServerErrorIsMutationFailed(t *testing.T) {
	srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeBody(w, http.StatusInternalServerError, `{"error":{"code":"INTERNAL_ERROR","message":"disk full"}}`)
	})
	ctx := context.Background()

	cart := NewCartClient(plainDoer(t), srv.URL, logger.Discard())
	wishlist := NewWishlistClient(plainDoer(t), srv.URL, logger.Discard())

	cases := []struct {
		call func() error
		want string
	}{
		{func() error { _, err := cart.SetQuantity(ctx, 1, 2); return err }, "Failed to update cart"},
		{func() error { _, err := cart.Remove(ctx, 1); return err }, "Failed to remove from cart"},
		{func() error { _, err := cart.Clear(ctx); return err }, "Failed to clear cart"},
		{func() error { _, err := wishlist.Toggle(ctx, 101); return err }, "Failed to update wishlist"},
		{func() error { _, err := wishlist.Remove(ctx, 101); return err }, "Failed to remove from wishlist"},
	}
	for _, tc := range cases {
		err := tc.call()
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, tc.want, appErr.Message)
		assert.ErrorIs(t, err, apperrors.ErrMutationFailed)
	}
}

func TestCircuitBreakerServerErrorsAreMapped(t *testing.T) {
	srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			writeBody(w, http.StatusServiceUnavailable, `{"error":{"code":"SERVICE_UNAVAILABLE","message":"draining"}}`)
			return
		}
		writeBody(w, http.StatusInternalServerError, `{"error":"boom"}`)
	})
	doer := NewTransport(TransportConfig{Timeout: time.Second, MaxRetries: 0, Breaker: "remote-test"}, nil, logger.Discard())
	client := NewCartClient(doer, srv.URL, logger.Discard())
	ctx := context.Background()

	_, err := client.FetchAll(ctx)
	assert.ErrorIs(t, err, apperrors.ErrLoadFailed)

	_, err = client.Add(ctx, 1, 1)
	assert.ErrorIs(t, err, apperrors.ErrMutationFailed)
}

func TestRemoveAndClearPaths(t *testing.T) {
	var seen []string
	srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.RequestURI())
		writeBody(w, http.StatusOK, `{"items":[],"version":2}`)
	})
	client := NewCartClient(plainDoer(t), srv.URL, logger.Discard())
	ctx := context.Background()

	_, err := client.Remove(ctx, 7)
	require.NoError(t, err)
	_, err = client.Clear(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{"DELETE /api/cart?productId=7", "DELETE /api/cart/items"}, seen)
}

func TestCookiesAndCorrelationIDTravel(t *testing.T) {
	var calls atomic.Int32
	srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.SetCookie(w, &http.Cookie{Name: "user_session_id", Value: "abc", Path: "/"})
		} else {
			c, err := r.Cookie("user_session_id")
			require.NoError(t, err)
			assert.Equal(t, "abc", c.Value)
			assert.Equal(t, "corr-1", r.Header.Get("X-Correlation-ID"))
		}
		writeBody(w, http.StatusOK, `{"items":[]}`)
	})
	client := NewWishlistClient(plainDoer(t), srv.URL, logger.Discard())

	_, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	_, err = client.FetchAll(logger.WithCorrelationID(context.Background(), "corr-1"))
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestCall_TracesAndPropagates(t *testing.T) {
	exporter := tracingtest.Install(t)

	var traceparent atomic.Value
	srv := fakeServer(t, func(w http.ResponseWriter, r *http.Request) {
		traceparent.Store(r.Header.Get("traceparent"))
		if r.Method == http.MethodDelete {
			writeBody(w, http.StatusNotFound, `{"error":{"code":"NOT_FOUND","message":"Item not in cart"}}`)
			return
		}
		writeBody(w, http.StatusOK, `{"items":[],"version":2}`)
	})
	client := NewCartClient(plainDoer(t), srv.URL, logger.Discard())

	_, err := client.FetchAll(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, traceparent.Load())

	_, err = client.Remove(context.Background(), 5)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, []string{"cart.load", "cart.remove"}, tracingtest.Names(exporter))
	assert.Equal(t, codes.Unset, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.Int64("storefront.version", 2))
	assert.Equal(t, codes.Error, spans[1].Status.Code)
}
