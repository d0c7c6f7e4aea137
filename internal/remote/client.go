// Package remote is the client side of the storefront collection API. Every
// successful call returns the whole collection as the server stored it.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/httpclient"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/tracing"
	"github.com/utafrali/storefront/pkg/validator"
)

const maxResponseBytes = 1 << 20

// Collection is the body of every successful collection call.
type Collection[T domain.Item] struct {
	Items   []T   `json:"items" validate:"required,unique=ProductID,dive"`
	Version int64 `json:"version" validate:"gte=0"`
}

// opMessages per kind, matching what storefront pages display.
var opMessages = map[string]map[string]string{
	repository.KindCart: {
		"load":   "Failed to load cart",
		"add":    "Failed to add to cart",
		"update": "Failed to update cart",
		"remove": "Failed to remove from cart",
		"clear":  "Failed to clear cart",
	},
	repository.KindWishlist: {
		"load":   "Failed to load wishlist",
		"add":    "Failed to update wishlist",
		"toggle": "Failed to update wishlist",
		"remove": "Failed to remove from wishlist",
	},
}

// Client calls the collection endpoints of one kind (cart or wishlist).
// Session cookies travel through the jar of the underlying Doer.
type Client[T domain.Item] struct {
	doer    httpclient.Doer
	baseURL string
	kind    string
	logger  *slog.Logger
}

// NewClient creates a client for /api/{kind} under baseURL.
func NewClient[T domain.Item](doer httpclient.Doer, baseURL, kind string, logger *slog.Logger) *Client[T] {
	return &Client[T]{
		doer:    doer,
		baseURL: strings.TrimRight(baseURL, "/"),
		kind:    kind,
		logger:  logger,
	}
}

// NewCartClient creates a client for /api/cart.
func NewCartClient(doer httpclient.Doer, baseURL string, logger *slog.Logger) *Client[domain.CartItem] {
	return NewClient[domain.CartItem](doer, baseURL, repository.KindCart, logger)
}

// NewWishlistClient creates a client for /api/wishlist.
func NewWishlistClient(doer httpclient.Doer, baseURL string, logger *slog.Logger) *Client[domain.WishlistItem] {
	return NewClient[domain.WishlistItem](doer, baseURL, repository.KindWishlist, logger)
}

// Kind returns the collection kind the client talks to.
func (c *Client[T]) Kind() string {
	return c.kind
}

type addRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity,omitempty"`
}

type setQuantityRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// FetchAll reads the collection. Any failure is a LoadFailed error.
func (c *Client[T]) FetchAll(ctx context.Context) (Collection[T], error) {
	return c.call(ctx, "load", http.MethodGet, "", nil)
}

// Add inserts productID, or increments it by quantity when present.
// A quantity below 1 lets the server add one unit.
func (c *Client[T]) Add(ctx context.Context, productID, quantity int) (Collection[T], error) {
	return c.call(ctx, "add", http.MethodPost, "", addRequest{ProductID: productID, Quantity: quantity})
}

// SetQuantity sets the quantity of a cart line. A quantity of zero or less
// removes it.
func (c *Client[T]) SetQuantity(ctx context.Context, productID, quantity int) (Collection[T], error) {
	return c.call(ctx, "update", http.MethodPut, "", setQuantityRequest{ProductID: productID, Quantity: quantity})
}

// Remove deletes productID. The server reports NotFound when it is absent.
func (c *Client[T]) Remove(ctx context.Context, productID int) (Collection[T], error) {
	q := url.Values{"productId": {strconv.Itoa(productID)}}
	return c.call(ctx, "remove", http.MethodDelete, "?"+q.Encode(), nil)
}

// Toggle flips wishlist membership of productID. The server decides.
func (c *Client[T]) Toggle(ctx context.Context, productID int) (Collection[T], error) {
	return c.call(ctx, "toggle", http.MethodPost, "", addRequest{ProductID: productID})
}

// Clear empties the cart.
func (c *Client[T]) Clear(ctx context.Context) (Collection[T], error) {
	return c.call(ctx, "clear", http.MethodDelete, "/items", nil)
}

// call wraps do in a client span named after the kind and operation.
func (c *Client[T]) call(ctx context.Context, op, method, suffix string, body any) (Collection[T], error) {
	ctx, span := tracing.Tracer("remote").Start(ctx, c.kind+"."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("storefront.kind", c.kind),
			attribute.String("storefront.op", op),
		),
	)
	defer span.End()

	out, err := c.do(ctx, op, method, suffix, body)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}
	span.SetAttributes(
		attribute.Int64("storefront.version", out.Version),
		attribute.Int("storefront.items", len(out.Items)),
	)
	return out, nil
}

func (c *Client[T]) do(ctx context.Context, op, method, suffix string, body any) (Collection[T], error) {
	var out Collection[T]

	req, err := c.newRequest(ctx, method, "/api/"+c.kind+suffix, body)
	if err != nil {
		return out, c.fail(ctx, op, err)
	}

	resp, err := c.doer.Do(ctx, req)
	if err != nil {
		var serverErr *httpclient.ServerError
		if errors.As(err, &serverErr) {
			err = httpclient.ParseErrorBody(serverErr.Status, serverErr.Body, c.kind)
		}
		return out, c.fail(ctx, op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, c.fail(ctx, op, httpclient.ParseResponseError(resp, c.kind))
	}
	defer func() { _ = resp.Body.Close() }()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return Collection[T]{}, c.fail(ctx, op, fmt.Errorf("decode %s response: %w", c.kind, err))
	}
	if err := validator.Validate(out); err != nil {
		return Collection[T]{}, c.fail(ctx, op, fmt.Errorf("invalid %s response: %w", c.kind, err))
	}
	return out, nil
}

// fail maps a failed call onto the collection error taxonomy. A failed read
// is always LoadFailed. A write rejected with 404 keeps the server's message,
// as does a 400 on update or remove; any other write failure is
// MutationFailed.
func (c *Client[T]) fail(ctx context.Context, op string, err error) error {
	msg := c.message(op)

	if op == "load" {
		c.logger.WarnContext(ctx, "collection fetch failed", slog.String("kind", c.kind), slog.String("error", err.Error()))
		return apperrors.LoadFailed(msg, err)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && (errors.Is(err, apperrors.ErrNotFound) || (keepsInvalidInput(op) && errors.Is(err, apperrors.ErrInvalidInput))) {
		return appErr
	}
	c.logger.WarnContext(ctx, "collection mutation failed",
		slog.String("kind", c.kind),
		slog.String("op", op),
		slog.String("error", err.Error()),
	)
	return apperrors.MutationFailed(msg, err)
}

func keepsInvalidInput(op string) bool {
	return op == "update" || op == "remove"
}

func (c *Client[T]) message(op string) string {
	if msg, ok := opMessages[c.kind][op]; ok {
		return msg
	}
	return "Failed to update " + c.kind
}

func (c *Client[T]) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	return newJSONRequest(ctx, method, c.baseURL+path, body)
}

func newJSONRequest(ctx context.Context, method, target string, body any) (*http.Request, error) {
	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		req.Header.Set("X-Correlation-ID", id)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	return req, nil
}
