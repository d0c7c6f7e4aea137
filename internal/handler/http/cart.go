package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	service *service.CartService
	logger  *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(svc *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// AddItemRequest is the JSON request body for adding a product to the cart.
// A missing quantity adds one unit.
type AddItemRequest struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity" validate:"gte=0,lte=100"`
}

// UpdateQuantityRequest is the JSON request body for setting a line quantity.
// Both fields must be present; a quantity of zero or less removes the line.
type UpdateQuantityRequest struct {
	ProductID *int `json:"productId" validate:"required"`
	Quantity  *int `json:"quantity" validate:"required"`
}

// CollectionResponse is the body of every successful collection call.
type CollectionResponse[T domain.Item] struct {
	Items   []T   `json:"items"`
	Version int64 `json:"version"`
}

func collectionResponse[T domain.Item](doc *domain.Document[T]) CollectionResponse[T] {
	return CollectionResponse[T]{Items: domain.Clone(doc.Items), Version: doc.Version}
}

// --- Handlers ---

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.GetCart(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, collectionResponse(cart))
}

// AddItem handles POST /api/cart
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}
	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	cart, err := h.service.AddItem(r.Context(), middleware.SessionIDFromContext(r.Context()), service.AddItemInput{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, collectionResponse(cart))
}

// UpdateItemQuantity handles PUT /api/cart
func (h *CartHandler) UpdateItemQuantity(w http.ResponseWriter, r *http.Request) {
	var req UpdateQuantityRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		writeBadRequest(w, "productId and quantity required")
		return
	}

	cart, err := h.service.UpdateItemQuantity(r.Context(), middleware.SessionIDFromContext(r.Context()), *req.ProductID, *req.Quantity)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, collectionResponse(cart))
}

// RemoveItem handles DELETE /api/cart?productId=
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseProductID(w, r.URL.Query().Get("productId"))
	if !ok {
		return
	}

	cart, err := h.service.RemoveItem(r.Context(), middleware.SessionIDFromContext(r.Context()), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, collectionResponse(cart))
}

// ClearCart handles DELETE /api/cart/items
func (h *CartHandler) ClearCart(w http.ResponseWriter, r *http.Request) {
	cart, err := h.service.ClearCart(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, collectionResponse(cart))
}
