package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
)

// WishlistHandler handles HTTP requests for wishlist endpoints.
type WishlistHandler struct {
	service *service.WishlistService
	logger  *slog.Logger
}

// NewWishlistHandler creates a new wishlist HTTP handler.
func NewWishlistHandler(svc *service.WishlistService, logger *slog.Logger) *WishlistHandler {
	return &WishlistHandler{
		service: svc,
		logger:  logger,
	}
}

// ToggleRequest is the JSON request body for toggling a wishlist product.
type ToggleRequest struct {
	ProductID int `json:"productId"`
}

// GetWishlist handles GET /api/wishlist
func (h *WishlistHandler) GetWishlist(w http.ResponseWriter, r *http.Request) {
	wishlist, err := h.service.GetWishlist(r.Context(), middleware.SessionIDFromContext(r.Context()))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, collectionResponse(wishlist))
}

// Toggle handles POST /api/wishlist
func (h *WishlistHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidBody(w)
		return
	}

	wishlist, err := h.service.Toggle(r.Context(), middleware.SessionIDFromContext(r.Context()), req.ProductID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, collectionResponse(wishlist))
}

// RemoveItem handles DELETE /api/wishlist?productId=
func (h *WishlistHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	productID, ok := httputil.ParseProductID(w, r.URL.Query().Get("productId"))
	if !ok {
		return
	}

	wishlist, err := h.service.RemoveItem(r.Context(), middleware.SessionIDFromContext(r.Context()), productID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, collectionResponse(wishlist))
}
