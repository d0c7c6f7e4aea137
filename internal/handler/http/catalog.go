package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/utafrali/storefront/internal/catalog"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/pagination"
)

// CatalogHandler serves the read-only product, order and stats endpoints.
type CatalogHandler struct {
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(c *catalog.Catalog, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: c, logger: logger}
}

// OrdersResponse is the body of GET /api/orders.
type OrdersResponse struct {
	Orders []domain.Order `json:"orders"`
}

// StatsResponse is the body of GET /api/stats.
type StatsResponse struct {
	Stats domain.Stats `json:"stats"`
}

// DashboardResponse is the body of GET /api/dashboard.
type DashboardResponse struct {
	Email  string         `json:"email"`
	Stats  domain.Stats   `json:"stats"`
	Orders []domain.Order `json:"orders"`
}

// ListProducts handles GET /api/products?featured=&page=&limit=
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	var f catalog.Filter
	if v := r.URL.Query().Get("featured"); v != "" {
		featured, err := strconv.ParseBool(v)
		if err != nil {
			writeBadRequest(w, "featured must be true or false")
			return
		}
		f.Featured = &featured
	}

	httputil.WriteJSON(w, http.StatusOK, h.catalog.List(f, pagination.FromRequest(r)))
}

// ListOrders handles GET /api/orders
func (h *CatalogHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, OrdersResponse{Orders: h.catalog.Orders()})
}

// GetStats handles GET /api/stats
func (h *CatalogHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, StatsResponse{Stats: h.catalog.Stats()})
}

// Dashboard handles GET /api/dashboard. It runs behind the Auth middleware.
func (h *CatalogHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, DashboardResponse{
		Email:  middleware.EmailFromContext(r.Context()),
		Stats:  h.catalog.Stats(),
		Orders: h.catalog.Orders(),
	})
}
