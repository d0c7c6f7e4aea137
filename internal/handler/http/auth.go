package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/storefront/internal/service"
	"github.com/utafrali/storefront/pkg/httputil"
	"github.com/utafrali/storefront/pkg/middleware"
	"github.com/utafrali/storefront/pkg/validator"
)

const rememberMeMaxAge = 7 * 24 * time.Hour

// AuthHandler handles dashboard login and logout.
type AuthHandler struct {
	service       *service.AuthService
	secureCookies bool
	logger        *slog.Logger
}

// NewAuthHandler creates a new auth HTTP handler.
func NewAuthHandler(svc *service.AuthService, secureCookies bool, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service:       svc,
		secureCookies: secureCookies,
		logger:        logger,
	}
}

// LoginRequest is the JSON request body for POST /api/auth/login.
type LoginRequest struct {
	Email      string `json:"email" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe"`
}

// OKResponse acknowledges a login or logout.
type OKResponse struct {
	OK bool `json:"ok"`
}

// Login handles POST /api/auth/login. The token is set as an httpOnly cookie;
// without rememberMe it lives for the browser session only.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			writeBadRequest(w, "Email and password are required")
			return
		}
		writeBadRequest(w, "Invalid request")
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	cookie := &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	if req.RememberMe {
		cookie.MaxAge = int(rememberMeMaxAge.Seconds())
	}
	http.SetCookie(w, cookie)

	httputil.WriteJSON(w, http.StatusOK, OKResponse{OK: true})
}

// Logout handles POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})

	httputil.WriteJSON(w, http.StatusOK, OKResponse{OK: true})
}
