package service

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// TokenIssuer signs dashboard tokens.
type TokenIssuer interface {
	Generate(email string) (string, error)
}

// Credentials is the static dashboard login. An empty Email accepts any
// non-empty email and password pair.
type Credentials struct {
	Email    string
	Password string
}

// AuthService checks dashboard logins and issues tokens.
type AuthService struct {
	tokens TokenIssuer
	creds  Credentials
	logger *slog.Logger
}

// NewAuthService creates a new auth service.
func NewAuthService(tokens TokenIssuer, creds Credentials, logger *slog.Logger) *AuthService {
	return &AuthService{
		tokens: tokens,
		creds:  creds,
		logger: logger,
	}
}

// Login validates the credentials and returns a signed token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", apperrors.InvalidInput("Email and password are required")
	}

	if s.creds.Email != "" {
		emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(s.creds.Email)) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.creds.Password)) == 1
		if !emailOK || !passOK {
			s.logger.WarnContext(ctx, "dashboard login rejected", slog.String("email", email))
			return "", apperrors.Unauthorized("Invalid email or password")
		}
	}

	token, err := s.tokens.Generate(email)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	s.logger.InfoContext(ctx, "dashboard login", slog.String("email", email))
	return token, nil
}
