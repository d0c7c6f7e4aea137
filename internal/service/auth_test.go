package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

type stubIssuer struct {
	err    error
	issued []string
}

func (s *stubIssuer) Generate(email string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.issued = append(s.issued, email)
	return "token-for-" + email, nil
}

func TestLogin_MissingFields(t *testing.T) {
	svc := NewAuthService(&stubIssuer{}, Credentials{}, newTestLogger())

	for _, tc := range []struct{ email, password string }{
		{"", "secret"},
		{"admin@example.com", ""},
		{"", ""},
	} {
		_, err := svc.Login(context.Background(), tc.email, tc.password)

		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "Email and password are required", appErr.Message)
	}
}

func TestLogin_DemoModeAcceptsAnyPair(t *testing.T) {
	issuer := &stubIssuer{}
	svc := NewAuthService(issuer, Credentials{}, newTestLogger())

	token, err := svc.Login(context.Background(), "anyone@example.com", "whatever")
	require.NoError(t, err)
	assert.Equal(t, "token-for-anyone@example.com", token)
	assert.Equal(t, []string{"anyone@example.com"}, issuer.issued)
}

func TestLogin_ConfiguredCredentials(t *testing.T) {
	issuer := &stubIssuer{}
	svc := NewAuthService(issuer, Credentials{Email: "admin@example.com", Password: "s3cret"}, newTestLogger())
	ctx := context.Background()

	token, err := svc.Login(ctx, "admin@example.com", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, err = svc.Login(ctx, "admin@example.com", "wrong")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	_, err = svc.Login(ctx, "intruder@example.com", "s3cret")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	assert.Len(t, issuer.issued, 1)
}

func TestLogin_IssuerFailure(t *testing.T) {
	svc := NewAuthService(&stubIssuer{err: errors.New("no key")}, Credentials{}, newTestLogger())

	_, err := svc.Login(context.Background(), "a@b.c", "pw")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "issue token")
}
