package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"

	"github.com/utafrali/storefront/internal/remote"
	"github.com/utafrali/storefront/internal/syncer"
	"github.com/utafrali/storefront/pkg/middleware"
)

// Session is one shopper talking to the API: a cookie jar seeded from the
// profile and the clients that share it.
type Session struct {
	profile *Profile
	base    *url.URL
	jar     http.CookieJar

	Cart     *syncer.Cart
	Wishlist *syncer.Wishlist
	API      *remote.API
}

// NewSession builds the transport and synchronizers for p. Nothing is sent
// until a synchronizer is started.
func NewSession(p *Profile, logger *slog.Logger) (*Session, error) {
	base, err := url.Parse(p.URL)
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	timeout, err := p.TimeoutDuration()
	if err != nil {
		return nil, err
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	var seed []*http.Cookie
	if p.Session != "" {
		seed = append(seed, &http.Cookie{Name: middleware.SessionCookieName, Value: p.Session, Path: "/"})
	}
	if p.AuthToken != "" {
		seed = append(seed, &http.Cookie{Name: middleware.AuthCookieName, Value: p.AuthToken, Path: "/"})
	}
	jar.SetCookies(base, seed)

	cfg := remote.DefaultTransportConfig()
	cfg.Timeout = timeout
	cfg.MaxRetries = p.Retries
	doer := remote.NewTransport(cfg, jar, logger)

	return &Session{
		profile:  p,
		base:     base,
		jar:      jar,
		Cart:     syncer.NewCart(remote.NewCartClient(doer, p.URL, logger), logger),
		Wishlist: syncer.NewWishlist(remote.NewWishlistClient(doer, p.URL, logger), logger),
		API:      remote.NewAPI(doer, p.URL),
	}, nil
}

// ID returns the session id the server assigned, empty before first contact.
func (s *Session) ID() string {
	return s.cookie(middleware.SessionCookieName)
}

// Sync copies the server-issued cookies back into the profile. It reports
// whether anything changed.
func (s *Session) Sync() bool {
	session := s.cookie(middleware.SessionCookieName)
	token := s.cookie(middleware.AuthCookieName)

	changed := session != s.profile.Session || token != s.profile.AuthToken
	s.profile.Session = session
	s.profile.AuthToken = token
	return changed
}

// Close detaches the synchronizers.
func (s *Session) Close() {
	s.Cart.Close()
	s.Wishlist.Close()
}

func (s *Session) cookie(name string) string {
	for _, c := range s.jar.Cookies(s.base) {
		if c.Name == name {
			return c.Value
		}
	}
	return ""
}
