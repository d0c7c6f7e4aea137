// Package cli implements storefrontctl: a command line shopper that drives the
// cart and wishlist synchronizers against a running storefront API.
package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	pkgconfig "github.com/utafrali/storefront/pkg/config"
)

// Profile is the persisted client configuration. Values are layered:
// defaults, then the TOML file, then STOREFRONT_* environment variables.
type Profile struct {
	URL           string   `toml:"url" env:"STOREFRONT_URL"`
	Timeout       string   `toml:"timeout" env:"STOREFRONT_TIMEOUT"`
	Retries       int      `toml:"retries" env:"STOREFRONT_RETRIES"`
	LogLevel      string   `toml:"log_level" env:"STOREFRONT_LOG_LEVEL"`
	WatchInterval string   `toml:"watch_interval" env:"STOREFRONT_WATCH_INTERVAL"`
	KafkaBrokers  []string `toml:"kafka_brokers,omitempty" env:"STOREFRONT_KAFKA_BROKERS" envSeparator:","`

	// Cookies issued by the server, written back after every command.
	Session   string `toml:"session,omitempty"`
	AuthToken string `toml:"auth_token,omitempty"`
}

// DefaultProfile returns the settings used when no profile file exists.
func DefaultProfile() Profile {
	return Profile{
		URL:           "http://localhost:8080",
		Timeout:       "10s",
		Retries:       2,
		LogLevel:      "warn",
		WatchInterval: "5s",
	}
}

// DefaultProfilePath returns the profile location under the user config dir.
func DefaultProfilePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "storefront.toml"
	}
	return filepath.Join(dir, "storefront", "profile.toml")
}

// LoadProfile reads the profile at path and overlays environ. A missing file
// is not an error. A nil environ uses the process environment.
func LoadProfile(path string, environ map[string]string) (*Profile, error) {
	p := DefaultProfile()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read profile: %w", err)
	default:
		if err := toml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parse profile %s: %w", path, err)
		}
	}

	if environ == nil {
		err = pkgconfig.Load(&p)
	} else {
		err = pkgconfig.LoadFrom(&p, environ)
	}
	if err != nil {
		return nil, err
	}

	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Profile) validate() error {
	u, err := url.Parse(p.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("profile: url %q must be absolute", p.URL)
	}
	if _, err := p.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := p.WatchIntervalDuration(); err != nil {
		return err
	}
	if p.Retries < 0 {
		return fmt.Errorf("profile: retries must not be negative, got %d", p.Retries)
	}
	return nil
}

// TimeoutDuration parses the per-request timeout.
func (p *Profile) TimeoutDuration() (time.Duration, error) {
	return positiveDuration("timeout", p.Timeout)
}

// WatchIntervalDuration parses the poll interval used by watch.
func (p *Profile) WatchIntervalDuration() (time.Duration, error) {
	return positiveDuration("watch_interval", p.WatchInterval)
}

func positiveDuration(name, v string) (time.Duration, error) {
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("profile: %s: %w", name, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("profile: %s must be positive, got %s", name, v)
	}
	return d, nil
}

// Save writes the profile to path, creating its directory.
func (p *Profile) Save(path string) error {
	data, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create profile dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write profile: %w", err)
	}
	return nil
}
