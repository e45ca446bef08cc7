package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	errs "feedscraper/pkg/errors"
	"feedscraper/pkg/logger"
)

// Cookie is one persisted browser cookie
type Cookie struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Domain   string `json:"domain,omitempty"`
	Path     string `json:"path,omitempty"`
	Secure   bool   `json:"secure,omitempty"`
	HTTPOnly bool   `json:"httpOnly,omitempty"`
	SameSite string `json:"sameSite,omitempty"`
	// Expiry is a unix timestamp in seconds, zero for session cookies
	Expiry int64 `json:"expiry,omitempty"`
}

// Expired reports whether the cookie has a past expiry
func (c Cookie) Expired(now time.Time) bool {
	return c.Expiry > 0 && time.Unix(c.Expiry, 0).Before(now)
}

// Bundle is the opaque authentication session applied to every browser.
// It is loaded once and treated as read-only afterwards.
type Bundle struct {
	Cookies []Cookie
	Source  string
}

// Empty reports whether the bundle carries no cookies
func (b *Bundle) Empty() bool {
	return b == nil || len(b.Cookies) == 0
}

// Normalized returns the cookies with leading-dot domains stripped and an
// empty path defaulted to "/".
func (b *Bundle) Normalized() []Cookie {
	if b == nil {
		return nil
	}
	out := make([]Cookie, len(b.Cookies))
	for i, c := range b.Cookies {
		c.Domain = NormalizeDomain(c.Domain)
		if c.Path == "" {
			c.Path = "/"
		}
		out[i] = c
	}
	return out
}

// NormalizeDomain strips a single leading "." from a cookie domain
func NormalizeDomain(domain string) string {
	return strings.TrimPrefix(strings.TrimSpace(domain), ".")
}

// Store is the interface for persisting and loading a session bundle
type Store interface {
	// Load returns the stored bundle or ErrNotFound
	Load() (*Bundle, error)
	// Save replaces the stored bundle
	Save(bundle *Bundle) error
	// Delete removes the stored bundle
	Delete() error
	// Name identifies the store in logs
	Name() string
}

// Errors
var (
	ErrNotFound         = errors.New("session not found")
	ErrInvalidBundle    = errors.New("invalid session bundle")
	ErrStoreUnavailable = errors.New("session store unavailable")
)

// Manager loads the session bundle from a chain of stores, first hit wins
type Manager struct {
	stores []Store
	log    logger.Logger
}

// NewManager creates a manager over the given stores in priority order
func NewManager(log logger.Logger, stores ...Store) *Manager {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Manager{stores: stores, log: log}
}

// Stores returns the configured store chain
func (m *Manager) Stores() []Store {
	return m.stores
}

// Load returns the first non-empty bundle found. When no store has one it
// returns an empty bundle together with a session_unavailable error; the
// bundle is still usable and makes every collection yield empty results.
func (m *Manager) Load() (*Bundle, error) {
	for _, store := range m.stores {
		bundle, err := store.Load()
		if err != nil {
			if !errors.Is(err, ErrNotFound) {
				m.log.WithFields(map[string]interface{}{
					"store": store.Name(),
				}).WithError(err).Warn("Failed to read session store")
			}
			continue
		}
		if bundle.Empty() {
			continue
		}
		bundle.Source = store.Name()
		m.log.WithFields(map[string]interface{}{
			"store":   store.Name(),
			"cookies": len(bundle.Cookies),
		}).Debug("Session loaded")
		return bundle, nil
	}

	return &Bundle{}, errs.New(errs.ErrorTypeSessionUnavailable, "no session bundle in %d store(s)", len(m.stores))
}

// Save writes the bundle to every writable store and fails only when none
// accepted it.
func (m *Manager) Save(bundle *Bundle) error {
	if bundle.Empty() {
		return ErrInvalidBundle
	}

	var saved int
	var lastErr error
	for _, store := range m.stores {
		if err := store.Save(bundle); err != nil {
			if !errors.Is(err, ErrStoreUnavailable) {
				lastErr = err
			}
			continue
		}
		saved++
	}

	if saved == 0 {
		if lastErr != nil {
			return fmt.Errorf("failed to store session: %w", lastErr)
		}
		return errors.New("no writable session stores")
	}
	return nil
}

// Sanitize returns a copy of the cookies with values masked
func Sanitize(cookies []Cookie) []Cookie {
	out := make([]Cookie, len(cookies))
	for i, c := range cookies {
		c.Value = maskString(c.Value)
		out[i] = c
	}
	return out
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// writeFileAtomic writes via a temp file and rename
func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, data, 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Rename(tempFile, path); err != nil {
		os.Remove(tempFile)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}
