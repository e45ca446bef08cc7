package session

import (
	"net/url"

	"feedscraper/pkg/config"
	"feedscraper/pkg/logger"
)

// NewManagerFromConfig builds the store chain in priority order: the
// cookie header environment variable, the plain cookie export, the
// encrypted copy and finally the system keychain. Stores that cannot be
// opened are skipped with a warning.
func NewManagerFromConfig(cfg *config.Config, log logger.Logger) *Manager {
	if log == nil {
		log = logger.NewNopLogger()
	}

	stores := []Store{NewEnvironmentStore(CookieDomain(cfg.Browser.BaseURL))}

	if cfg.Session.File != "" {
		stores = append(stores, NewFileStore(cfg.Session.File))
	}

	if cfg.Session.EncryptedFile != "" {
		enc, err := NewEncryptedFileStore(cfg.Session.EncryptedFile, "")
		if err != nil {
			log.WithError(err).Warn("Encrypted session store unavailable")
		} else {
			stores = append(stores, enc)
		}
	}

	if cfg.Session.UseKeyring {
		kr, err := NewKeyringStore()
		if err != nil {
			log.WithError(err).Warn("Keyring session store unavailable")
		} else {
			stores = append(stores, kr)
		}
	}

	return NewManager(log, stores...)
}

// CookieDomain returns the host of baseURL, used as the default cookie
// domain for header-style sessions.
func CookieDomain(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Hostname() == "" {
		return "x.com"
	}
	return u.Hostname()
}
