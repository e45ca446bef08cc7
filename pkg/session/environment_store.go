package session

import (
	"os"
	"strings"
)

// CookieHeaderEnv holds a "name=value; name2=value2" cookie header
const CookieHeaderEnv = "FEEDSCRAPER_SESSION_COOKIES"

// EnvironmentStore reads the bundle from a cookie header in the
// environment. It is read-only.
type EnvironmentStore struct {
	domain string
}

// NewEnvironmentStore creates an environment store that assigns the given
// cookie domain to every parsed cookie.
func NewEnvironmentStore(domain string) *EnvironmentStore {
	return &EnvironmentStore{domain: domain}
}

func (e *EnvironmentStore) Name() string {
	return "environment"
}

// Load parses the cookie header variable
func (e *EnvironmentStore) Load() (*Bundle, error) {
	header := os.Getenv(CookieHeaderEnv)
	if strings.TrimSpace(header) == "" {
		return nil, ErrNotFound
	}

	cookies := ParseCookieHeader(header, e.domain)
	if len(cookies) == 0 {
		return nil, ErrNotFound
	}
	return &Bundle{Cookies: cookies}, nil
}

// Save is not supported for environment variables
func (e *EnvironmentStore) Save(bundle *Bundle) error {
	return ErrStoreUnavailable
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete() error {
	return ErrStoreUnavailable
}

// ParseCookieHeader splits a Cookie header into secure cookies on domain
func ParseCookieHeader(header, domain string) []Cookie {
	var cookies []Cookie
	for _, part := range strings.Split(header, ";") {
		name, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok || strings.TrimSpace(name) == "" {
			continue
		}
		cookies = append(cookies, Cookie{
			Name:   strings.TrimSpace(name),
			Value:  strings.TrimSpace(value),
			Domain: domain,
			Path:   "/",
			Secure: true,
		})
	}
	return cookies
}
