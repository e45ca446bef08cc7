package session

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// FileStore keeps the bundle as a plain JSON cookie export, the format
// browser cookie exporters write: an array of cookie objects.
type FileStore struct {
	path string
	mu   sync.RWMutex
}

// NewFileStore creates a file-backed store at path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Name() string {
	return "file"
}

// Load reads and parses the cookie export
func (f *FileStore) Load() (*Bundle, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	cookies, err := ParseCookies(data)
	if err != nil {
		return nil, err
	}
	return &Bundle{Cookies: cookies}, nil
}

// Save writes the bundle as an indented JSON array
func (f *FileStore) Save(bundle *Bundle) error {
	if bundle.Empty() {
		return ErrInvalidBundle
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := json.MarshalIndent(bundle.Cookies, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}
	return writeFileAtomic(f.path, data)
}

// Delete removes the backing file
func (f *FileStore) Delete() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

// exportedCookie accepts both the "expiry" (seconds) and "expires"
// (fractional seconds) spellings used by different exporters.
type exportedCookie struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Domain   string   `json:"domain"`
	Path     string   `json:"path"`
	Secure   bool     `json:"secure"`
	HTTPOnly bool     `json:"httpOnly"`
	SameSite string   `json:"sameSite"`
	Expiry   *float64 `json:"expiry"`
	Expires  *float64 `json:"expires"`
}

// ParseCookies decodes a cookie export. Both a bare array and an object
// with a "cookies" array are accepted. Cookies without a name are dropped.
func ParseCookies(data []byte) ([]Cookie, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrInvalidBundle)
	}

	var raw []exportedCookie
	if data[0] == '{' {
		var wrapper struct {
			Cookies []exportedCookie `json:"cookies"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
		}
		raw = wrapper.Cookies
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}

	cookies := make([]Cookie, 0, len(raw))
	for _, rc := range raw {
		if rc.Name == "" {
			continue
		}
		c := Cookie{
			Name:     rc.Name,
			Value:    rc.Value,
			Domain:   rc.Domain,
			Path:     rc.Path,
			Secure:   rc.Secure,
			HTTPOnly: rc.HTTPOnly,
			SameSite: rc.SameSite,
		}
		switch {
		case rc.Expiry != nil && *rc.Expiry > 0:
			c.Expiry = int64(*rc.Expiry)
		case rc.Expires != nil && *rc.Expires > 0:
			c.Expiry = int64(*rc.Expires)
		}
		cookies = append(cookies, c)
	}
	return cookies, nil
}
