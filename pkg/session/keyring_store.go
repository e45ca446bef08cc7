package session

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "feedscraper"
	keyringKey     = "session_cookies"
)

// KeyringStore keeps the bundle in the system keychain
type KeyringStore struct {
	service string
	key     string
}

// NewKeyringStore creates a keyring-backed store after checking that the
// keychain is reachable.
func NewKeyringStore() (*KeyringStore, error) {
	const key = "availability_check"
	if err := keyring.Set(keyringService, key, "ok"); err != nil {
		return nil, fmt.Errorf("%w: keyring: %v", ErrStoreUnavailable, err)
	}
	_ = keyring.Delete(keyringService, key)

	return &KeyringStore{service: keyringService, key: keyringKey}, nil
}

func (k *KeyringStore) Name() string {
	return "keyring"
}

// Load reads the bundle from the keychain
func (k *KeyringStore) Load() (*Bundle, error) {
	data, err := keyring.Get(k.service, k.key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var cookies []Cookie
	if err := json.Unmarshal([]byte(data), &cookies); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cookies: %w", err)
	}
	return &Bundle{Cookies: cookies}, nil
}

// Save writes the bundle to the keychain
func (k *KeyringStore) Save(bundle *Bundle) error {
	if bundle.Empty() {
		return ErrInvalidBundle
	}

	data, err := json.Marshal(bundle.Cookies)
	if err != nil {
		return fmt.Errorf("failed to marshal cookies: %w", err)
	}
	if err := keyring.Set(k.service, k.key, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}
	return nil
}

// Delete removes the bundle from the keychain
func (k *KeyringStore) Delete() error {
	if err := keyring.Delete(k.service, k.key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}
