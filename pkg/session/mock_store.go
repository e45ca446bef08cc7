package session

import "sync"

// MockStore implements Store in memory for tests
type MockStore struct {
	mu     sync.RWMutex
	bundle *Bundle
	loads  int

	// Error injection for testing
	LoadError error
	SaveError error
	StoreName string
}

// NewMockStore creates a mock store, optionally pre-loaded
func NewMockStore(cookies ...Cookie) *MockStore {
	m := &MockStore{StoreName: "mock"}
	if len(cookies) > 0 {
		m.bundle = &Bundle{Cookies: cookies}
	}
	return m
}

func (m *MockStore) Name() string {
	return m.StoreName
}

func (m *MockStore) Load() (*Bundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++

	if m.LoadError != nil {
		return nil, m.LoadError
	}
	if m.bundle == nil {
		return nil, ErrNotFound
	}
	cp := &Bundle{Cookies: append([]Cookie(nil), m.bundle.Cookies...)}
	return cp, nil
}

func (m *MockStore) Save(bundle *Bundle) error {
	if m.SaveError != nil {
		return m.SaveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bundle = &Bundle{Cookies: append([]Cookie(nil), bundle.Cookies...)}
	return nil
}

func (m *MockStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bundle == nil {
		return ErrNotFound
	}
	m.bundle = nil
	return nil
}

// Loads returns how many times Load was called
func (m *MockStore) Loads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loads
}
