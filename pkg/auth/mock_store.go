package auth

import (
	"sync"
)

// MockStore implements CredentialStore in memory for tests
type MockStore struct {
	profiles map[string]*Credentials
	mu       sync.RWMutex

	// Error injection for testing
	StoreError    error
	RetrieveError error
	ListError     error
	DeleteError   error
}

// NewMockStore creates a new mock credential store
func NewMockStore() *MockStore {
	return &MockStore{
		profiles: make(map[string]*Credentials),
	}
}

func (m *MockStore) Store(creds *Credentials) error {
	if m.StoreError != nil {
		return m.StoreError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if creds == nil || creds.Profile == "" {
		return ErrInvalidCredentials
	}

	c := *creds
	m.profiles[creds.Profile] = &c
	return nil
}

func (m *MockStore) Retrieve(profile string) (*Credentials, error) {
	if m.RetrieveError != nil {
		return nil, m.RetrieveError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	creds, ok := m.profiles[profile]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	c := *creds
	return &c, nil
}

func (m *MockStore) List() ([]*Credentials, error) {
	if m.ListError != nil {
		return nil, m.ListError
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Credentials, 0, len(m.profiles))
	for _, creds := range m.profiles {
		c := *creds
		list = append(list, &c)
	}
	return list, nil
}

func (m *MockStore) Delete(profile string) error {
	if m.DeleteError != nil {
		return m.DeleteError
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[profile]; !ok {
		return ErrCredentialsNotFound
	}
	delete(m.profiles, profile)
	return nil
}

func (m *MockStore) Exists(profile string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.profiles[profile]
	return ok
}

// Count returns the number of stored profiles
func (m *MockStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.profiles)
}

// NewMockManager creates a Manager with a single mock store
func NewMockManager() (*Manager, *MockStore) {
	store := NewMockStore()
	return NewManagerWithStores(store), store
}
