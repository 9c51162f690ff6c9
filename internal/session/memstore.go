package session

import "sync"

// MemStore is an in-memory CredentialStore for tests and ephemeral sessions.
type MemStore struct {
	mu    sync.Mutex
	env   Envelope
	found bool
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{}
}

func (m *MemStore) Load() (Envelope, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.env, m.found, nil
}

func (m *MemStore) Save(env Envelope) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.env = env
	m.found = true
	return nil
}

func (m *MemStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.env = Envelope{}
	m.found = false
	return nil
}
