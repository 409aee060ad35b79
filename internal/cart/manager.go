package cart

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
)

// Manager hands out one Store per browser session. Each session is a single
// writer; the map only guards concurrent first requests from the same
// session racing to create the store.
type Manager struct {
	mu      sync.Mutex
	stores  map[string]*Store
	storage Storage
	log     logrus.FieldLogger
}

func NewManager(storage Storage, log logrus.FieldLogger) *Manager {
	return &Manager{
		stores:  make(map[string]*Store),
		storage: storage,
		log:     log,
	}
}

// Get returns the session's store, creating and hydrating it from storage on
// first use.
func (m *Manager) Get(ctx context.Context, sessionID string) *Store {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.stores[sessionID]; ok {
		return s
	}
	s := NewStore(ctx, m.storage, sessionID, m.log)
	m.stores[sessionID] = s
	return s
}
