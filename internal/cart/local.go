package cart

import (
	"context"
	"sync"
)

// LocalStorage keeps carts in process memory. Used when no Redis address is
// configured, and in tests.
type LocalStorage struct {
	mu    sync.RWMutex
	carts map[string][]Line
}

func NewLocalStorage() *LocalStorage {
	return &LocalStorage{carts: make(map[string][]Line)}
}

func (l *LocalStorage) Load(_ context.Context, key string) ([]Line, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	lines, ok := l.carts[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	return out, nil
}

func (l *LocalStorage) Save(_ context.Context, key string, lines []Line) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	stored := make([]Line, len(lines))
	copy(stored, lines)
	l.carts[key] = stored
	return nil
}

func (l *LocalStorage) Delete(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.carts, key)
	return nil
}
