package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// CookieName is the back-office session cookie.
const CookieName = "admin_session"

// DefaultSessionTTL matches the original seven day admin session.
const DefaultSessionTTL = 7 * 24 * time.Hour

// Sessions is an in-memory session table for the single back-office account.
// Tokens are opaque uuids; expired entries are reaped lazily on lookup.
type Sessions struct {
	mu     sync.Mutex
	tokens map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
}

func NewSessions(ttl time.Duration) *Sessions {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Sessions{
		tokens: make(map[string]time.Time),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Create issues a fresh session token.
func (s *Sessions) Create() string {
	token := uuid.NewString()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = s.now().Add(s.ttl)
	return token
}

// Valid reports whether the token names a live session.
func (s *Sessions) Valid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	expiry, ok := s.tokens[token]
	if !ok {
		return false
	}
	if s.now().After(expiry) {
		delete(s.tokens, token)
		return false
	}
	return true
}

func (s *Sessions) Destroy(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// TTL is the configured session lifetime, used for the cookie max age.
func (s *Sessions) TTL() time.Duration {
	return s.ttl
}
