package auth

import (
	"context"
	"sync"
)

// InMemorySessionStore keeps refresh sessions in a map. Used by tests and by
// local development without a database.
type InMemorySessionStore struct {
	mu      sync.RWMutex
	byToken map[string]Session
}

// NewInMemorySessionStore returns an empty in-memory session store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{byToken: make(map[string]Session)}
}

// Save stores the session, replacing any record under the same token.
func (s *InMemorySessionStore) Save(_ context.Context, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byToken[session.RefreshToken] = session
	return nil
}

// Find returns the session for the refresh token, or ErrSessionNotFound.
func (s *InMemorySessionStore) Find(_ context.Context, refreshToken string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.byToken[refreshToken]
	if !ok {
		return Session{}, ErrSessionNotFound
	}
	return session, nil
}

// Delete removes the session for the refresh token. Deleting an absent token
// is not an error.
func (s *InMemorySessionStore) Delete(_ context.Context, refreshToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byToken, refreshToken)
	return nil
}

var _ SessionStore = (*InMemorySessionStore)(nil)
