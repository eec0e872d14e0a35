// Package session holds the externally toggled session state the engine
// consumes: who the user is and whether the session is a guest session.
package session

import "sync"

// Session is safe for concurrent use. The guest flag is read by the cache
// store on every call, so toggling it switches backing media immediately.
type Session struct {
	mu     sync.RWMutex
	userID string
	token  string
	guest  bool
}

// New creates a session in the given initial mode
func New(userID, token string, guest bool) *Session {
	return &Session{userID: userID, token: token, guest: guest}
}

// UserID returns the current user id, empty when no session is established
func (s *Session) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.guest {
		return ""
	}
	return s.userID
}

// Token returns the current auth token
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Guest reports whether the session is ephemeral
func (s *Session) Guest() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guest
}

// SetGuest toggles the session mode
func (s *Session) SetGuest(guest bool) {
	s.mu.Lock()
	s.guest = guest
	s.mu.Unlock()
}

// SetCredentials replaces the user identity, e.g. after re-authentication
func (s *Session) SetCredentials(userID, token string) {
	s.mu.Lock()
	s.userID = userID
	s.token = token
	s.mu.Unlock()
}
