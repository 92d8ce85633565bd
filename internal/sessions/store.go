// Package sessions owns the in-process table of active call sessions.
// The store is injected into the turn controller; it never mutates session
// state itself.
package sessions

import (
	"errors"
	"sync"
	"time"

	"github.com/hatifai/hatif/domain/entities"
)

// ErrSessionNotFound is returned for events referencing an unknown or
// already-closed session.
var ErrSessionNotFound = errors.New("session not found")

// Store is a mutex-guarded session table. Webhook handlers run on separate
// goroutines, so unlike an event-loop runtime the map needs real locking.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entities.CallSession
}

// NewStore creates an empty session store
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*entities.CallSession),
	}
}

// Put registers a session under its id
func (s *Store) Put(session *entities.CallSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = session
}

// Get returns the session for id or ErrSessionNotFound
func (s *Store) Get(id string) (*entities.CallSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// Remove drops the session for id, if present
func (s *Store) Remove(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len returns the number of active sessions
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// IdleSessions returns the ids of sessions with no activity for at least
// the given bound.
func (s *Store) IdleSessions(idleBound time.Duration) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for id, session := range s.sessions {
		if session.IdleFor(idleBound) {
			ids = append(ids, id)
		}
	}
	return ids
}
