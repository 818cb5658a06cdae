package server

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Registry owns the live tracking sessions. Trackers run on the registry's
// context, not the context of the request that created them.
type Registry struct {
	ctx        context.Context
	newSession func(id string) *Session

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(ctx context.Context, newSession func(id string) *Session) *Registry {
	return &Registry{
		ctx:        ctx,
		newSession: newSession,
		sessions:   make(map[string]*Session),
	}
}

func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Create starts a new session with a fresh position feed and tracker.
func (r *Registry) Create() (*Session, error) {
	s := r.newSession(uuid.NewString())
	s.CreatedAt = time.Now().UTC()
	if err := s.Tracker.Start(r.ctx); err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s, nil
}

// Remove ends the session, stopping its tracker and open streams, and
// forgets it.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()

	if ok {
		s.end()
	}
	return ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, s := range r.sessions {
		s.end()
		delete(r.sessions, id)
	}
	return nil
}
