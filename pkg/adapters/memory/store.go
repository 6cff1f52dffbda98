package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/clearance/pkg/domain"
)

// DefaultTTL is the idle timeout after which a session is evicted.
const DefaultTTL = 30 * time.Minute

type entry struct {
	session   *domain.Session
	expiresAt time.Time
}

// Store implements ports.SessionStore in memory with idle-timeout eviction.
// Every Save and every successful Load slides the expiry. Safe for concurrent use.
type Store struct {
	data map[string]entry
	mu   sync.RWMutex
	ttl  time.Duration
	now  func() time.Time
}

// Option configures the Store.
type Option func(*Store)

// WithTTL sets the idle timeout. Zero disables eviction.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock overrides the clock used for expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		data: make(map[string]entry),
		ttl:  DefaultTTL,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Save persists a copy of the session.
func (s *Store) Save(_ context.Context, session *domain.Session) error {
	e := entry{session: session.Snapshot()}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[session.ID] = e
	return nil
}

// Load retrieves a copy of the session, so callers cannot mutate the store.
func (s *Store) Load(_ context.Context, sessionID string) (*domain.Session, error) {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[sessionID]
	if !ok || s.expired(e, now) {
		return nil, domain.ErrSessionNotFound
	}
	if s.ttl > 0 {
		e.expiresAt = now.Add(s.ttl)
		s.data[sessionID] = e
	}
	return e.session.Snapshot(), nil
}

// Delete removes the session.
func (s *Store) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, sessionID)
	return nil
}

// List returns live sessions.
func (s *Store) List(_ context.Context) ([]string, error) {
	now := s.now()
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := make([]string, 0, len(s.data))
	for id, e := range s.data {
		if !s.expired(e, now) {
			sessions = append(sessions, id)
		}
	}
	return sessions, nil
}

// Prune evicts expired sessions and reports how many were removed.
func (s *Store) Prune() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.data {
		if s.expired(e, now) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// RunJanitor prunes on every tick until ctx is done.
func (s *Store) RunJanitor(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Prune()
		}
	}
}

func (s *Store) expired(e entry, now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}
