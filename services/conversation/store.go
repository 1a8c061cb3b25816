package conversation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"schedulo/models"
)

// SessionStore is the process-wide mapping from session id to
// conversation state. GetOrCreate must be atomic with respect to
// concurrent first contact from the same id.
type SessionStore interface {
	GetOrCreate(ctx context.Context, id string, now time.Time) (*models.Session, bool, error)
	Get(ctx context.Context, id string) (*models.Session, error)
	// Save persists the session. Writes into an already-evicted slot
	// are dropped, best effort.
	Save(ctx context.Context, sess *models.Session) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]string, error)
}

// MemorySessionStore keeps sessions in a mutex-guarded map. It is the
// default when no Redis address is configured, and the store tests run
// against. Entries idle past TTL are dropped lazily on access and by
// the periodic sweep.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
	ttl      time.Duration
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string][]byte),
		ttl:      ttl,
	}
}

func newSession(id string, now time.Time) *models.Session {
	return &models.Session{
		ID:        id,
		Phase:     models.PhaseIdle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func decodeSession(data []byte) (*models.Session, error) {
	var sess models.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (s *MemorySessionStore) expired(sess *models.Session, now time.Time) bool {
	return s.ttl > 0 && now.Sub(sess.UpdatedAt) > s.ttl
}

func (s *MemorySessionStore) GetOrCreate(_ context.Context, id string, now time.Time) (*models.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data, ok := s.sessions[id]; ok {
		sess, err := decodeSession(data)
		if err != nil {
			return nil, false, err
		}
		if !s.expired(sess, now) {
			return sess, false, nil
		}
		delete(s.sessions, id)
	}

	sess := newSession(id, now)
	data, err := json.Marshal(sess)
	if err != nil {
		return nil, false, err
	}
	s.sessions[id] = data
	return sess, true, nil
}

func (s *MemorySessionStore) Get(_ context.Context, id string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return decodeSession(data)
}

func (s *MemorySessionStore) Save(_ context.Context, sess *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sess.ID]; !ok {
		// Session was evicted while the turn was in flight.
		return nil
	}
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	s.sessions[sess.ID] = data
	return nil
}

func (s *MemorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *MemorySessionStore) List(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}

// Sweep evicts sessions idle past the TTL and returns how many were
// removed.
func (s *MemorySessionStore) Sweep(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, data := range s.sessions {
		sess, err := decodeSession(data)
		if err != nil || s.expired(sess, now) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
