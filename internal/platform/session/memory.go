package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	accountID int64
	expiresAt time.Time
}

// MemoryStore keeps sessions in process. Expired entries are dropped when
// they are resolved.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]memoryEntry),
	}
}

func (s *MemoryStore) Create(_ context.Context, accountID int64) (*Session, error) {
	token := uuid.NewString()
	expiresAt := s.now().Add(s.ttl)

	s.mu.Lock()
	s.sessions[token] = memoryEntry{accountID: accountID, expiresAt: expiresAt}
	s.mu.Unlock()

	return &Session{Token: token, AccountID: accountID, ExpiresAt: expiresAt}, nil
}

func (s *MemoryStore) Resolve(_ context.Context, token string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[token]
	if !ok {
		return 0, ErrSessionNotFound
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.sessions, token)
		return 0, ErrSessionNotFound
	}
	return entry.accountID, nil
}

// Revoke forgets token. Revoking an unknown token is not an error.
func (s *MemoryStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

var _ Store = (*MemoryStore)(nil)
