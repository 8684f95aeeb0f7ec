package queue

import (
	"sync"

	"github.com/uiseon98/ticketmongo-client/internal/api"
)

var _ api.KeyProvider = (*KeyStore)(nil)

// KeyStore holds admission credentials keyed by concert ID for the lifetime
// of the process. Nothing is persisted: admission is a one-time,
// session-bound privilege and must not survive a restart.
type KeyStore struct {
	mu   sync.RWMutex
	keys map[int64]string
}

func NewKeyStore() *KeyStore {
	return &KeyStore{keys: make(map[int64]string)}
}

// Put stores the credential issued for a concert, replacing any previous one.
func (s *KeyStore) Put(concertID int64, key string) {
	s.mu.Lock()
	s.keys[concertID] = key
	s.mu.Unlock()
}

// AccessKey returns the stored credential for a concert, if any.
func (s *KeyStore) AccessKey(concertID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[concertID]
	return key, ok
}

// Discard drops the credential for a concert after the server rejected it.
func (s *KeyStore) Discard(concertID int64) {
	s.mu.Lock()
	delete(s.keys, concertID)
	s.mu.Unlock()
}
