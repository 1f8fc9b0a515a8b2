package session

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
)

// DefaultTTL is how long an untouched session is kept.
const DefaultTTL = 24 * time.Hour

type slot struct {
	mu      sync.Mutex
	session Session
}

// Store keeps one session per user. Each session has its own lock, so a slow
// handler only ever blocks later events of the same user.
type Store struct {
	mu    sync.Mutex
	cache *cache.Cache
}

// NewStore creates a store that forgets sessions idle for ttl. A non-positive
// ttl keeps sessions for the process lifetime.
func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		return &Store{cache: cache.New(cache.NoExpiration, 0)}
	}

	return &Store{cache: cache.New(ttl, ttl/2)}
}

// Acquire locks the user's session, creating an idle one on first use. The
// returned release func must be called once the caller is done.
func (s *Store) Acquire(userID string) (*Session, func()) {
	sl := s.slot(userID)
	sl.mu.Lock()

	return &sl.session, sl.mu.Unlock
}

// Snapshot returns a copy of the user's session without creating one.
func (s *Store) Snapshot(userID string) (Session, bool) {
	s.mu.Lock()
	v, ok := s.cache.Get(userID)
	s.mu.Unlock()
	if !ok {
		return Session{}, false
	}

	sl := v.(*slot)
	sl.mu.Lock()
	defer sl.mu.Unlock()

	return sl.session.clone(), true
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

func (s *Store) slot(userID string) *slot {
	s.mu.Lock()
	defer s.mu.Unlock()

	if v, ok := s.cache.Get(userID); ok {
		sl := v.(*slot)
		// touch to extend the idle deadline
		s.cache.SetDefault(userID, sl)
		return sl
	}

	sl := &slot{session: Session{UserID: userID, State: StateIdle}}
	s.cache.SetDefault(userID, sl)

	return sl
}
