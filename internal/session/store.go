package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"aurora/internal/logging"
)

// Store holds one Session per user in memory. A single mutex guards the map
// and is only held for map operations, never across I/O.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*Session
	locks    map[int64]*userLock
	now      func() time.Time
}

type userLock struct {
	ch   chan struct{}
	refs int
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source (useful for eviction tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore constructs an empty session store.
func NewStore(opts ...Option) *Store {
	s := &Store{
		sessions: make(map[int64]*Session),
		locks:    make(map[int64]*userLock),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetOrCreate returns the user's session, creating it in NoSource on first use.
func (s *Store) GetOrCreate(userID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.entryLocked(userID)
}

// Get returns the user's session without creating one.
func (s *Store) Get(userID int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return Session{}, false
	}
	return *sess, true
}

// SetSource selects a new media link, overwriting any previous one, and moves
// the session to SourceSelected.
func (s *Store) SetSource(userID int64, source string) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.entryLocked(userID)
	sess.Source = strings.TrimSpace(source)
	sess.State = SourceSelected
	*sess = sess.normalized()
	sess.UpdatedAt = s.now()
	return *sess
}

// SetState moves the session to state. Without a source the session stays in NoSource.
func (s *Store) SetState(userID int64, state State) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.entryLocked(userID)
	sess.State = state
	*sess = sess.normalized()
	sess.UpdatedAt = s.now()
	return *sess
}

// Clear unsets the selected source and returns the session to NoSource.
func (s *Store) Clear(userID int64) Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.entryLocked(userID)
	sess.Source = ""
	sess.State = NoSource
	sess.UpdatedAt = s.now()
	return *sess
}

// Len reports how many sessions are held.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Evict drops sessions untouched for longer than idle, skipping users whose
// message is still being handled. It returns the number removed.
func (s *Store) Evict(idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-idle)
	removed := 0
	for id, sess := range s.sessions {
		if _, busy := s.locks[id]; busy {
			continue
		}
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Lock serializes message handling for one user. It blocks until the user's
// previous message finishes or ctx ends, and returns the release func.
func (s *Store) Lock(ctx context.Context, userID int64) (func(), error) {
	s.mu.Lock()
	lock, ok := s.locks[userID]
	if !ok {
		lock = &userLock{ch: make(chan struct{}, 1)}
		s.locks[userID] = lock
	}
	lock.refs++
	s.mu.Unlock()

	select {
	case lock.ch <- struct{}{}:
	case <-ctx.Done():
		s.releaseRef(userID, lock)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-lock.ch
			s.releaseRef(userID, lock)
		})
	}, nil
}

func (s *Store) releaseRef(userID int64, lock *userLock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock.refs--
	if lock.refs == 0 && s.locks[userID] == lock {
		delete(s.locks, userID)
	}
}

func (s *Store) entryLocked(userID int64) *Session {
	sess, ok := s.sessions[userID]
	if !ok {
		now := s.now()
		sess = &Session{UserID: userID, State: NoSource, CreatedAt: now, UpdatedAt: now}
		s.sessions[userID] = sess
	}
	return sess
}

// RunJanitor evicts idle sessions every interval until ctx ends.
func (s *Store) RunJanitor(ctx context.Context, idle, interval time.Duration, logger *slog.Logger) error {
	if interval <= 0 {
		interval = time.Minute
	}
	logger = logging.NewComponentLogger(logger, "session")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if removed := s.Evict(idle); removed > 0 {
				logger.Debug("idle sessions evicted",
					logging.Int("removed", removed),
					logging.Int("remaining", s.Len()),
					logging.String(logging.FieldEventType, "sessions_evicted"),
				)
			}
		}
	}
}
