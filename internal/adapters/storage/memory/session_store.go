package memory

import (
	"sync"
	"time"

	"github.com/mudasirshah/portfolio-agent/internal/domain"
	"github.com/mudasirshah/portfolio-agent/internal/observability"
)

// SessionStore keeps sessions and their timelines in process memory.
// Idle sessions are evicted after the TTL; a hard cap bounds total count.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domain.SessionID]*domain.Session
	turns    map[domain.SessionID][]*domain.Turn

	ttl         time.Duration
	maxSessions int
	now         func() time.Time

	stop chan struct{}
	once sync.Once
}

type Options struct {
	TTL         time.Duration
	MaxSessions int
}

func NewSessionStore(opts Options) *SessionStore {
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.MaxSessions <= 0 {
		opts.MaxSessions = 1024
	}
	return &SessionStore{
		sessions:    make(map[domain.SessionID]*domain.Session),
		turns:       make(map[domain.SessionID][]*domain.Turn),
		ttl:         opts.TTL,
		maxSessions: opts.MaxSessions,
		now:         time.Now,
		stop:        make(chan struct{}),
	}
}

// StartJanitor launches the background eviction loop. Call Close to stop it.
func (s *SessionStore) StartJanitor() {
	interval := s.ttl / 4
	if interval < time.Minute {
		interval = time.Minute
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := s.evictExpired(); n > 0 {
					observability.Logger().Info("evicted idle sessions", "count", n)
				}
			case <-s.stop:
				return
			}
		}
	}()
}

func (s *SessionStore) Close() {
	s.once.Do(func() { close(s.stop) })
}

func (s *SessionStore) GetOrCreateSession(id domain.SessionID) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}

	if len(s.sessions) >= s.maxSessions {
		s.evictOldestLocked()
	}

	now := s.now()
	sess := &domain.Session{ID: id, CreatedAt: now, UpdatedAt: now}
	s.sessions[id] = sess
	return sess, nil
}

func (s *SessionStore) AppendTurn(turn *domain.Turn) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turns[turn.SessionID] = append(s.turns[turn.SessionID], turn)
	return nil
}

func (s *SessionStore) GetTurns(sessionID domain.SessionID, limit int) ([]*domain.Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.turns[sessionID]
	if limit > 0 && len(turns) > limit {
		turns = turns[len(turns)-limit:]
	}
	return append([]*domain.Turn(nil), turns...), nil
}

func (s *SessionStore) TouchSession(id domain.SessionID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		sess.UpdatedAt = s.now()
	}
	return nil
}

// Len reports the live session count.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) evictExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.ttl)
	evicted := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			delete(s.turns, id)
			evicted++
		}
	}
	return evicted
}

// evictOldestLocked drops the least recently used session to make room.
func (s *SessionStore) evictOldestLocked() {
	var oldest domain.SessionID
	var oldestAt time.Time
	first := true
	for id, sess := range s.sessions {
		if first || sess.UpdatedAt.Before(oldestAt) {
			oldest, oldestAt, first = id, sess.UpdatedAt, false
		}
	}
	if !first {
		delete(s.sessions, oldest)
		delete(s.turns, oldest)
	}
}
