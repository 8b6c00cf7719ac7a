package cart

import (
	"context"
	"sync"
	"time"
)

const defaultIdleTTL = 2 * time.Hour

type session struct {
	store    *Store
	lastSeen time.Time
	inUse    int
}

type SessionsConfig struct {
	IdleTTL time.Duration
	// OnCreate is called once for every new session store, before it is
	// handed out. Used to attach observers. It runs under the registry lock
	// and must not call back into Sessions.
	OnCreate func(sessionID string, store *Store)
	// OnDrop is called after a session store has been discarded.
	OnDrop func(sessionID string)
	Now    func() time.Time
}

// Sessions owns the cart stores of all live browser sessions. Stores are
// created lazily and discarded after IdleTTL without access.
type Sessions struct {
	mu       sync.Mutex
	sessions map[string]*session
	idleTTL  time.Duration
	onCreate func(string, *Store)
	onDrop   func(string)
	now      func() time.Time
}

func NewSessions(cfg SessionsConfig) *Sessions {
	idleTTL := cfg.IdleTTL
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Sessions{
		sessions: make(map[string]*session),
		idleTTL:  idleTTL,
		onCreate: cfg.OnCreate,
		onDrop:   cfg.OnDrop,
		now:      now,
	}
}

func (s *Sessions) Get(sessionID string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(sessionID).store
}

// Acquire returns the session's store and keeps the session from being swept
// until release is called. release also counts as an access.
func (s *Sessions) Acquire(sessionID string) (store *Store, release func()) {
	s.mu.Lock()
	sess := s.getLocked(sessionID)
	sess.inUse++
	s.mu.Unlock()

	var once sync.Once
	return sess.store, func() {
		once.Do(func() {
			s.mu.Lock()
			sess.inUse--
			sess.lastSeen = s.now()
			s.mu.Unlock()
		})
	}
}

func (s *Sessions) getLocked(sessionID string) *session {
	if sess, ok := s.sessions[sessionID]; ok {
		sess.lastSeen = s.now()
		return sess
	}

	store := NewStore()
	if s.onCreate != nil {
		s.onCreate(sessionID, store)
	}
	sess := &session{store: store, lastSeen: s.now()}
	s.sessions[sessionID] = sess
	return sess
}

func (s *Sessions) Drop(sessionID string) {
	s.mu.Lock()
	_, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()

	if ok && s.onDrop != nil {
		s.onDrop(sessionID)
	}
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep drops every session idle for longer than the idle TTL and returns
// how many were dropped. Sessions held through Acquire are never dropped.
func (s *Sessions) Sweep() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	var expired []string
	for id, sess := range s.sessions {
		if sess.inUse == 0 && sess.lastSeen.Before(cutoff) {
			expired = append(expired, id)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	if s.onDrop != nil {
		for _, id := range expired {
			s.onDrop(id)
		}
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done.
func (s *Sessions) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
