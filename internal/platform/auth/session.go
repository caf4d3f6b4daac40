package auth

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Profile is the immutable user snapshot cached on a session. It is replaced
// wholesale on re-login, never mutated in place, and never contains a
// password or hash.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	Role        Role      `json:"role"`
	Permissions []string  `json:"permissions"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	Active      bool      `json:"isActive"`
}

// Session is the server-side record backing a bearer token. A session whose
// token does not verify grants nothing, regardless of what the record says.
type Session struct {
	Token     string
	User      Profile
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Expired reports whether the session is past its expiry.
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && now.After(s.ExpiresAt)
}

// SessionStore persists sessions. Create overwrites any prior session for
// the same user (one active session per user, last write wins). Read returns
// ErrSessionAbsent when no live session exists for the token. Clear removes
// token and profile together; after Clear, Read returns ErrSessionAbsent.
type SessionStore interface {
	Create(ctx context.Context, s *Session) error
	Read(ctx context.Context, token string) (*Session, error)
	Clear(ctx context.Context, token string) error
	ClearAllForUser(ctx context.Context, userID uuid.UUID) error
}

// MemorySessionStore is an in-memory SessionStore for development and tests.
// Thread-safe; expired sessions are dropped on read and swept by a janitor.
type MemorySessionStore struct {
	mu       sync.RWMutex
	byToken  map[string]*Session
	byUserID map[uuid.UUID]string
	done     chan struct{}
	closeOnce sync.Once
}

func NewMemorySessionStore() *MemorySessionStore {
	s := &MemorySessionStore{
		byToken:  make(map[string]*Session),
		byUserID: make(map[uuid.UUID]string),
		done:     make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *MemorySessionStore) Create(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// One session per user: drop the previous token first.
	if old, ok := s.byUserID[sess.User.ID]; ok {
		delete(s.byToken, old)
	}

	cp := *sess
	s.byToken[sess.Token] = &cp
	s.byUserID[sess.User.ID] = sess.Token
	return nil
}

func (s *MemorySessionStore) Read(_ context.Context, token string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.byToken[token]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionAbsent
	}
	if sess.Expired(time.Now()) {
		s.mu.Lock()
		s.removeLocked(token)
		s.mu.Unlock()
		return nil, ErrSessionAbsent
	}

	cp := *sess
	return &cp, nil
}

func (s *MemorySessionStore) Clear(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(token)
	return nil
}

func (s *MemorySessionStore) ClearAllForUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token, ok := s.byUserID[userID]; ok {
		s.removeLocked(token)
	}
	return nil
}

// Close stops the janitor goroutine. Safe to call multiple times.
func (s *MemorySessionStore) Close() {
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *MemorySessionStore) removeLocked(token string) {
	if sess, ok := s.byToken[token]; ok {
		delete(s.byToken, token)
		if s.byUserID[sess.User.ID] == token {
			delete(s.byUserID, sess.User.ID)
		}
	}
}

func (s *MemorySessionStore) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for token, sess := range s.byToken {
				if sess.Expired(now) {
					s.removeLocked(token)
				}
			}
			s.mu.Unlock()
		}
	}
}
