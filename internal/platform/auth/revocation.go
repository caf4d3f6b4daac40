package auth

import (
	"sync"
	"time"
)

// RevocationList tracks token jtis that were invalidated before their natural
// expiry (logout, forced sign-out). Entries are dropped once the token would
// have expired anyway. Thread-safe.
type RevocationList struct {
	mu      sync.RWMutex
	byJTI   map[string]revokedToken
	byUser  map[string][]string
	done    chan struct{}
	closeOnce sync.Once
}

type revokedToken struct {
	userID    string
	expiresAt time.Time
}

// NewRevocationList creates a list and starts a background sweeper that
// removes naturally-expired entries.
func NewRevocationList() *RevocationList {
	l := &RevocationList{
		byJTI:  make(map[string]revokedToken),
		byUser: make(map[string][]string),
		done:   make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Revoke marks a jti as invalid until expiresAt, associating it with userID
// for bulk revocation.
func (l *RevocationList) Revoke(jti, userID string, expiresAt time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.byJTI[jti] = revokedToken{userID: userID, expiresAt: expiresAt}
	if userID != "" {
		l.byUser[userID] = append(l.byUser[userID], jti)
	}
}

// IsRevoked reports whether the jti has been revoked.
func (l *RevocationList) IsRevoked(jti string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.byJTI[jti]
	return ok
}

// RevokedCountForUser returns the number of live revocations for a user.
func (l *RevocationList) RevokedCountForUser(userID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	count := 0
	for _, jti := range l.byUser[userID] {
		if _, ok := l.byJTI[jti]; ok {
			count++
		}
	}
	return count
}

// Len returns the number of currently tracked revocations.
func (l *RevocationList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.byJTI)
}

// Close stops the background sweeper. Safe to call multiple times.
func (l *RevocationList) Close() {
	l.closeOnce.Do(func() { close(l.done) })
}

func (l *RevocationList) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.sweep(time.Now())
		}
	}
}

// sweep removes entries whose tokens are past natural expiry; there is no
// need to track a revocation for a token that no longer verifies.
func (l *RevocationList) sweep(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for jti, entry := range l.byJTI {
		if !now.After(entry.expiresAt) {
			continue
		}
		delete(l.byJTI, jti)

		if entry.userID != "" {
			jtis := l.byUser[entry.userID]
			for i, id := range jtis {
				if id == jti {
					l.byUser[entry.userID] = append(jtis[:i], jtis[i+1:]...)
					break
				}
			}
			if len(l.byUser[entry.userID]) == 0 {
				delete(l.byUser, entry.userID)
			}
		}
	}
}
