package security

import (
	"sync"
	"time"
)

// RevocationList remembers revoked session token IDs until the tokens would
// have expired anyway.
type RevocationList struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	clock   Clock
}

// NewRevocationList creates an empty list.
func NewRevocationList(clock Clock) *RevocationList {
	return &RevocationList{
		revoked: make(map[string]time.Time),
		clock:   clock,
	}
}

// Revoke marks tokenID as revoked until expiresAt.
func (l *RevocationList) Revoke(tokenID string, expiresAt time.Time) {
	l.mu.Lock()
	l.revoked[tokenID] = expiresAt
	l.mu.Unlock()
}

// IsRevoked reports whether tokenID has been revoked.
func (l *RevocationList) IsRevoked(tokenID string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.revoked[tokenID]
	return ok
}

// Sweep forgets revocations of tokens that have expired.
func (l *RevocationList) Sweep() int {
	now := l.clock.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for id, exp := range l.revoked {
		if !now.Before(exp) {
			delete(l.revoked, id)
			removed++
		}
	}
	return removed
}
