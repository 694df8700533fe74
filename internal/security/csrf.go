package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrCSRFMissing is returned when no token was presented.
	ErrCSRFMissing = errors.New("CSRF token missing")
	// ErrCSRFInvalid is returned for unknown, expired or IP-mismatched tokens.
	ErrCSRFInvalid = errors.New("invalid or expired CSRF token")
)

type csrfRecord struct {
	ip        string
	expiresAt time.Time
}

// CSRFGuard issues random tokens bound to the requesting IP and validates
// them until they expire. Tokens may be reused within their lifetime.
type CSRFGuard struct {
	mu     sync.Mutex
	tokens map[string]csrfRecord
	ttl    time.Duration
	clock  Clock
}

// NewCSRFGuard creates a guard whose tokens live for ttl.
func NewCSRFGuard(ttl time.Duration, clock Clock) *CSRFGuard {
	return &CSRFGuard{
		tokens: make(map[string]csrfRecord),
		ttl:    ttl,
		clock:  clock,
	}
}

// Issue creates a 32-byte random token for ip.
func (g *CSRFGuard) Issue(ip string) (string, time.Time, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", time.Time{}, fmt.Errorf("failed to generate CSRF token: %w", err)
	}
	token := hex.EncodeToString(buf)
	expiresAt := g.clock.now().Add(g.ttl)

	g.mu.Lock()
	g.tokens[token] = csrfRecord{ip: ip, expiresAt: expiresAt}
	g.mu.Unlock()

	return token, expiresAt, nil
}

// Validate accepts token when it exists, has not expired and was issued to ip.
// A known token that fails either check is discarded.
func (g *CSRFGuard) Validate(token, ip string) error {
	if token == "" {
		return ErrCSRFMissing
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	record, ok := g.tokens[token]
	if !ok {
		return ErrCSRFInvalid
	}
	if !g.clock.now().Before(record.expiresAt) || record.ip != ip {
		delete(g.tokens, token)
		return ErrCSRFInvalid
	}
	return nil
}

// Sweep drops expired tokens.
func (g *CSRFGuard) Sweep() int {
	now := g.clock.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for token, record := range g.tokens {
		if !now.Before(record.expiresAt) {
			delete(g.tokens, token)
			removed++
		}
	}
	return removed
}

// Len reports the number of live tokens.
func (g *CSRFGuard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.tokens)
}
