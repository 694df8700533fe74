// Package security holds the in-memory abuse-control state of the server:
// CSRF tokens, per-IP login throttling and revoked session tokens. Every
// table is safe for concurrent use and is bounded by a periodic sweep.
package security

import (
	"context"
	"time"

	"portfolio/pkg/logger"
)

// Clock returns the current time. A nil Clock means time.Now.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// Sweeper evicts expired entries and reports how many were removed.
type Sweeper interface {
	Sweep() int
}

// RunSweeper calls Sweep on every sweeper each interval until ctx is done.
func RunSweeper(ctx context.Context, interval time.Duration, sweepers ...Sweeper) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := 0
			for _, s := range sweepers {
				removed += s.Sweep()
			}
			if removed > 0 {
				logger.Debug().Int("removed", removed).Msg("swept expired security entries")
			}
		}
	}
}
