package security_test

import (
	"context"
	"testing"
	"time"

	"portfolio/internal/security"

	"github.com/stretchr/testify/assert"
)

func TestRevocationList(t *testing.T) {
	clock := newFakeClock()
	list := security.NewRevocationList(clock.Now)

	list.Revoke("jti-1", clock.Now().Add(time.Hour))
	assert.True(t, list.IsRevoked("jti-1"))
	assert.False(t, list.IsRevoked("jti-2"))

	assert.Equal(t, 0, list.Sweep())
	clock.Advance(time.Hour)
	assert.Equal(t, 1, list.Sweep())
	assert.False(t, list.IsRevoked("jti-1"))
}

type countingSweeper struct{ calls chan struct{} }

func (s *countingSweeper) Sweep() int {
	select {
	case s.calls <- struct{}{}:
	default:
	}
	return 0
}

func TestRunSweeper_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := &countingSweeper{calls: make(chan struct{}, 10)}

	done := make(chan struct{})
	go func() {
		security.RunSweeper(ctx, 5*time.Millisecond, s)
		close(done)
	}()

	select {
	case <-s.calls:
	case <-time.After(time.Second):
		t.Fatal("sweeper never ran")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
