package security_test

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"portfolio/internal/security"

	"github.com/stretchr/testify/assert"
)

func newThrottle(clock *fakeClock) *security.LoginThrottle {
	return security.NewLoginThrottle(5, 15*time.Minute, 15*time.Minute, clock.Now)
}

func failTimes(t *testing.T, th *security.LoginThrottle, ip string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		locked, _ := th.Acquire(ip)
		assert.False(t, locked, "attempt %d must not be locked", i+1)
	}
}

func TestLoginThrottle_LocksOnSixthAttempt(t *testing.T) {
	clock := newFakeClock()
	th := newThrottle(clock)

	failTimes(t, th, "1.1.1.1", 5)

	locked, retry := th.Acquire("1.1.1.1")
	assert.True(t, locked, "sixth attempt is locked")
	assert.Equal(t, 15*time.Minute, retry)

	clock.Advance(10 * time.Minute)
	locked, retry = th.Acquire("1.1.1.1")
	assert.True(t, locked)
	assert.Equal(t, 5*time.Minute, retry)

	// other IPs are unaffected
	locked, _ = th.Acquire("2.2.2.2")
	assert.False(t, locked)
}

func TestLoginThrottle_ConcurrentAttemptsAreCapped(t *testing.T) {
	th := newThrottle(newFakeClock())

	var allowed int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if locked, _ := th.Acquire("1.1.1.1"); !locked {
				atomic.AddInt32(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), atomic.LoadInt32(&allowed))
}

func TestLoginThrottle_ReleaseRefundsAttempt(t *testing.T) {
	th := newThrottle(newFakeClock())

	failTimes(t, th, "1.1.1.1", 5)
	th.Release("1.1.1.1")

	locked, _ := th.Acquire("1.1.1.1")
	assert.False(t, locked, "a released attempt does not count")
	locked, _ = th.Acquire("1.1.1.1")
	assert.True(t, locked)
}

func TestLoginThrottle_UnlocksAfterLockout(t *testing.T) {
	clock := newFakeClock()
	th := newThrottle(clock)
	failTimes(t, th, "1.1.1.1", 5)
	locked, _ := th.Acquire("1.1.1.1")
	assert.True(t, locked)

	clock.Advance(15 * time.Minute)

	// a fresh window is counted from scratch
	failTimes(t, th, "1.1.1.1", 5)
	locked, _ = th.Acquire("1.1.1.1")
	assert.True(t, locked)
}

func TestLoginThrottle_WindowExpiry(t *testing.T) {
	clock := newFakeClock()
	th := newThrottle(clock)
	failTimes(t, th, "1.1.1.1", 5)

	clock.Advance(15 * time.Minute)
	locked, _ := th.Acquire("1.1.1.1")
	assert.False(t, locked, "failures outside the window do not count")
}

func TestLoginThrottle_ResetOnSuccess(t *testing.T) {
	th := newThrottle(newFakeClock())
	failTimes(t, th, "1.1.1.1", 4)
	th.Reset("1.1.1.1")
	failTimes(t, th, "1.1.1.1", 5)

	locked, _ := th.Acquire("1.1.1.1")
	assert.True(t, locked)
}

func TestLoginThrottle_Disabled(t *testing.T) {
	th := security.NewLoginThrottle(0, time.Minute, time.Minute, nil)
	for i := 0; i < 100; i++ {
		locked, _ := th.Acquire("1.1.1.1")
		assert.False(t, locked)
	}
	assert.Equal(t, 0, th.Len())
}

func TestLoginThrottle_SweepEvictsStaleEntries(t *testing.T) {
	clock := newFakeClock()
	th := newThrottle(clock)
	failTimes(t, th, "1.1.1.1", 5)
	th.Acquire("1.1.1.1") // locks
	failTimes(t, th, "2.2.2.2", 1)

	clock.Advance(16 * time.Minute)
	failTimes(t, th, "3.3.3.3", 1)

	assert.Equal(t, 2, th.Sweep())
	assert.Equal(t, 1, th.Len())
}
