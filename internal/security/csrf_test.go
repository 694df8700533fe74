package security_test

import (
	"testing"
	"time"

	"portfolio/internal/security"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSRFGuard_IssueAndValidate(t *testing.T) {
	clock := newFakeClock()
	guard := security.NewCSRFGuard(2*time.Hour, clock.Now)

	token, expiresAt, err := guard.Issue("10.0.0.1")
	require.NoError(t, err)
	assert.Len(t, token, 64)
	assert.Equal(t, clock.Now().Add(2*time.Hour), expiresAt)

	assert.NoError(t, guard.Validate(token, "10.0.0.1"))
	// reuse within the TTL is accepted
	assert.NoError(t, guard.Validate(token, "10.0.0.1"))
}

func TestCSRFGuard_TokensAreUnique(t *testing.T) {
	guard := security.NewCSRFGuard(time.Hour, nil)
	a, _, err := guard.Issue("ip")
	require.NoError(t, err)
	b, _, err := guard.Issue("ip")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestCSRFGuard_MissingToken(t *testing.T) {
	guard := security.NewCSRFGuard(time.Hour, nil)
	assert.ErrorIs(t, guard.Validate("", "10.0.0.1"), security.ErrCSRFMissing)
}

func TestCSRFGuard_UnknownToken(t *testing.T) {
	guard := security.NewCSRFGuard(time.Hour, nil)
	assert.ErrorIs(t, guard.Validate("deadbeef", "10.0.0.1"), security.ErrCSRFInvalid)
}

func TestCSRFGuard_RejectsOtherIPAndDiscardsToken(t *testing.T) {
	guard := security.NewCSRFGuard(2*time.Hour, nil)
	token, _, err := guard.Issue("10.0.0.1")
	require.NoError(t, err)

	assert.ErrorIs(t, guard.Validate(token, "10.0.0.2"), security.ErrCSRFInvalid)
	// the mismatch destroyed the token, even for the issuing IP
	assert.ErrorIs(t, guard.Validate(token, "10.0.0.1"), security.ErrCSRFInvalid)
	assert.Equal(t, 0, guard.Len())
}

func TestCSRFGuard_RejectsAfterTTL(t *testing.T) {
	clock := newFakeClock()
	guard := security.NewCSRFGuard(2*time.Hour, clock.Now)
	token, _, err := guard.Issue("10.0.0.1")
	require.NoError(t, err)

	clock.Advance(2*time.Hour - time.Second)
	assert.NoError(t, guard.Validate(token, "10.0.0.1"))

	clock.Advance(time.Second)
	assert.ErrorIs(t, guard.Validate(token, "10.0.0.1"), security.ErrCSRFInvalid)
}

func TestCSRFGuard_Sweep(t *testing.T) {
	clock := newFakeClock()
	guard := security.NewCSRFGuard(time.Hour, clock.Now)
	_, _, err := guard.Issue("a")
	require.NoError(t, err)
	clock.Advance(30 * time.Minute)
	_, _, err = guard.Issue("b")
	require.NoError(t, err)

	clock.Advance(31 * time.Minute)
	assert.Equal(t, 1, guard.Sweep())
	assert.Equal(t, 1, guard.Len())
}
