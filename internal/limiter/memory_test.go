package limiter

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(cfg Config) (*Memory, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)}
	m := NewMemory(cfg, nil)
	m.now = clock.Now
	return m, clock
}

func TestMemory_IPRateLimit(t *testing.T) {
	m, clock := newTestLimiter(Config{IPRate: 1, IPBurst: 2, MaxFailures: 100})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, _, err := m.Allow(ctx, "a@example.com", "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, ok, "attempt %d should be allowed", i+1)
	}

	ok, retry, err := m.Allow(ctx, "a@example.com", "10.0.0.1")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Second, retry)

	// Other addresses are unaffected.
	ok, _, _ = m.Allow(ctx, "a@example.com", "10.0.0.2")
	assert.True(t, ok)

	clock.Advance(time.Second)
	ok, _, _ = m.Allow(ctx, "a@example.com", "10.0.0.1")
	assert.True(t, ok)
}

func TestMemory_AccountLockoutWithBackoff(t *testing.T) {
	m, clock := newTestLimiter(Config{IPRate: 100, IPBurst: 100, MaxFailures: 3, Lockout: time.Minute, Window: time.Hour})
	ctx := context.Background()
	email := "admin@jbfsport.com"

	for i := 0; i < 2; i++ {
		locked, _, err := m.Failure(ctx, email, "")
		require.NoError(t, err)
		assert.False(t, locked)
	}

	locked, lockFor, err := m.Failure(ctx, email, "")
	require.NoError(t, err)
	assert.True(t, locked)
	assert.Equal(t, time.Minute, lockFor)

	ok, retry, _ := m.Allow(ctx, email, "")
	assert.False(t, ok)
	assert.Equal(t, time.Minute, retry)

	clock.Advance(time.Minute)
	ok, _, _ = m.Allow(ctx, email, "")
	assert.True(t, ok)

	// Second lockout doubles.
	for i := 0; i < 2; i++ {
		m.Failure(ctx, email, "")
	}
	locked, lockFor, _ = m.Failure(ctx, email, "")
	assert.True(t, locked)
	assert.Equal(t, 2*time.Minute, lockFor)
}

func TestMemory_SuccessClearsFailures(t *testing.T) {
	m, _ := newTestLimiter(Config{IPRate: 100, IPBurst: 100, MaxFailures: 2, Lockout: time.Minute})
	ctx := context.Background()

	m.Failure(ctx, "a@example.com", "")
	require.NoError(t, m.Success(ctx, "a@example.com", ""))

	locked, _, _ := m.Failure(ctx, "a@example.com", "")
	assert.False(t, locked)
}

func TestMemory_FailureWindowResets(t *testing.T) {
	m, clock := newTestLimiter(Config{IPRate: 100, IPBurst: 100, MaxFailures: 2, Lockout: time.Minute, Window: time.Minute})
	ctx := context.Background()

	m.Failure(ctx, "a@example.com", "")
	clock.Advance(2 * time.Minute)

	locked, _, _ := m.Failure(ctx, "a@example.com", "")
	assert.False(t, locked)
}

func TestMemory_Prune(t *testing.T) {
	m, clock := newTestLimiter(Config{IPRate: 1, IPBurst: 1})
	ctx := context.Background()

	m.Allow(ctx, "a@example.com", "10.0.0.1")
	clock.Advance(time.Minute)
	m.Prune()

	m.mu.Lock()
	defer m.mu.Unlock()
	assert.Empty(t, m.ips)
}
