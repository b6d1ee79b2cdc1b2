package throttle

import (
	"context"
	"sync"
	"time"
)

type attempts struct {
	failures    int
	lockedUntil time.Time
	expires     time.Time
}

// MemoryLimiter keeps failure counts in process memory. It is used when no
// Redis server is configured; counts are lost when the process exits.
type MemoryLimiter struct {
	policy Policy
	now    func() time.Time

	mu    sync.Mutex
	state map[string]*attempts
}

// NewMemoryLimiter creates an in-memory limiter.
func NewMemoryLimiter(policy Policy) *MemoryLimiter {
	return &MemoryLimiter{
		policy: policy.normalized(),
		now:    time.Now,
		state:  make(map[string]*attempts),
	}
}

// Locked returns how long username stays locked, or zero.
func (l *MemoryLimiter) Locked(_ context.Context, username string) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	a := l.current(username)
	if a == nil {
		return 0, nil
	}
	if left := a.lockedUntil.Sub(l.now()); left > 0 {
		return left, nil
	}
	return 0, nil
}

// Failure counts a failed attempt and reports whether username is now locked.
func (l *MemoryLimiter) Failure(_ context.Context, username string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	a := l.current(username)
	if a == nil {
		a = &attempts{expires: now.Add(l.policy.Lockout)}
		l.state[username] = a
	}

	a.failures++
	if a.failures >= l.policy.MaxAttempts {
		a.failures = 0
		a.lockedUntil = now.Add(l.policy.Lockout)
		a.expires = a.lockedUntil
		return true, nil
	}
	return false, nil
}

// Reset forgets the failures of username.
func (l *MemoryLimiter) Reset(_ context.Context, username string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.state, username)
	return nil
}

// current returns the live state of username, dropping it once expired.
func (l *MemoryLimiter) current(username string) *attempts {
	a, ok := l.state[username]
	if !ok {
		return nil
	}
	if !l.now().Before(a.expires) {
		delete(l.state, username)
		return nil
	}
	return a
}
