package auth

import (
	"sync"
	"time"
)

const (
	loginWindow      = 15 * time.Minute
	lockDuration     = 10 * time.Minute
	maxLoginAttempts = 5
)

type attemptState struct {
	count        int
	firstAttempt time.Time
	lockedUntil  time.Time
}

// LoginLimiter tracks failed login attempts per key (typically a client IP)
// and locks a key out after too many failures inside the window. State is
// in-process only and vanishes on restart.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string]*attemptState
}

func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{attempts: make(map[string]*attemptState)}
}

// RetryAfter returns how long the key remains locked out, or zero when the
// key may attempt a login.
func (l *LoginLimiter) RetryAfter(key string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	state, ok := l.attempts[key]
	if !ok {
		return 0
	}
	if time.Now().After(state.lockedUntil) {
		return 0
	}
	return time.Until(state.lockedUntil)
}

// RecordFailure registers a failed attempt and returns the number of
// attempts remaining before lockout. Attempts outside the window start a
// fresh count.
func (l *LoginLimiter) RecordFailure(key string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	state, ok := l.attempts[key]
	if !ok || now.Sub(state.firstAttempt) > loginWindow {
		state = &attemptState{firstAttempt: now}
		l.attempts[key] = state
	}

	state.count++
	if state.count >= maxLoginAttempts {
		state.lockedUntil = now.Add(lockDuration)
		state.count = maxLoginAttempts
	}

	remaining := maxLoginAttempts - state.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// Reset clears the failure history for the key after a successful login.
func (l *LoginLimiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}
