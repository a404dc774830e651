// Package ratelimit throttles repeated login attempts per client address.
package ratelimit

import (
	"sync"
	"time"
)

type attemptRecord struct {
	count        int
	lastAttempt  time.Time
	blockedUntil time.Time
}

// LoginRateLimiter blocks a client after too many attempts inside a sliding
// window. A successful login resets the client's record.
type LoginRateLimiter struct {
	mu          sync.Mutex
	attempts    map[string]*attemptRecord
	maxAttempts int
	window      time.Duration
	blockFor    time.Duration
}

func NewLoginRateLimiter(maxAttempts int, window, blockFor time.Duration) *LoginRateLimiter {
	l := &LoginRateLimiter{
		attempts:    make(map[string]*attemptRecord),
		maxAttempts: maxAttempts,
		window:      window,
		blockFor:    blockFor,
	}
	go l.cleanup()
	return l
}

// Check records an attempt and reports whether the client may proceed. When
// blocked it also returns how long the block lasts.
func (l *LoginRateLimiter) Check(clientID string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	record, ok := l.attempts[clientID]
	if !ok {
		record = &attemptRecord{}
		l.attempts[clientID] = record
	}

	if now.Before(record.blockedUntil) {
		return false, record.blockedUntil.Sub(now)
	}

	if now.Sub(record.lastAttempt) > l.window {
		record.count = 0
	}

	record.count++
	record.lastAttempt = now

	if record.count > l.maxAttempts {
		record.blockedUntil = now.Add(l.blockFor)
		return false, l.blockFor
	}
	return true, 0
}

func (l *LoginRateLimiter) Reset(clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, clientID)
}

func (l *LoginRateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		l.mu.Lock()
		now := time.Now()
		for clientID, record := range l.attempts {
			if now.Sub(record.lastAttempt) > l.window*2 && now.After(record.blockedUntil) {
				delete(l.attempts, clientID)
			}
		}
		l.mu.Unlock()
	}
}
