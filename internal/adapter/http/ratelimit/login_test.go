package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoginRateLimiter_AllowsUpToMax(t *testing.T) {
	limiter := NewLoginRateLimiter(3, time.Minute, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, _ := limiter.Check("1.2.3.4")
		assert.True(t, allowed, "attempt %d", i+1)
	}

	allowed, retryAfter := limiter.Check("1.2.3.4")
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestLoginRateLimiter_ClientsAreIndependent(t *testing.T) {
	limiter := NewLoginRateLimiter(1, time.Minute, time.Minute)

	allowed, _ := limiter.Check("1.2.3.4")
	assert.True(t, allowed)
	allowed, _ = limiter.Check("1.2.3.4")
	assert.False(t, allowed)

	allowed, _ = limiter.Check("5.6.7.8")
	assert.True(t, allowed)
}

func TestLoginRateLimiter_ResetClearsBlock(t *testing.T) {
	limiter := NewLoginRateLimiter(1, time.Minute, time.Minute)

	limiter.Check("1.2.3.4")
	allowed, _ := limiter.Check("1.2.3.4")
	assert.False(t, allowed)

	limiter.Reset("1.2.3.4")
	allowed, _ = limiter.Check("1.2.3.4")
	assert.True(t, allowed)
}

func TestLoginRateLimiter_WindowExpiryResetsCount(t *testing.T) {
	limiter := NewLoginRateLimiter(1, 10*time.Millisecond, time.Minute)

	allowed, _ := limiter.Check("1.2.3.4")
	assert.True(t, allowed)

	time.Sleep(20 * time.Millisecond)
	allowed, _ = limiter.Check("1.2.3.4")
	assert.True(t, allowed, "window expired, count starts over")
}
