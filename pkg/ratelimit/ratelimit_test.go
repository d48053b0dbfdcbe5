package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterEnforcesThreshold(t *testing.T) {
	l := New(time.Minute, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("10.0.0.1"), "request %d should pass", i+1)
	}
	assert.False(t, l.Allow("10.0.0.1"), "fourth request should be rejected")

	// Other clients are tracked independently.
	assert.True(t, l.Allow("10.0.0.2"))
}

func TestLimiterWindowRollover(t *testing.T) {
	l := New(10*time.Millisecond, 1)

	assert.True(t, l.Allow("ip"))
	assert.False(t, l.Allow("ip"))

	time.Sleep(15 * time.Millisecond)
	assert.True(t, l.Allow("ip"), "new window should reset the counter")
}

func TestLimiterDisabledWhenMaxZero(t *testing.T) {
	l := New(time.Minute, 0)
	for i := 0; i < 100; i++ {
		assert.True(t, l.Allow("ip"))
	}
}
