package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryBackoff(t *testing.T) {
	assert.Equal(t, 30*time.Second, RetryBackoff(1))
	assert.Equal(t, time.Minute, RetryBackoff(2))
	assert.Equal(t, 2*time.Minute, RetryBackoff(3))
	assert.Equal(t, 4*time.Minute, RetryBackoff(4))

	// Capped so a stuck job never waits more than half an hour
	assert.Equal(t, 30*time.Minute, RetryBackoff(10))
	assert.Equal(t, 30*time.Minute, RetryBackoff(50))

	// Out-of-range counts fall back to the first delay
	assert.Equal(t, 30*time.Second, RetryBackoff(0))
	assert.Equal(t, 30*time.Second, RetryBackoff(-1))
}
