package web

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_ConcurrentFirstRequestsShareBucket(t *testing.T) {
	rl := newRateLimiter(10) // burst 1, refill every 6s

	var allowed atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if rl.Allow("203.0.113.7") == nil {
				allowed.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), allowed.Load())
	assert.Equal(t, 1, rl.limiters.Len())
}

func TestRateLimiter_KeysAreIndependent(t *testing.T) {
	rl := newRateLimiter(10)
	assert.NoError(t, rl.Allow("203.0.113.7"))
	assert.Error(t, rl.Allow("203.0.113.7"))
	assert.NoError(t, rl.Allow("198.51.100.2"))
}
