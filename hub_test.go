package main

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func newTestHub(cfg ServerConfig) *Hub {
	g, _ := newTestGame(DefaultGameConfig())
	return NewHub(g, nil, cfg, zerolog.Nop())
}

func TestTryAcquireConcurrent(t *testing.T) {
	h := newTestHub(ServerConfig{MaxConnsPerIP: 5, MaxTotalConns: 100})

	var granted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.TryAcquire("10.0.0.1") {
				granted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), granted.Load())
	assert.Equal(t, 5, h.totalConns)
}

func TestTryAcquireTotalLimit(t *testing.T) {
	h := newTestHub(ServerConfig{MaxConnsPerIP: 5, MaxTotalConns: 2})

	assert.True(t, h.TryAcquire("10.0.0.1"))
	assert.True(t, h.TryAcquire("10.0.0.2"))
	assert.False(t, h.TryAcquire("10.0.0.3"))

	h.Release("10.0.0.1")
	assert.True(t, h.TryAcquire("10.0.0.3"))
}

func TestReleaseUnknownIP(t *testing.T) {
	h := newTestHub(ServerConfig{MaxConnsPerIP: 1, MaxTotalConns: 1})

	h.Release("10.0.0.9")
	assert.Zero(t, h.totalConns)
	assert.True(t, h.TryAcquire("10.0.0.1"))
	assert.False(t, h.TryAcquire("10.0.0.1"))
}
