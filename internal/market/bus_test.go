package market

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBusImmediateAndUnsubscribe(t *testing.T) {
	b := NewBus(0)

	var calls int
	unsub := b.Subscribe(func() { calls++ })

	b.Notify()
	b.Notify()
	assert.Equal(t, 2, calls, "zero interval fires every time")

	unsub()
	b.Notify()
	assert.Equal(t, 2, calls, "unsubscribed callback must not fire")
}

func TestBusCoalescesBursts(t *testing.T) {
	b := NewBus(20 * time.Millisecond)

	var mu sync.Mutex
	calls := 0
	b.Subscribe(func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})

	// First notify fires immediately; the burst behind it coalesces
	// into exactly one deferred fire.
	for i := 0; i < 10; i++ {
		b.Notify()
	}
	mu.Lock()
	assert.Equal(t, 1, calls)
	mu.Unlock()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	}, time.Second, 5*time.Millisecond, "burst must collapse to one deferred notification")

	// No further ghost notifications.
	time.Sleep(50 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 2, calls)
	mu.Unlock()
}
