package market

import (
	"sync"
	"time"
)

// NotifyThrottle is the minimum interval between subscriber callback
// bursts. Mutations arriving faster coalesce into one deferred fire.
const NotifyThrottle = 100 * time.Millisecond

// Bus fans out change notifications to subscribers with throttling.
// Subscribe and Notify may be called from any goroutine.
type Bus struct {
	mu       sync.Mutex
	subs     map[int]func()
	nextID   int
	interval time.Duration
	last     time.Time
	pending  bool
	timeNow  func() time.Time // for testing
}

func NewBus(interval time.Duration) *Bus {
	return &Bus{
		subs:     make(map[int]func()),
		interval: interval,
		timeNow:  time.Now,
	}
}

// Subscribe registers a callback and returns its unsubscribe func.
func (b *Bus) Subscribe(fn func()) func() {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

// Notify fires subscribers immediately when outside the throttle
// window; otherwise exactly one deferred fire is scheduled at the next
// allowed instant.
func (b *Bus) Notify() {
	b.mu.Lock()
	now := b.timeNow()
	if now.Sub(b.last) >= b.interval {
		b.last = now
		b.pending = false
		fns := b.snapshotLocked()
		b.mu.Unlock()
		for _, fn := range fns {
			fn()
		}
		return
	}
	if b.pending {
		b.mu.Unlock()
		return
	}
	b.pending = true
	wait := b.interval - now.Sub(b.last)
	b.mu.Unlock()

	time.AfterFunc(wait, b.firePending)
}

func (b *Bus) firePending() {
	b.mu.Lock()
	if !b.pending {
		b.mu.Unlock()
		return
	}
	b.pending = false
	b.last = b.timeNow()
	fns := b.snapshotLocked()
	b.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (b *Bus) snapshotLocked() []func() {
	fns := make([]func(), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	return fns
}
