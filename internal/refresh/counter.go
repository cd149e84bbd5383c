// Package refresh carries the change signal that tells task-dependent views
// to re-fetch, and the generation bookkeeping that keeps stale responses out.
package refresh

import "sync"

// Counter is a monotonically increasing change signal. Its value has no
// meaning beyond "changed since last observed".
type Counter struct {
	mu    sync.Mutex
	value uint64
	subs  map[int]chan uint64
	next  int
}

// NewCounter returns a counter at zero.
func NewCounter() *Counter {
	return &Counter{subs: make(map[int]chan uint64)}
}

// Value returns the current value.
func (c *Counter) Value() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Bump increments the counter once and notifies subscribers.
func (c *Counter) Bump() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.value++
	for _, ch := range c.subs {
		// Keep only the newest value in the slot.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- c.value:
		default:
		}
	}
	return c.value
}

// Subscribe returns a channel that receives the latest value after each Bump.
// Slow readers see only the newest value. Call cancel to stop receiving.
func (c *Counter) Subscribe() (<-chan uint64, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.next
	c.next++
	ch := make(chan uint64, 1)
	c.subs[id] = ch
	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}
