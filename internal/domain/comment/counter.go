package comment

import "sync/atomic"

// Counter is the denormalized comment total shown next to the thread.
// Mutations adjust it directly; every successful load re-seeds it from the tree.
type Counter struct {
	value atomic.Int64
}

func (c *Counter) Value() int {
	return int(c.value.Load())
}

func (c *Counter) Set(n int) {
	c.value.Store(int64(n))
}

// Add applies delta without letting the total drop below zero.
func (c *Counter) Add(delta int) {
	for {
		current := c.value.Load()
		next := current + int64(delta)
		if next < 0 {
			next = 0
		}
		if c.value.CompareAndSwap(current, next) {
			return
		}
	}
}
