// Package events delivers state snapshots to listeners in the order the
// state changed.
package events

import "sync"

// Dispatcher queues snapshots and hands them to listeners one at a time.
// Owners call Publish while holding their own lock, so queue order equals
// mutation order, and Flush after releasing it. Whichever goroutine finds the
// queue idle drains it; everyone else returns at once. Listeners may read the
// owner's state and may trigger further changes, which are delivered after
// the current listener returns.
type Dispatcher[T any] struct {
	mu        sync.Mutex
	pending   []T
	draining  bool
	listeners []func(T)
}

func (d *Dispatcher[T]) Subscribe(l func(T)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// Publish queues v for delivery.
func (d *Dispatcher[T]) Publish(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.listeners) == 0 {
		return
	}
	d.pending = append(d.pending, v)
}

// Flush delivers queued snapshots unless another goroutine is already doing so.
func (d *Dispatcher[T]) Flush() {
	d.mu.Lock()
	if d.draining {
		d.mu.Unlock()
		return
	}
	d.draining = true
	for len(d.pending) > 0 {
		v := d.pending[0]
		d.pending = d.pending[1:]
		listeners := d.listeners
		d.mu.Unlock()

		for _, l := range listeners {
			l(v)
		}

		d.mu.Lock()
	}
	d.draining = false
	d.mu.Unlock()
}
