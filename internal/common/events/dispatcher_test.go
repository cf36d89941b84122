package events

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

// counter mimics an owner: a value behind its own lock.
type counter struct {
	mu     sync.Mutex
	value  int
	events Dispatcher[int]
}

func (c *counter) incr() {
	c.mu.Lock()
	c.value++
	c.events.Publish(c.value)
	c.mu.Unlock()
	c.events.Flush()
}

func (c *counter) get() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func TestDispatcher_ConcurrentPublishersDeliverInOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	var c counter
	var (
		mu   sync.Mutex
		seen []int
	)
	c.events.Subscribe(func(v int) {
		// stall the first delivery so later publishers queue behind it
		if v == 1 {
			time.Sleep(20 * time.Millisecond)
		}
		// reading the owner from a listener must not deadlock
		_ = c.get()
		mu.Lock()
		seen = append(seen, v)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.incr()
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 20)
	for i, v := range seen {
		assert.Equal(t, i+1, v)
	}
	assert.Equal(t, c.get(), seen[len(seen)-1])
}

func TestDispatcher_ListenerMayTriggerChanges(t *testing.T) {
	var c counter
	var seen []int
	c.events.Subscribe(func(v int) {
		seen = append(seen, v)
		if v < 3 {
			c.incr()
		}
	})

	c.incr()
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestDispatcher_NoListeners(t *testing.T) {
	var d Dispatcher[string]
	d.Publish("dropped")
	d.Flush()

	var got []string
	d.Subscribe(func(s string) { got = append(got, s) })
	d.Publish("kept")
	d.Flush()
	assert.Equal(t, []string{"kept"}, got)
}
