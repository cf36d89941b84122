package submission

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"farmers-connect/internal/common/errors"
)

func TestGuard_Lifecycle(t *testing.T) {
	g := NewGuard()
	assert.Equal(t, Status{Phase: Idle}, g.Status())

	require.True(t, g.TryBegin("Loading..."))
	assert.Equal(t, Status{Phase: InFlight, Message: "Loading..."}, g.Status())
	assert.True(t, g.InFlight())

	require.NoError(t, g.End(Outcome{Succeeded: true, Message: "120 KES/kg"}))
	assert.Equal(t, Status{Phase: Succeeded, Message: "120 KES/kg"}, g.Status())
	assert.False(t, g.InFlight())

	require.True(t, g.TryBegin("Loading..."))
	require.NoError(t, g.End(Outcome{Message: "unsupported market"}))
	assert.Equal(t, Failed, g.Status().Phase)
	assert.True(t, g.Status().Phase.Terminal())
}

func TestGuard_SecondBeginRejected(t *testing.T) {
	g := NewGuard()
	require.True(t, g.TryBegin("Loading..."))

	assert.False(t, g.TryBegin("Other"))
	assert.Equal(t, "Loading...", g.Status().Message)
}

func TestGuard_EndWithoutBegin(t *testing.T) {
	var g Guard
	err := g.End(Outcome{Succeeded: true})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeGuardNotInFlight))
	assert.Equal(t, Idle, g.Status().Phase)

	require.True(t, g.TryBegin("Loading..."))
	require.NoError(t, g.End(Outcome{Succeeded: true}))
	assert.Error(t, g.End(Outcome{Succeeded: true}))
}

func TestGuard_ListenersSeeLoadingBeforeTerminal(t *testing.T) {
	g := NewGuard()
	var seen []Status
	g.OnChange(func(s Status) { seen = append(seen, s) })

	g.TryBegin("Loading...")
	g.TryBegin("ignored")
	_ = g.End(Outcome{Succeeded: true, Message: "done"})

	assert.Equal(t, []Status{
		{Phase: InFlight, Message: "Loading..."},
		{Phase: Succeeded, Message: "done"},
	}, seen)
}

func TestGuard_ConcurrentBeginAdmitsOne(t *testing.T) {
	g := NewGuard()
	var admitted int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.TryBegin("Loading...") {
				atomic.AddInt32(&admitted, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), admitted)
}

func TestGuard_ConcurrentSubmissionsDeliverInOrder(t *testing.T) {
	g := NewGuard()
	var (
		mu   sync.Mutex
		seen []Status
	)
	g.OnChange(func(s Status) {
		if s.Phase == Succeeded {
			time.Sleep(time.Millisecond)
		}
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 10; n++ {
				if g.TryBegin("Loading...") {
					_ = g.End(Outcome{Succeeded: true, Message: "done"})
				}
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, seen)
	assert.Equal(t, g.Status(), seen[len(seen)-1])
	for i, s := range seen {
		if i%2 == 0 {
			assert.Equal(t, InFlight, s.Phase, "status %d", i)
		} else {
			assert.Equal(t, Succeeded, s.Phase, "status %d", i)
		}
	}
}

func TestPhase_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "in_flight", InFlight.String())
	assert.Equal(t, "succeeded", Succeeded.String())
	assert.Equal(t, "failed", Failed.String())
	assert.Equal(t, "unknown", Phase(9).String())
}
