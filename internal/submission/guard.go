// Package submission tracks the lifecycle of a single form submission and
// refuses overlapping ones.
package submission

import (
	"sync"

	"farmers-connect/internal/common/errors"
	"farmers-connect/internal/common/events"
)

// Phase is the submission lifecycle state.
type Phase int

const (
	Idle Phase = iota
	InFlight
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case InFlight:
		return "in_flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the phase ends a submission.
func (p Phase) Terminal() bool {
	return p == Succeeded || p == Failed
}

// Status is the user-visible outcome of the most recent submission.
type Status struct {
	Phase   Phase  `json:"phase"`
	Message string `json:"message"`
}

// Outcome is what the caller reports when a submission ends.
type Outcome struct {
	Succeeded bool
	Message   string
}

// Listener observes every status change, in order, even when submissions
// begin and end on different goroutines.
type Listener func(Status)

// Guard allows at most one submission in flight. The zero value is ready to use.
type Guard struct {
	mu      sync.Mutex
	status  Status
	changes events.Dispatcher[Status]
}

func NewGuard() *Guard {
	return &Guard{}
}

// TryBegin moves the guard to InFlight with loadingMessage as the status. It
// returns false without touching the status when a submission is already in
// flight.
func (g *Guard) TryBegin(loadingMessage string) bool {
	g.mu.Lock()
	if g.status.Phase == InFlight {
		g.mu.Unlock()
		return false
	}
	g.status = Status{Phase: InFlight, Message: loadingMessage}
	g.changes.Publish(g.status)
	g.mu.Unlock()

	g.changes.Flush()
	return true
}

// End records the terminal outcome and releases the guard.
func (g *Guard) End(outcome Outcome) error {
	g.mu.Lock()
	if g.status.Phase != InFlight {
		phase := g.status.Phase
		g.mu.Unlock()
		return errors.NewGuardNotInFlightError(phase.String())
	}
	phase := Failed
	if outcome.Succeeded {
		phase = Succeeded
	}
	g.status = Status{Phase: phase, Message: outcome.Message}
	g.changes.Publish(g.status)
	g.mu.Unlock()

	g.changes.Flush()
	return nil
}

func (g *Guard) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// InFlight reports whether a submission is outstanding.
func (g *Guard) InFlight() bool {
	return g.Status().Phase == InFlight
}

// OnChange registers l for every subsequent status change.
func (g *Guard) OnChange(l Listener) {
	g.changes.Subscribe(l)
}
