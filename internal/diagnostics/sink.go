// Package diagnostics is the process-wide channel for failures that are
// recovered locally and never reach the primary display.
package diagnostics

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"farmers-connect/internal/common/errors"
	"farmers-connect/internal/common/logger"
	"farmers-connect/internal/common/metrics"
)

// Sink receives swallowed failures. Implementations must not fail the caller.
type Sink interface {
	Report(ctx context.Context, source string, err error)
}

// Event is the normalized form of a reported failure.
type Event struct {
	ID        string                 `json:"id"`
	Source    string                 `json:"source"`
	Code      string                 `json:"code"`
	Category  string                 `json:"category"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// NewEvent normalizes err into an Event.
func NewEvent(id, source string, err error) Event {
	stdErr := errors.Normalize(err)
	return Event{
		ID:        id,
		Source:    source,
		Code:      string(stdErr.Code),
		Category:  string(stdErr.Category()),
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Metadata:  stdErr.Metadata,
		Timestamp: stdErr.Timestamp,
	}
}

// LogSink writes failures to the structured log.
type LogSink struct {
	handler *errors.ErrorHandler
}

func NewLogSink(log logger.Logger) *LogSink {
	return &LogSink{handler: errors.NewErrorHandler(log)}
}

func (s *LogSink) Report(_ context.Context, source string, err error) {
	if err == nil {
		return
	}
	s.handler.Handle(source, err)
}

// MemorySink keeps events in memory, for tests and for the CLI's --json output.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Report(_ context.Context, source string, err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, NewEvent(uuid.NewString(), source, err))
}

// Events returns a copy of the recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// Len returns the number of recorded events.
func (s *MemorySink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

// MultiSink fans a report out to every sink and counts it once.
type MultiSink []Sink

func (m MultiSink) Report(ctx context.Context, source string, err error) {
	if err == nil {
		return
	}
	metrics.DiagnosticsReported.WithLabelValues(string(errors.Normalize(err).Code)).Inc()
	for _, s := range m {
		if s != nil {
			s.Report(ctx, source, err)
		}
	}
}

type nopSink struct{}

func (nopSink) Report(context.Context, string, error) {}

// Nop returns a sink that drops everything.
func Nop() Sink {
	return nopSink{}
}

// OrNop returns s, or a no-op sink when s is nil.
func OrNop(s Sink) Sink {
	if s == nil {
		return Nop()
	}
	return s
}
