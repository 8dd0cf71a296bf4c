package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Sink receives audit events. Implementations must be safe for
// concurrent use. Record failures must never fail the operation being
// audited; callers log and continue.
type Sink interface {
	Record(ctx context.Context, event Event) error
}

// NewEvent creates an event with a fresh ID and timestamp.
func NewEvent(eventType, personID, actorID, outcome, severity string) Event {
	return Event{
		ID:        "evt_" + uuid.New().String()[:22],
		Type:      eventType,
		PersonID:  personID,
		ActorID:   actorID,
		Outcome:   outcome,
		Severity:  severity,
		Timestamp: time.Now(),
	}
}

// LogSink writes audit events to the structured log.
type LogSink struct {
	logger zerolog.Logger
}

// NewLogSink creates a sink that logs events.
func NewLogSink(logger zerolog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Record logs the event.
func (s *LogSink) Record(_ context.Context, event Event) error {
	s.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Str("person_id", event.PersonID).
		Str("actor_id", event.ActorID).
		Str("outcome", event.Outcome).
		Str("severity", event.Severity).
		Interface("details", event.Details).
		Msg("audit event")
	return nil
}

// MemorySink collects audit events in memory. Used in tests.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

// Record appends the event.
func (s *MemorySink) Record(_ context.Context, event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a snapshot of recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := make([]Event, len(s.events))
	copy(snapshot, s.events)
	return snapshot
}

// EventsOfType returns recorded events matching the given type.
func (s *MemorySink) EventsOfType(eventType string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []Event
	for _, e := range s.events {
		if e.Type == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

var (
	_ Sink = (*LogSink)(nil)
	_ Sink = (*MemorySink)(nil)
)
