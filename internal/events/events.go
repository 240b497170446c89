// Package events carries the durable event records emitted by successful
// ledger mutations. Emission is fire-and-forget: sinks never block the
// apply path and sink errors are logged, not surfaced to the caller.
package events

import (
	"sync"
	"time"
)

// Event is a single durable record of a ledger mutation.
type Event struct {
	Time   time.Time      `json:"time"`
	TxHash string         `json:"tx_hash"`
	Name   string         `json:"name"`
	Fields map[string]any `json:"fields,omitempty"`
}

// Sink receives events.
type Sink interface {
	Emit(e Event)
	Close() error
}

// NopSink discards everything.
type NopSink struct{}

func (NopSink) Emit(Event) {}

func (NopSink) Close() error { return nil }

// MemorySink records events in memory, for tests and standalone runs.
type MemorySink struct {
	mu     sync.Mutex
	events []Event
}

// NewMemorySink creates an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Emit(e Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
}

// Events returns a snapshot of all recorded events.
func (s *MemorySink) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

// Named returns the recorded events with the given name.
func (s *MemorySink) Named(name string) []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Event
	for _, e := range s.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

func (s *MemorySink) Close() error { return nil }

// Tee fans events out to several sinks.
type Tee []Sink

func (t Tee) Emit(e Event) {
	for _, s := range t {
		s.Emit(e)
	}
}

func (t Tee) Close() error {
	var first error
	for _, s := range t {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
