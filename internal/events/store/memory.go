// Package store provides event sinks without broker dependencies.
package store

import (
	"context"
	"sync"

	"campuspass/internal/events"
)

// InMemory collects events in memory for tests and broker-less development.
type InMemory struct {
	mu     sync.RWMutex
	events []events.Event
}

// NewInMemory constructs an empty in-memory sink.
func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(_ context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

// Events returns a snapshot of everything appended so far.
func (s *InMemory) Events() []events.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]events.Event, len(s.events))
	copy(out, s.events)
	return out
}
