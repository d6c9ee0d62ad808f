package testutil

import (
	"context"
	"sync"

	"pinmap/internal/notifications"
)

// Published is one captured PublishEvent call.
type Published struct {
	Recipients []uint
	Event      notifications.Event
}

// PublisherStub records published activity events in memory.
type PublisherStub struct {
	mu     sync.Mutex
	Events []Published
	Err    error
}

// PublishEvent records the call and returns Err.
func (p *PublisherStub) PublishEvent(_ context.Context, recipients []uint, ev notifications.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, Published{Recipients: append([]uint(nil), recipients...), Event: ev})
	return p.Err
}

// OfType returns the captured events with the given type.
func (p *PublisherStub) OfType(eventType string) []Published {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []Published
	for _, e := range p.Events {
		if e.Event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
