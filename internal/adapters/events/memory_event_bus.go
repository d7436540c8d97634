package events

import (
	"context"
	"errors"
	"sync"

	"github.com/zatekoja/doctorconnect/internal/domain/entities"
	"github.com/zatekoja/doctorconnect/internal/domain/providers"
)

// MemoryEventBus delivers events within one process. It backs the watcher
// when Redis is disabled and in tests.
type MemoryEventBus struct {
	mu          sync.Mutex
	subscribers map[string]map[chan *entities.AppointmentEvent]struct{}
	closed      bool
}

var _ providers.EventBus = (*MemoryEventBus)(nil)

// NewMemoryEventBus creates a new in-process event bus
func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{subscribers: make(map[string]map[chan *entities.AppointmentEvent]struct{})}
}

func (b *MemoryEventBus) Publish(ctx context.Context, channel string, event *entities.AppointmentEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errors.New("event bus is closed")
	}
	for subscriber := range b.subscribers[channel] {
		select {
		case subscriber <- event:
		default:
		}
	}
	return nil
}

func (b *MemoryEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.AppointmentEvent, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, errors.New("event bus is closed")
	}
	if b.subscribers[channel] == nil {
		b.subscribers[channel] = make(map[chan *entities.AppointmentEvent]struct{})
	}
	ch := make(chan *entities.AppointmentEvent, subscriberBuffer)
	b.subscribers[channel][ch] = struct{}{}

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subscribers[channel][ch]; ok {
			delete(b.subscribers[channel], ch)
			close(ch)
		}
	}()
	return ch, nil
}

func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for channel, subscribers := range b.subscribers {
		for ch := range subscribers {
			close(ch)
		}
		delete(b.subscribers, channel)
	}
	return nil
}
