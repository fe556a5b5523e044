package pubsub

import (
	"context"
	"sync"
	"time"
)

const defaultBufferSize = 64

// Broker is a generic pub/sub event broker.
//
// A lossy broker (NewBroker) never blocks publishers and drops events for
// subscribers whose buffer is full. An ordered broker (NewOrderedBroker)
// queues without bound per subscriber, so every subscriber sees every event
// in publish order; use it for streams where a dropped item would corrupt the
// consumer's bookkeeping.
type Broker[T any] struct {
	subs       map[*subscription[T]]struct{}
	mu         sync.RWMutex
	done       chan struct{}
	bufferSize int
	ordered    bool
}

type subscription[T any] struct {
	out chan Event[T]

	// ordered mode only
	mu      sync.Mutex
	queue   []Event[T]
	signal  chan struct{}
	stop    chan struct{} // subscriber left
	drained chan struct{} // broker closed, flush then close out
}

// NewBroker creates a lossy broker buffering 64 events per subscriber.
func NewBroker[T any]() *Broker[T] {
	return newBroker[T](defaultBufferSize)
}

func newBroker[T any](size int) *Broker[T] {
	return &Broker[T]{
		subs:       make(map[*subscription[T]]struct{}),
		done:       make(chan struct{}),
		bufferSize: size,
	}
}

// NewOrderedBroker creates a lossless broker that preserves publish order.
func NewOrderedBroker[T any]() *Broker[T] {
	b := newBroker[T](0)
	b.ordered = true
	return b
}

// Subscribe creates a new subscription channel.
// The channel is closed when ctx is cancelled or the broker is closed. For an
// ordered broker, events published before Close are still delivered before
// the channel closes.
func (b *Broker[T]) Subscribe(ctx context.Context) <-chan Event[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		ch := make(chan Event[T])
		close(ch)
		return ch
	default:
	}

	sub := &subscription[T]{out: make(chan Event[T], b.bufferSize)}
	if b.ordered {
		sub.signal = make(chan struct{}, 1)
		sub.stop = make(chan struct{})
		sub.drained = make(chan struct{})
		go sub.pump()
	}
	b.subs[sub] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()

		if _, ok := b.subs[sub]; !ok {
			return
		}
		delete(b.subs, sub)
		if b.ordered {
			close(sub.stop)
		} else {
			close(sub.out)
		}
	}()

	return sub.out
}

// Publish sends an event to all subscribers. It never blocks.
func (b *Broker[T]) Publish(eventType EventType, payload T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	select {
	case <-b.done:
		return
	default:
	}

	event := Event[T]{
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}

	for sub := range b.subs {
		if b.ordered {
			sub.enqueue(event)
			continue
		}
		select {
		case sub.out <- event:
		default:
			// Channel full - drop to prevent blocking
		}
	}
}

// Close shuts down the broker and all subscriber channels.
func (b *Broker[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return
	default:
	}

	close(b.done)
	for sub := range b.subs {
		if b.ordered {
			close(sub.drained)
		} else {
			close(sub.out)
		}
	}
	b.subs = nil
}

// SubscriberCount returns the number of active subscribers.
func (b *Broker[T]) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (s *subscription[T]) enqueue(event Event[T]) {
	s.mu.Lock()
	s.queue = append(s.queue, event)
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *subscription[T]) take() []Event[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	batch := s.queue
	s.queue = nil
	return batch
}

// pump moves queued events to out in order. It exits when the subscriber
// leaves, or after flushing once the broker is closed.
func (s *subscription[T]) pump() {
	defer close(s.out)
	closing := false
	for {
		for _, event := range s.take() {
			select {
			case s.out <- event:
			case <-s.stop:
				return
			}
		}
		if closing {
			return
		}
		select {
		case <-s.signal:
		case <-s.drained:
			closing = true
		case <-s.stop:
			return
		}
	}
}
