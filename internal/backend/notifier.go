package backend

import (
	"context"

	"github.com/zjrosen/atelier/internal/pubsub"
)

// Notifier is the unified notification stream shared by backend
// implementations. It is backed by an ordered broker, so every subscriber
// sees every notification in emission order.
type Notifier struct {
	broker *pubsub.Broker[Notification]
}

// NewNotifier creates an open stream.
func NewNotifier() *Notifier {
	return &Notifier{broker: pubsub.NewOrderedBroker[Notification]()}
}

// Emit appends n to the stream.
func (n *Notifier) Emit(note Notification) {
	n.broker.Publish(pubsub.NotificationEvent, note)
}

// Subscribe returns the stream from this point on. The channel closes after
// Close once everything emitted before it has been delivered, or as soon as
// ctx is done.
func (n *Notifier) Subscribe(ctx context.Context) <-chan Notification {
	in := n.broker.Subscribe(ctx)
	out := make(chan Notification)
	go func() {
		defer close(out)
		for event := range in {
			select {
			case out <- event.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Subscribers returns the number of live subscriptions.
func (n *Notifier) Subscribers() int {
	return n.broker.SubscriberCount()
}

// Close ends the stream for every subscriber.
func (n *Notifier) Close() {
	n.broker.Close()
}
