// Package pubsub provides a generic publish/subscribe event system with an
// optional ordered, lossless delivery mode.
package pubsub

import (
	"context"
	"time"
)

// EventType tags what a published payload is.
type EventType string

const (
	// LogEntryEvent carries one formatted log line.
	LogEntryEvent EventType = "log"
	// NotificationEvent carries a backend notification.
	NotificationEvent EventType = "notification"
)

// Event is a published payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}
