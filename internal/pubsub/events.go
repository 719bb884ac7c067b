// Package pubsub provides a generic publish/subscribe broker used to deliver
// log lines and reloaded settings snapshots across goroutines.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	// CreatedEvent carries a newly produced value, such as a log line.
	CreatedEvent EventType = "created"
	// ReloadedEvent carries a freshly loaded settings snapshot.
	ReloadedEvent EventType = "reloaded"
	// FailedEvent reports that a reload produced an error; the payload is
	// the last good value.
	FailedEvent EventType = "failed"
)

// Event represents a published event with a typed payload.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Err       error
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
	PublishErr(payload T, err error)
}
