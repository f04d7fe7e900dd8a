// Package events publishes best-effort notifications about durably
// stored messages whose recipient had no live subscription, so an
// external notification service can push a badge. The message store
// remains the source of truth; losing an event loses nothing durable.
package events

import (
	"context"
	"time"
)

type MessageStored struct {
	MessageId string    `json:"message_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	RoomId    string    `json:"room_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Publisher interface {
	PublishMessageStored(ctx context.Context, ev MessageStored) error
	Close() error
}

// NoopPublisher is used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishMessageStored(context.Context, MessageStored) error { return nil }
func (NoopPublisher) Close() error                                              { return nil }
