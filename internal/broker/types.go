package broker

import (
	"context"

	"wikirelay/internal/event"
)

type Producer interface {
	Publish(ctx context.Context, topic string, ev *event.ChangeEvent) error
	Close() error
}

type Consumer interface {
	Consume(ctx context.Context, topic string, handler HandlerFunc) error
	Close() error
}

type HandlerFunc func(ctx context.Context, ev *event.ChangeEvent) error
