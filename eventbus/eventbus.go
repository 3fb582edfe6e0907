// Package eventbus wraps watermill behind a small publish/subscribe
// interface. Two implementations exist: an in-process gochannel bus used by
// tests and single-node deployments, and a NATS JetStream bus for
// multi-process deployments.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// EventBus publishes and subscribes to domain events.
type EventBus interface {
	Publish(topic string, msgs ...*message.Message) error
	Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error)
	Close() error
}

// NewMessage marshals a payload into a watermill message with a fresh UUID.
func NewMessage(payload any) (*message.Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}
	return message.NewMessage(watermill.NewUUID(), data), nil
}

// inProcessBus is a gochannel-backed bus.
type inProcessBus struct {
	pubSub *gochannel.GoChannel
}

// NewInProcessBus creates an in-process event bus.
func NewInProcessBus(logger watermill.LoggerAdapter) RouterBus {
	return &inProcessBus{
		pubSub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer: 64,
		}, logger),
	}
}

func (b *inProcessBus) Publish(topic string, msgs ...*message.Message) error {
	if err := b.pubSub.Publish(topic, msgs...); err != nil {
		return fmt.Errorf("failed to publish to %q: %w", topic, err)
	}
	return nil
}

func (b *inProcessBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch, err := b.pubSub.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %q: %w", topic, err)
	}
	return ch, nil
}

func (b *inProcessBus) Close() error {
	return b.pubSub.Close()
}

// Subscriber exposes the underlying watermill subscriber for router wiring.
func (b *inProcessBus) Subscriber() message.Subscriber { return b.pubSub }

// Publisher exposes the underlying watermill publisher for router wiring.
func (b *inProcessBus) Publisher() message.Publisher { return b.pubSub }

// RouterBus is implemented by buses that can hand their raw watermill
// publisher/subscriber to a message router.
type RouterBus interface {
	EventBus
	Subscriber() message.Subscriber
	Publisher() message.Publisher
}

// CorrelationID returns the message's correlation id, minting one if absent.
func CorrelationID(msg *message.Message) string {
	if id := msg.Metadata.Get("correlation_id"); id != "" {
		return id
	}
	id := uuid.NewString()
	msg.Metadata.Set("correlation_id", id)
	return id
}
