package eventbus

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmnats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	nc "github.com/nats-io/nats.go"
)

// natsBus is a NATS JetStream backed bus.
type natsBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
}

// NewNatsBus creates a JetStream-backed event bus. Streams are
// auto-provisioned per topic.
func NewNatsBus(natsURL string, logger watermill.LoggerAdapter) (RouterBus, error) {
	marshaler := &wmnats.GobMarshaler{}
	options := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Timeout(30 * time.Second),
		nc.ReconnectWait(1 * time.Second),
	}

	jsConfig := wmnats.JetStreamConfig{
		Disabled:      false,
		AutoProvision: true,
	}

	publisher, err := wmnats.NewPublisher(
		wmnats.PublisherConfig{
			URL:               natsURL,
			NatsOptions:       options,
			Marshaler:         marshaler,
			JetStream:         jsConfig,
			SubjectCalculator: wmnats.DefaultSubjectCalculator,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS publisher: %w", err)
	}

	subscriber, err := wmnats.NewSubscriber(
		wmnats.SubscriberConfig{
			URL:               natsURL,
			NatsOptions:       options,
			Unmarshaler:       marshaler,
			JetStream:         jsConfig,
			SubjectCalculator: wmnats.DefaultSubjectCalculator,
			AckWaitTimeout:    30 * time.Second,
		},
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create NATS subscriber: %w", err)
	}

	return &natsBus{publisher: publisher, subscriber: subscriber}, nil
}

func (b *natsBus) Publish(topic string, msgs ...*message.Message) error {
	if err := b.publisher.Publish(topic, msgs...); err != nil {
		return fmt.Errorf("failed to publish to %q: %w", topic, err)
	}
	return nil
}

func (b *natsBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	ch, err := b.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %q: %w", topic, err)
	}
	return ch, nil
}

func (b *natsBus) Close() error {
	if err := b.publisher.Close(); err != nil {
		return err
	}
	return b.subscriber.Close()
}

func (b *natsBus) Subscriber() message.Subscriber { return b.subscriber }
func (b *natsBus) Publisher() message.Publisher   { return b.publisher }
