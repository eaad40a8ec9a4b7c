package kafka

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/kafka/consumer"
	"github.com/segmentio/kafka-go"
)

type fetchCommitter interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// EventConsumer hands raw change events to the pipeline as entity.Message
// and acknowledges them by position.
type EventConsumer struct {
	reader fetchCommitter
	closer func() error
}

func NewEventConsumer(c *consumer.Consumer) *EventConsumer {
	return &EventConsumer{reader: c.Reader, closer: c.Close}
}

func (ec *EventConsumer) ReadEvent(ctx context.Context) (*entity.Message, error) {
	msg, err := ec.reader.FetchMessage(ctx)
	if err != nil {
		return nil, fmt.Errorf("EventConsumer - ReadEvent - ec.reader.FetchMessage: %w", err)
	}

	return &entity.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
		Key:       msg.Key,
		Value:     msg.Value,
		Time:      msg.Time,
	}, nil
}

// CommitEvent marks everything up to and including msg as consumed for the group.
// Only the position is sent to the broker.
func (ec *EventConsumer) CommitEvent(ctx context.Context, msg *entity.Message) error {
	err := ec.reader.CommitMessages(ctx, kafka.Message{
		Topic:     msg.Topic,
		Partition: msg.Partition,
		Offset:    msg.Offset,
	})
	if err != nil {
		return fmt.Errorf("EventConsumer - CommitEvent - ec.reader.CommitMessages: position=%s: %w", msg.Position(), err)
	}

	return nil
}

func (ec *EventConsumer) Close() error {
	if ec.closer == nil {
		return nil
	}

	err := ec.closer()
	if err != nil {
		return fmt.Errorf("EventConsumer - Close: %w", err)
	}

	return nil
}
