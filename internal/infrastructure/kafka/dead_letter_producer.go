package kafka

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/kafka/producer"
	"github.com/segmentio/kafka-go"
)

const (
	HeaderID              = "dlq_id"
	HeaderReason          = "dlq_reason"
	HeaderErrorKind       = "dlq_error_kind"
	HeaderAttempts        = "dlq_attempts"
	HeaderSourceTopic     = "dlq_source_topic"
	HeaderSourcePartition = "dlq_source_partition"
	HeaderSourceOffset    = "dlq_source_offset"
	HeaderFailedAt        = "dlq_failed_at"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// DeadLetterProducer publishes raw payloads to the dead-letter topic.
type DeadLetterProducer struct {
	writer messageWriter
	topic  string
}

func NewDeadLetterProducer(p *producer.Producer, topic string) *DeadLetterProducer {
	return &DeadLetterProducer{
		writer: p.Writer,
		topic:  topic,
	}
}

func (dp *DeadLetterProducer) Send(ctx context.Context, dl *entity.DeadLetter) error {
	err := dp.writer.WriteMessages(ctx, dp.message(dl))
	if err != nil {
		return fmt.Errorf("DeadLetterProducer - Send - dp.writer.WriteMessages: %w", err)
	}

	return nil
}

// message keeps the original key and value; failure context goes into headers only.
func (dp *DeadLetterProducer) message(dl *entity.DeadLetter) kafka.Message {
	return kafka.Message{
		Topic: dp.topic,
		Key:   dl.SourceKey,
		Value: dl.Payload,
		Headers: []kafka.Header{
			{Key: HeaderID, Value: []byte(dl.ID.String())},
			{Key: HeaderReason, Value: []byte(dl.Reason)},
			{Key: HeaderErrorKind, Value: []byte(dl.Kind)},
			{Key: HeaderAttempts, Value: []byte(strconv.Itoa(dl.Attempts))},
			{Key: HeaderSourceTopic, Value: []byte(dl.SourceTopic)},
			{Key: HeaderSourcePartition, Value: []byte(strconv.Itoa(dl.SourcePartition))},
			{Key: HeaderSourceOffset, Value: []byte(strconv.FormatInt(dl.SourceOffset, 10))},
			{Key: HeaderFailedAt, Value: []byte(dl.FailedAt.Format(time.RFC3339Nano))},
		},
	}
}

func (dp *DeadLetterProducer) Close() error {
	err := dp.writer.Close()
	if err != nil {
		return fmt.Errorf("DeadLetterProducer - Close: %w", err)
	}

	return nil
}
