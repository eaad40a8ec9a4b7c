package entity

import (
	"time"

	"github.com/andreyxaxa/wikimedia-consumer/pkg/types/errs"
	"github.com/google/uuid"
)

// DeadLetter pairs an unprocessable payload with the reason it failed.
// Payload is always the original message value, byte for byte.
type DeadLetter struct {
	ID       uuid.UUID
	Payload  []byte
	Reason   string
	Kind     errs.Kind
	Attempts int
	FailedAt time.Time

	SourceTopic     string
	SourcePartition int
	SourceOffset    int64
	SourceKey       []byte
}

func NewDeadLetter(msg *Message, cause error, attempts int) *DeadLetter {
	return &DeadLetter{
		ID:              uuid.New(),
		Payload:         msg.Value,
		Reason:          cause.Error(),
		Kind:            errs.KindOf(cause),
		Attempts:        attempts,
		FailedAt:        time.Now().UTC(),
		SourceTopic:     msg.Topic,
		SourcePartition: msg.Partition,
		SourceOffset:    msg.Offset,
		SourceKey:       msg.Key,
	}
}
