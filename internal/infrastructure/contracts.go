package infrastructure

import (
	"context"

	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
)

type (
	// DeadLetterSender appends one entry to the dead-letter channel.
	// It must not inspect or alter the payload.
	DeadLetterSender interface {
		Send(ctx context.Context, dl *entity.DeadLetter) error
		Close() error
	}
)
