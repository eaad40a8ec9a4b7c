package usecase

import (
	"context"

	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
)

type (
	// IngestUseCase drives one raw message to a terminal disposition.
	IngestUseCase interface {
		Handle(ctx context.Context, msg *entity.Message) entity.Disposition
		// DeadLetter sends msg to the dead-letter channel without handling it.
		DeadLetter(ctx context.Context, msg *entity.Message, cause error) entity.Disposition
	}

	EventUseCase interface {
		GetByID(ctx context.Context, id string) (*entity.Event, error)
		Ping(ctx context.Context) error
	}

	// EventDecoder is the single validation gate for inbound payloads.
	EventDecoder interface {
		Decode(raw []byte) (*entity.Event, error)
	}
)
