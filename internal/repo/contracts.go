package repo

import (
	"context"

	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
)

type (
	// EventRepo persists events with upsert-by-id semantics.
	// Saving the same event twice leaves exactly one row.
	EventRepo interface {
		Save(ctx context.Context, event *entity.Event) error
		GetByID(ctx context.Context, id string) (*entity.Event, error)
		Ping(ctx context.Context) error
	}
)
