package event

import (
	"context"
	"fmt"

	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
	"github.com/andreyxaxa/wikimedia-consumer/internal/repo"
)

type EventUseCase struct {
	events repo.EventRepo
}

func New(events repo.EventRepo) *EventUseCase {
	return &EventUseCase{events: events}
}

func (uc *EventUseCase) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	event, err := uc.events.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("EventUseCase - GetByID - uc.events.GetByID: %w", err)
	}

	return event, nil
}

func (uc *EventUseCase) Ping(ctx context.Context) error {
	err := uc.events.Ping(ctx)
	if err != nil {
		return fmt.Errorf("EventUseCase - Ping - uc.events.Ping: %w", err)
	}

	return nil
}
