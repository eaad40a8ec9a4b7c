package persistent

import (
	"context"
	"errors"
	"fmt"

	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/postgres"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/types/errs"
	"github.com/jackc/pgx/v5"
)

type EventPostgresRepo struct {
	*postgres.Postgres
}

func NewEventPostgresRepo(pg *postgres.Postgres) *EventPostgresRepo {
	return &EventPostgresRepo{pg}
}

func (r *EventPostgresRepo) Save(ctx context.Context, event *entity.Event) error {
	sql, args, err := upsertEventQuery(r.Builder, event)
	if err != nil {
		return fmt.Errorf("EventPostgresRepo - Save - upsertEventQuery: %w", err)
	}

	_, err = r.Pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("EventPostgresRepo - Save - r.Pool.Exec: %w", err)
	}

	return nil
}

func (r *EventPostgresRepo) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	sql, args, err := selectEventByIDQuery(r.Builder, id)
	if err != nil {
		return nil, fmt.Errorf("EventPostgresRepo - GetByID - selectEventByIDQuery: %w", err)
	}

	event, err := scanEvent(r.Pool.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("EventPostgresRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("EventPostgresRepo - GetByID - r.Pool.QueryRow.Scan: %w", err)
	}

	return event, nil
}

func (r *EventPostgresRepo) Ping(ctx context.Context) error {
	err := r.Pool.Ping(ctx)
	if err != nil {
		return fmt.Errorf("EventPostgresRepo - Ping - r.Pool.Ping: %w", err)
	}

	return nil
}
