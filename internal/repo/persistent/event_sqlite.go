package persistent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/sqlite"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/types/errs"
)

const createEventsTableSQLite = `
CREATE TABLE IF NOT EXISTS ` + eventsTable + ` (
	` + idColumn + `        TEXT PRIMARY KEY,
	` + typeColumn + `      TEXT NOT NULL,
	` + titleColumn + `     TEXT NOT NULL,
	` + userColumn + `      TEXT NOT NULL,
	` + timestampColumn + ` INTEGER NOT NULL,
	` + wikiColumn + `      TEXT NOT NULL,
	` + commentColumn + `   TEXT NOT NULL DEFAULT ''
)`

type EventSQLiteRepo struct {
	*sqlite.SQLite
}

func NewEventSQLiteRepo(s *sqlite.SQLite) *EventSQLiteRepo {
	return &EventSQLiteRepo{s}
}

// Migrate creates the events table when it does not exist yet.
func (r *EventSQLiteRepo) Migrate(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, createEventsTableSQLite)
	if err != nil {
		return fmt.Errorf("EventSQLiteRepo - Migrate - r.DB.ExecContext: %w", err)
	}

	return nil
}

func (r *EventSQLiteRepo) Save(ctx context.Context, event *entity.Event) error {
	query, args, err := upsertEventQuery(r.Builder, event)
	if err != nil {
		return fmt.Errorf("EventSQLiteRepo - Save - upsertEventQuery: %w", err)
	}

	_, err = r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("EventSQLiteRepo - Save - r.DB.ExecContext: %w", err)
	}

	return nil
}

func (r *EventSQLiteRepo) GetByID(ctx context.Context, id string) (*entity.Event, error) {
	query, args, err := selectEventByIDQuery(r.Builder, id)
	if err != nil {
		return nil, fmt.Errorf("EventSQLiteRepo - GetByID - selectEventByIDQuery: %w", err)
	}

	event, err := scanEvent(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("EventSQLiteRepo - GetByID: %w", errs.ErrRecordNotFound)
		}
		return nil, fmt.Errorf("EventSQLiteRepo - GetByID - r.DB.QueryRowContext.Scan: %w", err)
	}

	return event, nil
}

func (r *EventSQLiteRepo) Ping(ctx context.Context) error {
	err := r.DB.PingContext(ctx)
	if err != nil {
		return fmt.Errorf("EventSQLiteRepo - Ping - r.DB.PingContext: %w", err)
	}

	return nil
}
