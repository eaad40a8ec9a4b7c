package persistent

import (
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
)

const (
	// Table
	eventsTable = "wikimedia_events"

	// Columns
	idColumn        = "id"
	typeColumn      = "type"
	titleColumn     = "title"
	userColumn      = "event_user"
	timestampColumn = "timestamp_unix"
	wikiColumn      = "wiki"
	commentColumn   = "comment"
)

var eventColumns = []string{
	idColumn,
	typeColumn,
	titleColumn,
	userColumn,
	timestampColumn,
	wikiColumn,
	commentColumn,
}

// upsertSuffix overwrites every non-key column on id conflict.
// Postgres and SQLite share the syntax.
var upsertSuffix = func() string {
	sets := make([]string, 0, len(eventColumns)-1)
	for _, c := range eventColumns[1:] {
		sets = append(sets, fmt.Sprintf("%s = EXCLUDED.%s", c, c))
	}

	return fmt.Sprintf("ON CONFLICT (%s) DO UPDATE SET %s", idColumn, strings.Join(sets, ", "))
}()

func upsertEventQuery(b squirrel.StatementBuilderType, event *entity.Event) (string, []interface{}, error) {
	return b.
		Insert(eventsTable).
		Columns(eventColumns...).
		Values(
			event.ID,
			event.Type,
			event.Title,
			event.User,
			event.Timestamp,
			event.Wiki,
			event.Comment,
		).
		Suffix(upsertSuffix).
		ToSql()
}

func selectEventByIDQuery(b squirrel.StatementBuilderType, id string) (string, []interface{}, error) {
	return b.
		Select(eventColumns...).
		From(eventsTable).
		Where(squirrel.Eq{idColumn: id}).
		ToSql()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*entity.Event, error) {
	var event entity.Event

	err := row.Scan(
		&event.ID,
		&event.Type,
		&event.Title,
		&event.User,
		&event.Timestamp,
		&event.Wiki,
		&event.Comment,
	)
	if err != nil {
		return nil, err
	}

	return &event, nil
}
