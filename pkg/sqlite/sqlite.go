package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite" // driver
)

const (
	_defaultMaxOpenConns = 1
	_defaultBusyTimeout  = 5000
)

// SQLite is the embedded store used for local runs and tests.
type SQLite struct {
	maxOpenConns int
	busyTimeout  int

	Builder squirrel.StatementBuilderType
	DB      *sql.DB
}

func New(ctx context.Context, dsn string, opts ...Option) (*SQLite, error) {
	s := &SQLite{
		maxOpenConns: _defaultMaxOpenConns,
		busyTimeout:  _defaultBusyTimeout,
	}

	for _, opt := range opts {
		opt(s)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("SQLite - New - sql.Open: %w", err)
	}

	// a single connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(s.maxOpenConns)

	if _, err = db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout = %d", s.busyTimeout)); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("SQLite - New - db.ExecContext: %w", err)
	}

	s.DB = db
	s.Builder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

	return s, nil
}

func (s *SQLite) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}
