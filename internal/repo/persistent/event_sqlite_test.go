package persistent

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/sqlite"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSQLiteRepo(t *testing.T) *EventSQLiteRepo {
	t.Helper()

	ctx := context.Background()

	s, err := sqlite.New(ctx, "file:"+t.Name()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	r := NewEventSQLiteRepo(s)
	require.NoError(t, r.Migrate(ctx))

	return r
}

func countEvents(t *testing.T, r *EventSQLiteRepo, id string) int {
	t.Helper()

	var n int
	err := r.DB.QueryRow("SELECT COUNT(*) FROM "+eventsTable+" WHERE "+idColumn+" = ?", id).Scan(&n)
	require.NoError(t, err)

	return n
}

func TestEventSQLiteRepo_SaveIsIdempotent(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	event := &entity.Event{ID: "1", Type: "edit", Title: "X", User: "Y", Timestamp: 1753394496, Wiki: "commonswiki"}

	require.NoError(t, r.Save(ctx, event))
	require.NoError(t, r.Save(ctx, event))

	assert.Equal(t, 1, countEvents(t, r, "1"))

	got, err := r.GetByID(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, event, got)
}

func TestEventSQLiteRepo_SaveOverwrites(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	first := &entity.Event{ID: "7", Type: "edit", Title: "Old", User: "A", Timestamp: 1, Wiki: "enwiki"}
	second := &entity.Event{ID: "7", Type: "edit", Title: "New", User: "B", Timestamp: 2, Wiki: "enwiki", Comment: "c"}

	require.NoError(t, r.Save(ctx, first))
	require.NoError(t, r.Save(ctx, second))

	got, err := r.GetByID(ctx, "7")
	require.NoError(t, err)
	assert.Equal(t, second, got)
	assert.Equal(t, 1, countEvents(t, r, "7"))
}

func TestEventSQLiteRepo_ConcurrentRedelivery(t *testing.T) {
	r := newSQLiteRepo(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				event := &entity.Event{ID: fmt.Sprint(j), Type: "edit", Title: "T", User: "U", Timestamp: int64(i), Wiki: "w"}
				assert.NoError(t, r.Save(ctx, event))
			}
		}(i)
	}
	wg.Wait()

	for j := 0; j < 5; j++ {
		assert.Equal(t, 1, countEvents(t, r, fmt.Sprint(j)))
	}
}

func TestEventSQLiteRepo_GetByIDNotFound(t *testing.T) {
	r := newSQLiteRepo(t)

	_, err := r.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, errs.ErrRecordNotFound)
}

func TestEventSQLiteRepo_Ping(t *testing.T) {
	r := newSQLiteRepo(t)

	assert.NoError(t, r.Ping(context.Background()))
}
