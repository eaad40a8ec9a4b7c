package ingest

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/andreyxaxa/wikimedia-consumer/internal/codec"
	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/logger"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/retry"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/types/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{"id":"1","type":"edit","title":"X","user":"Y","timestamp":1753394496,"wiki":"commonswiki"}`

var errDBDown = errors.New("connection refused")

type fakeRepo struct {
	mu     sync.Mutex
	calls  int
	failN  int // fail the first failN calls; -1 fails forever
	panics bool
	saved  map[string]*entity.Event
}

func (r *fakeRepo) Save(_ context.Context, event *entity.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.calls++
	if r.panics {
		panic("driver bug")
	}
	if r.failN < 0 || r.calls <= r.failN {
		return errDBDown
	}
	if r.saved == nil {
		r.saved = make(map[string]*entity.Event)
	}
	r.saved[event.ID] = event

	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id string) (*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.saved[id]; ok {
		return e, nil
	}

	return nil, errs.ErrRecordNotFound
}

func (r *fakeRepo) Ping(context.Context) error { return nil }

type fakeSink struct {
	mu      sync.Mutex
	sent    []*entity.DeadLetter
	failFor map[string]bool // payloads whose send fails
	ctxErr  error
}

func (s *fakeSink) Send(ctx context.Context, dl *entity.DeadLetter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ctxErr = ctx.Err()
	if s.failFor[string(dl.Payload)] {
		return errors.New("dlq broker unreachable")
	}
	s.sent = append(s.sent, dl)

	return nil
}

func (s *fakeSink) Close() error { return nil }

type fakeClock struct {
	waits []time.Duration
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	c.waits = append(c.waits, d)

	return ctx.Err()
}

type fixture struct {
	uc    *IngestUseCase
	repo  *fakeRepo
	sink  *fakeSink
	clock *fakeClock
	logs  *bytes.Buffer
}

func newFixture(repo *fakeRepo, sink *fakeSink) *fixture {
	f := &fixture{repo: repo, sink: sink, clock: &fakeClock{}, logs: &bytes.Buffer{}}
	f.uc = New(codec.New(), repo, sink, retry.DefaultPolicy(), nil,
		logger.NewWithWriter(f.logs, "debug"),
		Sleep(f.clock.sleep),
	)

	return f
}

func message(payload string, offset int64) *entity.Message {
	return &entity.Message{Topic: "wikimedia-stream", Partition: 0, Offset: offset, Value: []byte(payload)}
}

func TestHandle_ValidEventIsStored(t *testing.T) {
	f := newFixture(&fakeRepo{}, &fakeSink{})

	d := f.uc.Handle(context.Background(), message(validPayload, 1))

	assert.Equal(t, entity.Stored, d)
	assert.Equal(t, 1, f.repo.calls)
	assert.Empty(t, f.sink.sent)
	assert.Empty(t, f.clock.waits)

	got, err := f.repo.GetByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, &entity.Event{
		ID: "1", Type: "edit", Title: "X", User: "Y", Timestamp: 1753394496, Wiki: "commonswiki", Comment: "",
	}, got)
}

func TestHandle_OddValuesAreStoredNotDeadLettered(t *testing.T) {
	f := newFixture(&fakeRepo{}, &fakeSink{})
	payload := `{"id":"9","type":"edit","title":{"a":1},"user":"Y","timestamp":1.7533944965e9,"wiki":"w","comment":{"html":"x"}}`

	d := f.uc.Handle(context.Background(), message(payload, 1))

	assert.Equal(t, entity.Stored, d)
	assert.Empty(t, f.sink.sent)

	got, err := f.repo.GetByID(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, &entity.Event{ID: "9", Type: "edit", User: "Y", Timestamp: 1753394496, Wiki: "w"}, got)
}

func TestHandle_InvalidEventIsDeadLetteredWithoutSave(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		kind    errs.Kind
	}{
		{"missing fields", `{"type":"edit","title":"X"}`, errs.KindValidation},
		{"null id", `{"id":null,"type":"edit","title":"X","user":"Y","timestamp":1,"wiki":"w"}`, errs.KindValidation},
		{"not json", `not json at all`, errs.KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(&fakeRepo{}, &fakeSink{})

			d := f.uc.Handle(context.Background(), message(tt.payload, 5))

			assert.Equal(t, entity.DeadLettered, d)
			assert.Zero(t, f.repo.calls, "save must never be invoked")
			require.Len(t, f.sink.sent, 1)

			dl := f.sink.sent[0]
			assert.Equal(t, []byte(tt.payload), dl.Payload, "payload must be verbatim")
			assert.Equal(t, tt.kind, dl.Kind)
			assert.Zero(t, dl.Attempts)
			assert.Equal(t, int64(5), dl.SourceOffset)
			assert.Empty(t, f.clock.waits, "permanent failures are not retried")
		})
	}
}

func TestHandle_RetryBudgetExhausted(t *testing.T) {
	f := newFixture(&fakeRepo{failN: -1}, &fakeSink{})

	d := f.uc.Handle(context.Background(), message(validPayload, 7))

	assert.Equal(t, entity.DeadLettered, d)
	assert.Equal(t, 3, f.repo.calls)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, f.clock.waits)

	require.Len(t, f.sink.sent, 1)
	dl := f.sink.sent[0]
	assert.Equal(t, errs.KindStore, dl.Kind)
	assert.Equal(t, 3, dl.Attempts)
	assert.Equal(t, []byte(validPayload), dl.Payload)
	assert.Contains(t, dl.Reason, errDBDown.Error())

	assert.Contains(t, f.logs.String(), "attempts=3")
	assert.Contains(t, f.logs.String(), "wikimedia-stream/0@7")
}

func TestHandle_RetryRecovers(t *testing.T) {
	f := newFixture(&fakeRepo{failN: 2}, &fakeSink{})

	d := f.uc.Handle(context.Background(), message(validPayload, 1))

	assert.Equal(t, entity.Stored, d)
	assert.Equal(t, 3, f.repo.calls)
	assert.Empty(t, f.sink.sent)
	assert.Len(t, f.clock.waits, 2)
}

func TestHandle_PanickingStoreIsContained(t *testing.T) {
	f := newFixture(&fakeRepo{panics: true}, &fakeSink{})

	var d entity.Disposition
	require.NotPanics(t, func() {
		d = f.uc.Handle(context.Background(), message(validPayload, 1))
	})

	assert.Equal(t, entity.DeadLettered, d)
	assert.Equal(t, 3, f.repo.calls)
	require.Len(t, f.sink.sent, 1)
}

func TestHandle_SinkFailureDoesNotBlockNextMessage(t *testing.T) {
	bad := `{"type":"edit"}`
	sink := &fakeSink{failFor: map[string]bool{bad: true}}
	f := newFixture(&fakeRepo{}, sink)

	var first, second entity.Disposition
	require.NotPanics(t, func() {
		first = f.uc.Handle(context.Background(), message(bad, 1))
		second = f.uc.Handle(context.Background(), message(validPayload, 2))
	})

	assert.Equal(t, entity.Dropped, first)
	assert.Equal(t, entity.Stored, second)
	assert.Equal(t, 1, f.repo.calls)
	assert.Contains(t, f.logs.String(), "MESSAGE DROPPED")
	assert.Contains(t, f.logs.String(), `{\"type\":\"edit\"}`, "dropped payload is logged for manual replay")
}

func TestHandle_ShutdownAbandonsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	repo := &fakeRepo{failN: -1}
	f := newFixture(repo, &fakeSink{})
	f.uc.sleep = func(ctx context.Context, d time.Duration) error {
		cancel()

		return ctx.Err()
	}

	d := f.uc.Handle(ctx, message(validPayload, 3))

	assert.Equal(t, entity.Abandoned, d)
	assert.False(t, d.Committable())
	assert.Equal(t, 1, repo.calls)
	assert.Empty(t, f.sink.sent, "abandoned messages are redelivered, not dead-lettered")
}

func TestHandle_DeadLetterSurvivesShutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := newFixture(&fakeRepo{}, &fakeSink{})

	d := f.uc.Handle(ctx, message(`{"title":"X"}`, 1))

	assert.Equal(t, entity.DeadLettered, d)
	require.Len(t, f.sink.sent, 1)
	assert.NoError(t, f.sink.ctxErr)
}

func TestHandle_RedeliveryIsIdempotent(t *testing.T) {
	f := newFixture(&fakeRepo{}, &fakeSink{})

	for i := 0; i < 3; i++ {
		assert.Equal(t, entity.Stored, f.uc.Handle(context.Background(), message(validPayload, 1)))
	}

	assert.Len(t, f.repo.saved, 1)
}

func TestDisposition_Committable(t *testing.T) {
	assert.True(t, entity.Stored.Committable())
	assert.True(t, entity.DeadLettered.Committable())
	assert.True(t, entity.Dropped.Committable())
	assert.False(t, entity.Abandoned.Committable())
}

func TestDeadLetter_Quarantine(t *testing.T) {
	f := newFixture(&fakeRepo{}, &fakeSink{})

	d := f.uc.DeadLetter(context.Background(), message(validPayload, 11), errors.New("panic boom"))

	assert.Equal(t, entity.DeadLettered, d)
	assert.Zero(t, f.repo.calls)
	require.Len(t, f.sink.sent, 1)
	assert.Equal(t, []byte(validPayload), f.sink.sent[0].Payload)
	assert.Equal(t, errs.KindUnknown, f.sink.sent[0].Kind)
	assert.Equal(t, "panic boom", f.sink.sent[0].Reason)
}

func TestDeadLetter_SinkDown(t *testing.T) {
	sink := &fakeSink{failFor: map[string]bool{validPayload: true}}
	f := newFixture(&fakeRepo{}, sink)

	assert.Equal(t, entity.Dropped, f.uc.DeadLetter(context.Background(), message(validPayload, 11), errors.New("panic boom")))
}
