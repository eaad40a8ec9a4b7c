package ingest

import (
	"context"
	"fmt"
	"time"

	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
	"github.com/andreyxaxa/wikimedia-consumer/internal/infrastructure"
	"github.com/andreyxaxa/wikimedia-consumer/internal/repo"
	"github.com/andreyxaxa/wikimedia-consumer/internal/usecase"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/logger"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/metrics"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/retry"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/types/errs"
)

const (
	_defaultStoreTimeout      = 5 * time.Second
	_defaultDeadLetterTimeout = 10 * time.Second
)

// IngestUseCase is the consume -> validate -> persist -> retry -> dead-letter pipeline.
type IngestUseCase struct {
	codec   usecase.EventDecoder
	events  repo.EventRepo
	dlq     infrastructure.DeadLetterSender
	policy  retry.Policy
	metrics metrics.Recorder
	logger  logger.Interface

	storeTimeout      time.Duration
	deadLetterTimeout time.Duration
	sleep             retry.SleepFunc
}

func New(
	codec usecase.EventDecoder,
	events repo.EventRepo,
	dlq infrastructure.DeadLetterSender,
	policy retry.Policy,
	rec metrics.Recorder,
	l logger.Interface,
	opts ...Option,
) *IngestUseCase {
	if rec == nil {
		rec = metrics.Noop{}
	}

	uc := &IngestUseCase{
		codec:             codec,
		events:            events,
		dlq:               dlq,
		policy:            policy,
		metrics:           rec,
		logger:            l,
		storeTimeout:      _defaultStoreTimeout,
		deadLetterTimeout: _defaultDeadLetterTimeout,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Handle never returns an error: every failure ends in a disposition and a log line.
// Abandoned is the only disposition after which the message must not be acknowledged.
func (uc *IngestUseCase) Handle(ctx context.Context, msg *entity.Message) entity.Disposition {
	start := time.Now()

	event, err := uc.codec.Decode(msg.Value)
	if err != nil {
		// malformed input can never succeed, so it skips the retry loop
		d := uc.deadLetter(ctx, msg, err, 0)
		uc.metrics.RecordDisposition(ctx, string(d), string(errs.KindOf(err)), 0, time.Since(start))

		return d
	}

	scheduler := retry.New(uc.policy,
		retry.WithSleep(uc.sleep),
		retry.WithNotify(func(attempt int, err error, next time.Duration) {
			uc.metrics.RecordRetry(ctx, attempt)
			uc.logger.Warn("IngestUseCase - Handle - save failed, retrying: id=%s position=%s attempt=%d next_in=%s error=%v",
				event.ID, msg.Position(), attempt, next, err)
		}),
	)

	res := scheduler.Do(ctx, func(ctx context.Context) error {
		return uc.save(ctx, event)
	})

	var d entity.Disposition

	switch res.State {
	case retry.Succeeded:
		d = entity.Stored
		uc.logger.Debug("IngestUseCase - Handle - saved: id=%s position=%s attempts=%d", event.ID, msg.Position(), res.Attempts)
	case retry.Abandoned:
		d = entity.Abandoned
		uc.logger.Warn("IngestUseCase - Handle - retry abandoned on shutdown, left for redelivery: id=%s position=%s attempts=%d",
			event.ID, msg.Position(), res.Attempts)
	default:
		storeErr := &errs.StoreError{Attempts: res.Attempts, Err: res.Err}
		d = uc.deadLetter(ctx, msg, storeErr, res.Attempts)
	}

	kind := ""
	if d != entity.Stored && res.Err != nil {
		kind = string(errs.KindStore)
	}
	uc.metrics.RecordDisposition(ctx, string(d), kind, res.Attempts, time.Since(start))

	return d
}

// DeadLetter quarantines a message whose handling failed outside the pipeline,
// e.g. a panic above Handle. The result is DeadLettered or Dropped.
func (uc *IngestUseCase) DeadLetter(ctx context.Context, msg *entity.Message, cause error) entity.Disposition {
	start := time.Now()

	d := uc.deadLetter(ctx, msg, cause, 0)
	uc.metrics.RecordDisposition(ctx, string(d), string(errs.KindOf(cause)), 0, time.Since(start))

	return d
}

func (uc *IngestUseCase) save(ctx context.Context, event *entity.Event) (err error) {
	ctx, cancel := context.WithTimeout(ctx, uc.storeTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("IngestUseCase - save - panic: %v", r)
		}
	}()

	return uc.events.Save(ctx, event)
}

// deadLetter sends the raw payload to the dead-letter channel. It runs even
// while the consumer is shutting down: the message is already terminal.
func (uc *IngestUseCase) deadLetter(ctx context.Context, msg *entity.Message, cause error, attempts int) entity.Disposition {
	dl := entity.NewDeadLetter(msg, cause, attempts)

	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.deadLetterTimeout)
	defer cancel()

	err := uc.send(sendCtx, dl)
	if err != nil {
		sinkErr := &errs.SinkError{Err: err}
		uc.logger.Error(sinkErr,
			"IngestUseCase - deadLetter - MESSAGE DROPPED, dead-letter channel unavailable: position=%s kind=%s attempts=%d reason=%q payload=%s",
			msg.Position(), dl.Kind, attempts, dl.Reason, msg.Value)

		return entity.Dropped
	}

	uc.logger.Error(cause, "IngestUseCase - deadLetter - sent to dead-letter channel: dlq_id=%s position=%s kind=%s attempts=%d payload=%s",
		dl.ID, msg.Position(), dl.Kind, attempts, msg.Value)

	return entity.DeadLettered
}

func (uc *IngestUseCase) send(ctx context.Context, dl *entity.DeadLetter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("IngestUseCase - send - panic: %v", r)
		}
	}()

	return uc.dlq.Send(ctx, dl)
}
