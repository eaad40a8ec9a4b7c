package kafka

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andreyxaxa/wikimedia-consumer/internal/entity"
	"github.com/andreyxaxa/wikimedia-consumer/internal/usecase"
	"github.com/andreyxaxa/wikimedia-consumer/pkg/logger"
	"github.com/spaolacci/murmur3"
)

const (
	_defaultReadBackoff = time.Second
	_defaultQueueSize   = 2
)

// EventReader is the broker side of the controller.
type EventReader interface {
	ReadEvent(ctx context.Context) (*entity.Message, error)
	CommitEvent(ctx context.Context, msg *entity.Message) error
	Close() error
}

type KafkaController struct {
	ingest usecase.IngestUseCase
	ec     EventReader
	logger logger.Interface

	commitTimeout time.Duration
	readBackoff   time.Duration

	workers int
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	started atomic.Bool
}

func New(
	ingest usecase.IngestUseCase,
	ec EventReader,
	l logger.Interface,
	commitTimeout time.Duration,
	workers int,
) *KafkaController {
	if workers < 1 {
		workers = 1
	}

	return &KafkaController{
		ingest:        ingest,
		ec:            ec,
		logger:        l,
		commitTimeout: commitTimeout,
		readBackoff:   _defaultReadBackoff,
		workers:       workers,
	}
}

func (c *KafkaController) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return fmt.Errorf("KafkaController - Start - controller already started")
	}

	c.ctx, c.cancel = context.WithCancel(ctx)

	// one queue per worker: a partition always lands on the same worker,
	// so its offsets are handled and committed in order
	queues := make([]chan *entity.Message, c.workers)
	for i := range queues {
		queues[i] = make(chan *entity.Message, _defaultQueueSize)

		c.wg.Add(1)
		go c.worker(queues[i])
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			for _, q := range queues {
				close(q)
			}
		}()

		for {
			select {
			case <-c.ctx.Done():
				return
			default:
				msg, err := c.ec.ReadEvent(c.ctx)
				if err != nil {
					if c.ctx.Err() != nil || errors.Is(err, context.Canceled) {
						return
					}
					c.logger.Error(err, "KafkaController - Start - c.ec.ReadEvent")

					select {
					case <-time.After(c.readBackoff):
					case <-c.ctx.Done():
						return
					}
					continue
				}

				select {
				case queues[route(msg.Topic, msg.Partition, c.workers)] <- msg:
				case <-c.ctx.Done():
					return
				}
			}
		}
	}()

	return nil
}

// route picks the worker that owns a topic partition.
func route(topic string, partition, workers int) int {
	if workers <= 1 {
		return 0
	}

	h := murmur3.Sum32([]byte(topic + "/" + strconv.Itoa(partition)))

	return int(h % uint32(workers))
}

func (c *KafkaController) worker(tasks <-chan *entity.Message) {
	defer c.wg.Done()

	for msg := range tasks {
		// queued messages are left uncommitted for redelivery once shutdown starts
		if c.ctx.Err() != nil {
			continue
		}

		c.process(msg)
	}
}

func (c *KafkaController) process(msg *entity.Message) {
	d := c.handle(msg)
	if !d.Committable() {
		c.logger.Info("KafkaController - process - not committed: position=%s disposition=%s", msg.Position(), d)

		return
	}

	// the disposition is final, so the commit must go through even during shutdown
	commitCtx, commitCancel := context.WithTimeout(context.WithoutCancel(c.ctx), c.commitTimeout)
	err := c.ec.CommitEvent(commitCtx, msg)
	commitCancel()
	if err != nil {
		c.logger.Error(err, "KafkaController - process - c.ec.CommitEvent: position=%s", msg.Position())
	}
}

// handle turns a panic into a dead letter: a later commit on the same
// partition would acknowledge the message anyway.
func (c *KafkaController) handle(msg *entity.Message) (d entity.Disposition) {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("KafkaController - handle - panic: %v", r)
			c.logger.Error(err, "KafkaController - handle - panic, dead-lettering: position=%s", msg.Position())

			d = c.ingest.DeadLetter(c.ctx, msg, err)
		}
	}()

	return c.ingest.Handle(c.ctx, msg)
}

func (c *KafkaController) Shutdown(ctx context.Context) error {
	if !c.started.Load() {
		return nil
	}

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})

	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return fmt.Errorf("KafkaController - Shutdown - workers did not stop: %w", ctx.Err())
	}

	err := c.ec.Close()
	if err != nil {
		return fmt.Errorf("KafkaController - Shutdown - c.ec.Close: %w", err)
	}

	return nil
}
