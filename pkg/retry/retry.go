// Package retry runs a unit of work with a bounded number of attempts and
// exponential backoff between them.
//
// The policy is an explicit value handed to the scheduler, so callers and
// tests can override it per use. The scheduler only reports how the loop
// ended; deciding what to do with an exhausted unit is up to the caller.
package retry

import (
	"context"
	"math"
	"time"
)

const (
	_defaultMaxAttempts = 3
	_defaultBaseDelay   = time.Second
	_defaultMultiplier  = 2.0
)

// State is the position of a unit of work in the retry state machine.
type State int

const (
	// Attempting is the non-terminal state while attempts remain.
	Attempting State = iota
	// Succeeded means an attempt returned nil.
	Succeeded
	// Exhausted means every attempt in the budget failed.
	Exhausted
	// Abandoned means the context was cancelled before the budget ran out.
	Abandoned
)

func (s State) String() string {
	switch s {
	case Attempting:
		return "attempting"
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	case Abandoned:
		return "abandoned"
	default:
		return "unknown"
	}
}

// Policy is the retry budget and backoff curve.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
	// MaxDelay caps a single wait. Zero means uncapped.
	MaxDelay time.Duration
}

// DefaultPolicy is 3 attempts with waits of 1s and 2s between them.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: _defaultMaxAttempts,
		BaseDelay:   _defaultBaseDelay,
		Multiplier:  _defaultMultiplier,
	}
}

func (p Policy) normalize() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.Multiplier < 1 {
		p.Multiplier = 1
	}

	return p
}

// Delay returns the wait after failed attempt n (1-based):
// BaseDelay * Multiplier^(n-1), capped by MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	p = p.normalize()
	if attempt < 1 {
		attempt = 1
	}

	d := float64(p.BaseDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if d > math.MaxInt64 {
		d = math.MaxInt64
	}

	delay := time.Duration(d)
	if p.MaxDelay > 0 && delay > p.MaxDelay {
		delay = p.MaxDelay
	}

	return delay
}

// Result describes how a retry loop ended.
type Result struct {
	State    State
	Attempts int
	// Waited is the total backoff time spent between attempts.
	Waited time.Duration
	// Err is the last failure. Nil when State is Succeeded.
	Err error
}

// SleepFunc waits for d or until ctx is done, returning ctx.Err() in the latter case.
type SleepFunc func(ctx context.Context, d time.Duration) error

// NotifyFunc is called after a failed attempt that will be retried.
type NotifyFunc func(attempt int, err error, next time.Duration)

type Scheduler struct {
	policy Policy
	sleep  SleepFunc
	notify NotifyFunc
}

func New(policy Policy, opts ...Option) *Scheduler {
	s := &Scheduler{
		policy: policy.normalize(),
		sleep:  sleepContext,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Do is the one-shot form of New(policy).Do(ctx, fn).
func Do(ctx context.Context, policy Policy, fn func(ctx context.Context) error) Result {
	return New(policy).Do(ctx, fn)
}

// Do invokes fn until it succeeds, the attempt budget is spent, or ctx is
// cancelled. An attempt that has started is always allowed to finish.
func (s *Scheduler) Do(ctx context.Context, fn func(ctx context.Context) error) Result {
	var res Result

	for attempt := 1; ; attempt++ {
		if attempt > 1 && ctx.Err() != nil {
			res.State = Abandoned

			return res
		}

		res.Attempts = attempt

		err := fn(ctx)
		if err == nil {
			res.State = Succeeded
			res.Err = nil

			return res
		}
		res.Err = err

		if ctx.Err() != nil {
			res.State = Abandoned

			return res
		}

		if attempt >= s.policy.MaxAttempts {
			res.State = Exhausted

			return res
		}

		delay := s.policy.Delay(attempt)
		if s.notify != nil {
			s.notify(attempt, err, delay)
		}

		if err := s.sleep(ctx, delay); err != nil {
			res.State = Abandoned

			return res
		}
		res.Waited += delay
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
