package ingest

import (
	"time"

	"github.com/andreyxaxa/wikimedia-consumer/pkg/retry"
)

type Option func(*IngestUseCase)

// StoreTimeout bounds a single save attempt.
func StoreTimeout(timeout time.Duration) Option {
	return func(uc *IngestUseCase) {
		if timeout > 0 {
			uc.storeTimeout = timeout
		}
	}
}

func DeadLetterTimeout(timeout time.Duration) Option {
	return func(uc *IngestUseCase) {
		if timeout > 0 {
			uc.deadLetterTimeout = timeout
		}
	}
}

// Sleep overrides the backoff wait between save attempts.
func Sleep(f retry.SleepFunc) Option {
	return func(uc *IngestUseCase) {
		uc.sleep = f
	}
}
