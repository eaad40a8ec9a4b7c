package consumer

import (
	"time"

	"github.com/segmentio/kafka-go"
)

type Option func(*Consumer)

func ConnAttempts(attempts int) Option {
	return func(c *Consumer) {
		c.connAttempts = attempts
	}
}

func ConnTimeout(timeout time.Duration) Option {
	return func(c *Consumer) {
		c.connTimeout = timeout
	}
}

func MaxWait(d time.Duration) Option {
	return func(c *Consumer) {
		c.maxWait = d
	}
}

func MaxBytes(n int) Option {
	return func(c *Consumer) {
		c.maxBytes = n
	}
}

// StartFromLatest makes a new consumer group skip the backlog.
func StartFromLatest(latest bool) Option {
	return func(c *Consumer) {
		if latest {
			c.startOffset = kafka.LastOffset
		} else {
			c.startOffset = kafka.FirstOffset
		}
	}
}
