package entity

import (
	"fmt"
	"time"
)

// Message is a raw delivery from the broker together with its position.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Time      time.Time
}

func (m *Message) Position() string {
	return fmt.Sprintf("%s/%d@%d", m.Topic, m.Partition, m.Offset)
}
