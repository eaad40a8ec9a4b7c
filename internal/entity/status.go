package entity

// Disposition is the terminal outcome of handling one message.
type Disposition string

const (
	Stored       Disposition = "stored"
	DeadLettered Disposition = "dead_lettered"
	Dropped      Disposition = "dropped"   // dead-letter send failed
	Abandoned    Disposition = "abandoned" // shutdown interrupted retries
)

// Committable reports whether the broker offset may advance past the message.
func (d Disposition) Committable() bool {
	return d == Stored || d == DeadLettered || d == Dropped
}
