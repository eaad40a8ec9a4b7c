package entity

// Event is a validated Wikimedia recent-change record.
type Event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	User      string `json:"user"`
	Timestamp int64  `json:"timestamp"` // unix seconds
	Wiki      string `json:"wiki"`
	Comment   string `json:"comment"`
}
