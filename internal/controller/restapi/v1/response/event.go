package response

import "github.com/andreyxaxa/wikimedia-consumer/internal/entity"

type Event struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Title     string `json:"title"`
	User      string `json:"user"`
	Timestamp int64  `json:"timestamp"`
	Wiki      string `json:"wiki"`
	Comment   string `json:"comment"`
}

func NewEvent(e *entity.Event) Event {
	return Event{
		ID:        e.ID,
		Type:      e.Type,
		Title:     e.Title,
		User:      e.User,
		Timestamp: e.Timestamp,
		Wiki:      e.Wiki,
		Comment:   e.Comment,
	}
}

type Health struct {
	Status string `json:"status" example:"ok"`
	Store  string `json:"store" example:"ok"`
}
