package entity

import (
	"time"

	"github.com/google/uuid"
)

// Summary is an audit record of one assistant summarization.
type Summary struct {
	ID        string
	Text      string
	Summary   string
	CreatedAt time.Time
}

func NewSummary(text, summary string) *Summary {
	return &Summary{
		ID:        uuid.NewString(),
		Text:      text,
		Summary:   summary,
		CreatedAt: time.Now().UTC(),
	}
}
