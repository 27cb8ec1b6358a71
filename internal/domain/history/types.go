// Package history keeps an append-only log of analysis outcomes in SQLite.
// The analyzed text is never stored, only its rune length and SHA-256 digest.
package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/matiasleandrokruk/aura/internal/domain/analysis"
)

// Event is one persisted analysis. Immutable once written.
type Event struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	Provider       string    `json:"provider"`
	Model          string    `json:"model"`
	Failure        string    `json:"failure,omitempty"`
	SentimentScore float64   `json:"sentiment_score"`
	SentimentLabel string    `json:"sentiment_label"`
	Energy         float64   `json:"energy"`
	Keywords       []string  `json:"keywords"`
	TextLength     int       `json:"text_length"`
	TextSHA256     string    `json:"text_sha256"`
	DurationMS     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}

// EventFromOutcome converts a published Outcome into a new Event with a
// time-ordered (v7) ID.
func EventFromOutcome(o analysis.Outcome) *Event {
	keywords := o.Result.Keywords
	if keywords == nil {
		keywords = []string{}
	}
	createdAt := o.At
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	return &Event{
		ID:             newID(),
		Source:         string(o.Source),
		Provider:       o.Provider,
		Model:          o.Model,
		Failure:        string(o.Failure),
		SentimentScore: o.Result.SentimentScore,
		SentimentLabel: o.Result.SentimentLabel,
		Energy:         o.Result.Energy,
		Keywords:       keywords,
		TextLength:     o.TextLength,
		TextSHA256:     o.TextSHA256,
		DurationMS:     o.Duration.Milliseconds(),
		CreatedAt:      createdAt.UTC(),
	}
}

func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
