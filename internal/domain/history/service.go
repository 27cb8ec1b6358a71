package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Fixed-width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var ErrNotFound = errors.New("history: event not found")

// Service reads and appends analysis events. There is no update or delete.
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Log appends event.
func (s *Service) Log(ctx context.Context, event *Event) error {
	keywords, err := json.Marshal(nonNil(event.Keywords))
	if err != nil {
		return fmt.Errorf("history: encode keywords: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO analysis_event (
			id, source, provider, model, failure,
			sentiment_score, sentiment_label, energy, keywords,
			text_length, text_sha256, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		event.ID, event.Source, event.Provider, event.Model, event.Failure,
		event.SentimentScore, event.SentimentLabel, event.Energy, string(keywords),
		event.TextLength, event.TextSHA256, event.DurationMS,
		event.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("history: insert %s: %w", event.ID, err)
	}
	return nil
}

const selectColumns = `id, source, provider, model, failure,
	sentiment_score, sentiment_label, energy, keywords,
	text_length, text_sha256, duration_ms, created_at`

// GetByID returns ErrNotFound when no event has id.
func (s *Service) GetByID(ctx context.Context, id string) (*Event, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM analysis_event WHERE id = ?`, id)
	event, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return event, err
}

// ListRecent returns events newest first together with the total count.
func (s *Service) ListRecent(ctx context.Context, limit, offset int) ([]*Event, int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM analysis_event
		 ORDER BY created_at DESC, id DESC
		 LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("history: list: %w", err)
	}
	defer rows.Close()

	events := make([]*Event, 0, limit)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("history: list: %w", err)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM analysis_event`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("history: count: %w", err)
	}
	return events, total, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(sc scanner) (*Event, error) {
	var (
		e         Event
		keywords  string
		createdAt string
	)
	err := sc.Scan(
		&e.ID, &e.Source, &e.Provider, &e.Model, &e.Failure,
		&e.SentimentScore, &e.SentimentLabel, &e.Energy, &keywords,
		&e.TextLength, &e.TextSHA256, &e.DurationMS, &createdAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(keywords), &e.Keywords); err != nil {
		return nil, fmt.Errorf("history: decode keywords for %s: %w", e.ID, err)
	}
	e.Keywords = nonNil(e.Keywords)
	if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("history: decode created_at for %s: %w", e.ID, err)
	}
	return &e, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
