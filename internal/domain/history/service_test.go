package history

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/matiasleandrokruk/aura/internal/domain/analysis"
	"github.com/matiasleandrokruk/aura/internal/infra/sqlite"
)

func mustDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("sqlite.Open error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleOutcome(at time.Time) analysis.Outcome {
	return analysis.Outcome{
		Result: analysis.Result{
			SentimentScore: 0.8,
			SentimentLabel: analysis.LabelPositive,
			Energy:         0.6,
			Keywords:       []string{"excited", "launch"},
		},
		Source:     analysis.SourceLLM,
		Provider:   "groq",
		Model:      "llama-3.1-8b-instant",
		Duration:   420 * time.Millisecond,
		TextLength: 24,
		TextSHA256: "deadbeef",
		At:         at,
	}
}

func TestEventFromOutcome(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.FixedZone("CET", 3600))
	out := sampleOutcome(at)
	out.Source = analysis.SourceHeuristic
	out.Failure = analysis.FailureTransport
	out.Result.Keywords = nil

	e := EventFromOutcome(out)
	if e.ID == "" {
		t.Fatal("expected generated ID")
	}
	if e.Source != "heuristic" || e.Failure != "transport" {
		t.Errorf("source/failure = %s/%s", e.Source, e.Failure)
	}
	if e.Keywords == nil {
		t.Error("keywords must be non-nil")
	}
	if e.DurationMS != 420 {
		t.Errorf("DurationMS = %d; want 420", e.DurationMS)
	}
	if !e.CreatedAt.Equal(at) || e.CreatedAt.Location() != time.UTC {
		t.Errorf("CreatedAt = %v; want %v in UTC", e.CreatedAt, at)
	}
}

func TestEventFromOutcome_IDsAreUnique(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := EventFromOutcome(sampleOutcome(time.Now())).ID
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}

func TestService_LogAndGetByID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(mustDB(t))
	event := EventFromOutcome(sampleOutcome(time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)))

	if err := svc.Log(ctx, event); err != nil {
		t.Fatalf("Log() error = %v", err)
	}
	got, err := svc.GetByID(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if !reflect.DeepEqual(got, event) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, event)
	}
}

func TestService_GetByID_NotFound(t *testing.T) {
	t.Parallel()

	_, err := NewService(mustDB(t)).GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestService_ListRecent_NewestFirstWithPagination(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	svc := NewService(mustDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	var ids []string
	for i := 0; i < 5; i++ {
		e := EventFromOutcome(sampleOutcome(base.Add(time.Duration(i) * time.Second)))
		if err := svc.Log(ctx, e); err != nil {
			t.Fatalf("Log(%d) error = %v", i, err)
		}
		ids = append(ids, e.ID)
	}

	page, total, err := svc.ListRecent(ctx, 2, 1)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d; want 5", total)
	}
	if len(page) != 2 {
		t.Fatalf("len(page) = %d; want 2", len(page))
	}
	if page[0].ID != ids[3] || page[1].ID != ids[2] {
		t.Errorf("page = [%s %s]; want [%s %s]", page[0].ID, page[1].ID, ids[3], ids[2])
	}
}

func TestService_ListRecent_Empty(t *testing.T) {
	t.Parallel()

	events, total, err := NewService(mustDB(t)).ListRecent(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListRecent() error = %v", err)
	}
	if total != 0 || len(events) != 0 || events == nil {
		t.Errorf("expected empty non-nil page, got %v (total %d)", events, total)
	}
}
