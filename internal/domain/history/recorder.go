package history

import (
	"context"
	"log/slog"
	"time"

	"github.com/matiasleandrokruk/aura/internal/domain/analysis"
	"github.com/matiasleandrokruk/aura/internal/infra/eventbus"
)

const writeTimeout = 5 * time.Second

// Recorder persists every analysis.completed Outcome off the request path.
type Recorder struct {
	svc    *Service
	logger *slog.Logger
}

func NewRecorder(svc *Service, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{svc: svc, logger: logger}
}

// Start subscribes to TopicAnalysisCompleted and writes events on its own
// goroutine until ctx is cancelled or the bus is closed. Events still
// buffered when the bus closes are written before exit. The returned channel
// is closed once the loop has exited.
func (r *Recorder) Start(ctx context.Context, bus eventbus.EventBus) <-chan struct{} {
	ch := bus.Subscribe(analysis.TopicAnalysisCompleted)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-ch:
				if !ok {
					return
				}
				outcome, ok := evt.Payload.(analysis.Outcome)
				if !ok {
					continue
				}
				r.record(ctx, outcome)
			}
		}
	}()
	return done
}

func (r *Recorder) record(ctx context.Context, outcome analysis.Outcome) {
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()

	event := EventFromOutcome(outcome)
	if err := r.svc.Log(writeCtx, event); err != nil {
		r.logger.Warn("history write failed", "id", event.ID, "error", err)
	}
}
