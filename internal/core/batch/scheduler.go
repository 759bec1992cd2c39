package batch

import (
	"context"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/obinna-dev/drivesage/internal/models"
)

// DocumentAnalyzer is the slice of the analyzer the scheduler needs.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, userID string, doc *models.Document) (string, error)
}

// Waiter paces consecutive analyses. *rate.Limiter satisfies it; tests
// substitute a fake so runs finish without wall-clock waits.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Failure records one document that could not be analyzed.
type Failure struct {
	DocumentID string `json:"document_id"`
	Reason     string `json:"reason"`
}

// Report summarizes one batch run.
type Report struct {
	Attempted int       `json:"attempted"`
	Succeeded int       `json:"succeeded"`
	Failed    []Failure `json:"failed,omitempty"`
}

// Scheduler re-analyzes a user's stale documents strictly sequentially.
// The upstream Drive and model APIs apply per-account rate limits, so a
// token bucket paces the calls instead of fanning out concurrently.
// One failed document never aborts the rest of the run.
type Scheduler struct {
	analyzer DocumentAnalyzer
	limiter  Waiter
	horizon  time.Duration
	now      func() time.Time
}

// NewScheduler builds a scheduler pacing at ratePerSec analyses per
// second (burst 1, so the gap between calls is enforced, not averaged).
func NewScheduler(analyzer DocumentAnalyzer, horizon time.Duration, ratePerSec float64) *Scheduler {
	if ratePerSec <= 0 {
		ratePerSec = 1
	}
	return &Scheduler{
		analyzer: analyzer,
		limiter:  rate.NewLimiter(rate.Limit(ratePerSec), 1),
		horizon:  horizon,
		now:      time.Now,
	}
}

// RunForUser analyzes every stale document in input order. Cancellation
// is honored between items; an in-flight analysis is not preempted, and
// items already committed keep their state.
func (s *Scheduler) RunForUser(ctx context.Context, userID string, documents []models.Document) (Report, error) {
	var report Report
	for i := range documents {
		doc := &documents[i]
		if !doc.IsStale(s.now(), s.horizon) {
			continue
		}

		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.limiter.Wait(ctx); err != nil {
			return report, err
		}

		report.Attempted++
		if _, err := s.analyzer.Analyze(ctx, userID, doc); err != nil {
			log.Printf("batch: analyze %s failed: %v", doc.ID, err)
			report.Failed = append(report.Failed, Failure{DocumentID: doc.ID, Reason: err.Error()})
			continue
		}
		report.Succeeded++
	}
	return report, nil
}
