package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/farewatch/farewatch/internal/domain"
	"github.com/farewatch/farewatch/internal/telemetry"
)

// TrustSourceRepository defines the source persistence the trust worker needs
type TrustSourceRepository interface {
	List(ctx context.Context) ([]*domain.Source, error)
	UpdateSuccessRate(ctx context.Context, sourceID string, now time.Time) error
}

// TrustWorker periodically recomputes the rolling success rate of every
// source, so trust decays for producers that stopped submitting. Ingestion
// already refreshes the rate inline; this sweep covers idle sources.
type TrustWorker struct {
	repo TrustSourceRepository
	now  func() time.Time
}

// NewTrustWorker creates a new TrustWorker instance
func NewTrustWorker(repo TrustSourceRepository) *TrustWorker {
	return &TrustWorker{
		repo: repo,
		now:  time.Now,
	}
}

// ProcessJobs implements the JobProcessor interface
func (w *TrustWorker) ProcessJobs(ctx context.Context) error {
	sources, err := w.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list sources: %w", err)
	}

	if len(sources) == 0 {
		return nil
	}

	now := w.now().UTC()
	for _, src := range sources {
		if err := w.repo.UpdateSuccessRate(ctx, src.ID, now); err != nil {
			log.Printf("Error updating success rate for source %s: %v", src.Domain, err)
			telemetry.CaptureError(ctx, err)
		}
	}

	return nil
}
