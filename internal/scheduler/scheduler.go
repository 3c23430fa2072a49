// Package scheduler runs the occupancy consistency auditor on an interval.
package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/volunteerhub/volunteer-signup/internal/model"
)

type occupancyAuditor interface {
	AuditOccupancy(ctx context.Context) ([]model.OccupancyDrift, error)
}

// Scheduler periodically reconciles stored occupancy counters against the
// signup recount. Admission never waits for it; the sweep only repairs
// drift after the fact.
type Scheduler struct {
	auditor  occupancyAuditor
	interval time.Duration
}

// New constructs a Scheduler.
func New(auditor occupancyAuditor, interval time.Duration) *Scheduler {
	return &Scheduler{auditor: auditor, interval: interval}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	log.Printf("occupancy auditor started (interval %s)", s.interval)
	for {
		select {
		case <-ctx.Done():
			log.Println("occupancy auditor stopped")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	drifts, err := s.auditor.AuditOccupancy(ctx)
	if err != nil {
		log.Printf("occupancy audit failed: %v", err)
		return
	}
	for _, d := range drifts {
		log.Printf("occupancy drift repaired: event %s stored=%d counted=%d", d.EventID, d.Stored, d.Counted)
	}
}
