package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/volunteerhub/volunteer-signup/internal/dateutil"
	"github.com/volunteerhub/volunteer-signup/internal/model"
	"github.com/volunteerhub/volunteer-signup/internal/service/ports"
	"github.com/volunteerhub/volunteer-signup/internal/watch"
)

// areaPlaceholder stands in for the map integration.
const areaPlaceholder = "구역 미정"

// AdmissionService decides whether signups are accepted against event
// capacity. The decisive check happens server-side, inside the
// repository's admission transaction; the catalog's IsClosed flag is only
// a cheap pre-check for clients.
type AdmissionService struct {
	events   ports.EventRepo
	signups  ports.SignupRepo
	notifier ports.ChangeNotifier
}

// NewAdmissionService constructs an AdmissionService.
func NewAdmissionService(events ports.EventRepo, signups ports.SignupRepo, notifier ports.ChangeNotifier) *AdmissionService {
	return &AdmissionService{events: events, signups: signups, notifier: notifier}
}

// Submit validates and admits one signup.
//
// Validation order follows the admission contract: name first, then the
// event and its date, then the transactional capacity check. A full event
// surfaces model.ErrEventClosed even when the caller's locally observed
// occupancy was stale.
func (s *AdmissionService) Submit(ctx context.Context, eventID string, req model.SubmitSignupRequest) (*model.Signup, error) {
	name := strings.TrimSpace(req.VolunteerName)
	if name == "" {
		return nil, fmt.Errorf("%w: volunteer name is required", model.ErrValidation)
	}
	vehicle := req.VehicleSupport
	if vehicle == "" {
		vehicle = model.VehicleNo
	}
	if !vehicle.Valid() {
		return nil, fmt.Errorf("%w: unknown vehicle support value %q", model.ErrValidation, vehicle)
	}
	if eventID == "" {
		return nil, fmt.Errorf("%w: event id is required", model.ErrValidation)
	}

	event, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if _, err := dateutil.Normalize(event.Date); err != nil {
		return nil, err
	}

	signup, err := s.signups.Admit(ctx, event.ID, name, vehicle)
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(watch.TopicSignups)
	s.notifier.Notify(watch.TopicEvents)
	return signup, nil
}

// Remove deletes a signup (admin only) with a symmetric occupancy
// decrement.
func (s *AdmissionService) Remove(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: signup id is required", model.ErrValidation)
	}
	if err := s.signups.Remove(ctx, id); err != nil {
		return err
	}
	s.notifier.Notify(watch.TopicSignups)
	s.notifier.Notify(watch.TopicEvents)
	return nil
}

// ListByEvent returns the signups for one event.
func (s *AdmissionService) ListByEvent(ctx context.Context, eventID string) ([]model.Signup, error) {
	if _, err := s.events.GetByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.signups.ListByEvent(ctx, eventID)
}

// Occupancy returns the full-scan (event, date) aggregation. Display and
// auditing only; the stored counter remains the admission source.
func (s *AdmissionService) Occupancy(ctx context.Context) ([]model.OccupancyCount, error) {
	return s.signups.OccupancyByEventDate(ctx)
}

// MySignups assembles the personal signup view for a volunteer name.
// Signups whose event was deleted come back with a nil event so the
// client can render a "source event missing" state instead of hiding the
// record.
func (s *AdmissionService) MySignups(ctx context.Context, name string) ([]model.SignupDetail, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: volunteer name is required", model.ErrValidation)
	}

	signups, err := s.signups.ListByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if len(signups) == 0 {
		return []model.SignupDetail{}, nil
	}

	counts, err := s.signups.OccupancyByEventDate(ctx)
	if err != nil {
		return nil, err
	}
	sizes := make(map[string]int, len(counts))
	for _, c := range counts {
		sizes[model.OccupancyKey(c.EventID, c.Date.Key())] = c.Count
	}

	details := make([]model.SignupDetail, 0, len(signups))
	for _, signup := range signups {
		detail := model.SignupDetail{
			Signup:   signup,
			TeamSize: sizes[model.OccupancyKey(signup.EventID, signup.VolunteerDate.Key())],
			Area:     areaPlaceholder,
		}
		event, err := s.events.GetByID(ctx, signup.EventID)
		switch {
		case err == nil:
			detail.Event = event
		case errors.Is(err, model.ErrNotFound):
			// Orphaned reference: event deleted after the signup.
		default:
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

// AuditOccupancy compares every stored counter against the signup recount,
// repairs any drift, and reports what it changed. Run periodically by the
// scheduler; admission itself never consults the recount.
func (s *AdmissionService) AuditOccupancy(ctx context.Context) ([]model.OccupancyDrift, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	counts, err := s.signups.CountByEvent(ctx)
	if err != nil {
		return nil, fmt.Errorf("recount signups: %w", err)
	}

	var drifts []model.OccupancyDrift
	for _, e := range events {
		counted := counts[e.ID]
		if counted == e.Occupancy {
			continue
		}
		repaired, err := s.events.RepairOccupancy(ctx, e.ID, e.Occupancy, counted)
		if err != nil {
			log.Printf("audit: repair occupancy for event %s: %v", e.ID, err)
			continue
		}
		if !repaired {
			// The counter moved since the recount, so both numbers are
			// stale. The next sweep re-audits from fresh reads.
			log.Printf("audit: occupancy for event %s moved during audit, skipping repair", e.ID)
			continue
		}
		drifts = append(drifts, model.OccupancyDrift{EventID: e.ID, Stored: e.Occupancy, Counted: counted})
	}
	if len(drifts) > 0 {
		sort.Slice(drifts, func(i, j int) bool { return drifts[i].EventID < drifts[j].EventID })
		s.notifier.Notify(watch.TopicEvents)
	}
	return drifts, nil
}
