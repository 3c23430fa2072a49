// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/volunteerhub/volunteer-signup/internal/dateutil"
	"github.com/volunteerhub/volunteer-signup/internal/model"
	"github.com/volunteerhub/volunteer-signup/internal/service/ports"
	"github.com/volunteerhub/volunteer-signup/internal/watch"
)

const maxCapacity = 100_000

// CatalogService manages the ordered event catalog.
type CatalogService struct {
	events   ports.EventRepo
	notifier ports.ChangeNotifier
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(events ports.EventRepo, notifier ports.ChangeNotifier) *CatalogService {
	return &CatalogService{events: events, notifier: notifier}
}

// List returns the catalog in its fixed order: chronological date
// ascending from storage, then a stable re-sort by type rank for events
// sharing a date. Both orders are applied in sequence on purpose.
func (s *CatalogService) List(ctx context.Context) ([]model.Event, error) {
	events, err := s.events.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Type.Rank() < events[j].Type.Rank()
	})
	return events, nil
}

// Get returns a single event by id.
func (s *CatalogService) Get(ctx context.Context, id string) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", model.ErrValidation)
	}
	return s.events.GetByID(ctx, id)
}

// Create validates the request and stores a new event with zero occupancy.
func (s *CatalogService) Create(ctx context.Context, req model.CreateEventRequest) (*model.Event, error) {
	e, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	s.notifier.Notify(watch.TopicEvents)
	return e, nil
}

// Update rewrites an event's fields under the same validation rules.
// The occupancy counter is never touched here.
func (s *CatalogService) Update(ctx context.Context, id string, req model.CreateEventRequest) (*model.Event, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: event id is required", model.ErrValidation)
	}
	e, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	e.ID = id
	if err := s.events.Update(ctx, e); err != nil {
		return nil, err
	}
	s.notifier.Notify(watch.TopicEvents)
	return s.events.GetByID(ctx, id)
}

// Delete removes an event. Existing signups keep their reference and are
// shown as orphaned in the my-signups view.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: event id is required", model.ErrValidation)
	}
	if err := s.events.Delete(ctx, id); err != nil {
		return err
	}
	s.notifier.Notify(watch.TopicEvents)
	return nil
}

func (s *CatalogService) validate(req model.CreateEventRequest) (*model.Event, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", model.ErrValidation)
	}
	if req.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be a positive integer", model.ErrValidation)
	}
	if req.Capacity > maxCapacity {
		return nil, fmt.Errorf("%w: capacity cannot exceed %d", model.ErrValidation, maxCapacity)
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown event type %q", model.ErrValidation, req.Type)
	}
	repeat := req.Repeat
	if repeat == "" {
		repeat = model.RepeatNone
	}
	if !repeat.Valid() {
		return nil, fmt.Errorf("%w: unknown repeat rule %q", model.ErrValidation, repeat)
	}
	date, err := dateutil.Normalize(req.Date)
	if err != nil {
		return nil, err
	}
	return &model.Event{
		Title:    title,
		Date:     date,
		Type:     req.Type,
		Capacity: req.Capacity,
		Repeat:   repeat,
	}, nil
}
