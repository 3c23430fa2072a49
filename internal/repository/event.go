// Package repository implements all database queries for the volunteer
// signup system. It uses pgx directly (no ORM) for transparency and
// performance.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/volunteerhub/volunteer-signup/internal/dateutil"
	"github.com/volunteerhub/volunteer-signup/internal/model"
)

// EventRepository handles persistence for events.
type EventRepository struct {
	db *pgxpool.Pool
}

// NewEventRepository constructs an EventRepository.
func NewEventRepository(db *pgxpool.Pool) *EventRepository {
	return &EventRepository{db: db}
}

// Create inserts a new event with a generated UUID and zero occupancy.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	e.ID = uuid.New().String()
	e.Occupancy = 0
	e.CreatedAt = time.Now().UTC()

	_, err := r.db.Exec(ctx,
		`INSERT INTO events (id, title, event_date, event_type, capacity, current_occupancy, repeat_rule, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.Title, e.Date.Time(), e.Type, e.Capacity, e.Occupancy, e.Repeat, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// List returns all events ordered by calendar date ascending. The fixed
// type-rank order is layered on top by the catalog service.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, title, event_date, event_type, capacity, current_occupancy, repeat_rule, created_at
		 FROM events
		 ORDER BY event_date ASC, created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// GetByID returns a single event or model.ErrNotFound.
func (r *EventRepository) GetByID(ctx context.Context, id string) (*model.Event, error) {
	row := r.db.QueryRow(ctx,
		`SELECT id, title, event_date, event_type, capacity, current_occupancy, repeat_rule, created_at
		 FROM events WHERE id = $1`,
		id,
	)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// Update rewrites the mutable fields of an event. The occupancy counter is
// deliberately untouched; only admission and removal transactions move it.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET title = $2, event_date = $3, event_type = $4, capacity = $5, repeat_rule = $6
		 WHERE id = $1`,
		e.ID, e.Title, e.Date.Time(), e.Type, e.Capacity, e.Repeat,
	)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes an event. Signups referencing it are kept as orphans.
func (r *EventRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// RepairOccupancy overwrites the stored counter with the recount, but
// only if the counter still holds the value the audit read. An admission
// that commits between the recount and the repair moves the counter and
// voids the write; the caller leaves the row for the next sweep instead
// of stomping the fresh increment.
func (r *EventRepository) RepairOccupancy(ctx context.Context, id string, stored, counted int) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE events
		 SET current_occupancy = $3
		 WHERE id = $1 AND current_occupancy = $2`,
		id, stored, counted,
	)
	if err != nil {
		return false, fmt.Errorf("repair occupancy: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var (
		e model.Event
		d time.Time
	)
	if err := row.Scan(&e.ID, &e.Title, &d, &e.Type, &e.Capacity, &e.Occupancy, &e.Repeat, &e.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan event: %w", err)
	}
	date, err := dateutil.Normalize(d)
	if err != nil {
		return nil, fmt.Errorf("normalize event date: %w", err)
	}
	e.Date = date
	return &e, nil
}
