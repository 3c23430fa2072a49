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

// SignupRepository handles persistence for volunteer signups.
type SignupRepository struct {
	db *pgxpool.Pool
}

// NewSignupRepository constructs a SignupRepository.
func NewSignupRepository(db *pgxpool.Pool) *SignupRepository {
	return &SignupRepository{db: db}
}

// Admit performs a capacity-guarded admission inside a single transaction.
//
// The event row is locked with SELECT ... FOR UPDATE, so concurrent
// admissions for the same event are serialised: the occupancy check, the
// counter increment, and the signup insert commit together or not at all.
// A client that raced past the UI-level closed check is rejected here with
// model.ErrEventClosed instead of overshooting the capacity.
func (r *SignupRepository) Admit(ctx context.Context, eventID, volunteerName string, vehicle model.VehicleSupport) (*model.Signup, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var (
		capacity  int
		occupancy int
		eventDate time.Time
	)
	err = tx.QueryRow(ctx,
		`SELECT capacity, current_occupancy, event_date
		 FROM events
		 WHERE id = $1
		 FOR UPDATE`,
		eventID,
	).Scan(&capacity, &occupancy, &eventDate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("lock event row: %w", err)
	}

	if occupancy >= capacity {
		err = model.ErrEventClosed
		return nil, err
	}

	// Relative delta under the row lock; never read-modify-write.
	_, err = tx.Exec(ctx,
		`UPDATE events SET current_occupancy = current_occupancy + 1 WHERE id = $1`,
		eventID,
	)
	if err != nil {
		return nil, fmt.Errorf("increment occupancy: %w", err)
	}

	date, err := dateutil.Normalize(eventDate)
	if err != nil {
		return nil, fmt.Errorf("normalize event date: %w", err)
	}
	signup := &model.Signup{
		ID:             uuid.New().String(),
		EventID:        eventID,
		VolunteerName:  volunteerName,
		VehicleSupport: vehicle,
		VolunteerDate:  date,
		SubmittedAt:    time.Now().UTC(),
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO signups (id, event_id, volunteer_name, vehicle_support, volunteer_date, submitted_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		signup.ID, signup.EventID, signup.VolunteerName, signup.VehicleSupport, signup.VolunteerDate.Time(), signup.SubmittedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert signup: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return signup, nil
}

// Remove deletes a signup and decrements its event's counter symmetrically
// in one transaction. Orphaned signups (event already deleted) are removed
// without a counter touch; the counter never goes below zero.
func (r *SignupRepository) Remove(ctx context.Context, id string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	var eventID string
	err = tx.QueryRow(ctx,
		`DELETE FROM signups WHERE id = $1 RETURNING event_id`,
		id,
	).Scan(&eventID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.ErrNotFound
		}
		return fmt.Errorf("delete signup: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE events
		 SET current_occupancy = GREATEST(current_occupancy - 1, 0)
		 WHERE id = $1`,
		eventID,
	)
	if err != nil {
		return fmt.Errorf("decrement occupancy: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListByEvent returns all signups for an event, oldest first.
func (r *SignupRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Signup, error) {
	return r.list(ctx,
		`SELECT id, event_id, volunteer_name, vehicle_support, volunteer_date, submitted_at
		 FROM signups WHERE event_id = $1 ORDER BY submitted_at ASC`,
		eventID,
	)
}

// ListByName returns one volunteer's signups, newest first. Names are free
// text, not identities, so this is a best-effort personal view.
func (r *SignupRepository) ListByName(ctx context.Context, name string) ([]model.Signup, error) {
	return r.list(ctx,
		`SELECT id, event_id, volunteer_name, vehicle_support, volunteer_date, submitted_at
		 FROM signups WHERE volunteer_name = $1 ORDER BY submitted_at DESC`,
		name,
	)
}

// ListByEventType returns signups whose originating event has the given
// type. This is the candidate pool for team assignment.
func (r *SignupRepository) ListByEventType(ctx context.Context, t model.EventType) ([]model.Signup, error) {
	return r.list(ctx,
		`SELECT s.id, s.event_id, s.volunteer_name, s.vehicle_support, s.volunteer_date, s.submitted_at
		 FROM signups s
		 JOIN events e ON e.id = s.event_id
		 WHERE e.event_type = $1
		 ORDER BY s.submitted_at ASC`,
		t,
	)
}

func (r *SignupRepository) list(ctx context.Context, sql string, args ...any) ([]model.Signup, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list signups: %w", err)
	}
	defer rows.Close()

	var signups []model.Signup
	for rows.Next() {
		var (
			s model.Signup
			d time.Time
		)
		if err := rows.Scan(&s.ID, &s.EventID, &s.VolunteerName, &s.VehicleSupport, &d, &s.SubmittedAt); err != nil {
			return nil, fmt.Errorf("scan signup: %w", err)
		}
		date, err := dateutil.Normalize(d)
		if err != nil {
			return nil, fmt.Errorf("normalize volunteer date: %w", err)
		}
		s.VolunteerDate = date
		signups = append(signups, s)
	}
	return signups, rows.Err()
}

// OccupancyByEventDate recomputes the (event, date) -> count mapping from
// the full signup set. Display and auditing only; admission never reads it.
func (r *SignupRepository) OccupancyByEventDate(ctx context.Context) ([]model.OccupancyCount, error) {
	rows, err := r.db.Query(ctx,
		`SELECT event_id, volunteer_date, COUNT(*)
		 FROM signups
		 GROUP BY event_id, volunteer_date
		 ORDER BY event_id, volunteer_date`,
	)
	if err != nil {
		return nil, fmt.Errorf("aggregate occupancy: %w", err)
	}
	defer rows.Close()

	var counts []model.OccupancyCount
	for rows.Next() {
		var (
			c model.OccupancyCount
			d time.Time
		)
		if err := rows.Scan(&c.EventID, &d, &c.Count); err != nil {
			return nil, fmt.Errorf("scan occupancy: %w", err)
		}
		date, err := dateutil.Normalize(d)
		if err != nil {
			return nil, fmt.Errorf("normalize occupancy date: %w", err)
		}
		c.Date = date
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// CountByEvent returns the per-event signup recount used by the auditor.
func (r *SignupRepository) CountByEvent(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.Query(ctx,
		`SELECT event_id, COUNT(*) FROM signups GROUP BY event_id`,
	)
	if err != nil {
		return nil, fmt.Errorf("count signups: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			eventID string
			n       int
		)
		if err := rows.Scan(&eventID, &n); err != nil {
			return nil, fmt.Errorf("scan signup count: %w", err)
		}
		counts[eventID] = n
	}
	return counts, rows.Err()
}
