package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/volunteerhub/volunteer-signup/internal/model"
)

// TeamRepository handles persistence for teams and their member rosters.
//
// Every membership mutation recomputes and persists the team's vehicle
// support count in the same transaction, so the stored count always equals
// the live count of members with vehicle support.
type TeamRepository struct {
	db *pgxpool.Pool
}

// NewTeamRepository constructs a TeamRepository.
func NewTeamRepository(db *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{db: db}
}

// Create inserts a team and its initial members in one transaction.
func (r *TeamRepository) Create(ctx context.Context, t *model.Team) error {
	t.ID = uuid.New().String()
	t.CreatedAt = time.Now().UTC()
	t.VehicleSupportCount = model.CountVehicleSupport(t.Members)

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO teams (id, name, area, team_type, vehicle_support_count, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		t.ID, t.Name, t.Area, t.Type, t.VehicleSupportCount, t.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert team: %w", err)
	}

	for i, m := range t.Members {
		_, err = tx.Exec(ctx,
			`INSERT INTO team_members (team_id, member_id, member_name, vehicle_support, position)
			 VALUES ($1, $2, $3, $4, $5)`,
			t.ID, m.ID, m.Name, m.VehicleSupport, i,
		)
		if err != nil {
			return fmt.Errorf("insert team member: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// List returns all teams with their members in roster order.
func (r *TeamRepository) List(ctx context.Context) ([]model.Team, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, name, area, team_type, vehicle_support_count, created_at
		 FROM teams
		 ORDER BY created_at ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	defer rows.Close()

	var teams []model.Team
	index := make(map[string]int)
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Area, &t.Type, &t.VehicleSupportCount, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team: %w", err)
		}
		t.Members = []model.TeamMember{}
		index[t.ID] = len(teams)
		teams = append(teams, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	rows.Close()

	memberRows, err := r.db.Query(ctx,
		`SELECT team_id, member_id, member_name, vehicle_support
		 FROM team_members
		 ORDER BY team_id, position ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer memberRows.Close()

	for memberRows.Next() {
		var (
			teamID string
			m      model.TeamMember
		)
		if err := memberRows.Scan(&teamID, &m.ID, &m.Name, &m.VehicleSupport); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		if i, ok := index[teamID]; ok {
			teams[i].Members = append(teams[i].Members, m)
		}
	}
	return teams, memberRows.Err()
}

// GetByID returns one team with its members or model.ErrNotFound.
func (r *TeamRepository) GetByID(ctx context.Context, id string) (*model.Team, error) {
	var t model.Team
	err := r.db.QueryRow(ctx,
		`SELECT id, name, area, team_type, vehicle_support_count, created_at
		 FROM teams WHERE id = $1`,
		id,
	).Scan(&t.ID, &t.Name, &t.Area, &t.Type, &t.VehicleSupportCount, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get team: %w", err)
	}

	rows, err := r.db.Query(ctx,
		`SELECT member_id, member_name, vehicle_support
		 FROM team_members
		 WHERE team_id = $1
		 ORDER BY position ASC`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	defer rows.Close()

	t.Members = []model.TeamMember{}
	for rows.Next() {
		var m model.TeamMember
		if err := rows.Scan(&m.ID, &m.Name, &m.VehicleSupport); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		t.Members = append(t.Members, m)
	}
	return &t, rows.Err()
}

// AddMember appends a member to the end of the roster and recounts.
func (r *TeamRepository) AddMember(ctx context.Context, teamID string, m model.TeamMember) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = lockTeams(ctx, tx, teamID); err != nil {
		return err
	}
	if err = appendMember(ctx, tx, teamID, m); err != nil {
		return err
	}
	if err = recount(ctx, tx, teamID); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// RemoveMember filters a member out and recounts in the same transaction.
func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, memberID string) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = lockTeams(ctx, tx, teamID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM team_members WHERE team_id = $1 AND member_id = $2`,
		teamID, memberID,
	)
	if err != nil {
		return fmt.Errorf("delete team member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		err = model.ErrNotFound
		return err
	}

	if err = recount(ctx, tx, teamID); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// MoveMember moves a member between two teams atomically. Both team rows
// are locked in id order so concurrent moves cannot deadlock, the member
// fields are carried over verbatim, and both counts are recomputed before
// the single commit. A failure anywhere rolls the whole move back.
func (r *TeamRepository) MoveMember(ctx context.Context, fromTeamID, toTeamID, memberID string) error {
	if fromTeamID == toTeamID {
		return fmt.Errorf("%w: source and destination team are the same", model.ErrValidation)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = lockTeams(ctx, tx, fromTeamID, toTeamID); err != nil {
		return err
	}

	var m model.TeamMember
	err = tx.QueryRow(ctx,
		`DELETE FROM team_members
		 WHERE team_id = $1 AND member_id = $2
		 RETURNING member_id, member_name, vehicle_support`,
		fromTeamID, memberID,
	).Scan(&m.ID, &m.Name, &m.VehicleSupport)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = model.ErrNotFound
			return err
		}
		return fmt.Errorf("remove member from source team: %w", err)
	}

	if err = appendMember(ctx, tx, toTeamID, m); err != nil {
		return err
	}
	if err = recount(ctx, tx, fromTeamID); err != nil {
		return err
	}
	if err = recount(ctx, tx, toTeamID); err != nil {
		return err
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// UpdateArea rewrites the team's area text, independent of membership.
func (r *TeamRepository) UpdateArea(ctx context.Context, teamID, area string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE teams SET area = $2 WHERE id = $1`,
		teamID, area,
	)
	if err != nil {
		return fmt.Errorf("update team area: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// Delete removes a team; its member rows go with it (ON DELETE CASCADE).
// Members are not reassigned anywhere.
func (r *TeamRepository) Delete(ctx context.Context, teamID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM teams WHERE id = $1`, teamID)
	if err != nil {
		return fmt.Errorf("delete team: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}

// lockTeams acquires FOR UPDATE locks on the given team rows. Rows are
// locked in id order regardless of argument order. Returns ErrNotFound
// unless every requested team exists.
func lockTeams(ctx context.Context, tx pgx.Tx, ids ...string) error {
	rows, err := tx.Query(ctx,
		`SELECT id FROM teams WHERE id = ANY($1::uuid[]) ORDER BY id FOR UPDATE`,
		ids,
	)
	if err != nil {
		return fmt.Errorf("lock team rows: %w", err)
	}
	defer rows.Close()

	locked := 0
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("scan locked team: %w", err)
		}
		locked++
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if locked != len(ids) {
		return model.ErrNotFound
	}
	return nil
}

// appendMember inserts m at the end of the team's roster order.
func appendMember(ctx context.Context, tx pgx.Tx, teamID string, m model.TeamMember) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO team_members (team_id, member_id, member_name, vehicle_support, position)
		 VALUES ($1, $2, $3, $4,
		         (SELECT COALESCE(MAX(position) + 1, 0) FROM team_members WHERE team_id = $1))`,
		teamID, m.ID, m.Name, m.VehicleSupport,
	)
	if err != nil {
		return fmt.Errorf("append team member: %w", err)
	}
	return nil
}

// recount persists the derived vehicle support count from the live rows.
func recount(ctx context.Context, tx pgx.Tx, teamID string) error {
	_, err := tx.Exec(ctx,
		`UPDATE teams
		 SET vehicle_support_count =
		     (SELECT COUNT(*) FROM team_members
		      WHERE team_id = $1 AND vehicle_support = 'yes')
		 WHERE id = $1`,
		teamID,
	)
	if err != nil {
		return fmt.Errorf("recount vehicle support: %w", err)
	}
	return nil
}
