package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/volunteerhub/volunteer-signup/internal/model"
	"github.com/volunteerhub/volunteer-signup/internal/service/ports"
	"github.com/volunteerhub/volunteer-signup/internal/watch"
)

// RosterService assigns accepted volunteers into named teams per event
// type. Team membership is a frozen copy of signup data; later changes to
// the source signup never propagate.
type RosterService struct {
	teams    ports.TeamRepo
	signups  ports.SignupRepo
	notifier ports.ChangeNotifier
}

// NewRosterService constructs a RosterService.
func NewRosterService(teams ports.TeamRepo, signups ports.SignupRepo, notifier ports.ChangeNotifier) *RosterService {
	return &RosterService{teams: teams, signups: signups, notifier: notifier}
}

// CreateTeam validates and stores a team; the vehicle support count is
// computed from the initial members at creation.
func (s *RosterService) CreateTeam(ctx context.Context, req model.CreateTeamRequest) (*model.Team, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: team name is required", model.ErrValidation)
	}
	if !req.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown team type %q", model.ErrValidation, req.Type)
	}
	members := req.Members
	if members == nil {
		members = []model.TeamMember{}
	}
	for _, m := range members {
		if err := validateMember(m); err != nil {
			return nil, err
		}
	}

	team := &model.Team{
		Name:    name,
		Area:    strings.TrimSpace(req.Area),
		Type:    req.Type,
		Members: members,
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, fmt.Errorf("create team: %w", err)
	}
	s.notifier.Notify(watch.TopicTeams)
	return team, nil
}

// ListTeams returns every team with its roster.
func (s *RosterService) ListTeams(ctx context.Context) ([]model.Team, error) {
	return s.teams.List(ctx)
}

// GetTeam returns one team with its roster.
func (s *RosterService) GetTeam(ctx context.Context, id string) (*model.Team, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: team id is required", model.ErrValidation)
	}
	return s.teams.GetByID(ctx, id)
}

// AddMember appends a volunteer to a team's roster.
func (s *RosterService) AddMember(ctx context.Context, teamID string, m model.TeamMember) error {
	if teamID == "" {
		return fmt.Errorf("%w: team id is required", model.ErrValidation)
	}
	if err := validateMember(m); err != nil {
		return err
	}
	if err := s.teams.AddMember(ctx, teamID, m); err != nil {
		return err
	}
	s.notifier.Notify(watch.TopicTeams)
	return nil
}

// RemoveMember filters a member out of a team.
func (s *RosterService) RemoveMember(ctx context.Context, teamID, memberID string) error {
	if teamID == "" || memberID == "" {
		return fmt.Errorf("%w: team id and member id are required", model.ErrValidation)
	}
	if err := s.teams.RemoveMember(ctx, teamID, memberID); err != nil {
		return err
	}
	s.notifier.Notify(watch.TopicTeams)
	return nil
}

// MoveMember moves a member between teams in one transaction, member
// fields carried over verbatim and both counts recomputed.
func (s *RosterService) MoveMember(ctx context.Context, fromTeamID, toTeamID, memberID string) error {
	if fromTeamID == "" || toTeamID == "" || memberID == "" {
		return fmt.Errorf("%w: source team, destination team, and member id are required", model.ErrValidation)
	}
	if err := s.teams.MoveMember(ctx, fromTeamID, toTeamID, memberID); err != nil {
		return err
	}
	s.notifier.Notify(watch.TopicTeams)
	return nil
}

// UpdateArea rewrites the team's area text.
func (s *RosterService) UpdateArea(ctx context.Context, teamID, area string) error {
	if teamID == "" {
		return fmt.Errorf("%w: team id is required", model.ErrValidation)
	}
	if err := s.teams.UpdateArea(ctx, teamID, strings.TrimSpace(area)); err != nil {
		return err
	}
	s.notifier.Notify(watch.TopicTeams)
	return nil
}

// DeleteTeam removes a team. Its members are not reassigned anywhere.
func (s *RosterService) DeleteTeam(ctx context.Context, teamID string) error {
	if teamID == "" {
		return fmt.Errorf("%w: team id is required", model.ErrValidation)
	}
	if err := s.teams.Delete(ctx, teamID); err != nil {
		return err
	}
	s.notifier.Notify(watch.TopicTeams)
	return nil
}

// ListCandidates returns the volunteers eligible for a team of the given
// type: signups whose originating event carries the same type tag.
func (s *RosterService) ListCandidates(ctx context.Context, t model.EventType) ([]model.TeamMember, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("%w: unknown team type %q", model.ErrValidation, t)
	}
	signups, err := s.signups.ListByEventType(ctx, t)
	if err != nil {
		return nil, err
	}
	candidates := make([]model.TeamMember, 0, len(signups))
	for _, sg := range signups {
		candidates = append(candidates, model.TeamMember{
			ID:             sg.ID,
			Name:           sg.VolunteerName,
			VehicleSupport: sg.VehicleSupport,
		})
	}
	return candidates, nil
}

func validateMember(m model.TeamMember) error {
	if m.ID == "" {
		return fmt.Errorf("%w: member id is required", model.ErrValidation)
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: member name is required", model.ErrValidation)
	}
	if !m.VehicleSupport.Valid() {
		return fmt.Errorf("%w: unknown vehicle support value %q", model.ErrValidation, m.VehicleSupport)
	}
	return nil
}
