package ports

import (
	"context"

	"github.com/volunteerhub/volunteer-signup/internal/model"
)

// TeamRepo is the persistence port for teams and rosters.
type TeamRepo interface {
	Create(ctx context.Context, t *model.Team) error
	List(ctx context.Context) ([]model.Team, error)
	GetByID(ctx context.Context, id string) (*model.Team, error)
	AddMember(ctx context.Context, teamID string, m model.TeamMember) error
	RemoveMember(ctx context.Context, teamID, memberID string) error
	MoveMember(ctx context.Context, fromTeamID, toTeamID, memberID string) error
	UpdateArea(ctx context.Context, teamID, area string) error
	Delete(ctx context.Context, teamID string) error
}
