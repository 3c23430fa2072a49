package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/volunteerhub/volunteer-signup/internal/model"
	"github.com/volunteerhub/volunteer-signup/internal/service/ports/mocks"
	"github.com/volunteerhub/volunteer-signup/internal/watch"
)

func TestRosterService_CreateTeam_ComputesVehicleCount(t *testing.T) {
	teams := &mocks.TeamRepo{}
	notifier := &mocks.Notifier{}
	svc := NewRosterService(teams, &mocks.SignupRepo{}, notifier)

	teams.On("Create", mock.Anything, mock.MatchedBy(func(team *model.Team) bool {
		return team.Name == "1조" && team.Type == model.TypeHouseVisit && len(team.Members) == 3
	})).Run(func(args mock.Arguments) {
		// The repository persists the computed count with the members.
		team := args.Get(1).(*model.Team)
		team.VehicleSupportCount = model.CountVehicleSupport(team.Members)
	}).Return(nil)

	team, err := svc.CreateTeam(context.Background(), model.CreateTeamRequest{
		Name: "1조",
		Area: "강남구",
		Type: model.TypeHouseVisit,
		Members: []model.TeamMember{
			{ID: "m1", Name: "김철수", VehicleSupport: model.VehicleYes},
			{ID: "m2", Name: "이영희", VehicleSupport: model.VehicleNo},
			{ID: "m3", Name: "박민수", VehicleSupport: model.VehicleYes},
		},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, team.VehicleSupportCount)
	assert.Contains(t, notifier.Topics(), watch.TopicTeams)
}

func TestRosterService_CreateTeam_Validation(t *testing.T) {
	svc := NewRosterService(&mocks.TeamRepo{}, &mocks.SignupRepo{}, &mocks.Notifier{})

	tests := []struct {
		name string
		req  model.CreateTeamRequest
	}{
		{"empty name", model.CreateTeamRequest{Type: model.TypeHouseVisit}},
		{"unknown type", model.CreateTeamRequest{Name: "1조", Type: "picnic"}},
		{"member without id", model.CreateTeamRequest{
			Name: "1조", Type: model.TypeHouseVisit,
			Members: []model.TeamMember{{Name: "김철수", VehicleSupport: model.VehicleNo}},
		}},
		{"member with bad vehicle value", model.CreateTeamRequest{
			Name: "1조", Type: model.TypeHouseVisit,
			Members: []model.TeamMember{{ID: "m1", Name: "김철수", VehicleSupport: "perhaps"}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTeam(context.Background(), tt.req)
			assert.ErrorIs(t, err, model.ErrValidation)
		})
	}
}

func TestRosterService_MoveMember_Delegates(t *testing.T) {
	teams := &mocks.TeamRepo{}
	notifier := &mocks.Notifier{}
	svc := NewRosterService(teams, &mocks.SignupRepo{}, notifier)

	teams.On("MoveMember", mock.Anything, "teamA", "teamB", "memberX").Return(nil)

	require.NoError(t, svc.MoveMember(context.Background(), "teamA", "teamB", "memberX"))
	assert.Contains(t, notifier.Topics(), watch.TopicTeams)
	teams.AssertExpectations(t)
}

func TestRosterService_MoveMember_MissingIDs(t *testing.T) {
	svc := NewRosterService(&mocks.TeamRepo{}, &mocks.SignupRepo{}, &mocks.Notifier{})

	err := svc.MoveMember(context.Background(), "teamA", "", "memberX")

	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestRosterService_RemoveMember_NotFound(t *testing.T) {
	teams := &mocks.TeamRepo{}
	notifier := &mocks.Notifier{}
	svc := NewRosterService(teams, &mocks.SignupRepo{}, notifier)

	teams.On("RemoveMember", mock.Anything, "teamA", "ghost").Return(model.ErrNotFound)

	err := svc.RemoveMember(context.Background(), "teamA", "ghost")

	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.Empty(t, notifier.Topics())
}

func TestRosterService_ListCandidates_CopiesSignupFields(t *testing.T) {
	signups := &mocks.SignupRepo{}
	svc := NewRosterService(&mocks.TeamRepo{}, signups, &mocks.Notifier{})

	signups.On("ListByEventType", mock.Anything, model.TypePublicEvidence).Return([]model.Signup{
		{ID: "s1", VolunteerName: "김철수", VehicleSupport: model.VehicleYes},
		{ID: "s2", VolunteerName: "이영희", VehicleSupport: model.VehicleNo},
	}, nil)

	candidates, err := svc.ListCandidates(context.Background(), model.TypePublicEvidence)

	require.NoError(t, err)
	// Name and vehicle support carried over verbatim from the signup.
	assert.Equal(t, []model.TeamMember{
		{ID: "s1", Name: "김철수", VehicleSupport: model.VehicleYes},
		{ID: "s2", Name: "이영희", VehicleSupport: model.VehicleNo},
	}, candidates)
}

func TestRosterService_ListCandidates_UnknownType(t *testing.T) {
	svc := NewRosterService(&mocks.TeamRepo{}, &mocks.SignupRepo{}, &mocks.Notifier{})

	_, err := svc.ListCandidates(context.Background(), "picnic")

	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestRosterService_UpdateArea_TrimsInput(t *testing.T) {
	teams := &mocks.TeamRepo{}
	svc := NewRosterService(teams, &mocks.SignupRepo{}, &mocks.Notifier{})

	teams.On("UpdateArea", mock.Anything, "teamA", "서울시 종로구").Return(nil)

	require.NoError(t, svc.UpdateArea(context.Background(), "teamA", "  서울시 종로구  "))
	teams.AssertExpectations(t)
}

func TestRosterService_DeleteTeam(t *testing.T) {
	teams := &mocks.TeamRepo{}
	notifier := &mocks.Notifier{}
	svc := NewRosterService(teams, &mocks.SignupRepo{}, notifier)

	teams.On("Delete", mock.Anything, "teamA").Return(nil)

	require.NoError(t, svc.DeleteTeam(context.Background(), "teamA"))
	assert.Contains(t, notifier.Topics(), watch.TopicTeams)
}
