// Package mocks provides testify mocks for the ports interfaces.
package mocks

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/volunteerhub/volunteer-signup/internal/model"
)

// EventRepo mocks ports.EventRepo.
type EventRepo struct{ mock.Mock }

func (m *EventRepo) Create(ctx context.Context, e *model.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *EventRepo) List(ctx context.Context) ([]model.Event, error) {
	args := m.Called(ctx)
	events, _ := args.Get(0).([]model.Event)
	return events, args.Error(1)
}

func (m *EventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	args := m.Called(ctx, id)
	event, _ := args.Get(0).(*model.Event)
	return event, args.Error(1)
}

func (m *EventRepo) Update(ctx context.Context, e *model.Event) error {
	return m.Called(ctx, e).Error(0)
}

func (m *EventRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *EventRepo) RepairOccupancy(ctx context.Context, id string, stored, counted int) (bool, error) {
	args := m.Called(ctx, id, stored, counted)
	return args.Bool(0), args.Error(1)
}

// SignupRepo mocks ports.SignupRepo.
type SignupRepo struct{ mock.Mock }

func (m *SignupRepo) Admit(ctx context.Context, eventID, volunteerName string, vehicle model.VehicleSupport) (*model.Signup, error) {
	args := m.Called(ctx, eventID, volunteerName, vehicle)
	signup, _ := args.Get(0).(*model.Signup)
	return signup, args.Error(1)
}

func (m *SignupRepo) Remove(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *SignupRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Signup, error) {
	args := m.Called(ctx, eventID)
	signups, _ := args.Get(0).([]model.Signup)
	return signups, args.Error(1)
}

func (m *SignupRepo) ListByName(ctx context.Context, name string) ([]model.Signup, error) {
	args := m.Called(ctx, name)
	signups, _ := args.Get(0).([]model.Signup)
	return signups, args.Error(1)
}

func (m *SignupRepo) ListByEventType(ctx context.Context, t model.EventType) ([]model.Signup, error) {
	args := m.Called(ctx, t)
	signups, _ := args.Get(0).([]model.Signup)
	return signups, args.Error(1)
}

func (m *SignupRepo) OccupancyByEventDate(ctx context.Context) ([]model.OccupancyCount, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).([]model.OccupancyCount)
	return counts, args.Error(1)
}

func (m *SignupRepo) CountByEvent(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[string]int)
	return counts, args.Error(1)
}

// InquiryRepo mocks ports.InquiryRepo.
type InquiryRepo struct{ mock.Mock }

func (m *InquiryRepo) Create(ctx context.Context, q *model.Inquiry) error {
	return m.Called(ctx, q).Error(0)
}

func (m *InquiryRepo) List(ctx context.Context) ([]model.Inquiry, error) {
	args := m.Called(ctx)
	inquiries, _ := args.Get(0).([]model.Inquiry)
	return inquiries, args.Error(1)
}

func (m *InquiryRepo) Answer(ctx context.Context, id, answer, answeredBy string) error {
	return m.Called(ctx, id, answer, answeredBy).Error(0)
}

// TeamRepo mocks ports.TeamRepo.
type TeamRepo struct{ mock.Mock }

func (m *TeamRepo) Create(ctx context.Context, t *model.Team) error {
	return m.Called(ctx, t).Error(0)
}

func (m *TeamRepo) List(ctx context.Context) ([]model.Team, error) {
	args := m.Called(ctx)
	teams, _ := args.Get(0).([]model.Team)
	return teams, args.Error(1)
}

func (m *TeamRepo) GetByID(ctx context.Context, id string) (*model.Team, error) {
	args := m.Called(ctx, id)
	team, _ := args.Get(0).(*model.Team)
	return team, args.Error(1)
}

func (m *TeamRepo) AddMember(ctx context.Context, teamID string, member model.TeamMember) error {
	return m.Called(ctx, teamID, member).Error(0)
}

func (m *TeamRepo) RemoveMember(ctx context.Context, teamID, memberID string) error {
	return m.Called(ctx, teamID, memberID).Error(0)
}

func (m *TeamRepo) MoveMember(ctx context.Context, fromTeamID, toTeamID, memberID string) error {
	return m.Called(ctx, fromTeamID, toTeamID, memberID).Error(0)
}

func (m *TeamRepo) UpdateArea(ctx context.Context, teamID, area string) error {
	return m.Called(ctx, teamID, area).Error(0)
}

func (m *TeamRepo) Delete(ctx context.Context, teamID string) error {
	return m.Called(ctx, teamID).Error(0)
}

// Notifier records change notifications for assertion.
type Notifier struct {
	mu     sync.Mutex
	topics []string
}

func (n *Notifier) Notify(topic string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.topics = append(n.topics, topic)
}

// Topics returns the notifications seen so far.
func (n *Notifier) Topics() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.topics...)
}
