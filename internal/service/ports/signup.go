package ports

import (
	"context"

	"github.com/volunteerhub/volunteer-signup/internal/model"
)

// SignupRepo is the persistence port for volunteer signups.
type SignupRepo interface {
	Admit(ctx context.Context, eventID, volunteerName string, vehicle model.VehicleSupport) (*model.Signup, error)
	Remove(ctx context.Context, id string) error
	ListByEvent(ctx context.Context, eventID string) ([]model.Signup, error)
	ListByName(ctx context.Context, name string) ([]model.Signup, error)
	ListByEventType(ctx context.Context, t model.EventType) ([]model.Signup, error)
	OccupancyByEventDate(ctx context.Context) ([]model.OccupancyCount, error)
	CountByEvent(ctx context.Context) (map[string]int, error)
}
