// Package ports declares the repository and notification interfaces the
// service layer depends on.
package ports

import (
	"context"

	"github.com/volunteerhub/volunteer-signup/internal/model"
)

// EventRepo is the persistence port for events.
type EventRepo interface {
	Create(ctx context.Context, e *model.Event) error
	List(ctx context.Context) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	Update(ctx context.Context, e *model.Event) error
	Delete(ctx context.Context, id string) error
	RepairOccupancy(ctx context.Context, id string, stored, counted int) (bool, error)
}
