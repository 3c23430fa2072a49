package ports

import (
	"context"

	"github.com/volunteerhub/volunteer-signup/internal/model"
)

// InquiryRepo is the persistence port for inquiries.
type InquiryRepo interface {
	Create(ctx context.Context, q *model.Inquiry) error
	List(ctx context.Context) ([]model.Inquiry, error)
	Answer(ctx context.Context, id, answer, answeredBy string) error
}
