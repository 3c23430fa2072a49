package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/volunteerhub/volunteer-signup/internal/model"
	"github.com/volunteerhub/volunteer-signup/internal/service/ports"
	"github.com/volunteerhub/volunteer-signup/internal/watch"
)

// InquiryService manages user questions and administrator answers.
type InquiryService struct {
	inquiries ports.InquiryRepo
	notifier  ports.ChangeNotifier
}

// NewInquiryService constructs an InquiryService.
func NewInquiryService(inquiries ports.InquiryRepo, notifier ports.ChangeNotifier) *InquiryService {
	return &InquiryService{inquiries: inquiries, notifier: notifier}
}

// Submit stores a new inquiry with no answer.
func (s *InquiryService) Submit(ctx context.Context, req model.SubmitInquiryRequest) (*model.Inquiry, error) {
	userName := strings.TrimSpace(req.UserName)
	if userName == "" {
		return nil, fmt.Errorf("%w: user name is required", model.ErrValidation)
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return nil, fmt.Errorf("%w: question is required", model.ErrValidation)
	}

	inquiry := &model.Inquiry{UserName: userName, Question: question}
	if err := s.inquiries.Create(ctx, inquiry); err != nil {
		return nil, fmt.Errorf("create inquiry: %w", err)
	}
	s.notifier.Notify(watch.TopicInquiries)
	return inquiry, nil
}

// List returns all inquiries, newest first.
func (s *InquiryService) List(ctx context.Context) ([]model.Inquiry, error) {
	return s.inquiries.List(ctx)
}

// Answer records the administrator's answer. Overwriting an existing
// answer is allowed and idempotent.
func (s *InquiryService) Answer(ctx context.Context, id, answer, answeredBy string) error {
	if id == "" {
		return fmt.Errorf("%w: inquiry id is required", model.ErrValidation)
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return fmt.Errorf("%w: answer is required", model.ErrValidation)
	}
	if err := s.inquiries.Answer(ctx, id, answer, answeredBy); err != nil {
		return err
	}
	s.notifier.Notify(watch.TopicInquiries)
	return nil
}
