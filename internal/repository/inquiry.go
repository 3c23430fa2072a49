package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/volunteerhub/volunteer-signup/internal/model"
)

// InquiryRepository handles persistence for user inquiries.
type InquiryRepository struct {
	db *pgxpool.Pool
}

// NewInquiryRepository constructs an InquiryRepository.
func NewInquiryRepository(db *pgxpool.Pool) *InquiryRepository {
	return &InquiryRepository{db: db}
}

// Create inserts a new inquiry with a generated UUID and no answer.
func (r *InquiryRepository) Create(ctx context.Context, q *model.Inquiry) error {
	q.ID = uuid.New().String()
	q.SubmittedAt = time.Now().UTC()
	q.Answer = nil
	q.AnsweredBy = nil

	_, err := r.db.Exec(ctx,
		`INSERT INTO inquiries (id, user_name, question, submitted_at, answer, answered_by)
		 VALUES ($1, $2, $3, $4, NULL, NULL)`,
		q.ID, q.UserName, q.Question, q.SubmittedAt,
	)
	if err != nil {
		return fmt.Errorf("insert inquiry: %w", err)
	}
	return nil
}

// List returns all inquiries, newest first.
func (r *InquiryRepository) List(ctx context.Context) ([]model.Inquiry, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, user_name, question, submitted_at, answer, answered_by
		 FROM inquiries
		 ORDER BY submitted_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list inquiries: %w", err)
	}
	defer rows.Close()

	var inquiries []model.Inquiry
	for rows.Next() {
		var q model.Inquiry
		if err := rows.Scan(&q.ID, &q.UserName, &q.Question, &q.SubmittedAt, &q.Answer, &q.AnsweredBy); err != nil {
			return nil, fmt.Errorf("scan inquiry: %w", err)
		}
		inquiries = append(inquiries, q)
	}
	return inquiries, rows.Err()
}

// Answer sets the answer and the answering admin. Overwriting a previous
// answer is allowed; answering is idempotent for identical input.
func (r *InquiryRepository) Answer(ctx context.Context, id, answer, answeredBy string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE inquiries SET answer = $2, answered_by = $3 WHERE id = $1`,
		id, answer, answeredBy,
	)
	if err != nil {
		return fmt.Errorf("answer inquiry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrNotFound
	}
	return nil
}
