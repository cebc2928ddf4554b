package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Case is a tracked immigration case, e.g. an H-1B petition or an
// adjustment of status application.
type Case struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"userId"`
	CaseType           string     `json:"caseType"`
	ReceiptNumber      *string    `json:"receiptNumber"`
	Status             string     `json:"status"`
	Progress           int        `json:"progress"`
	ExpectedCompletion *time.Time `json:"expectedCompletion"`
	Title              string     `json:"title"`
	Description        *string    `json:"description"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// CreateCaseParams are the caller-supplied fields of a new case. Status
// defaults to pending and progress to zero when left unset.
type CreateCaseParams struct {
	UserID             string     `json:"-"`
	CaseType           string     `json:"caseType"`
	ReceiptNumber      *string    `json:"receiptNumber"`
	Status             string     `json:"status"`
	Progress           int        `json:"progress"`
	ExpectedCompletion *time.Time `json:"expectedCompletion"`
	Title              string     `json:"title"`
	Description        *string    `json:"description"`
}

// UpdateCaseParams holds a partial case update; nil fields keep their
// current value.
type UpdateCaseParams struct {
	CaseType           *string    `json:"caseType"`
	ReceiptNumber      *string    `json:"receiptNumber"`
	Status             *string    `json:"status"`
	Progress           *int       `json:"progress"`
	ExpectedCompletion *time.Time `json:"expectedCompletion"`
	Title              *string    `json:"title"`
	Description        *string    `json:"description"`
}

const caseColumns = `id, user_id, case_type, receipt_number, status, progress,
	expected_completion, title, description, created_at, updated_at`

// ListCases returns the user's cases, most recently updated first.
func (s *Store) ListCases(ctx context.Context, userID string) ([]Case, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+caseColumns+`
		FROM cases WHERE user_id = $1
		ORDER BY updated_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cases for %q: %w", userID, err)
	}
	return scanCases(rows)
}

// CreateCase inserts a new case and returns the stored row.
func (s *Store) CreateCase(ctx context.Context, params CreateCaseParams) (Case, error) {
	status := params.Status
	if status == "" {
		status = "pending"
	}

	row := s.pool.QueryRow(ctx, `
		INSERT INTO cases (user_id, case_type, receipt_number, status, progress,
			expected_completion, title, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+caseColumns,
		params.UserID, params.CaseType, params.ReceiptNumber, status,
		params.Progress, params.ExpectedCompletion, params.Title, params.Description,
	)

	c, err := scanCase(row)
	if err != nil {
		return Case{}, fmt.Errorf("create case: %w", err)
	}

	s.logger.Info("case created", "case_id", c.ID, "user_id", c.UserID, "case_type", c.CaseType)
	return c, nil
}

// UpdateCase applies a partial update and returns the stored row, or
// ErrNotFound for an unknown id.
func (s *Store) UpdateCase(ctx context.Context, id string, params UpdateCaseParams) (Case, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE cases SET
			case_type           = COALESCE($2, case_type),
			receipt_number      = COALESCE($3, receipt_number),
			status              = COALESCE($4, status),
			progress            = COALESCE($5, progress),
			expected_completion = COALESCE($6, expected_completion),
			title               = COALESCE($7, title),
			description         = COALESCE($8, description),
			updated_at          = now()
		WHERE id = $1
		RETURNING `+caseColumns,
		id, params.CaseType, params.ReceiptNumber, params.Status,
		params.Progress, params.ExpectedCompletion, params.Title, params.Description,
	)

	c, err := scanCase(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Case{}, fmt.Errorf("case %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return Case{}, fmt.Errorf("update case %q: %w", id, err)
	}
	return c, nil
}

// DeleteCase removes a case. Deleting an unknown id is not an error.
func (s *Store) DeleteCase(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM cases WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete case %q: %w", id, err)
	}
	return nil
}

func scanCase(row pgx.Row) (Case, error) {
	var c Case
	err := row.Scan(&c.ID, &c.UserID, &c.CaseType, &c.ReceiptNumber, &c.Status,
		&c.Progress, &c.ExpectedCompletion, &c.Title, &c.Description,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func scanCases(rows pgx.Rows) ([]Case, error) {
	defer rows.Close()

	var cases []Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, fmt.Errorf("scan case row: %w", err)
		}
		cases = append(cases, c)
	}
	return cases, rows.Err()
}
