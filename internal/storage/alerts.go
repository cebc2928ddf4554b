package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// Alert types users can subscribe to.
const (
	AlertVisaBulletin  = "visa_bulletin"
	AlertH1BLottery    = "h1b_lottery"
	AlertPolicyChanges = "policy_changes"
)

// AlertSubscription records a user's interest in one alert type.
type AlertSubscription struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	AlertType string    `json:"alertType"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// UpdateAlertSubscriptionParams holds a partial subscription update; nil
// fields keep their current value.
type UpdateAlertSubscriptionParams struct {
	AlertType *string `json:"alertType"`
	IsActive  *bool   `json:"isActive"`
}

// ListAlertSubscriptions returns the user's subscriptions.
func (s *Store) ListAlertSubscriptions(ctx context.Context, userID string) ([]AlertSubscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, alert_type, is_active, created_at, updated_at
		FROM alert_subscriptions WHERE user_id = $1
		ORDER BY created_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("list alert subscriptions for %q: %w", userID, err)
	}
	defer rows.Close()

	var subs []AlertSubscription
	for rows.Next() {
		var sub AlertSubscription
		if err := rows.Scan(&sub.ID, &sub.UserID, &sub.AlertType, &sub.IsActive, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan alert subscription row: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// CreateAlertSubscription subscribes the user to an alert type.
func (s *Store) CreateAlertSubscription(ctx context.Context, userID, alertType string, isActive bool) (AlertSubscription, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO alert_subscriptions (user_id, alert_type, is_active)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, alert_type, is_active, created_at, updated_at`,
		userID, alertType, isActive)

	var sub AlertSubscription
	if err := row.Scan(&sub.ID, &sub.UserID, &sub.AlertType, &sub.IsActive, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return AlertSubscription{}, fmt.Errorf("create alert subscription: %w", err)
	}
	return sub, nil
}

// UpdateAlertSubscription applies a partial update, or returns ErrNotFound
// for an unknown id.
func (s *Store) UpdateAlertSubscription(ctx context.Context, id string, params UpdateAlertSubscriptionParams) (AlertSubscription, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE alert_subscriptions SET
			alert_type = COALESCE($2, alert_type),
			is_active  = COALESCE($3, is_active),
			updated_at = now()
		WHERE id = $1
		RETURNING id, user_id, alert_type, is_active, created_at, updated_at`,
		id, params.AlertType, params.IsActive)

	var sub AlertSubscription
	err := row.Scan(&sub.ID, &sub.UserID, &sub.AlertType, &sub.IsActive, &sub.CreatedAt, &sub.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return AlertSubscription{}, fmt.Errorf("alert subscription %q: %w", id, ErrNotFound)
	}
	if err != nil {
		return AlertSubscription{}, fmt.Errorf("update alert subscription %q: %w", id, err)
	}
	return sub, nil
}

// ActiveSubscriberEmails returns the email addresses of every user holding
// an active subscription to alertType. Users without an email on file are
// skipped.
func (s *Store) ActiveSubscriberEmails(ctx context.Context, alertType string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT u.email
		FROM alert_subscriptions subs
		JOIN users u ON u.id = subs.user_id
		WHERE subs.alert_type = $1 AND subs.is_active AND u.email IS NOT NULL
		ORDER BY u.email`, alertType)
	if err != nil {
		return nil, fmt.Errorf("list %s subscribers: %w", alertType, err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan subscriber email: %w", err)
		}
		emails = append(emails, email)
	}
	return emails, rows.Err()
}

// DeleteAlertSubscription removes a subscription. Unknown ids are a no-op.
func (s *Store) DeleteAlertSubscription(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM alert_subscriptions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete alert subscription %q: %w", id, err)
	}
	return nil
}
