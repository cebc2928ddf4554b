package storage

import (
	"context"
	"fmt"
	"time"
)

// PolicyUpdate is a published immigration policy change surfaced on the
// public feed.
type PolicyUpdate struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Content     *string   `json:"content"`
	Source      string    `json:"source"`
	SourceURL   *string   `json:"sourceUrl"`
	Category    string    `json:"category"`
	PublishedAt time.Time `json:"publishedAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// CreatePolicyUpdateParams are the caller-supplied fields of a policy
// update.
type CreatePolicyUpdateParams struct {
	Title       string
	Summary     string
	Content     *string
	Source      string
	SourceURL   *string
	Category    string
	PublishedAt time.Time
}

// DefaultPolicyUpdateLimit bounds the public feed when the caller does not
// specify a limit.
const DefaultPolicyUpdateLimit = 10

// RecentPolicyUpdates returns the most recently published updates.
func (s *Store) RecentPolicyUpdates(ctx context.Context, limit int) ([]PolicyUpdate, error) {
	if limit <= 0 {
		limit = DefaultPolicyUpdateLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, title, summary, content, source, source_url, category, published_at, created_at
		FROM policy_updates
		ORDER BY published_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list policy updates: %w", err)
	}
	defer rows.Close()

	var updates []PolicyUpdate
	for rows.Next() {
		var u PolicyUpdate
		if err := rows.Scan(&u.ID, &u.Title, &u.Summary, &u.Content, &u.Source,
			&u.SourceURL, &u.Category, &u.PublishedAt, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan policy update row: %w", err)
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}

// CreatePolicyUpdate publishes a policy update to the feed.
func (s *Store) CreatePolicyUpdate(ctx context.Context, params CreatePolicyUpdateParams) (PolicyUpdate, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO policy_updates (title, summary, content, source, source_url, category, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, title, summary, content, source, source_url, category, published_at, created_at`,
		params.Title, params.Summary, params.Content, params.Source,
		params.SourceURL, params.Category, params.PublishedAt)

	var u PolicyUpdate
	if err := row.Scan(&u.ID, &u.Title, &u.Summary, &u.Content, &u.Source,
		&u.SourceURL, &u.Category, &u.PublishedAt, &u.CreatedAt); err != nil {
		return PolicyUpdate{}, fmt.Errorf("create policy update: %w", err)
	}

	s.logger.Info("policy update published", "policy_id", u.ID, "category", u.Category)
	return u, nil
}
