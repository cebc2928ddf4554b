package storage

import (
	"context"
	"fmt"
	"time"
)

// SavedQuery is a question a user bookmarked, optionally with the answer
// they received.
type SavedQuery struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	Query     string    `json:"query"`
	Response  *string   `json:"response"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"createdAt"`
}

// CreateSavedQueryParams are the caller-supplied fields of a saved query.
type CreateSavedQueryParams struct {
	UserID   string
	Title    string
	Query    string
	Response *string
	Tags     []string
}

// ListSavedQueries returns the user's saved queries, newest first.
func (s *Store) ListSavedQueries(ctx context.Context, userID string) ([]SavedQuery, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, title, query, response, tags, created_at
		FROM saved_queries WHERE user_id = $1
		ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list saved queries for %q: %w", userID, err)
	}
	defer rows.Close()

	var queries []SavedQuery
	for rows.Next() {
		var q SavedQuery
		if err := rows.Scan(&q.ID, &q.UserID, &q.Title, &q.Query, &q.Response, &q.Tags, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan saved query row: %w", err)
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// CreateSavedQuery bookmarks a query for the user.
func (s *Store) CreateSavedQuery(ctx context.Context, params CreateSavedQueryParams) (SavedQuery, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO saved_queries (user_id, title, query, response, tags)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, title, query, response, tags, created_at`,
		params.UserID, params.Title, params.Query, params.Response, params.Tags)

	var q SavedQuery
	if err := row.Scan(&q.ID, &q.UserID, &q.Title, &q.Query, &q.Response, &q.Tags, &q.CreatedAt); err != nil {
		return SavedQuery{}, fmt.Errorf("create saved query: %w", err)
	}
	return q, nil
}

// DeleteSavedQuery removes a saved query. Unknown ids are a no-op.
func (s *Store) DeleteSavedQuery(ctx context.Context, id string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM saved_queries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete saved query %q: %w", id, err)
	}
	return nil
}
