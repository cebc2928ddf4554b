// Package storage persists the application's relational entities: users,
// cases, conversations and their messages, saved queries, alert
// subscriptions, and policy updates. Knowledge-base chunks live in the
// knowledge package instead.
package storage

import (
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/surya16122114/immigration-ai-assistant/internal/log"
)

// ErrNotFound reports a lookup for an id that does not exist.
var ErrNotFound = errors.New("storage: not found")

// Store provides access to the relational tables.
type Store struct {
	pool   *pgxpool.Pool
	logger log.Logger
}

// New creates a Store over the given pool.
func New(pool *pgxpool.Pool, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{pool: pool, logger: logger}
}
