package tokens

import (
	"context"
	"errors"
	"time"

	"vibex-storefront/internal/database"
)

// SQLStore keeps tokens in the session_tokens table.
type SQLStore struct {
	queries *database.TokenQueries
	now     func() time.Time
}

func NewSQLStore(queries *database.TokenQueries) *SQLStore {
	return &SQLStore{queries: queries, now: time.Now}
}

func (s *SQLStore) Get(ctx context.Context, sessionID, name string) (string, error) {
	value, err := s.queries.GetToken(ctx, sessionID, name)
	if errors.Is(err, database.ErrTokenNotFound) {
		return "", ErrNotFound
	}
	return value, err
}

func (s *SQLStore) Set(ctx context.Context, sessionID, name, value string, ttl time.Duration) error {
	return s.queries.SetToken(ctx, sessionID, name, value, s.now().Add(ttl))
}

func (s *SQLStore) Delete(ctx context.Context, sessionID string, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	return s.queries.DeleteTokens(ctx, sessionID, names)
}
