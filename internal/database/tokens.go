package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// ErrTokenNotFound is returned when no live token row matches.
var ErrTokenNotFound = errors.New("token not found")

type TokenQueries struct {
	db *sql.DB
}

func NewTokenQueries(db *sql.DB) *TokenQueries {
	return &TokenQueries{db: db}
}

// GetToken returns the value unless it has expired.
func (q *TokenQueries) GetToken(ctx context.Context, sessionID, name string) (string, error) {
	query := `
		SELECT value
		FROM session_tokens
		WHERE session_id = $1 AND name = $2 AND expires_at > CURRENT_TIMESTAMP
	`
	var value string
	err := q.db.QueryRowContext(ctx, query, sessionID, name).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrTokenNotFound
		}
		return "", fmt.Errorf("failed to get token: %w", err)
	}
	return value, nil
}

func (q *TokenQueries) SetToken(ctx context.Context, sessionID, name, value string, expiresAt time.Time) error {
	query := `
		INSERT INTO session_tokens (session_id, name, value, expires_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id, name)
		DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at
	`
	if _, err := q.db.ExecContext(ctx, query, sessionID, name, value, expiresAt); err != nil {
		return fmt.Errorf("failed to set token: %w", err)
	}
	return nil
}

func (q *TokenQueries) DeleteTokens(ctx context.Context, sessionID string, names []string) error {
	query := `DELETE FROM session_tokens WHERE session_id = $1 AND name = ANY($2)`
	if _, err := q.db.ExecContext(ctx, query, sessionID, pq.Array(names)); err != nil {
		return fmt.Errorf("failed to delete tokens: %w", err)
	}
	return nil
}

// PurgeExpired removes expired rows and reports how many were deleted.
func (q *TokenQueries) PurgeExpired(ctx context.Context) (int64, error) {
	result, err := q.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE expires_at <= CURRENT_TIMESTAMP`)
	if err != nil {
		return 0, fmt.Errorf("failed to purge expired tokens: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged tokens: %w", err)
	}
	return n, nil
}
