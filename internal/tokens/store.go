// Package tokens keeps each BFF session's access and refresh tokens.
package tokens

import (
	"context"
	"errors"
	"time"
)

// Token names, matching the cookies the storefront used to keep.
const (
	AccessToken  = "accessToken"
	RefreshToken = "refreshToken"
)

var ErrNotFound = errors.New("token not found")

// Store holds named tokens per session. Get returns ErrNotFound for missing or expired values.
type Store interface {
	Get(ctx context.Context, sessionID, name string) (string, error)
	Set(ctx context.Context, sessionID, name, value string, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string, names ...string) error
}
