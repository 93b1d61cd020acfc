package auth

import (
	"context"
)

// Session is the token provider for one shopper's gateway calls.
type Session struct {
	manager *Manager
	id      string
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) AccessToken(ctx context.Context) (string, bool) {
	return s.manager.AccessToken(ctx, s.id)
}

func (s *Session) Refresh(ctx context.Context) (string, error) {
	return s.manager.Refresh(ctx, s.id)
}

// CanRefresh reports whether a refresh token is stored, so a call made after
// the access token expired can still be renewed.
func (s *Session) CanRefresh(ctx context.Context) bool {
	return s.manager.HasRefreshToken(ctx, s.id)
}

func (s *Session) ClearAccessToken(ctx context.Context) {
	s.manager.ClearAccessToken(ctx, s.id)
}

func (s *Session) Logout(ctx context.Context) {
	s.manager.Logout(ctx, s.id)
}
