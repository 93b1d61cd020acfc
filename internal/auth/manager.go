// Package auth keeps shopper credentials on the server side of the BFF and
// implements the token provider the gateway client needs.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/singleflight"

	"vibex-storefront/internal/models"
	"vibex-storefront/internal/tokens"
)

var (
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrNotLoggedIn    = errors.New("not logged in")
)

// AuthAPI is the subset of the auth service the manager calls.
type AuthAPI interface {
	Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error)
	LoginWithProvider(ctx context.Context, provider, code string) (*models.TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error)
}

type Manager struct {
	store      tokens.Store
	api        AuthAPI
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
	refreshes  singleflight.Group
}

func NewManager(store tokens.Store, api AuthAPI, accessTTL, refreshTTL time.Duration, logger *slog.Logger) *Manager {
	return &Manager{
		store:      store,
		api:        api,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

func (m *Manager) Login(ctx context.Context, sessionID string, req models.LoginRequest) (*Claims, error) {
	pair, err := m.api.Login(ctx, req)
	if err != nil {
		return nil, err
	}
	return m.storePair(ctx, sessionID, pair)
}

func (m *Manager) LoginWithProvider(ctx context.Context, sessionID, provider, code string) (*Claims, error) {
	pair, err := m.api.LoginWithProvider(ctx, provider, code)
	if err != nil {
		return nil, err
	}
	return m.storePair(ctx, sessionID, pair)
}

func (m *Manager) storePair(ctx context.Context, sessionID string, pair *models.TokenPair) (*Claims, error) {
	if pair.Token == "" {
		return nil, errors.New("no access token in login response")
	}
	claims, err := ParseClaims(pair.Token)
	if err != nil {
		return nil, err
	}
	if err := m.store.Set(ctx, sessionID, tokens.AccessToken, pair.Token, m.accessTTL); err != nil {
		return nil, fmt.Errorf("store access token: %w", err)
	}
	if pair.RefreshToken != "" {
		if err := m.store.Set(ctx, sessionID, tokens.RefreshToken, pair.RefreshToken, m.refreshTTL); err != nil {
			return nil, fmt.Errorf("store refresh token: %w", err)
		}
	}
	return claims, nil
}

// Refresh exchanges the session's refresh token. Concurrent calls for one
// session share a single request. Any failure logs the session out.
func (m *Manager) Refresh(ctx context.Context, sessionID string) (string, error) {
	ch := m.refreshes.DoChan(sessionID, func() (any, error) {
		// Detached so one caller giving up does not fail the others.
		flightCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return m.refresh(flightCtx, sessionID)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (m *Manager) refresh(ctx context.Context, sessionID string) (string, error) {
	refreshToken, err := m.store.Get(ctx, sessionID, tokens.RefreshToken)
	if errors.Is(err, tokens.ErrNotFound) {
		return "", ErrNoRefreshToken
	}
	if err != nil {
		return "", fmt.Errorf("load refresh token: %w", err)
	}

	pair, err := m.api.Refresh(ctx, refreshToken)
	if err == nil && pair.Token == "" {
		err = errors.New("no access token in refresh response")
	}
	if err != nil {
		m.logger.Info("refresh rejected, clearing session", "session", shortID(sessionID), "err", err)
		m.Logout(ctx, sessionID)
		return "", err
	}

	if err := m.store.Set(ctx, sessionID, tokens.AccessToken, pair.Token, m.accessTTL); err != nil {
		return "", fmt.Errorf("store access token: %w", err)
	}
	if pair.RefreshToken != "" {
		if err := m.store.Set(ctx, sessionID, tokens.RefreshToken, pair.RefreshToken, m.refreshTTL); err != nil {
			return "", fmt.Errorf("store refresh token: %w", err)
		}
	}
	return pair.Token, nil
}

// Logout removes both tokens. Store failures are logged; the caller cannot act on them.
func (m *Manager) Logout(ctx context.Context, sessionID string) {
	if err := m.store.Delete(ctx, sessionID, tokens.AccessToken, tokens.RefreshToken); err != nil {
		m.logger.Error("failed to delete session tokens", "session", shortID(sessionID), "err", err)
	}
}

func (m *Manager) AccessToken(ctx context.Context, sessionID string) (string, bool) {
	token, err := m.store.Get(ctx, sessionID, tokens.AccessToken)
	if err != nil {
		if !errors.Is(err, tokens.ErrNotFound) {
			m.logger.Error("failed to read access token", "session", shortID(sessionID), "err", err)
		}
		return "", false
	}
	return token, true
}

func (m *Manager) HasRefreshToken(ctx context.Context, sessionID string) bool {
	_, err := m.store.Get(ctx, sessionID, tokens.RefreshToken)
	if err != nil && !errors.Is(err, tokens.ErrNotFound) {
		m.logger.Error("failed to read refresh token", "session", shortID(sessionID), "err", err)
	}
	return err == nil
}

func (m *Manager) ClearAccessToken(ctx context.Context, sessionID string) {
	if err := m.store.Delete(ctx, sessionID, tokens.AccessToken); err != nil {
		m.logger.Error("failed to clear access token", "session", shortID(sessionID), "err", err)
	}
}

// Claims decodes the session's current access token.
func (m *Manager) Claims(ctx context.Context, sessionID string) (*Claims, error) {
	token, ok := m.AccessToken(ctx, sessionID)
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return ParseClaims(token)
}

// Session binds the manager to one session id.
func (m *Manager) Session(sessionID string) *Session {
	return &Session{manager: m, id: sessionID}
}

func shortID(sessionID string) string {
	if len(sessionID) > 8 {
		return sessionID[:8]
	}
	return sessionID
}
