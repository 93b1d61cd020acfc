package gateway

import (
	"context"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/models"
)

// Auth wraps /v1/auth. Every route here is public: no bearer token, no refresh.
type Auth struct {
	api *apiclient.Client
}

func (a *Auth) Login(ctx context.Context, req models.LoginRequest) (*models.TokenPair, error) {
	var out models.TokenPair
	if err := a.api.Post(ctx, "/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LoginWithProvider exchanges an OAuth code from "google" or "facebook".
func (a *Auth) LoginWithProvider(ctx context.Context, provider, code string) (*models.TokenPair, error) {
	var out models.TokenPair
	if err := a.api.Post(ctx, "/login/"+provider, map[string]string{"code": code}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Auth) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	var out models.TokenPair
	if err := a.api.Post(ctx, "/refresh", models.RefreshRequest{RefreshToken: refreshToken}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (a *Auth) Register(ctx context.Context, req models.RegisterRequest) error {
	return a.api.Post(ctx, "/register", req, nil)
}

func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	return a.api.Post(ctx, "/forgotPassword", map[string]string{"email": email}, nil)
}

func (a *Auth) VerifyOTP(ctx context.Context, email, otp string) error {
	return a.api.Post(ctx, "/verifyOtp", map[string]string{"email": email, "otp": otp}, nil)
}

func (a *Auth) UpdatePassword(ctx context.Context, email, newPassword string) error {
	return a.api.Post(ctx, "/updatePassword", map[string]string{"email": email, "newPassword": newPassword}, nil)
}
