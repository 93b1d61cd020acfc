package gateway

import (
	"context"
	"net/url"
	"strconv"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/models"
)

type Users struct {
	api *apiclient.Client
}

func (u *Users) Information(ctx context.Context) (*models.User, error) {
	var out models.User
	if err := u.api.Get(ctx, "/information", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (u *Users) Addresses(ctx context.Context) ([]models.Address, error) {
	var out []models.Address
	if err := u.api.Get(ctx, "/address/getAllAddresses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type Wallet struct {
	api *apiclient.Client
}

func (w *Wallet) Balance(ctx context.Context) (*models.WalletBalance, error) {
	var out models.WalletBalance
	if err := w.api.Get(ctx, "/balance", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Entries returns one page of the ledger; page is zero based.
func (w *Wallet) Entries(ctx context.Context, page, size int) (*models.WalletEntries, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("size", strconv.Itoa(size))

	var out models.WalletEntries
	if err := w.api.Get(ctx, "/entries", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
