package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Normalized role names carried in access tokens.
const (
	RoleUser      = "ROLE_USER"
	RoleAdmin     = "ROLE_ADMIN"
	RoleShopOwner = "ROLE_SHOP_OWNER"
)

// User is the subset of /v1/user/information used at checkout.
type User struct {
	ID       string `json:"id"`
	UserID   string `json:"userId,omitempty"`
	Email    string `json:"email"`
	Username string `json:"username"`
}

// Identifier returns whichever id field the user service filled in.
func (u User) Identifier() string {
	if u.ID != "" {
		return u.ID
	}
	return u.UserID
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// TokenPair is what the auth service returns on login and refresh.
type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type WalletBalance struct {
	BalanceAvailable decimal.Decimal `json:"balanceAvailable"`
	BalancePending   decimal.Decimal `json:"balancePending"`
}

type WalletEntry struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// WalletEntries is a page of the wallet ledger.
type WalletEntries struct {
	Content       []WalletEntry `json:"content"`
	TotalElements int64         `json:"totalElements"`
	TotalPages    int           `json:"totalPages"`
	Number        int           `json:"number"`
	Size          int           `json:"size"`
}
