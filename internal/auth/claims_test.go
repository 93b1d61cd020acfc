package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("gateway-key"))
	require.NoError(t, err)
	return token
}

func TestParseClaimsRolesList(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signToken(t, jwt.MapClaims{
		"sub":    "shopper@example.com",
		"userId": "u-42",
		"roles":  []string{"user", "ROLE_SHOP_OWNER", "user"},
		"exp":    exp.Unix(),
	})

	claims, err := ParseClaims(token)
	require.NoError(t, err)

	assert.Equal(t, "u-42", claims.UserID)
	assert.Equal(t, "shopper@example.com", claims.Email)
	assert.Equal(t, []string{"ROLE_USER", "ROLE_SHOP_OWNER"}, claims.Roles)
	assert.True(t, claims.ExpiresAt.Equal(exp))
	assert.False(t, claims.IsExpired(time.Now()))
	assert.True(t, claims.HasRole("ROLE_SHOP_OWNER"))
}

func TestParseClaimsAuthoritiesObjects(t *testing.T) {
	token := signToken(t, jwt.MapClaims{
		"sub":         "u-1",
		"authorities": []map[string]string{{"authority": "ROLE_ADMIN"}},
	})

	claims, err := ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, []string{"ROLE_ADMIN"}, claims.Roles)
	assert.True(t, claims.ExpiresAt.IsZero())
	assert.False(t, claims.IsExpired(time.Now()))
}

func TestParseClaimsSingleRole(t *testing.T) {
	token := signToken(t, jwt.MapClaims{"id": float64(7), "role": "shop_owner"})

	claims, err := ParseClaims(token)
	require.NoError(t, err)
	assert.Equal(t, "7", claims.UserID)
	assert.Equal(t, []string{"ROLE_SHOP_OWNER"}, claims.Roles)
}

func TestParseClaimsMalformed(t *testing.T) {
	_, err := ParseClaims("not-a-jwt")
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestPrimaryRole(t *testing.T) {
	assert.Equal(t, "", PrimaryRole(nil))
	assert.Equal(t, "Admin", PrimaryRole([]string{"ROLE_USER", "ROLE_ADMIN"}))
	assert.Equal(t, "User", PrimaryRole([]string{"ROLE_SHOP_OWNER", "ROLE_USER"}))
	assert.Equal(t, "SHOP_OWNER", PrimaryRole([]string{"ROLE_SHOP_OWNER"}))
}
