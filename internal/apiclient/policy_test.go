package apiclient

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPublicAuthEndpoint(t *testing.T) {
	for _, p := range []string{"/v1/auth/login", "/v1/auth/login/google", "/v1/auth/register", "/v1/auth/forgotPassword", "/v1/auth/verifyOtp", "/v1/auth/updatePassword", "/v1/auth/refresh", "/v1/order/track/ABC"} {
		assert.True(t, IsPublicAuthEndpoint(p), p)
	}
	for _, p := range []string{"/v1/order/checkout/preview", "/v1/user/information", "/v1/stock/reservation/reserve"} {
		assert.False(t, IsPublicAuthEndpoint(p), p)
	}
}

func TestIsPublicContentEndpoint(t *testing.T) {
	assert.True(t, IsPublicContentEndpoint("/v1/stock/product/getProductById/9"))
	assert.True(t, IsPublicContentEndpoint("/v1/user/shop-owners/12"))
	assert.True(t, IsPublicContentEndpoint("/v1/file-storage/get/abc"))
	assert.False(t, IsPublicContentEndpoint("/v1/order/create-from-cart"))
}

func TestPages(t *testing.T) {
	assert.True(t, IsPublicPage("/"))
	assert.True(t, IsPublicPage("/?q=shoes"))
	assert.True(t, IsPublicPage("/shop"))
	assert.True(t, IsPublicPage("/product/7"))
	assert.False(t, IsPublicPage("/checkout"))
	assert.False(t, IsPublicPage("/products"))

	assert.True(t, IsAuthPage("/login"))
	assert.True(t, IsAuthPage("/reset-password?token=1"))
	assert.False(t, IsAuthPage("/information/orders"))
}

func TestLoginRedirect(t *testing.T) {
	assert.Equal(t, "/login?from=%2Fcheckout%3Fa%3D1", LoginRedirect("/checkout?a=1"))
	assert.Equal(t, "/login?from=%2F", LoginRedirect(""))
}

func TestIsRefreshEndpoint(t *testing.T) {
	assert.True(t, isRefreshEndpoint("/v1/auth/refresh"))
	assert.True(t, isRefreshEndpoint("/v1/auth/refresh/"))
	assert.False(t, isRefreshEndpoint("/v1/order/refresh-status"))
}
