package apiclient

import (
	"net/url"
	"strings"
)

// publicAuthEndpoints never carry a bearer token and never trigger refresh.
var publicAuthEndpoints = []string{
	"/login",
	"/register",
	"/forgotPassword",
	"/verifyOtp",
	"/updatePassword",
	"/login/google",
	"/login/facebook",
	"/auth/refresh",
	"/order/track/",
}

// publicContentEndpoints are guest-visible; a 401 from them never forces a login redirect.
var publicContentEndpoints = []string{
	"/user/vets/getAllVet",
	"/user/vets/search",
	"/stock/product/list",
	"/stock/product/getProductById",
	"/stock/category/getAll",
	"/file-storage/get",
	"/shop-owners/",
	"/order/track/",
}

var authPagePrefixes = []string{"/login", "/register", "/auth", "/forgot", "/verify-otp", "/reset-password"}

const refreshEndpoint = "/auth/refresh"

// LoginPath is the storefront route that hosts the login form.
const LoginPath = "/login"

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// IsPublicAuthEndpoint reports whether the request path belongs to the login,
// registration, password reset, OTP, refresh or order tracking endpoints.
func IsPublicAuthEndpoint(path string) bool {
	return containsAny(path, publicAuthEndpoints)
}

// IsPublicContentEndpoint reports whether the request path serves guest-visible content.
func IsPublicContentEndpoint(path string) bool {
	return containsAny(path, publicContentEndpoints)
}

func isRefreshEndpoint(path string) bool {
	return strings.HasSuffix(strings.TrimRight(path, "/"), refreshEndpoint)
}

// IsAuthPage reports whether the storefront page is one of the sign-in flows.
func IsAuthPage(page string) bool {
	p := pagePath(page)
	for _, prefix := range authPagePrefixes {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// IsPublicPage reports whether the storefront page is browsable by guests:
// home, shop listings and product detail.
func IsPublicPage(page string) bool {
	p := pagePath(page)
	return p == "/" || strings.HasPrefix(p, "/shop") || strings.HasPrefix(p, "/product/")
}

// LoginRedirect builds the login URL that returns to page afterwards.
func LoginRedirect(page string) string {
	if page == "" {
		page = "/"
	}
	return LoginPath + "?from=" + url.QueryEscape(page)
}

func pagePath(page string) string {
	p, _, _ := strings.Cut(page, "?")
	return p
}
