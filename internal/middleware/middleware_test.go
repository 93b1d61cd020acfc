package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/auth"
	"vibex-storefront/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeCreds struct {
	claims     map[string]*auth.Claims
	refreshed  map[string]*auth.Claims
	refreshErr error
}

func (f *fakeCreds) Claims(_ context.Context, sessionID string) (*auth.Claims, error) {
	if c, ok := f.claims[sessionID]; ok {
		return c, nil
	}
	return nil, auth.ErrNotLoggedIn
}

func (f *fakeCreds) Refresh(_ context.Context, sessionID string) (string, error) {
	if f.refreshErr != nil {
		return "", f.refreshErr
	}
	c, ok := f.refreshed[sessionID]
	if !ok {
		return "", auth.ErrNoRefreshToken
	}
	f.claims[sessionID] = c
	return "fresh", nil
}

// withSession fakes SessionMiddleware for routes that only need an id.
func withSession(id string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(SessionKey, id)
		c.Next()
	}
}

func TestSessionMiddlewareIssuesAndReusesID(t *testing.T) {
	store := NewSessionStore("test-secret-test-secret-test-sec", false, time.Hour)
	r := gin.New()
	r.Use(SessionMiddleware(store, discardLogger()))
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, GetSessionID(c)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	require.Equal(t, http.StatusOK, w.Code)
	first := w.Body.String()
	require.NotEmpty(t, first)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, SessionName, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, first, w.Body.String())
}

func TestSessionMiddlewareReplacesForgedCookie(t *testing.T) {
	store := NewSessionStore("test-secret-test-secret-test-sec", false, time.Hour)
	r := gin.New()
	r.Use(SessionMiddleware(store, discardLogger()))
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, GetSessionID(c)) })

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.AddCookie(&http.Cookie{Name: SessionName, Value: "forged"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Body.String())
	assert.NotEqual(t, "forged", w.Body.String())
}

func TestNavigationCarriesPageAndRequestID(t *testing.T) {
	r := gin.New()
	r.Use(Navigation())
	var page, requestID string
	r.GET("/x", func(c *gin.Context) {
		page = apiclient.PageFrom(c.Request.Context())
		requestID = c.GetString("request_id")
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(PageHeader, "/checkout?step=2")
	req.Header.Set(RequestIDHeader, "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "/checkout?step=2", page)
	assert.Equal(t, "req-42", requestID)
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))
}

func TestNavigationRejectsAbsolutePage(t *testing.T) {
	r := gin.New()
	r.Use(Navigation())
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, CurrentPage(c)) })

	for _, page := range []string{"https://evil.example/phish", "//evil.example/phish"} {
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		req.Header.Set(PageHeader, page)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, "", w.Body.String(), page)
	}
}

func TestUnauthorizedWithoutPageHeaderStillRedirects(t *testing.T) {
	r := gin.New()
	r.Use(Navigation())
	r.GET("/x", func(c *gin.Context) { Unauthorized(c, "Login required") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "/login?from=%2F", body["redirect"])
}

func TestContextNavigatorRecordsFirstRedirect(t *testing.T) {
	ctx, rec := WithRedirectRecorder(context.Background())
	nav := ContextNavigator{}
	nav.RedirectToLogin(ctx, "/login?from=%2Fcheckout")
	nav.RedirectToLogin(ctx, "/login?from=%2Fother")
	assert.Equal(t, "/login?from=%2Fcheckout", rec.Target())

	// No recorder on the context is a no-op.
	nav.RedirectToLogin(context.Background(), "/login")
}

func TestRequireLogin(t *testing.T) {
	creds := &fakeCreds{
		claims:    map[string]*auth.Claims{"s-1": {UserID: "u-1", Email: "lan@example.test", Roles: []string{models.RoleUser}}},
		refreshed: map[string]*auth.Claims{"s-2": {UserID: "u-2", Roles: []string{models.RoleAdmin}}},
	}

	tests := []struct {
		name     string
		session  string
		page     string
		status   int
		userID   string
		redirect string
	}{
		{name: "logged in", session: "s-1", page: "/checkout", status: http.StatusOK, userID: "u-1"},
		{name: "refreshed", session: "s-2", page: "/checkout", status: http.StatusOK, userID: "u-2"},
		{name: "guest on private page", session: "s-3", page: "/checkout", status: http.StatusUnauthorized, redirect: "/login?from=%2Fcheckout"},
		{name: "guest on public page", session: "s-3", page: "/shop", status: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(Navigation(), withSession(tt.session), RequireLogin(creds))
			r.GET("/me", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("user_id")) })

			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set(PageHeader, tt.page)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, tt.userID, w.Body.String())
				return
			}
			var body map[string]string
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.redirect, body["redirect"])
		})
	}
}

func TestUnauthorizedPrefersRecordedRedirect(t *testing.T) {
	r := gin.New()
	r.Use(Navigation())
	r.GET("/x", func(c *gin.Context) {
		ContextNavigator{}.RedirectToLogin(c.Request.Context(), "/login?from=%2Fcheckout%3Fa%3D1")
		Unauthorized(c, "Session expired")
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(PageHeader, "/somewhere-else")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Session expired","redirect":"/login?from=%2Fcheckout%3Fa%3D1"}`, w.Body.String())
}

func TestMaintenanceMiddleware(t *testing.T) {
	creds := &fakeCreds{claims: map[string]*auth.Claims{
		"admin": {UserID: "a", Roles: []string{models.RoleAdmin}},
		"user":  {UserID: "u", Roles: []string{models.RoleUser}},
	}}

	tests := []struct {
		name    string
		enabled bool
		session string
		path    string
		status  int
	}{
		{name: "disabled", enabled: false, session: "user", path: "/api/checkout", status: http.StatusOK},
		{name: "user blocked", enabled: true, session: "user", path: "/api/checkout", status: http.StatusServiceUnavailable},
		{name: "guest blocked from wallet", enabled: true, session: "guest", path: "/api/wallet/balance", status: http.StatusServiceUnavailable},
		{name: "admin allowed", enabled: true, session: "admin", path: "/api/checkout", status: http.StatusOK},
		{name: "login allowed", enabled: true, session: "guest", path: "/api/auth/login", status: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.Use(withSession(tt.session), MaintenanceMiddleware(tt.enabled, creds))
			r.Any("/*path", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestSecurityHeaders(t *testing.T) {
	r := gin.New()
	r.Use(SecurityHeaders())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-store", w.Header().Get("Cache-Control"))
	assert.Contains(t, w.Header().Get("Strict-Transport-Security"), "max-age=")

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestRefreshErrorKeepsGuest(t *testing.T) {
	creds := &fakeCreds{claims: map[string]*auth.Claims{}, refreshErr: errors.New("gateway down")}
	r := gin.New()
	r.Use(Navigation(), withSession("s-9"), RequireLogin(creds))
	r.GET("/me", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
