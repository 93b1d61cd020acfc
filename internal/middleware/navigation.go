package middleware

import (
	"context"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vibex-storefront/internal/apiclient"
)

const (
	// PageHeader carries the storefront page the browser is showing.
	PageHeader      = "X-Current-Page"
	RequestIDHeader = "X-Request-ID"
)

type recorderKey struct{}

// RedirectRecorder collects the login redirect forced during one request.
type RedirectRecorder struct {
	mu     sync.Mutex
	target string
}

func (r *RedirectRecorder) record(target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.target == "" {
		r.target = target
	}
}

// Target returns the first recorded redirect, or "".
func (r *RedirectRecorder) Target() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

// WithRedirectRecorder attaches a fresh recorder to ctx.
func WithRedirectRecorder(ctx context.Context) (context.Context, *RedirectRecorder) {
	rec := &RedirectRecorder{}
	return context.WithValue(ctx, recorderKey{}, rec), rec
}

// ContextNavigator sends forced logins to the recorder of the request that
// made the call. Calls made outside a request are dropped.
type ContextNavigator struct{}

func (ContextNavigator) RedirectToLogin(ctx context.Context, target string) {
	if rec, ok := ctx.Value(recorderKey{}).(*RedirectRecorder); ok {
		rec.record(target)
	}
}

var _ apiclient.Navigator = ContextNavigator{}

// Navigation puts the current page, the request id and a redirect recorder on
// the request context so gateway calls made by handlers can see them. A
// missing or non-relative page is left empty, which is neither public nor an
// auth page, so expired sessions still get a login redirect.
func Navigation() gin.HandlerFunc {
	return func(c *gin.Context) {
		page := strings.TrimSpace(c.GetHeader(PageHeader))
		if !strings.HasPrefix(page, "/") || strings.HasPrefix(page, "//") {
			page = ""
		}

		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header(RequestIDHeader, requestID)

		ctx := apiclient.WithPage(c.Request.Context(), page)
		ctx = apiclient.WithRequestID(ctx, requestID)
		ctx, rec := WithRedirectRecorder(ctx)
		c.Request = c.Request.WithContext(ctx)

		c.Set("current_page", page)
		c.Set("request_id", requestID)
		c.Set("redirect_recorder", rec)

		c.Next()
	}
}

// LoginRedirect returns the login redirect recorded for this request, or "".
func LoginRedirect(c *gin.Context) string {
	v, ok := c.Get("redirect_recorder")
	if !ok {
		return ""
	}
	return v.(*RedirectRecorder).Target()
}

// CurrentPage returns the page reported by the browser, or "" when unknown.
func CurrentPage(c *gin.Context) string {
	return c.GetString("current_page")
}
