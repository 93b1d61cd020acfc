package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"vibex-storefront/internal/apiclient"
	"vibex-storefront/internal/auth"
)

// Credentials is the part of auth.Manager the login guard needs.
type Credentials interface {
	Claims(ctx context.Context, sessionID string) (*auth.Claims, error)
	Refresh(ctx context.Context, sessionID string) (string, error)
}

// RequireLogin rejects sessions without usable credentials. An access token
// that has aged out of the store is refreshed once before giving up.
func RequireLogin(creds Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		sessionID := GetSessionID(c)

		claims, err := creds.Claims(ctx, sessionID)
		if errors.Is(err, auth.ErrNotLoggedIn) {
			if _, refreshErr := creds.Refresh(ctx, sessionID); refreshErr == nil {
				claims, err = creds.Claims(ctx, sessionID)
			}
		}
		if err != nil {
			Unauthorized(c, "Login required")
			return
		}

		c.Set("user_id", claims.UserID)
		c.Set("user_email", claims.Email)
		c.Set("user_role", auth.PrimaryRole(claims.Roles))
		c.Set("claims", claims)
		c.Next()
	}
}

// Unauthorized answers 401 and, unless the shopper is on a page guests may
// see, tells the storefront where to log in.
func Unauthorized(c *gin.Context, message string) {
	body := gin.H{"error": message}
	if target := LoginRedirect(c); target != "" {
		body["redirect"] = target
	} else if page := CurrentPage(c); !apiclient.IsAuthPage(page) && !apiclient.IsPublicPage(page) {
		body["redirect"] = apiclient.LoginRedirect(page)
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, body)
}

// GetClaims returns the claims set by RequireLogin.
func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get("claims")
	if !ok {
		return nil
	}
	return v.(*auth.Claims)
}
