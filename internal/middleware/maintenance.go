package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"vibex-storefront/internal/models"
)

// MaintenanceMiddleware closes the checkout and wallet routes while the
// storefront is in maintenance mode. Admin sessions keep access so the flow
// can still be verified.
func MaintenanceMiddleware(enabled bool, creds Credentials) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		// Login, health and metrics stay reachable
		path := c.Request.URL.Path
		if !strings.HasPrefix(path, "/api/checkout") && !strings.HasPrefix(path, "/api/wallet") {
			c.Next()
			return
		}

		claims, err := creds.Claims(c.Request.Context(), GetSessionID(c))
		if err == nil && claims.HasRole(models.RoleAdmin) {
			c.Next()
			return
		}

		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
			"error":            "Checkout is under maintenance",
			"maintenance_mode": true,
		})
	}
}
