package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	SessionName = "vibex-session"
	SessionKey  = "session_id"
)

// NewSessionStore builds the cookie store that carries only the BFF session id.
// Tokens never leave the server.
func NewSessionStore(secretKey string, secure bool, maxAge time.Duration) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(secretKey))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// SessionMiddleware handles session management
func SessionMiddleware(store sessions.Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, err := store.Get(c.Request, SessionName)
		if err != nil {
			// A cookie signed with an old secret reads as a fresh session.
			logger.Debug("discarding unreadable session cookie", "err", err)
			session = sessions.NewSession(store, SessionName)
		}

		sessionID, ok := session.Values[SessionKey].(string)
		if !ok || sessionID == "" {
			sessionID = uuid.NewString()
			session.Values[SessionKey] = sessionID
			session.IsNew = true
		}

		if err := session.Save(c.Request, c.Writer); err != nil {
			logger.Error("failed to save session", "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save session"})
			c.Abort()
			return
		}

		c.Set(SessionKey, sessionID)
		c.Set("session", session)

		c.Next()
	}
}

// GetSessionID gets the session ID from gin context
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionKey)
}

// GetSession gets the session from gin context
func GetSession(c *gin.Context) *sessions.Session {
	session, exists := c.Get("session")
	if !exists {
		return nil
	}
	return session.(*sessions.Session)
}
