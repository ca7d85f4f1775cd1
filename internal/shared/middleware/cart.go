package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ===================================
// CONSTANTS
// ===================================

const (
	SessionCookieName = "session_id"

	ContextKeySessionID = "session_id"
)

// ===================================
// MIDDLEWARE CONFIGURATION
// ===================================

// CartMiddlewareConfig holds cookie settings for anonymous carts.
type CartMiddlewareConfig struct {
	CookieDomain   string // "" = current domain
	CookiePath     string
	CookieSecure   bool
	CookieSameSite http.SameSite
	CookieMaxAge   int // seconds
}

func DefaultCartMiddlewareConfig() CartMiddlewareConfig {
	return CartMiddlewareConfig{
		CookiePath:     "/",
		CookieSecure:   true,
		CookieSameSite: http.SameSiteLaxMode,
		CookieMaxAge:   60 * 60 * 24 * 30,
	}
}

// ===================================
// CART MIDDLEWARE
// ===================================

// CartMiddleware identifies the cart owner. It must run after OptionalAuthMiddleware.
//
// Flow:
// 1. Authenticated → the owner is the user, nothing else to do
// 2. Anonymous → reuse the session_id cookie, or mint a new UUID and set the cookie
// 3. The session token is put into context for handlers
//
// The session cookie is also read for authenticated users so login can merge that cart.
func CartMiddleware(config CartMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := getSessionID(c)

		if _, isAuth := GetAuthenticatedUserID(c); isAuth {
			if sessionID != "" {
				c.Set(ContextKeySessionID, sessionID)
			}
			c.Next()
			return
		}

		if sessionID == "" {
			sessionID = uuid.New().String()
			setSessionCookie(c, sessionID, config)
		}

		c.Set(ContextKeySessionID, sessionID)
		c.Next()
	}
}

// ===================================
// HELPER FUNCTIONS
// ===================================

// getSessionID returns the cookie value only if it is a well formed UUID.
func getSessionID(c *gin.Context) string {
	sessionID, err := c.Cookie(SessionCookieName)
	if err != nil || sessionID == "" {
		return ""
	}

	if _, err := uuid.Parse(sessionID); err != nil {
		return ""
	}

	return sessionID
}

func setSessionCookie(c *gin.Context, sessionID string, config CartMiddlewareConfig) {
	c.SetSameSite(config.CookieSameSite)
	c.SetCookie(
		SessionCookieName,
		sessionID,
		config.CookieMaxAge,
		config.CookiePath,
		config.CookieDomain,
		config.CookieSecure,
		true, // httpOnly
	)
}

// ClearSessionCookie expires the anonymous cart cookie (after a merge on login).
func ClearSessionCookie(c *gin.Context, config CartMiddlewareConfig) {
	c.SetSameSite(config.CookieSameSite)
	c.SetCookie(SessionCookieName, "", -1, config.CookiePath, config.CookieDomain, config.CookieSecure, true)
}

// ===================================
// CONTEXT HELPERS FOR HANDLERS
// ===================================

// GetSessionID returns the anonymous session token ("" if none).
func GetSessionID(c *gin.Context) string {
	return c.GetString(ContextKeySessionID)
}

// GetCartOwner returns the polymorphic owner key: the user when authenticated, else the session.
func GetCartOwner(c *gin.Context) (userID *uuid.UUID, sessionID string) {
	if id, ok := GetAuthenticatedUserID(c); ok {
		return &id, ""
	}
	return nil, GetSessionID(c)
}
