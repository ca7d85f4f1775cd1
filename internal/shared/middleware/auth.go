package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grocery-backend/internal/shared/apperror"
	"grocery-backend/internal/shared/response"
	"grocery-backend/pkg/jwt"
)

// Context keys set by the auth middlewares
const (
	ContextKeyUserID          = "user_id"
	ContextKeyUsername        = "username"
	ContextKeyRole            = "role"
	ContextKeyIsAuthenticated = "is_authenticated"
)

// TokenValidator is satisfied by *jwt.Manager.
type TokenValidator interface {
	ValidateAccessToken(token string) (*jwt.Claims, error)
}

// AuthMiddleware rejects requests without a valid access token.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Extract "Bearer <token>"
		token, ok := bearerToken(c)
		if !ok {
			response.AbortWithError(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "missing or malformed authorization header")
			return
		}

		// 2. Verify and parse
		claims, err := tokens.ValidateAccessToken(token)
		if err != nil {
			response.AbortWithError(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "invalid token")
			return
		}

		// 3. Put identity into context
		if !setIdentity(c, claims) {
			response.AbortWithError(c, http.StatusUnauthorized, apperror.CodeUnauthorized, "invalid user ID in token")
			return
		}

		c.Next()
	}
}

// OptionalAuthMiddleware lets anonymous requests through.
// A valid token sets the identity, a missing or bad one is ignored.
func OptionalAuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(ContextKeyIsAuthenticated, false)

		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		claims, err := tokens.ValidateAccessToken(token)
		if err == nil {
			setIdentity(c, claims)
		}

		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func setIdentity(c *gin.Context, claims *jwt.Claims) bool {
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return false
	}

	c.Set(ContextKeyUserID, userID)
	c.Set(ContextKeyUsername, claims.Username)
	c.Set(ContextKeyRole, claims.Role)
	c.Set(ContextKeyIsAuthenticated, true)
	return true
}

// GetAuthenticatedUserID returns (userID, true) for authenticated requests.
func GetAuthenticatedUserID(c *gin.Context) (uuid.UUID, bool) {
	if !c.GetBool(ContextKeyIsAuthenticated) {
		return uuid.Nil, false
	}

	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}

	userID, ok := v.(uuid.UUID)
	if !ok || userID == uuid.Nil {
		return uuid.Nil, false
	}
	return userID, true
}

// MustUserID is for handlers mounted behind AuthMiddleware.
// It writes a 401 and returns false if the identity is missing.
func MustUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := GetAuthenticatedUserID(c)
	if !ok {
		response.Unauthorized(c, "authentication required")
		return uuid.Nil, false
	}
	return userID, true
}
