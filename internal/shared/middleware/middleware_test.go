package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"grocery-backend/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *jwt.Manager {
	return jwt.NewManager("middleware-test-secret", time.Hour, time.Hour)
}

func TestAuthMiddleware(t *testing.T) {
	tokens := newTokens()
	userID := uuid.New()

	router := gin.New()
	router.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		id, ok := GetAuthenticatedUserID(c)
		require.True(t, ok)
		c.String(http.StatusOK, id.String()+"|"+c.GetString(ContextKeyRole))
	})

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("refresh token is not accepted", func(t *testing.T) {
		refresh, err := tokens.GenerateRefreshToken(userID.String())
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+refresh)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		access, err := tokens.GenerateAccessToken(userID.String(), "anna", "customer")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID.String()+"|customer", w.Body.String())
	})
}

func TestAdminMiddleware(t *testing.T) {
	tokens := newTokens()
	router := gin.New()
	router.GET("/admin", AuthMiddleware(tokens), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	for role, want := range map[string]int{"customer": http.StatusForbidden, "admin": http.StatusNoContent} {
		access, err := tokens.GenerateAccessToken(uuid.NewString(), "u", role)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+access)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestCartMiddleware_AnonymousGetsSessionCookie(t *testing.T) {
	tokens := newTokens()
	router := gin.New()
	router.Use(OptionalAuthMiddleware(tokens), CartMiddleware(DefaultCartMiddlewareConfig()))
	router.GET("/cart", func(c *gin.Context) {
		userID, sessionID := GetCartOwner(c)
		assert.Nil(t, userID)
		c.String(http.StatusOK, sessionID)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/cart", nil))

	require.Equal(t, http.StatusOK, w.Code)
	sessionID := w.Body.String()
	_, err := uuid.Parse(sessionID)
	require.NoError(t, err)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, SessionCookieName, cookies[0].Name)
	assert.Equal(t, sessionID, cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)

	// Second request reuses the cookie and does not set a new one
	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: sessionID})
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, sessionID, w.Body.String())
	assert.Empty(t, w.Result().Cookies())
}

func TestCartMiddleware_InvalidCookieIsReplaced(t *testing.T) {
	router := gin.New()
	router.Use(OptionalAuthMiddleware(newTokens()), CartMiddleware(DefaultCartMiddlewareConfig()))
	router.GET("/cart", func(c *gin.Context) {
		c.String(http.StatusOK, GetSessionID(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "'; DROP TABLE carts;--"})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	_, err := uuid.Parse(w.Body.String())
	assert.NoError(t, err)
}

func TestCartMiddleware_AuthenticatedOwnerIsUser(t *testing.T) {
	tokens := newTokens()
	userID := uuid.New()
	access, err := tokens.GenerateAccessToken(userID.String(), "anna", "customer")
	require.NoError(t, err)

	router := gin.New()
	router.Use(OptionalAuthMiddleware(tokens), CartMiddleware(DefaultCartMiddlewareConfig()))
	router.GET("/cart", func(c *gin.Context) {
		owner, sessionID := GetCartOwner(c)
		require.NotNil(t, owner)
		assert.Equal(t, userID, *owner)
		assert.Empty(t, sessionID)
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.Header.Set("Authorization", "Bearer "+access)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Result().Cookies())
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString("request_id"))
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestRecovery(t *testing.T) {
	router := gin.New()
	router.Use(Recovery())
	router.GET("/panic", func(c *gin.Context) {
		panic("boom")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "SYS_INTERNAL_ERROR")
}
