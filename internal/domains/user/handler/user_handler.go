package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"grocery-backend/internal/domains/user"
	"grocery-backend/internal/shared/apperror"
	"grocery-backend/internal/shared/middleware"
	"grocery-backend/internal/shared/response"
	"grocery-backend/internal/shared/utils"
	"grocery-backend/pkg/logger"
)

const refreshTokenCookie = "refresh_token"

// CartMerger folds the anonymous session cart into the user's cart after login.
type CartMerger interface {
	MergeSessionCart(ctx context.Context, sessionID string, userID uuid.UUID) error
}

// UserHandler serves auth, profile, settings and user admin endpoints.
type UserHandler struct {
	service    user.Service
	carts      CartMerger
	cookies    middleware.CartMiddlewareConfig
	refreshTTL time.Duration
}

func NewUserHandler(
	service user.Service,
	carts CartMerger,
	cookies middleware.CartMiddlewareConfig,
	refreshTTL time.Duration,
) *UserHandler {
	return &UserHandler{
		service:    service,
		carts:      carts,
		cookies:    cookies,
		refreshTTL: refreshTTL,
	}
}

// ========================================
// AUTHENTICATION ENDPOINTS
// ========================================

// Register handles POST /auth/register
func (h *UserHandler) Register(c *gin.Context) {
	// STEP 1: PARSE REQUEST BODY
	var req user.RegisterRequest
	if err := h.bind(c, &req); err != nil {
		return
	}

	// STEP 2: CALL SERVICE (validate, hash, insert)
	userDTO, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// STEP 3: SUCCESS RESPONSE
	c.Header("Location", "/api/v1/users/"+userDTO.ID.String())
	response.Success(c, http.StatusCreated, "user registered", userDTO)
}

// Login handles POST /auth/login.
// A cart built while anonymous is merged into the user's cart.
func (h *UserHandler) Login(c *gin.Context) {
	// STEP 1: PARSE REQUEST
	var req user.LoginRequest
	if err := h.bind(c, &req); err != nil {
		return
	}

	// STEP 2: AUTHENTICATE
	res, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	// STEP 3: REFRESH TOKEN GOES INTO AN HTTPONLY COOKIE, NOT THE BODY
	h.setRefreshCookie(c, res.RefreshToken)
	res.RefreshToken = ""

	// STEP 4: MERGE THE ANONYMOUS CART (never fails the login)
	if sessionID := middleware.GetSessionID(c); sessionID != "" {
		if err := h.carts.MergeSessionCart(c.Request.Context(), sessionID, res.User.ID); err != nil {
			logger.Warn("failed to merge cart after login", map[string]interface{}{
				"user_id": res.User.ID.String(),
				"error":   err.Error(),
			})
		} else {
			middleware.ClearSessionCookie(c, h.cookies)
		}
	}

	response.Success(c, http.StatusOK, "login successful", res)
}

// RefreshToken handles POST /auth/refresh using the refresh_token cookie.
func (h *UserHandler) RefreshToken(c *gin.Context) {
	refreshToken, err := c.Cookie(refreshTokenCookie)
	if err != nil || refreshToken == "" {
		response.Unauthorized(c, "missing refresh token")
		return
	}

	res, err := h.service.RefreshToken(c.Request.Context(), refreshToken)
	if err != nil {
		h.handleError(c, err)
		return
	}

	h.setRefreshCookie(c, res.RefreshToken)
	res.RefreshToken = ""

	response.Success(c, http.StatusOK, "token refreshed", res)
}

// Logout handles POST /auth/logout. It only clears the refresh cookie.
func (h *UserHandler) Logout(c *gin.Context) {
	c.SetCookie(refreshTokenCookie, "", -1, "/", h.cookies.CookieDomain, h.cookies.CookieSecure, true)
	response.Success(c, http.StatusOK, "logged out", nil)
}

// ========================================
// PROFILE ENDPOINTS
// ========================================

// GetProfile handles GET /users/me
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", profile)
}

// UpdateProfile handles PUT /users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	var req user.UpdateProfileRequest
	if err := h.bind(c, &req); err != nil {
		return
	}

	profile, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "profile updated", profile)
}

// GetSettings handles GET /users/me/settings
func (h *UserHandler) GetSettings(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	settings, err := h.service.GetSettings(c.Request.Context(), userID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "settings retrieved", settings)
}

// UpdateSettings handles PUT /users/me/settings
func (h *UserHandler) UpdateSettings(c *gin.Context) {
	userID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	var req user.UpdateSettingsRequest
	if err := h.bind(c, &req); err != nil {
		return
	}

	settings, err := h.service.UpdateSettings(c.Request.Context(), userID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "settings updated", settings)
}

// ========================================
// ADMIN ENDPOINTS
// ========================================

// ListUsers handles GET /admin/users?search=&role=&page=&limit=
func (h *UserHandler) ListUsers(c *gin.Context) {
	page := utils.ParsePagination(c.Query("page"), c.Query("limit"))

	res, err := h.service.ListUsers(c.Request.Context(), user.ListUsersRequest{
		Search: c.Query("search"),
		Role:   c.Query("role"),
		Page:   page.Page,
		Limit:  page.Limit,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, "users retrieved", res.Users, &response.Meta{
		Page:       res.Page,
		Limit:      res.Limit,
		Total:      res.Total,
		TotalPages: page.TotalPages(res.Total),
	})
}

// UpdateUserRole handles PUT /admin/users/:id/role
func (h *UserHandler) UpdateUserRole(c *gin.Context) {
	actorID, ok := middleware.MustUserID(c)
	if !ok {
		return
	}

	targetID := utils.ParseStringToUUID(c.Param("id"))
	if targetID == uuid.Nil {
		response.BadRequest(c, "invalid user id", nil)
		return
	}

	var req user.UpdateRoleRequest
	if err := h.bind(c, &req); err != nil {
		return
	}

	updated, err := h.service.UpdateUserRole(c.Request.Context(), actorID, targetID, req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "role updated", updated)
}

// ========================================
// HELPERS
// ========================================

func (h *UserHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(h.cookies.CookieSameSite)
	c.SetCookie(
		refreshTokenCookie,
		token,
		int(h.refreshTTL.Seconds()),
		"/",
		h.cookies.CookieDomain,
		h.cookies.CookieSecure,
		true, // HttpOnly
	)
}

// handleError maps domain errors onto HTTP status codes.
// Validation errors fall through to the shared renderer.
func (h *UserHandler) handleError(c *gin.Context, err error) {
	switch {
	// 400 Bad Request
	case errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrCannotDemoteSelf):
		response.ErrorResponse(c, http.StatusBadRequest, apperror.CodeValidationFailed, err.Error(), nil)

	// 401 Unauthorized
	case errors.Is(err, user.ErrInvalidCredentials),
		errors.Is(err, user.ErrInvalidToken):
		response.ErrorResponse(c, http.StatusUnauthorized, apperror.CodeUnauthorized, err.Error(), nil)

	// 404 Not Found
	case errors.Is(err, user.ErrUserNotFound):
		response.ErrorResponse(c, http.StatusNotFound, "USER_NOT_FOUND", err.Error(), nil)

	// 409 Conflict
	case errors.Is(err, user.ErrUsernameTaken),
		errors.Is(err, user.ErrEmailAlreadyExists):
		response.ErrorResponse(c, http.StatusConflict, apperror.CodeConflict, err.Error(), nil)

	default:
		response.HandleError(c, err)
	}
}

func (h *UserHandler) bind(c *gin.Context, req interface{}) error {
	if err := c.ShouldBindJSON(req); err != nil {
		response.BadRequest(c, "invalid request body", err.Error())
		return err
	}
	return nil
}
